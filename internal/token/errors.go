package token

import "errors"

// トークン検証エラー。
var (
	// ErrTokenExpired は有効期限切れを示す。
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenMalformed はトークンの形式が不正であることを示す。
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenInvalidSignature は署名の不一致または想定外のアルゴリズムを示す。
	ErrTokenInvalidSignature = errors.New("token signature is invalid")
)
