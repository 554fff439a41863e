// Package password はパスワードのハッシュ化と照合を提供する。
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost はbcryptのデフォルトコスト。
const DefaultCost = 10

// MaxBytes はbcryptが扱える平文の最大バイト数。文字数ではなくUTF-8のバイト数で数える。
const MaxBytes = 72

// TooLong は平文がMaxBytesを超えるかどうかを返す。
func TooLong(plaintext string) bool {
	return len(plaintext) > MaxBytes
}

// Hasher はパスワードのハッシュ化と照合のインターフェース。
type Hasher interface {
	// Hash は平文パスワードからソルト付きのダイジェストを生成する。
	Hash(plaintext string) (string, error)
	// Verify は平文がダイジェストと一致する場合のみtrueを返す。
	// ダイジェストが不正な形式の場合もfalseを返す。
	Verify(plaintext, digest string) bool
}

// BcryptHasher はbcryptを使用したHasher。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
// コストはbcryptの有効範囲（MinCost〜MaxCost）に丸める。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost は実際に使用するコストを返す。
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash は平文パスワードからbcryptダイジェストを生成する。
// 同じ平文でも呼び出しごとに異なるダイジェストになる。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify は平文がダイジェストと一致するかを返す。
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

var _ Hasher = (*BcryptHasher)(nil)
