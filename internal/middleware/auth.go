package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/kakeibo/internal/token"
)

// contextKey はコンテキストキーの型。
type contextKey string

const identityContextKey contextKey = "identity"

// ErrNoIdentity はコンテキストに認証済みユーザーが存在しないことを示す。
var ErrNoIdentity = errors.New("no authenticated identity in context")

// Identity は検証済みトークンから得た利用者情報。
type Identity struct {
	UserID string
	Email  string
}

// TokenVerifier はトークン検証のインターフェース。
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 検証に成功した場合はIdentityをコンテキストに格納し、次のハンドラーを呼び出す。
// 失敗した場合は原因によらず401を返す。サーバー側に状態は持たない。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteUnauthorized(w)
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil || claims.UserID == "" {
				slog.Debug("token rejected", slog.Any("error", err))
				WriteUnauthorized(w)
				return
			}

			identity := Identity{UserID: claims.UserID, Email: claims.Email}
			if st := stateFromContext(r.Context()); st != nil {
				st.userID = identity.UserID
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// bearerToken は "Bearer <token>" 形式のヘッダー値からトークン部分を取り出す。
// スキーム名の大文字小文字は区別しない。
func bearerToken(header string) (string, bool) {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// IdentityFromContext はコンテキストから認証済みのIdentityを取得する。
func IdentityFromContext(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || identity.UserID == "" {
		return Identity{}, ErrNoIdentity
	}
	return identity, nil
}

// UserIDFromContext はコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	identity, err := IdentityFromContext(ctx)
	if err != nil {
		return "", err
	}
	return identity.UserID, nil
}

// ContextWithIdentity はIdentityをコンテキストに格納する。
// テストやハンドラー間の受け渡しで使用する。
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
