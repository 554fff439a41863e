package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
)

func testLimiterConfig(generalBurst, authBurst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    generalBurst,
		AuthRate:        1,
		AuthBurst:       authBurst,
		CleanupInterval: time.Minute,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// requestAs は指定ユーザーとして認証済みのリクエストを送り、ステータスコードを返す。
func requestAs(handler http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), Identity{UserID: userID}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func requestFrom(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// --- GeneralMiddleware (API全般) のテスト ---

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig(5, 10))
	defer rl.Stop()

	calls := 0
	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		if w := requestAs(handler, "user-1"); w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
	if calls != 5 {
		t.Errorf("handler call count = %d, want 5", calls)
	}
}

func TestRateLimitMiddleware_Returns429WithRetryAfter(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig(2, 10))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		requestAs(handler, "user-rate-limit")
	}

	w := requestAs(handler, "user-rate-limit")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	retrySeconds, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After should be a number, got %q", w.Header().Get("Retry-After"))
	}
	if retrySeconds < 1 {
		t.Errorf("Retry-After = %d, should be at least 1", retrySeconds)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeRateLimited {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeRateLimited)
	}
}

func TestRateLimitMiddleware_IsolatesUserRateLimits(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig(1, 10))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	if w := requestAs(handler, "user-A"); w.Code != http.StatusOK {
		t.Errorf("user-A first: status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := requestAs(handler, "user-A"); w.Code != http.StatusTooManyRequests {
		t.Errorf("user-A second: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	// ユーザーBはユーザーAの消費に影響されない
	if w := requestAs(handler, "user-B"); w.Code != http.StatusOK {
		t.Errorf("user-B first: status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", got)
	}
}

func TestRateLimitMiddleware_NoUserID_Returns401(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig(5, 10))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- AuthMiddleware (IP単位) のテスト ---

func TestAuthRateLimit_LimitsPerIP(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig(100, 2))
	defer rl.Stop()

	handler := rl.AuthMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		if w := requestFrom(handler, "203.0.113.7:5000"); w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
	// 同じIPはポートが変わっても同じ枠を消費する
	if w := requestFrom(handler, "203.0.113.7:6000"); w.Code != http.StatusTooManyRequests {
		t.Errorf("third request: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w := requestFrom(handler, "198.51.100.1:5000"); w.Code != http.StatusOK {
		t.Errorf("other IP: status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := rl.AuthLimiterCount(); got != 2 {
		t.Errorf("AuthLimiterCount() = %d, want 2", got)
	}
}

func TestAuthRateLimit_IndependentFromGeneralLimit(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig(1, 1))
	defer rl.Stop()

	general := rl.GeneralMiddleware()(okHandler())
	auth := rl.AuthMiddleware()(okHandler())

	requestAs(general, "user-1")
	if w := requestAs(general, "user-1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("general: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w := requestFrom(auth, "192.0.2.10:1234"); w.Code != http.StatusOK {
		t.Errorf("auth: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}

// --- クリーンアップと設定 ---

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig(5, 5))
	defer rl.Stop()

	requestAs(rl.GeneralMiddleware()(okHandler()), "user-old")
	requestFrom(rl.AuthMiddleware()(okHandler()), "192.0.2.1:1")

	// 最終アクセスから十分に時間が経過した時点でクリーンアップする
	rl.cleanup(time.Now().Add(3 * time.Minute))

	if got := rl.GeneralLimiterCount(); got != 0 {
		t.Errorf("GeneralLimiterCount() = %d, want 0", got)
	}
	if got := rl.AuthLimiterCount(); got != 0 {
		t.Errorf("AuthLimiterCount() = %d, want 0", got)
	}
}

func TestRateLimiter_CleanupKeepsRecentEntries(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig(5, 5))
	defer rl.Stop()

	requestAs(rl.GeneralMiddleware()(okHandler()), "user-recent")
	rl.cleanup(time.Now())

	if got := rl.GeneralLimiterCount(); got != 1 {
		t.Errorf("GeneralLimiterCount() = %d, want 1", got)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig(1, 1))
	rl.Stop()
	rl.Stop()
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()

	if cfg.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", cfg.GeneralBurst)
	}
	if float64(cfg.GeneralRate) != 2.0 {
		t.Errorf("GeneralRate = %v, want 2", cfg.GeneralRate)
	}
	if cfg.AuthBurst != 10 {
		t.Errorf("AuthBurst = %d, want 10", cfg.AuthBurst)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
}

func TestNewRateLimiterConfig_NonPositiveFallsBack(t *testing.T) {
	cfg := NewRateLimiterConfig(0, -1)
	if cfg.GeneralBurst != 120 || cfg.AuthBurst != 10 {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}

	cfg = NewRateLimiterConfig(30, 3)
	if cfg.GeneralBurst != 30 || float64(cfg.GeneralRate) != 0.5 {
		t.Errorf("general = %v/%d, want 0.5/30", cfg.GeneralRate, cfg.GeneralBurst)
	}
	if cfg.AuthBurst != 3 || float64(cfg.AuthRate) != 0.05 {
		t.Errorf("auth = %v/%d, want 0.05/3", cfg.AuthRate, cfg.AuthBurst)
	}
}
