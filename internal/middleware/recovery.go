package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRecoveryMiddleware はハンドラーのpanicを回収し、スタックをログに残して
// INTERNAL_ERRORの500レスポンスを返すミドルウェアを生成する。
// ロギングミドルウェアの内側に置くと、応答の書き出し状況と認証済みユーザーIDを参照できる。
// すでにステータスを書き出していた場合はレスポンスに追記しない。
func NewRecoveryMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// net/httpが接続を中断するためのpanicはそのまま伝える
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				started := responseStarted(w)
				attrs := []slog.Attr{
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", chimiddleware.GetReqID(r.Context())),
					slog.Bool("response_started", started),
					slog.String("stack", string(debug.Stack())),
				}
				if st := stateFromContext(r.Context()); st != nil && st.userID != "" {
					attrs = append(attrs, slog.String("user_id", st.userID))
				}
				logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)

				if !started {
					WriteInternalServerError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// responseStarted はステータスコードがすでに書き出されたかを返す。
// statusRecorderでラップされていない場合は判定できないためfalseを返す。
func responseStarted(w http.ResponseWriter) bool {
	sr, ok := w.(*statusRecorder)
	return ok && sr.written
}
