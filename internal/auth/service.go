// Package auth はメールアドレスとパスワードによるユーザー登録とログインを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kakeibo/internal/metrics"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/password"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// TokenIssuer はセッショントークンを発行するインターフェース。
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// MetricsRecorder は認証結果を記録するインターフェース。
type MetricsRecorder interface {
	RecordSignUp(outcome string)
	RecordSignIn(outcome string)
}

// SignUpInput はユーザー登録の入力。
type SignUpInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Result は登録またはログインに成功した結果。
type Result struct {
	Token string
	User  *model.User
}

// dummyPassword はユーザーが存在しない場合の照合に使う平文。
const dummyPassword = "kakeibo-dummy-password"

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users   repository.UserRepository
	hasher  password.Hasher
	tokens  TokenIssuer
	metrics MetricsRecorder
	now     func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	users repository.UserRepository,
	hasher password.Hasher,
	tokens TokenIssuer,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		metrics: metrics,
		now:     time.Now,
	}
}

// NormalizeEmail はメールアドレスの前後の空白を除去し小文字にする。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp はユーザーを登録し、トークンを発行する。
// 確認用パスワードが一致しない場合はPASSWORD_MISMATCH、
// メールアドレスが登録済みの場合はEMAIL_TAKENを返す。
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Result, error) {
	if in.Password != in.ConfirmPassword {
		s.recordSignUp(metrics.OutcomeFailure)
		return nil, model.NewPasswordMismatchError()
	}
	if password.TooLong(in.Password) {
		s.recordSignUp(metrics.OutcomeFailure)
		return nil, model.NewValidationError(model.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("password は %d バイト以内で入力してください。", password.MaxBytes),
		})
	}

	email := NormalizeEmail(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.recordSignUp(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		s.recordSignUp(metrics.OutcomeFailure)
		return nil, model.NewEmailTakenError()
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.recordSignUp(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// 同時登録で一意制約に違反した場合も重複として扱う
		if errors.Is(err, repository.ErrDuplicate) {
			s.recordSignUp(metrics.OutcomeFailure)
			return nil, model.NewEmailTakenError()
		}
		s.recordSignUp(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.recordSignUp(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.recordSignUp(metrics.OutcomeSuccess)
	slog.Info("user signed up", slog.String("user_id", user.ID))

	return &Result{Token: token, User: user}, nil
}

// SignIn はメールアドレスとパスワードを照合し、トークンを発行する。
// ユーザーが存在しない場合とパスワードが一致しない場合は同じエラーを返す。
func (s *Service) SignIn(ctx context.Context, email, plaintext string) (*Result, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		s.recordSignIn(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user == nil {
		// 応答時間からメールアドレスの登録有無を推測されないよう照合だけは行う
		s.hasher.Verify(plaintext, s.dummy())
		s.recordSignIn(metrics.OutcomeFailure)
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		s.recordSignIn(metrics.OutcomeFailure)
		slog.Info("sign in failed", slog.String("user_id", user.ID))
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.recordSignIn(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.recordSignIn(metrics.OutcomeSuccess)
	return &Result{Token: token, User: user}, nil
}

// CurrentUser はユーザーIDからユーザーを取得する。
// トークン発行後にユーザーが存在しなくなった場合はUSER_NOT_FOUNDを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			slog.Error("failed to prepare dummy digest", slog.String("error", err.Error()))
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}

func (s *Service) recordSignUp(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSignUp(outcome)
	}
}

func (s *Service) recordSignIn(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSignIn(outcome)
	}
}
