// Package auth はユーザー登録・ログイン・トークン発行を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/devconnect/internal/avatar"
	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/repository"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

// TokenIssuer はトークン発行のインターフェース。
// token.Serviceの部分集合として定義する。
type TokenIssuer interface {
	Issue(subjectID string) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register は新規ユーザーを登録し、トークンを発行する。
// メールアドレスが登録済みの場合はUSER_EXISTSエラーを返す。
// アバターURLはメールアドレスからGravatarで導出する。
func (s *Service) Register(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return "", model.NewInvalidInputError("名前は必須です")
	}
	if email == "" || !strings.Contains(email, "@") {
		return "", model.NewInvalidInputError("メールアドレスの形式が正しくありません")
	}
	if len(password) < minPasswordLength {
		return "", model.NewInvalidInputError(fmt.Sprintf("パスワードは%d文字以上で入力してください", minPasswordLength))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Avatar:       avatar.URL(email),
		CreatedAt:    time.Now(),
	}

	// 一意インデックスが重複登録の最終的な番人となる。
	// 事前のFindByEmailチェックでは並行登録の隙間を塞げない。
	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicateEmail {
			return "", model.NewUserExistsError()
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
	)

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return tok, nil
}

// Login は認証情報を検証し、トークンを発行する。
// メールアドレス不明とパスワード不一致は同一のエラーを返し、
// 登録済みメールアドレスの探索に悪用されないようにする。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		return "", model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return tok, nil
}

// CurrentUser は認証済みユーザーIDからユーザー情報を取得する。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
