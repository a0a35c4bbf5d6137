// Package token は署名付き・時限付きのアイデンティティトークンの発行と検証を提供する。
// トークンはサーバー側セッション状態を持たないステートレスな認証情報であり、
// 署名鍵はプロセス起動時に1回設定され、以降ローテーションされない。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL はトークンの有効期間のデフォルト値（100時間）。
const DefaultTTL = 100 * time.Hour

// ErrInvalidToken はトークン検証失敗を表す。
// 署名不正・ペイロード不正・期限切れのいずれでも同一のエラーを返し、
// 偽造の手がかりとなる失敗原因の区別を外部に漏らさない。
var ErrInvalidToken = errors.New("invalid token")

// ServiceConfig はトークンサービスの設定。
type ServiceConfig struct {
	Secret []byte        // HMAC-SHA256の署名鍵
	TTL    time.Duration // 有効期間。ゼロ値の場合はDefaultTTL
}

// Service はトークンの発行・検証を行う。
// 署名鍵とクロック以外の状態を持たず、並行呼び出しに対して安全。
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time // テスト用に差し替え可能
}

// NewService はServiceを生成する。署名鍵が空の場合はエラーを返す。
func NewService(cfg ServiceConfig) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("signing secret is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Service{
		secret: cfg.Secret,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue は指定サブジェクトのトークンを発行する。
// 発行時刻から固定の有効期間を持つHMAC-SHA256署名付きJWTを返す。
func (s *Service) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("subject ID is required")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンを検証し、サブジェクトIDを返す。
// 署名不一致・ペイロード不正・期限切れのいずれの場合もErrInvalidTokenを返す。
// HMACの署名照合はライブラリ内部で定数時間比較される。
func (s *Service) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			// alg none等の署名方式すり替えを拒否する
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// WithClock はクロックを差し替えた新しいServiceを返す。テスト用。
func (s *Service) WithClock(now func() time.Time) *Service {
	return &Service{
		secret: s.secret,
		ttl:    s.ttl,
		now:    now,
	}
}
