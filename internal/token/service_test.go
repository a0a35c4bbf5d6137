package token

import (
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{Secret: []byte("test-secret-key")})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

// TestService_IssueVerify_RoundTrip は発行したトークンの検証が同一サブジェクトを返すことを検証する。
func TestService_IssueVerify_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	tok, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	subject, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if subject != "user-1" {
		t.Errorf("subject = %q, want %q", subject, "user-1")
	}
}

// TestService_Issue_EmptySubject は空サブジェクトでの発行がエラーになることを検証する。
func TestService_Issue_EmptySubject(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Issue(""); err == nil {
		t.Fatal("expected error for empty subject, got nil")
	}
}

// TestService_Verify_Expired は有効期限切れトークンの検証が失敗することを検証する。
func TestService_Verify_Expired(t *testing.T) {
	svc := newTestService(t)

	issuedAt := time.Now()
	issuer := svc.WithClock(func() time.Time { return issuedAt })
	tok, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	// 有効期間（100時間）を超えた時点で検証する
	verifier := svc.WithClock(func() time.Time { return issuedAt.Add(DefaultTTL + time.Minute) })
	if _, err := verifier.Verify(tok); err != ErrInvalidToken {
		t.Errorf("Verify error = %v, want ErrInvalidToken", err)
	}
}

// TestService_Verify_NotYetExpired は有効期間内のトークンが受理されることを検証する。
func TestService_Verify_NotYetExpired(t *testing.T) {
	svc := newTestService(t)

	issuedAt := time.Now()
	issuer := svc.WithClock(func() time.Time { return issuedAt })
	tok, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	verifier := svc.WithClock(func() time.Time { return issuedAt.Add(DefaultTTL - time.Minute) })
	subject, err := verifier.Verify(tok)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if subject != "user-1" {
		t.Errorf("subject = %q, want %q", subject, "user-1")
	}
}

// TestService_Verify_WrongKey は別の鍵で署名されたトークンが拒否されることを検証する。
func TestService_Verify_WrongKey(t *testing.T) {
	svc := newTestService(t)

	other, err := NewService(ServiceConfig{Secret: []byte("another-secret-key")})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	tok, err := other.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := svc.Verify(tok); err != ErrInvalidToken {
		t.Errorf("Verify error = %v, want ErrInvalidToken", err)
	}
}

// TestService_Verify_Malformed は不正な形式のトークンが拒否されることを検証する。
func TestService_Verify_Malformed(t *testing.T) {
	svc := newTestService(t)

	cases := []string{
		"",
		"not-a-jwt",
		"aaaa.bbbb",
		"aaaa.bbbb.cccc",
	}

	for _, c := range cases {
		if _, err := svc.Verify(c); err != ErrInvalidToken {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", c, err)
		}
	}
}

// TestService_Verify_TamperedPayload は改ざんされたペイロードが拒否されることを検証する。
func TestService_Verify_TamperedPayload(t *testing.T) {
	svc := newTestService(t)

	tok, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format: %q", tok)
	}
	tampered := parts[0] + ".eyJzdWIiOiJ1c2VyLTIifQ." + parts[2]

	if _, err := svc.Verify(tampered); err != ErrInvalidToken {
		t.Errorf("Verify error = %v, want ErrInvalidToken", err)
	}
}

// TestNewService_EmptySecret は署名鍵なしでの生成がエラーになることを検証する。
func TestNewService_EmptySecret(t *testing.T) {
	if _, err := NewService(ServiceConfig{}); err == nil {
		t.Fatal("expected error for empty secret, got nil")
	}
}
