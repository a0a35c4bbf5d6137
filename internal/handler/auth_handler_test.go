package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/devconnect/internal/middleware"
	"github.com/hitoshi/devconnect/internal/model"
)

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn    func(ctx context.Context, name, email, password string) (string, error)
	loginFn       func(ctx context.Context, email, password string) (string, error)
	currentUserFn func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password)
	}
	return "test-token", nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return "test-token", nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return nil, model.NewUserNotFoundError()
}

// TestAuthHandler_Register_Success は登録成功で201とトークンが返ることを検証する。
func TestAuthHandler_Register_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"name":"Dev","email":"dev@example.com","password":"secret123"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp tokenResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "test-token" {
		t.Errorf("token = %q, want %q", resp.Token, "test-token")
	}
}

// TestAuthHandler_Register_DuplicateEmail はメール重複で409が返ることを検証する。
func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (string, error) {
			return "", model.NewUserExistsError()
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"name":"Dev","email":"dev@example.com","password":"secret123"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

// TestAuthHandler_Register_InvalidJSON は不正なJSONで400が返ることを検証する。
func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader("{invalid"))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestAuthHandler_Login_InvalidCredentials は認証失敗で401が返ることを検証する。
func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			return "", model.NewInvalidCredentialsError()
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth",
		strings.NewReader(`{"email":"dev@example.com","password":"wrong"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestAuthHandler_Me_Success は認証済みコンテキストでユーザー情報が返ることを検証する。
func TestAuthHandler_Me_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		currentUserFn: func(ctx context.Context, userID string) (*model.User, error) {
			return &model.User{ID: userID, Name: "Dev", Email: "dev@example.com"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "u1"))
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var user model.User
	if err := json.NewDecoder(w.Body).Decode(&user); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user ID = %q, want %q", user.ID, "u1")
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("response must not contain password fields")
	}
}

// TestAuthHandler_Me_Unauthenticated はコンテキストにユーザーIDがない場合に
// 401が返ることを検証する。
func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
