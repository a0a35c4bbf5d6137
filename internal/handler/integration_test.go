package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/devconnect/internal/auth"
	"github.com/hitoshi/devconnect/internal/metrics"
	"github.com/hitoshi/devconnect/internal/middleware"
	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/post"
	"github.com/hitoshi/devconnect/internal/repository"
	"github.com/hitoshi/devconnect/internal/security"
	"github.com/hitoshi/devconnect/internal/token"
)

// --- インメモリリポジトリ ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type memPostRepo struct {
	mu    sync.Mutex
	posts map[string]*model.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[string]*model.Post)}
}

func clonePost(p *model.Post) *model.Post {
	cp := *p
	cp.Likes = append([]model.Like(nil), p.Likes...)
	cp.Comments = append([]model.Comment(nil), p.Comments...)
	return &cp
}

func (r *memPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		return clonePost(p), nil
	}
	return nil, nil
}

func (r *memPostRepo) ListAll(ctx context.Context) ([]*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Post
	for _, p := range r.posts {
		out = append(out, clonePost(p))
	}
	return out, nil
}

func (r *memPostRepo) Create(ctx context.Context, p *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = clonePost(p)
	return nil
}

func (r *memPostRepo) Update(ctx context.Context, p *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.posts[p.ID]
	if !ok || current.Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	r.posts[p.ID] = clonePost(p)
	return nil
}

func (r *memPostRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) DeleteByAuthorID(ctx context.Context, authorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.posts {
		if p.AuthorID == authorID {
			delete(r.posts, id)
		}
	}
	return nil
}

// --- テスト環境構築 ---

// newTestServer はインメモリリポジトリと実サービスで構成した
// フルスタックのテストサーバーを返す。
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	userRepo := newMemUserRepo()
	postRepo := newMemPostRepo()

	tokenSvc, err := token.NewService(token.ServiceConfig{
		Secret: []byte("integration-test-secret"),
		TTL:    100 * time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	sanitizer := security.NewTextSanitizer()
	collector := metrics.NewCollector(prometheus.NewRegistry())

	authSvc := auth.NewService(userRepo, auth.NewBcryptHasher(4), tokenSvc)
	postSvc := post.NewService(postRepo, userRepo, sanitizer, collector)

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		TokenVerifier:     tokenSvc,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		MetricsRecorder:   collector,
		AuthService:       authSvc,
		PostService:       postSvc,
		ProfileService:    &mockProfileService{},
	})
}

// registerUser はユーザーを登録してトークンを返す。
func registerUser(t *testing.T, server http.Handler, name, email string) string {
	t.Helper()

	body := `{"name":"` + name + `","email":"` + email + `","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %s", email, w.Code, w.Body.String())
	}

	var resp tokenResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode token response: %v", err)
	}
	return resp.Token
}

// doWithToken はx-auth-tokenヘッダー付きでリクエストを実行する。
func doWithToken(t *testing.T, server http.Handler, tok, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if tok != "" {
		req.Header.Set("x-auth-token", tok)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// --- テスト ---

// TestIntegration_LikeAndCommentScenario は2ユーザーによる
// 登録→投稿→いいね→コメントの一連のシナリオをHTTP層から検証する。
func TestIntegration_LikeAndCommentScenario(t *testing.T) {
	server := newTestServer(t)

	u1Token := registerUser(t, server, "User One", "u1@example.com")
	u2Token := registerUser(t, server, "User Two", "u2@example.com")

	// u2が投稿を作成
	w := doWithToken(t, server, u2Token, http.MethodPost, "/api/posts",
		strings.NewReader(`{"text":"hello devconnect"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: status = %d, body = %s", w.Code, w.Body.String())
	}
	var created model.Post
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode post: %v", err)
	}

	// u1がいいね → 200、一覧1件
	w = doWithToken(t, server, u1Token, http.MethodPut, "/api/posts/like/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("like: status = %d, body = %s", w.Code, w.Body.String())
	}
	var likes []model.Like
	json.NewDecoder(w.Body).Decode(&likes)
	if len(likes) != 1 {
		t.Fatalf("like count = %d, want 1", len(likes))
	}

	// u1が再度いいね → 409
	w = doWithToken(t, server, u1Token, http.MethodPut, "/api/posts/like/"+created.ID, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("second like: status = %d, want %d", w.Code, http.StatusConflict)
	}

	// u2が自分の投稿にいいね → 403
	w = doWithToken(t, server, u2Token, http.MethodPut, "/api/posts/like/"+created.ID, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("self like: status = %d, want %d", w.Code, http.StatusForbidden)
	}

	// u1がいいね取り消し → 200、一覧空
	w = doWithToken(t, server, u1Token, http.MethodPut, "/api/posts/unlike/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unlike: status = %d", w.Code)
	}
	likes = nil
	json.NewDecoder(w.Body).Decode(&likes)
	if len(likes) != 0 {
		t.Errorf("like count after unlike = %d, want 0", len(likes))
	}

	// u1がコメントを2件追加
	w = doWithToken(t, server, u1Token, http.MethodPost, "/api/posts/comment/"+created.ID,
		strings.NewReader(`{"text":"first comment"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("add comment: status = %d, body = %s", w.Code, w.Body.String())
	}
	var comments []model.Comment
	json.NewDecoder(w.Body).Decode(&comments)
	c1ID := comments[0].ID

	w = doWithToken(t, server, u1Token, http.MethodPost, "/api/posts/comment/"+created.ID,
		strings.NewReader(`{"text":"second comment"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("add second comment: status = %d", w.Code)
	}

	// u2が他人のコメントを削除 → 403
	w = doWithToken(t, server, u2Token, http.MethodDelete,
		"/api/posts/comment/"+created.ID+"/"+c1ID, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("remove by non-author: status = %d, want %d", w.Code, http.StatusForbidden)
	}

	// u1が自分のコメントを削除 → 200、残りは1件でsecond comment
	w = doWithToken(t, server, u1Token, http.MethodDelete,
		"/api/posts/comment/"+created.ID+"/"+c1ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove comment: status = %d, body = %s", w.Code, w.Body.String())
	}
	comments = nil
	json.NewDecoder(w.Body).Decode(&comments)
	if len(comments) != 1 || comments[0].Text != "second comment" {
		t.Errorf("comments = %+v, want only second comment", comments)
	}
}

// TestIntegration_AuthRequired はトークンなし・不正トークンのリクエストが
// いずれも同一の401になることを検証する。
func TestIntegration_AuthRequired(t *testing.T) {
	server := newTestServer(t)

	for _, tok := range []string{"", "not-a-valid-token"} {
		w := doWithToken(t, server, tok, http.MethodGet, "/api/posts", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("token %q: status = %d, want %d", tok, w.Code, http.StatusUnauthorized)
		}
		var resp apiErrorResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Code != model.ErrCodeUnauthorized {
			t.Errorf("token %q: error code = %q, want %q", tok, resp.Code, model.ErrCodeUnauthorized)
		}
	}
}

// TestIntegration_RegisterLoginRoundTrip は登録したユーザーで
// ログインと自身の情報取得ができることを検証する。
func TestIntegration_RegisterLoginRoundTrip(t *testing.T) {
	server := newTestServer(t)

	registerUser(t, server, "Dev User", "dev@example.com")

	// ログイン
	w := doWithToken(t, server, "", http.MethodPost, "/api/auth",
		strings.NewReader(`{"email":"dev@example.com","password":"secret123"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp tokenResponse
	json.NewDecoder(w.Body).Decode(&resp)

	// トークンで自身の情報取得
	w = doWithToken(t, server, resp.Token, http.MethodGet, "/api/auth", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status = %d, body = %s", w.Code, w.Body.String())
	}
	var user model.User
	json.NewDecoder(w.Body).Decode(&user)
	if user.Email != "dev@example.com" {
		t.Errorf("email = %q, want %q", user.Email, "dev@example.com")
	}

	// 誤ったパスワードでは401
	w = doWithToken(t, server, "", http.MethodPost, "/api/auth",
		strings.NewReader(`{"email":"dev@example.com","password":"wrong-password"}`))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// 重複登録では409
	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"name":"Dup","email":"dev@example.com","password":"secret123"}`))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register: status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

// TestIntegration_Healthz はヘルスチェックが200を返すことを検証する。
func TestIntegration_Healthz(t *testing.T) {
	server := newTestServer(t)

	w := doWithToken(t, server, "", http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
