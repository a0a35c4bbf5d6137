package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/devconnect/internal/middleware"
	"github.com/hitoshi/devconnect/internal/model"
)

// mockPostService はPostServiceInterfaceのモック実装。
type mockPostService struct {
	createFn        func(ctx context.Context, callerID, text string) (*model.Post, error)
	listFn          func(ctx context.Context) ([]*model.Post, error)
	getFn           func(ctx context.Context, postID string) (*model.Post, error)
	deleteFn        func(ctx context.Context, postID, callerID string) error
	likeFn          func(ctx context.Context, postID, callerID string) ([]model.Like, error)
	unlikeFn        func(ctx context.Context, postID, callerID string) ([]model.Like, error)
	addCommentFn    func(ctx context.Context, postID, callerID, text string) ([]model.Comment, error)
	removeCommentFn func(ctx context.Context, postID, callerID, commentID string) ([]model.Comment, error)
}

func (m *mockPostService) Create(ctx context.Context, callerID, text string) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, callerID, text)
	}
	return &model.Post{ID: "post-1", AuthorID: callerID, Text: text}, nil
}
func (m *mockPostService) List(ctx context.Context) ([]*model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockPostService) Get(ctx context.Context, postID string) (*model.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, postID)
	}
	return &model.Post{ID: postID}, nil
}
func (m *mockPostService) Delete(ctx context.Context, postID, callerID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, callerID)
	}
	return nil
}
func (m *mockPostService) Like(ctx context.Context, postID, callerID string) ([]model.Like, error) {
	if m.likeFn != nil {
		return m.likeFn(ctx, postID, callerID)
	}
	return []model.Like{{LikerID: callerID}}, nil
}
func (m *mockPostService) Unlike(ctx context.Context, postID, callerID string) ([]model.Like, error) {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, postID, callerID)
	}
	return []model.Like{}, nil
}
func (m *mockPostService) AddComment(ctx context.Context, postID, callerID, text string) ([]model.Comment, error) {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, postID, callerID, text)
	}
	return []model.Comment{{ID: "c1", AuthorID: callerID, Text: text}}, nil
}
func (m *mockPostService) RemoveComment(ctx context.Context, postID, callerID, commentID string) ([]model.Comment, error) {
	if m.removeCommentFn != nil {
		return m.removeCommentFn(ctx, postID, callerID, commentID)
	}
	return []model.Comment{}, nil
}

// newPostTestRouter はchiのURLパラメータ解決込みでPostHandlerをマウントしたルーターを返す。
func newPostTestRouter(svc PostServiceInterface) http.Handler {
	h := NewPostHandler(svc)
	r := chi.NewRouter()
	r.Post("/api/posts", h.Create)
	r.Get("/api/posts", h.List)
	r.Put("/api/posts/like/{id}", h.Like)
	r.Put("/api/posts/unlike/{id}", h.Unlike)
	r.Post("/api/posts/comment/{id}", h.AddComment)
	r.Delete("/api/posts/comment/{id}/{comment_id}", h.RemoveComment)
	r.Get("/api/posts/{id}", h.Get)
	r.Delete("/api/posts/{id}", h.Delete)
	return r
}

// doAs は認証済みユーザーとしてリクエストを実行する。
func doAs(t *testing.T, router http.Handler, userID, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestPostHandler_Like_Success はいいね成功で200と更新後一覧が返ることを検証する。
func TestPostHandler_Like_Success(t *testing.T) {
	router := newPostTestRouter(&mockPostService{})

	w := doAs(t, router, "u1", http.MethodPut, "/api/posts/like/post-1", nil)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var likes []model.Like
	if err := json.NewDecoder(w.Body).Decode(&likes); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(likes) != 1 || likes[0].LikerID != "u1" {
		t.Errorf("likes = %+v, want [{u1}]", likes)
	}
}

// TestPostHandler_Like_AlreadyLiked は重複いいねで409が返ることを検証する。
func TestPostHandler_Like_AlreadyLiked(t *testing.T) {
	router := newPostTestRouter(&mockPostService{
		likeFn: func(ctx context.Context, postID, callerID string) ([]model.Like, error) {
			return nil, model.NewAlreadyLikedError()
		},
	})

	w := doAs(t, router, "u1", http.MethodPut, "/api/posts/like/post-1", nil)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeAlreadyLiked {
		t.Errorf("error code = %q, want %q", resp.Code, model.ErrCodeAlreadyLiked)
	}
}

// TestPostHandler_Like_SelfLike は自分の投稿へのいいねで403が返ることを検証する。
func TestPostHandler_Like_SelfLike(t *testing.T) {
	router := newPostTestRouter(&mockPostService{
		likeFn: func(ctx context.Context, postID, callerID string) ([]model.Like, error) {
			return nil, model.NewSelfLikeError()
		},
	})

	w := doAs(t, router, "u1", http.MethodPut, "/api/posts/like/post-1", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// TestPostHandler_Unlike_NotLiked は未いいね状態の取り消しで409が返ることを検証する。
func TestPostHandler_Unlike_NotLiked(t *testing.T) {
	router := newPostTestRouter(&mockPostService{
		unlikeFn: func(ctx context.Context, postID, callerID string) ([]model.Like, error) {
			return nil, model.NewNotLikedError()
		},
	})

	w := doAs(t, router, "u1", http.MethodPut, "/api/posts/unlike/post-1", nil)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

// TestPostHandler_RemoveComment_PassesIDs はURLパラメータがサービスに
// 正しく渡されることを検証する。
func TestPostHandler_RemoveComment_PassesIDs(t *testing.T) {
	var gotPostID, gotCallerID, gotCommentID string
	router := newPostTestRouter(&mockPostService{
		removeCommentFn: func(ctx context.Context, postID, callerID, commentID string) ([]model.Comment, error) {
			gotPostID, gotCallerID, gotCommentID = postID, callerID, commentID
			return []model.Comment{}, nil
		},
	})

	w := doAs(t, router, "u1", http.MethodDelete, "/api/posts/comment/post-1/comment-9", nil)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotPostID != "post-1" || gotCallerID != "u1" || gotCommentID != "comment-9" {
		t.Errorf("got (%q, %q, %q), want (post-1, u1, comment-9)", gotPostID, gotCallerID, gotCommentID)
	}
}

// TestPostHandler_RemoveComment_NotOwner は作成者以外の削除で403が返ることを検証する。
func TestPostHandler_RemoveComment_NotOwner(t *testing.T) {
	router := newPostTestRouter(&mockPostService{
		removeCommentFn: func(ctx context.Context, postID, callerID, commentID string) ([]model.Comment, error) {
			return nil, model.NewNotOwnerError()
		},
	})

	w := doAs(t, router, "u2", http.MethodDelete, "/api/posts/comment/post-1/comment-9", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// TestPostHandler_RemoveComment_NotFound は存在しないコメントで404が返ることを検証する。
func TestPostHandler_RemoveComment_NotFound(t *testing.T) {
	router := newPostTestRouter(&mockPostService{
		removeCommentFn: func(ctx context.Context, postID, callerID, commentID string) ([]model.Comment, error) {
			return nil, model.NewCommentNotFoundError(commentID)
		},
	})

	w := doAs(t, router, "u1", http.MethodDelete, "/api/posts/comment/post-1/ghost", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// TestPostHandler_AddComment_EmptyText は空本文で400が返ることを検証する。
func TestPostHandler_AddComment_EmptyText(t *testing.T) {
	router := newPostTestRouter(&mockPostService{
		addCommentFn: func(ctx context.Context, postID, callerID, text string) ([]model.Comment, error) {
			return nil, model.NewEmptyTextError()
		},
	})

	w := doAs(t, router, "u1", http.MethodPost, "/api/posts/comment/post-1",
		strings.NewReader(`{"text":""}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestPostHandler_Like_ConcurrentUpdate はリトライ上限到達で409が返ることを検証する。
func TestPostHandler_Like_ConcurrentUpdate(t *testing.T) {
	router := newPostTestRouter(&mockPostService{
		likeFn: func(ctx context.Context, postID, callerID string) ([]model.Like, error) {
			return nil, model.NewConcurrentUpdateError()
		},
	})

	w := doAs(t, router, "u1", http.MethodPut, "/api/posts/like/post-1", nil)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

// TestPostHandler_List_EmptyAsArray は投稿ゼロ件で空配列が返ることを検証する。
func TestPostHandler_List_EmptyAsArray(t *testing.T) {
	router := newPostTestRouter(&mockPostService{})

	w := doAs(t, router, "u1", http.MethodGet, "/api/posts", nil)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want %q", got, "[]")
	}
}

// TestPostHandler_Create_Unauthenticated は未認証リクエストで401が返ることを検証する。
func TestPostHandler_Create_Unauthenticated(t *testing.T) {
	router := newPostTestRouter(&mockPostService{})

	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(`{"text":"hi"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
