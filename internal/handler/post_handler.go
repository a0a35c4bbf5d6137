package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/devconnect/internal/model"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	// Create は新しい投稿を作成する。
	Create(ctx context.Context, callerID, text string) (*model.Post, error)
	// List は全投稿を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Post, error)
	// Get は指定IDの投稿を返す。
	Get(ctx context.Context, postID string) (*model.Post, error)
	// Delete は投稿を削除する。投稿者本人のみ削除できる。
	Delete(ctx context.Context, postID, callerID string) error
	// Like は投稿にいいねを付与し、更新後のいいね一覧を返す。
	Like(ctx context.Context, postID, callerID string) ([]model.Like, error)
	// Unlike は投稿のいいねを取り消し、更新後のいいね一覧を返す。
	Unlike(ctx context.Context, postID, callerID string) ([]model.Like, error)
	// AddComment は投稿にコメントを追加し、更新後のコメント一覧を返す。
	AddComment(ctx context.Context, postID, callerID, text string) ([]model.Comment, error)
	// RemoveComment は投稿からコメントを削除し、更新後のコメント一覧を返す。
	RemoveComment(ctx context.Context, postID, callerID, commentID string) ([]model.Comment, error)
}

// PostHandler は投稿管理のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{
		service: service,
	}
}

// postTextRequest は投稿・コメント作成リクエストのボディ。
type postTextRequest struct {
	Text string `json:"text"`
}

// Create は投稿作成を処理する。
// POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	var req postTextRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	post, err := h.service.Create(r.Context(), userID, req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// List は投稿一覧を返す。
// GET /api/posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if posts == nil {
		posts = []*model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get は投稿詳細を返す。
// GET /api/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// Delete は投稿削除を処理する。
// DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Like はいいね付与を処理し、更新後のいいね一覧を返す。
// PUT /api/posts/like/{id}
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	likes, err := h.service.Like(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likes)
}

// Unlike はいいね取り消しを処理し、更新後のいいね一覧を返す。
// PUT /api/posts/unlike/{id}
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	likes, err := h.service.Unlike(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likes)
}

// AddComment はコメント追加を処理し、更新後のコメント一覧を返す。
// POST /api/posts/comment/{id}
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	var req postTextRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	comments, err := h.service.AddComment(r.Context(), chi.URLParam(r, "id"), userID, req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comments)
}

// RemoveComment はコメント削除を処理し、更新後のコメント一覧を返す。
// DELETE /api/posts/comment/{id}/{comment_id}
func (h *PostHandler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	comments, err := h.service.RemoveComment(
		r.Context(),
		chi.URLParam(r, "id"),
		userID,
		chi.URLParam(r, "comment_id"),
	)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}
