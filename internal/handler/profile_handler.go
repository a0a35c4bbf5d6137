package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/devconnect/internal/github"
	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/profile"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	// Get は指定ユーザーのプロフィールを返す。
	Get(ctx context.Context, userID string) (*model.Profile, error)
	// List は全プロフィールを返す。
	List(ctx context.Context) ([]*model.Profile, error)
	// Upsert は呼び出し元のプロフィールを作成または更新する。
	Upsert(ctx context.Context, callerID string, input profile.Input) (*model.Profile, error)
	// AddExperience は職歴エントリを追加する。
	AddExperience(ctx context.Context, callerID string, input profile.ExperienceInput) (*model.Profile, error)
	// RemoveExperience は指定IDの職歴エントリを削除する。
	RemoveExperience(ctx context.Context, callerID, entryID string) (*model.Profile, error)
	// AddEducation は学歴エントリを追加する。
	AddEducation(ctx context.Context, callerID string, input profile.EducationInput) (*model.Profile, error)
	// RemoveEducation は指定IDの学歴エントリを削除する。
	RemoveEducation(ctx context.Context, callerID, entryID string) (*model.Profile, error)
	// Delete は退会処理を実行する。
	Delete(ctx context.Context, callerID string) error
	// GithubRepos は指定GitHubユーザーの公開リポジトリを取得する。
	GithubRepos(ctx context.Context, username string) ([]github.Repo, error)
}

// ProfileHandler はプロフィール管理のHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{
		service: service,
	}
}

// profileRequest はプロフィール作成・更新リクエストのボディ。
type profileRequest struct {
	Company        string   `json:"company"`
	Website        string   `json:"website"`
	Location       string   `json:"location"`
	Status         string   `json:"status"`
	Skills         []string `json:"skills"`
	Bio            string   `json:"bio"`
	GithubUsername string   `json:"github_username"`
}

// experienceRequest は職歴追加リクエストのボディ。
type experienceRequest struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to"`
	Current     bool       `json:"current"`
	Description string     `json:"description"`
}

// educationRequest は学歴追加リクエストのボディ。
type educationRequest struct {
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"field_of_study"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to"`
	Current      bool       `json:"current"`
	Description  string     `json:"description"`
}

// Me は認証済みユーザー自身のプロフィールを返す。
// GET /api/profile/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	prof, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

// Upsert はプロフィールの作成・更新を処理する。
// POST /api/profile
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	var req profileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	prof, err := h.service.Upsert(r.Context(), userID, profile.Input{
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Status:         req.Status,
		Skills:         req.Skills,
		Bio:            req.Bio,
		GithubUsername: req.GithubUsername,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

// List は全プロフィール一覧を返す。
// GET /api/profile
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if profiles == nil {
		profiles = []*model.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// GetByUser は指定ユーザーのプロフィールを返す。
// GET /api/profile/user/{user_id}
func (h *ProfileHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	prof, err := h.service.Get(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

// Delete は退会処理を実行する。
// DELETE /api/profile
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddExperience は職歴追加を処理する。
// PUT /api/profile/experience
func (h *ProfileHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	var req experienceRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	prof, err := h.service.AddExperience(r.Context(), userID, profile.ExperienceInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

// RemoveExperience は職歴削除を処理する。
// DELETE /api/profile/experience/{exp_id}
func (h *ProfileHandler) RemoveExperience(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	prof, err := h.service.RemoveExperience(r.Context(), userID, chi.URLParam(r, "exp_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

// AddEducation は学歴追加を処理する。
// PUT /api/profile/education
func (h *ProfileHandler) AddEducation(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	var req educationRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	prof, err := h.service.AddEducation(r.Context(), userID, profile.EducationInput{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

// RemoveEducation は学歴削除を処理する。
// DELETE /api/profile/education/{edu_id}
func (h *ProfileHandler) RemoveEducation(w http.ResponseWriter, r *http.Request) {
	userID := callerID(w, r)
	if userID == "" {
		return
	}

	prof, err := h.service.RemoveEducation(r.Context(), userID, chi.URLParam(r, "edu_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

// GithubRepos は指定GitHubユーザーの公開リポジトリを返す。
// GET /api/profile/github/{username}
func (h *ProfileHandler) GithubRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.service.GithubRepos(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if repos == nil {
		repos = []github.Repo{}
	}
	writeJSON(w, http.StatusOK, repos)
}
