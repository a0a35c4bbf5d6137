// Package profile は開発者プロフィールのドメインロジックを提供する。
// プロフィールはユーザーごとに最大1件で、職歴・学歴エントリを排他的に所有する。
// 変更操作は投稿と同じload-modify-persistサイクルとversionキーの
// compare-and-swapで永続化する。
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/devconnect/internal/github"
	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/repository"
	"github.com/hitoshi/devconnect/internal/security"
)

// maxUpdateRetries は楽観的同時実行制御のリトライ上限。
const maxUpdateRetries = 3

// PostRemover は退会処理で呼び出す投稿一括削除のインターフェース。
// post.Serviceの部分集合として定義する。
type PostRemover interface {
	DeleteByAuthor(ctx context.Context, authorID string) error
}

// UserRemover は退会処理で呼び出すユーザー削除のインターフェース。
type UserRemover interface {
	DeleteByID(ctx context.Context, id string) error
}

// RepoLister はGitHubリポジトリ取得のインターフェース。
// github.Clientの部分集合として定義する。
type RepoLister interface {
	ReposForUser(ctx context.Context, username string) ([]github.Repo, error)
}

// Input はプロフィール作成・更新の入力。
type Input struct {
	Company        string
	Website        string
	Location       string
	Status         string
	Skills         []string
	Bio            string
	GithubUsername string
}

// ExperienceInput は職歴エントリの入力。
type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

// EducationInput は学歴エントリの入力。
type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

// Service はプロフィール管理のサービス層。
type Service struct {
	profileRepo repository.ProfileRepository
	posts       PostRemover
	users       UserRemover
	repos       RepoLister
	sanitizer   security.TextSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	profileRepo repository.ProfileRepository,
	posts PostRemover,
	users UserRemover,
	repos RepoLister,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		profileRepo: profileRepo,
		posts:       posts,
		users:       users,
		repos:       repos,
		sanitizer:   sanitizer,
	}
}

// Get は指定ユーザーのプロフィールを返す。
// 見つからない場合はPROFILE_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError()
	}
	return profile, nil
}

// List は全プロフィールを返す。
func (s *Service) List(ctx context.Context) ([]*model.Profile, error) {
	profiles, err := s.profileRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// Upsert は呼び出し元のプロフィールを作成または更新する。
// statusとskillsは必須で、欠落している場合はINVALID_INPUTエラーを返す。
// 既存プロフィールの職歴・学歴エントリは保持される。
func (s *Service) Upsert(ctx context.Context, callerID string, input Input) (*model.Profile, error) {
	input.Status = strings.TrimSpace(input.Status)
	if input.Status == "" {
		return nil, model.NewInvalidInputError("ステータスは必須です")
	}

	skills := make([]string, 0, len(input.Skills))
	for _, skill := range input.Skills {
		skill = strings.TrimSpace(skill)
		if skill != "" {
			skills = append(skills, skill)
		}
	}
	if len(skills) == 0 {
		return nil, model.NewInvalidInputError("スキルは1つ以上必要です")
	}

	bio := s.sanitizer.Sanitize(input.Bio)

	existing, err := s.profileRepo.FindByUserID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if existing == nil {
		profile := &model.Profile{
			ID:             uuid.New().String(),
			UserID:         callerID,
			Company:        input.Company,
			Website:        input.Website,
			Location:       input.Location,
			Status:         input.Status,
			Skills:         skills,
			Bio:            bio,
			GithubUsername: input.GithubUsername,
			Experience:     []model.Experience{},
			Education:      []model.Education{},
			CreatedAt:      time.Now(),
		}
		if err := s.profileRepo.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		return profile, nil
	}

	var updated *model.Profile
	err = s.withRetry(ctx, callerID, func(profile *model.Profile) error {
		profile.Company = input.Company
		profile.Website = input.Website
		profile.Location = input.Location
		profile.Status = input.Status
		profile.Skills = skills
		profile.Bio = bio
		profile.GithubUsername = input.GithubUsername
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddExperience は職歴エントリを追加し、更新後のプロフィールを返す。
// 新しいエントリは一覧の先頭に追加される（新しい順）。
func (s *Service) AddExperience(ctx context.Context, callerID string, input ExperienceInput) (*model.Profile, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewInvalidInputError("役職は必須です")
	}
	if strings.TrimSpace(input.Company) == "" {
		return nil, model.NewInvalidInputError("会社名は必須です")
	}
	if input.From.IsZero() {
		return nil, model.NewInvalidInputError("開始日は必須です")
	}

	entry := model.Experience{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(input.Title),
		Company:     strings.TrimSpace(input.Company),
		Location:    input.Location,
		From:        input.From,
		To:          input.To,
		Current:     input.Current,
		Description: s.sanitizer.Sanitize(input.Description),
	}

	var updated *model.Profile
	err := s.withRetry(ctx, callerID, func(profile *model.Profile) error {
		profile.Experience = append([]model.Experience{entry}, profile.Experience...)
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveExperience は指定IDの職歴エントリを削除し、更新後のプロフィールを返す。
// エントリが存在しない場合はENTRY_NOT_FOUNDエラーを返す。
func (s *Service) RemoveExperience(ctx context.Context, callerID, entryID string) (*model.Profile, error) {
	var updated *model.Profile
	err := s.withRetry(ctx, callerID, func(profile *model.Profile) error {
		found := false
		remaining := make([]model.Experience, 0, len(profile.Experience))
		for _, e := range profile.Experience {
			if e.ID == entryID {
				found = true
				continue
			}
			remaining = append(remaining, e)
		}
		if !found {
			return model.NewEntryNotFoundError(entryID)
		}
		profile.Experience = remaining
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddEducation は学歴エントリを追加し、更新後のプロフィールを返す。
// 新しいエントリは一覧の先頭に追加される（新しい順）。
func (s *Service) AddEducation(ctx context.Context, callerID string, input EducationInput) (*model.Profile, error) {
	if strings.TrimSpace(input.School) == "" {
		return nil, model.NewInvalidInputError("学校名は必須です")
	}
	if strings.TrimSpace(input.Degree) == "" {
		return nil, model.NewInvalidInputError("学位は必須です")
	}
	if strings.TrimSpace(input.FieldOfStudy) == "" {
		return nil, model.NewInvalidInputError("専攻分野は必須です")
	}
	if input.From.IsZero() {
		return nil, model.NewInvalidInputError("開始日は必須です")
	}

	entry := model.Education{
		ID:           uuid.New().String(),
		School:       strings.TrimSpace(input.School),
		Degree:       strings.TrimSpace(input.Degree),
		FieldOfStudy: strings.TrimSpace(input.FieldOfStudy),
		From:         input.From,
		To:           input.To,
		Current:      input.Current,
		Description:  s.sanitizer.Sanitize(input.Description),
	}

	var updated *model.Profile
	err := s.withRetry(ctx, callerID, func(profile *model.Profile) error {
		profile.Education = append([]model.Education{entry}, profile.Education...)
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveEducation は指定IDの学歴エントリを削除し、更新後のプロフィールを返す。
// エントリが存在しない場合はENTRY_NOT_FOUNDエラーを返す。
func (s *Service) RemoveEducation(ctx context.Context, callerID, entryID string) (*model.Profile, error) {
	var updated *model.Profile
	err := s.withRetry(ctx, callerID, func(profile *model.Profile) error {
		found := false
		remaining := make([]model.Education, 0, len(profile.Education))
		for _, e := range profile.Education {
			if e.ID == entryID {
				found = true
				continue
			}
			remaining = append(remaining, e)
		}
		if !found {
			return model.NewEntryNotFoundError(entryID)
		}
		profile.Education = remaining
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は退会処理を実行する。
// プロフィール・本人の全投稿・ユーザー本体の順に削除する。
// プロフィール未作成でも投稿とユーザーは削除する。
func (s *Service) Delete(ctx context.Context, callerID string) error {
	if err := s.profileRepo.DeleteByUserID(ctx, callerID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if err := s.posts.DeleteByAuthor(ctx, callerID); err != nil {
		return fmt.Errorf("failed to delete posts: %w", err)
	}
	if err := s.users.DeleteByID(ctx, callerID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user account deleted",
		slog.String("user_id", callerID),
	)
	return nil
}

// GithubRepos は指定GitHubユーザーの公開リポジトリを取得する。
func (s *Service) GithubRepos(ctx context.Context, username string) ([]github.Repo, error) {
	return s.repos.ReposForUser(ctx, username)
}

// withRetry はプロフィールのload-modify-persistサイクルを実行する。
// 保存がバージョン競合で失敗した場合は再読み込みしてリトライし、
// 上限到達でCONCURRENT_UPDATEエラーを返す。
func (s *Service) withRetry(ctx context.Context, userID string, mutate func(profile *model.Profile) error) error {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		profile, err := s.profileRepo.FindByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to find profile: %w", err)
		}
		if profile == nil {
			return model.NewProfileNotFoundError()
		}

		if err := mutate(profile); err != nil {
			return err
		}

		err = s.profileRepo.Update(ctx, profile)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		slog.Warn("profile update conflicted, retrying",
			slog.String("user_id", userID),
			slog.Int("attempt", attempt+1),
		)
	}

	return model.NewConcurrentUpdateError()
}
