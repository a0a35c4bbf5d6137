// Package post は投稿といいね・コメントのドメインロジックを提供する。
//
// いいね・コメントの変更操作はすべて load-modify-persist の1サイクルで行い、
// 認可チェックと冪等性チェックはコレクション変更の前に、永続化は
// メモリ上の変更が完了した後に実行する。チェックに失敗した場合、
// 部分的に変更された投稿がリポジトリから観測されることはない。
//
// リポジトリの保存はversionキーの条件付き更新（compare-and-swap）であり、
// 並行する変更と競合した場合は再読み込みして限られた回数だけリトライする。
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/repository"
	"github.com/hitoshi/devconnect/internal/security"
)

// maxUpdateRetries は楽観的同時実行制御のリトライ上限。
// 上限に達した場合はCONCURRENT_UPDATEエラーを返す。
const maxUpdateRetries = 3

// UserFinder は投稿・コメントの表示用ユーザー情報取得インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// InteractionRecorder はいいね・コメント操作のメトリクス記録インターフェース。
type InteractionRecorder interface {
	RecordLikeApplied()
	RecordLikeRemoved()
	RecordCommentAdded()
	RecordCommentRemoved()
	RecordVersionConflict()
}

// Service は投稿管理のサービス層。
type Service struct {
	postRepo  repository.PostRepository
	userRepo  UserFinder
	sanitizer security.TextSanitizerService
	recorder  InteractionRecorder
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(
	postRepo repository.PostRepository,
	userRepo UserFinder,
	sanitizer security.TextSanitizerService,
	recorder InteractionRecorder,
) *Service {
	return &Service{
		postRepo:  postRepo,
		userRepo:  userRepo,
		sanitizer: sanitizer,
		recorder:  recorder,
	}
}

// Create は新しい投稿を作成する。
// 本文はサニタイズされ、トリム後に空の場合はEMPTY_TEXTエラーを返す。
// 投稿者の表示名・アバターはユーザー情報から複製して保持する。
func (s *Service) Create(ctx context.Context, callerID, text string) (*model.Post, error) {
	text = s.sanitizer.Sanitize(text)
	if text == "" {
		return nil, model.NewEmptyTextError()
	}

	user, err := s.userRepo.FindByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	post := &model.Post{
		ID:        uuid.New().String(),
		AuthorID:  callerID,
		Text:      text,
		Name:      user.Name,
		Avatar:    user.Avatar,
		Likes:     []model.Like{},
		Comments:  []model.Comment{},
		CreatedAt: time.Now(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// List は全投稿を作成日時の降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Get は指定IDの投稿を返す。見つからない場合はPOST_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	return post, nil
}

// Delete は投稿を削除する。投稿者本人のみ削除できる。
func (s *Service) Delete(ctx context.Context, postID, callerID string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return model.NewPostNotFoundError(postID)
	}
	if post.AuthorID != callerID {
		return model.NewNotOwnerError()
	}

	if err := s.postRepo.DeleteByID(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

// Like は投稿にいいねを付与し、更新後のいいね一覧を返す。
// 既にいいね済みの場合はALREADY_LIKED、自分の投稿の場合はSELF_LIKEエラーを返す。
// 新しいいいねは一覧の先頭に追加される（新しい順）。
func (s *Service) Like(ctx context.Context, postID, callerID string) ([]model.Like, error) {
	var likes []model.Like
	err := s.withRetry(ctx, postID, func(post *model.Post) error {
		if post.HasLikeBy(callerID) {
			return model.NewAlreadyLikedError()
		}
		if post.AuthorID == callerID {
			return model.NewSelfLikeError()
		}

		post.Likes = append([]model.Like{{LikerID: callerID}}, post.Likes...)
		likes = post.Likes
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordLikeApplied()
	}
	return likes, nil
}

// Unlike は投稿のいいねを取り消し、更新後のいいね一覧を返す。
// いいねしていない場合はNOT_LIKEDエラーを返す。
// 「1ユーザーにつき最大1件」の不変条件により、liker_idでの検索・削除は一意。
func (s *Service) Unlike(ctx context.Context, postID, callerID string) ([]model.Like, error) {
	var likes []model.Like
	err := s.withRetry(ctx, postID, func(post *model.Post) error {
		if !post.HasLikeBy(callerID) {
			return model.NewNotLikedError()
		}

		remaining := make([]model.Like, 0, len(post.Likes)-1)
		for _, l := range post.Likes {
			if l.LikerID != callerID {
				remaining = append(remaining, l)
			}
		}
		post.Likes = remaining
		likes = post.Likes
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordLikeRemoved()
	}
	return likes, nil
}

// AddComment は投稿にコメントを追加し、更新後のコメント一覧を返す。
// 本文はサニタイズされ、トリム後に空の場合はEMPTY_TEXTエラーを返す。
// 新しいコメントは一覧の先頭に追加される（新しい順）。
func (s *Service) AddComment(ctx context.Context, postID, callerID, text string) ([]model.Comment, error) {
	text = s.sanitizer.Sanitize(text)
	if text == "" {
		return nil, model.NewEmptyTextError()
	}

	user, err := s.userRepo.FindByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	comment := model.Comment{
		ID:        uuid.New().String(),
		AuthorID:  callerID,
		Text:      text,
		Name:      user.Name,
		Avatar:    user.Avatar,
		CreatedAt: time.Now(),
	}

	var comments []model.Comment
	err = s.withRetry(ctx, postID, func(post *model.Post) error {
		post.Comments = append([]model.Comment{comment}, post.Comments...)
		comments = post.Comments
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordCommentAdded()
	}
	return comments, nil
}

// RemoveComment は投稿からコメントを削除し、更新後のコメント一覧を返す。
// 指定IDのコメントが存在しない場合はCOMMENT_NOT_FOUND、
// コメントの作成者が呼び出し元でない場合はNOT_OWNERエラーを返す。
// 削除対象は存在チェックと同じcomment_idで特定する。作成者IDで一覧を
// 走査すると同一ユーザーの別コメントを誤って削除しうるため、行わない。
func (s *Service) RemoveComment(ctx context.Context, postID, callerID, commentID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.withRetry(ctx, postID, func(post *model.Post) error {
		comment := post.FindComment(commentID)
		if comment == nil {
			return model.NewCommentNotFoundError(commentID)
		}
		if comment.AuthorID != callerID {
			return model.NewNotOwnerError()
		}

		remaining := make([]model.Comment, 0, len(post.Comments)-1)
		for _, c := range post.Comments {
			if c.ID != commentID {
				remaining = append(remaining, c)
			}
		}
		post.Comments = remaining
		comments = post.Comments
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordCommentRemoved()
	}
	return comments, nil
}

// DeleteByAuthor は指定ユーザーの全投稿を削除する。退会処理用。
func (s *Service) DeleteByAuthor(ctx context.Context, authorID string) error {
	if err := s.postRepo.DeleteByAuthorID(ctx, authorID); err != nil {
		return fmt.Errorf("failed to delete posts by author: %w", err)
	}
	return nil
}

// withRetry は投稿のload-modify-persistサイクルを実行する。
// mutateはドメインチェックとメモリ上の変更のみを行い、エラーを返した場合は
// 永続化せずそのまま呼び出し元に返す。保存がバージョン競合で失敗した場合は
// 投稿を再読み込みしてリトライし、上限到達でCONCURRENT_UPDATEエラーを返す。
func (s *Service) withRetry(ctx context.Context, postID string, mutate func(post *model.Post) error) error {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		post, err := s.postRepo.FindByID(ctx, postID)
		if err != nil {
			return fmt.Errorf("failed to find post: %w", err)
		}
		if post == nil {
			return model.NewPostNotFoundError(postID)
		}

		if err := mutate(post); err != nil {
			return err
		}

		err = s.postRepo.Update(ctx, post)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return fmt.Errorf("failed to update post: %w", err)
		}

		if s.recorder != nil {
			s.recorder.RecordVersionConflict()
		}
		slog.Warn("post update conflicted, retrying",
			slog.String("post_id", postID),
			slog.Int("attempt", attempt+1),
		)
	}

	return model.NewConcurrentUpdateError()
}
