// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/devconnect/internal/model"
)

// ErrVersionConflict は条件付き更新（compare-and-swap）の失敗を表す。
// 読み込み時のバージョンと保存時のバージョンが一致しなかった場合に返される。
// 呼び出し元は再読み込みしてリトライするか、Conflictとして呼び出し側に返す。
var ErrVersionConflict = errors.New("version conflict")

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが既に存在する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// PostRepository は投稿データの永続化インターフェース。
// 投稿は単一ドキュメントとして保存され、保存はドキュメント単位でアトミック。
type PostRepository interface {
	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// ListAll は全投稿を作成日時の降順で返す。
	ListAll(ctx context.Context) ([]*model.Post, error)

	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.Post) error

	// Update は投稿を条件付きで更新する。
	// post.Versionを読み込み時のバージョンとして照合し、一致した場合のみ
	// バージョンをインクリメントして全体を置き換える。
	// 照合に失敗した場合（並行更新に負けた場合）はErrVersionConflictを返す。
	Update(ctx context.Context, post *model.Post) error

	// DeleteByID は指定IDの投稿を削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByAuthorID は指定ユーザーの全投稿を削除する。退会処理用。
	DeleteByAuthorID(ctx context.Context, authorID string) error
}

// ProfileRepository はプロフィールデータの永続化インターフェース。
type ProfileRepository interface {
	// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Profile, error)

	// ListAll は全プロフィールを返す。
	ListAll(ctx context.Context) ([]*model.Profile, error)

	// Create はプロフィールを作成する。
	Create(ctx context.Context, profile *model.Profile) error

	// Update はプロフィールを条件付きで更新する。
	// PostRepository.Updateと同じcompare-and-swapセマンティクスを持つ。
	Update(ctx context.Context, profile *model.Profile) error

	// DeleteByUserID は指定ユーザーのプロフィールを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
