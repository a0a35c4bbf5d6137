// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, post, profile, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUserExists         = "USER_EXISTS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodePostNotFound       = "POST_NOT_FOUND"
	ErrCodeCommentNotFound    = "COMMENT_NOT_FOUND"
	ErrCodeProfileNotFound    = "PROFILE_NOT_FOUND"
	ErrCodeEntryNotFound      = "ENTRY_NOT_FOUND"
	ErrCodeAlreadyLiked       = "ALREADY_LIKED"
	ErrCodeNotLiked           = "NOT_LIKED"
	ErrCodeSelfLike           = "SELF_LIKE"
	ErrCodeNotOwner           = "NOT_OWNER"
	ErrCodeEmptyText          = "EMPTY_TEXT"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeConcurrentUpdate   = "CONCURRENT_UPDATE"
	ErrCodeGithubUserNotFound = "GITHUB_USER_NOT_FOUND"
)

// NewUnauthorizedError は認証エラーを生成する。
// トークン欠落・署名不正・期限切れのいずれでも同一のエラーを返し、
// 失敗原因を外部に漏らさない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレス不明とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUserExistsError はメールアドレス重複エラーを生成する。
func NewUserExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserExists,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewPostNotFoundError は投稿未検出エラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %s", postID),
		Category: "post",
		Action:   "投稿IDを確認してください。",
	}
}

// NewCommentNotFoundError はコメント未検出エラーを生成する。
func NewCommentNotFoundError(commentID string) *APIError {
	return &APIError{
		Code:     ErrCodeCommentNotFound,
		Message:  fmt.Sprintf("指定されたコメントが見つかりません: %s", commentID),
		Category: "post",
		Action:   "コメントIDを確認してください。",
	}
}

// NewProfileNotFoundError はプロフィール未検出エラーを生成する。
func NewProfileNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  "プロフィールが見つかりません。",
		Category: "profile",
		Action:   "プロフィールを作成してください。",
	}
}

// NewEntryNotFoundError は職歴・学歴エントリ未検出エラーを生成する。
func NewEntryNotFoundError(entryID string) *APIError {
	return &APIError{
		Code:     ErrCodeEntryNotFound,
		Message:  fmt.Sprintf("指定されたエントリが見つかりません: %s", entryID),
		Category: "profile",
		Action:   "エントリIDを確認してください。",
	}
}

// NewAlreadyLikedError はいいね重複エラーを生成する。
// 冪等性違反（2回目のいいね）はConflictとして報告する。
func NewAlreadyLikedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyLiked,
		Message:  "この投稿には既にいいねしています。",
		Category: "post",
		Action:   "いいねを取り消す場合はunlikeを使用してください。",
	}
}

// NewNotLikedError はいいね未登録での取り消しエラーを生成する。
func NewNotLikedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotLiked,
		Message:  "この投稿にはまだいいねしていません。",
		Category: "post",
		Action:   "いいね済みの投稿に対してのみ取り消しできます。",
	}
}

// NewSelfLikeError は自分の投稿へのいいねエラーを生成する。
func NewSelfLikeError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfLike,
		Message:  "自分の投稿にはいいねできません。",
		Category: "post",
		Action:   "他のユーザーの投稿にいいねしてください。",
	}
}

// NewNotOwnerError は所有者以外による操作エラーを生成する。
func NewNotOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotOwner,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "自分が作成したリソースに対してのみ操作できます。",
	}
}

// NewEmptyTextError は本文必須エラーを生成する。
func NewEmptyTextError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyText,
		Message:  "本文が空です。",
		Category: "validation",
		Action:   "本文を入力してください。",
	}
}

// NewInvalidInputError は入力検証エラーを生成する。
func NewInvalidInputError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("入力内容が正しくありません: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewConcurrentUpdateError は楽観的リトライ上限到達エラーを生成する。
func NewConcurrentUpdateError() *APIError {
	return &APIError{
		Code:     ErrCodeConcurrentUpdate,
		Message:  "他の操作と競合したため更新できませんでした。",
		Category: "post",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewGithubUserNotFoundError はGitHubユーザー未検出エラーを生成する。
func NewGithubUserNotFoundError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeGithubUserNotFound,
		Message:  fmt.Sprintf("GitHubユーザーが見つかりません: %s", username),
		Category: "profile",
		Action:   "GitHubユーザー名を確認してください。",
	}
}
