// Package github はGitHub APIからユーザーの公開リポジトリを取得する。
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hitoshi/devconnect/internal/model"
)

const (
	// defaultEndpoint はGitHub REST APIのベースURL。
	defaultEndpoint = "https://api.github.com"
	// reposPerPage は取得するリポジトリの件数。作成日時の新しい順に取得する。
	reposPerPage = 5
	// maxResponseSize はレスポンスボディの読み取り上限（バイト）。
	maxResponseSize = 1 << 20
)

// Repo はGitHubの公開リポジトリを表す。
type Repo struct {
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Stargazers  int    `json:"stargazers_count"`
	Watchers    int    `json:"watchers_count"`
	Forks       int    `json:"forks_count"`
}

// SafeClientProvider はSSRF防止機能付きHTTPクライアントの生成インターフェース。
// security.SSRFGuardServiceの部分集合として定義する。
type SafeClientProvider interface {
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// Client はGitHub APIのクライアント。
// 外部への通信はすべてSSRF防止機能付きのHTTPクライアントを経由する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(guard SafeClientProvider, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: guard.NewSafeClient(timeout, maxResponseSize),
		logger:     logger,
		endpoint:   defaultEndpoint,
	}
}

// ReposForUser は指定ユーザーの公開リポジトリを作成日時の新しい順に最大5件取得する。
// ユーザーが存在しない場合はGITHUB_USER_NOT_FOUNDエラーを返す。
func (c *Client) ReposForUser(ctx context.Context, username string) ([]Repo, error) {
	if username == "" {
		return nil, model.NewGithubUserNotFoundError(username)
	}

	reqURL := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=created&direction=desc",
		c.endpoint, url.PathEscape(username), reposPerPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "DevConnect/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("GitHub APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("username", username),
		)
		return nil, fmt.Errorf("GitHub APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, model.NewGithubUserNotFoundError(username)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("GitHub APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("username", username),
		)
		return nil, fmt.Errorf("GitHub APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var repos []Repo
	if err := json.Unmarshal(body, &repos); err != nil {
		c.logger.Error("GitHub APIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return repos, nil
}
