package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/devconnect/internal/middleware"
)

// HealthChecker は依存サービスの死活確認のインターフェース。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	MetricsRecorder   middleware.HTTPRecorder

	// サービス
	AuthService    AuthServiceInterface
	PostService    PostServiceInterface
	ProfileService ProfileServiceInterface

	// 運用エンドポイント
	MetricsHandler http.Handler
	HealthChecker  HealthChecker
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Metrics → Logging → Recovery
//
// 認証が必要なルートにはさらに Auth → RateLimit(General) が適用され、
// 書き込み系ルートには書き込み専用レート制限が追加される。
// 登録・ログイン・/metrics・/healthzは認証グループの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService)
	postHandler := NewPostHandler(deps.PostService)
	profileHandler := NewProfileHandler(deps.ProfileService)

	// --- 認証不要のルート ---

	r.Post("/api/users", authHandler.Register)
	r.Post("/api/auth", authHandler.Login)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.Ping(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/auth", authHandler.Me)

		// 投稿管理
		r.Route("/api/posts", func(r chi.Router) {
			// 投稿・コメント作成には書き込み専用レート制限を追加
			r.With(deps.RateLimiter.WriteMiddleware()).Post("/", postHandler.Create)
			r.Get("/", postHandler.List)

			r.Put("/like/{id}", postHandler.Like)
			r.Put("/unlike/{id}", postHandler.Unlike)

			r.With(deps.RateLimiter.WriteMiddleware()).Post("/comment/{id}", postHandler.AddComment)
			r.Delete("/comment/{id}/{comment_id}", postHandler.RemoveComment)

			r.Get("/{id}", postHandler.Get)
			r.Delete("/{id}", postHandler.Delete)
		})

		// プロフィール管理
		r.Route("/api/profile", func(r chi.Router) {
			r.Get("/", profileHandler.List)
			r.Post("/", profileHandler.Upsert)
			r.Delete("/", profileHandler.Delete)

			r.Get("/me", profileHandler.Me)
			r.Get("/user/{user_id}", profileHandler.GetByUser)

			r.Put("/experience", profileHandler.AddExperience)
			r.Delete("/experience/{exp_id}", profileHandler.RemoveExperience)

			r.Put("/education", profileHandler.AddEducation)
			r.Delete("/education/{edu_id}", profileHandler.RemoveEducation)

			r.Get("/github/{username}", profileHandler.GithubRepos)
		})
	})

	return r
}
