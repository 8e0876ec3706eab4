package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	brandhandler "brandai_backend/internal/feature/branddna/transport/handler"
	critiquehandler "brandai_backend/internal/feature/critique/transport/handler"
	webhandler "brandai_backend/internal/feature/web/transport/handler"
	"brandai_backend/internal/feature/web/ui"
	workflowhandler "brandai_backend/internal/feature/workflow/transport/handler"
	platformhandler "brandai_backend/internal/platform/http/handler"
	jwtmw "brandai_backend/internal/platform/jwt"
	"brandai_backend/internal/platform/metrics"
)

// Handlers はルーターに登録するハンドラー群です。
type Handlers struct {
	Brand    *brandhandler.BrandDNAHandler
	Critique *critiquehandler.CritiqueHandler
	Workflow *workflowhandler.WorkflowHandler
	Web      *webhandler.WebHandler
	Health   *platformhandler.HealthHandler
}

// Options はミドルウェアの設定です。
type Options struct {
	Sessions    jwtmw.Generator
	Cookie      jwtmw.CookieOptions
	CORSOrigins []string
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.Default()
	r.Use(newCORS(opts.CORSOrigins))
	r.SetHTMLTemplate(ui.MustTemplates())

	// セッション不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)
	r.GET("/metrics", metrics.Handler())
	if assets, err := ui.Assets(); err != nil {
		slog.Error("embedded assets unavailable", "error", err)
	} else {
		r.StaticFS("/assets", http.FS(assets))
	}
	r.GET("/guide", h.Web.Guide)
	r.GET("/about", h.Web.About)

	// ステートレスなAPI
	v1 := r.Group("/v1")
	{
		v1.POST("/brand/scrape", h.Brand.Scrape)
		v1.POST("/critique", h.Critique.Critique)
	}

	// セッション必須のルート
	// → クッキーかBearerトークンが無ければ新しいセッションを発行する
	sessions := jwtmw.SessionRequired(opts.Sessions, opts.Cookie)

	api := r.Group("/v1/session")
	api.Use(sessions)
	{
		api.GET("", h.Workflow.Get)
		api.POST("/url", h.Workflow.SubmitURL)
		api.POST("/critique", h.Workflow.SubmitCritique)
		api.POST("/reset", h.Workflow.Reset)
	}

	web := r.Group("/")
	web.Use(sessions)
	{
		web.GET("/", h.Web.Index)
		web.POST("/scrape", h.Web.Scrape)
		web.POST("/critique", h.Web.Critique)
		web.POST("/reset", h.Web.Reset)
	}

	return r
}

// newCORS はCORSミドルウェアを作成します。
// originsが空の場合はすべてのオリジンを許可し、クッキーは送信させません。
func newCORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{jwtmw.HeaderSessionToken},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
