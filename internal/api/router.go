package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pixelmuse/imagen_go_server/config"
	"github.com/pixelmuse/imagen_go_server/internal/api/handler"
	"github.com/pixelmuse/imagen_go_server/internal/api/middleware"
)

type Router struct {
	authHandler       *handler.AuthHandler
	userHandler       *handler.UserHandler
	creditHandler     *handler.CreditHandler
	generationHandler *handler.GenerationHandler
	paymentHandler    *handler.PaymentHandler
	modelsHandler     *handler.ModelsHandler
	websocketHandler  *handler.WebSocketHandler
	cfg               *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	creditHandler *handler.CreditHandler,
	generationHandler *handler.GenerationHandler,
	paymentHandler *handler.PaymentHandler,
	modelsHandler *handler.ModelsHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:       authHandler,
		userHandler:       userHandler,
		creditHandler:     creditHandler,
		generationHandler: generationHandler,
		paymentHandler:    paymentHandler,
		modelsHandler:     modelsHandler,
		websocketHandler:  websocketHandler,
		cfg:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 公开接口 - 模型与套餐（模型列表带可选认证，登录后返回余额）
		api.GET("/models", middleware.OptionalAuth(r.cfg.JWT.Secret), r.modelsHandler.List)
		api.GET("/payments/packages", r.paymentHandler.ListPackages)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
			}

			// 积分
			authenticated.GET("/credits/balance", r.creditHandler.GetBalance)

			// 图片生成
			generations := authenticated.Group("/generations")
			{
				generations.POST("", r.generationHandler.Generate)
				generations.POST("/variants", r.generationHandler.GenerateVariant)
				generations.GET("", r.generationHandler.History)
			}

			// 支付
			authenticated.POST("/payments/capture", r.paymentHandler.Capture)
		}
	}

	return engine
}
