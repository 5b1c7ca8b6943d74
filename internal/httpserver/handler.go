package httpserver

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (srv HTTPServer) mapHandlers() error {
	srv.registerMiddlewares()
	srv.registerSystemRoutes()
	srv.registerDomainRoutes()
	return nil
}

func (srv HTTPServer) registerMiddlewares() {
	srv.gin.Use(gin.Recovery())
	srv.gin.Use(srv.mw.RequestID())
}

func (srv HTTPServer) registerSystemRoutes() {
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/ready", srv.readyCheck)
	srv.gin.GET("/live", srv.liveCheck)

	srv.gin.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))
}

// registerDomainRoutes registers the Telegram webhook behind the secret
// token and rate limit middlewares.
func (srv HTTPServer) registerDomainRoutes() {
	ctx := context.Background()

	if srv.telegramHandler == nil {
		srv.l.Warn(ctx, "Telegram handler not configured, skipping webhook route")
		return
	}

	srv.gin.POST("/webhook/telegram",
		srv.mw.WebhookSecret(),
		srv.mw.RateLimit(),
		srv.telegramHandler.HandleWebhook,
	)
	srv.l.Infof(ctx, "Telegram webhook route registered at POST /webhook/telegram")
}
