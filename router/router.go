package router

import (
	"ShareVault/config"
	"ShareVault/internal/handler"
	"ShareVault/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The public gate: token is the only credential.
	r.GET("/download/:token",
		utils.RateLimitMiddleware(config.AppConfig.DownloadRate, config.AppConfig.DownloadBurst),
		handler.Download,
	)

	api := r.Group("/api")
	{
		api.POST("/register", handler.Register)
		api.POST("/login", handler.Login)

		api.GET("/share/:token/meta", handler.ShareMeta)

		auth := api.Group("")
		auth.Use(utils.AuthMiddleware())

		file := auth.Group("/file")
		{
			file.POST("/upload", handler.UploadFile)
			file.GET("/list", handler.ListFiles)
			file.POST("/delete", handler.DeleteFile)
		}

		share := auth.Group("/share")
		{
			share.POST("/create", handler.CreateShare)
			share.POST("/ensure", handler.EnsureShare)
		}

		auth.GET("/analytics/share-access", handler.GetShareAccessLogs)
	}
	return r
}
