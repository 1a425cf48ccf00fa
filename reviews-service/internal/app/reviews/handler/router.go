package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reviewsection/pkg/logger"
	"reviewsection/pkg/metrics"
)

const serviceName = "reviews-service"

type Handlers struct {
	Reviews *ReviewHandler
	Media   *MediaHandler
	Users   *UserHandler
}

func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	// Виджеты встраиваются в страницы магазина с других доменов
	router.Use(cors.New(cors.Config{
		// Авторизация только через заголовок Authorization, cookie не используются
		AllowOrigins:  []string{"https://*", "http://*"},
		AllowWildcard: true,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders: []string{logger.RequestIDHeader},
		MaxAge:        300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Изображения открываются напрямую из <img>, без токена
	router.GET("/images/:image_id", h.Media.GetImage)

	api := router.Group("/")
	api.Use(authMiddleware.Authenticate())
	{
		api.POST("/reviews", h.Reviews.CreateReview)
		api.GET("/reviews/product/:product_id", h.Reviews.GetReviewsByProduct)
		api.GET("/reviews/product/:product_id/distribution", h.Reviews.GetDistribution)
		api.GET("/reviews/:review_id/images", h.Reviews.GetReviewImages)

		api.POST("/images", h.Media.UploadImages)

		api.GET("/users/:user_id", h.Users.GetUser)
	}

	return router
}
