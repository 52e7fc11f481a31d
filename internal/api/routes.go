package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/instatodoist/instant-todos-server/internal/auth"
	"github.com/instatodoist/instant-todos-server/internal/handlers"
	"github.com/instatodoist/instant-todos-server/internal/shared"
)

const serviceName = "instant-todos"

type HandlersConfig struct {
	TodoHandler  *handlers.TodoHandler
	LabelHandler *handlers.LabelHandler
}

// SetupRouter builds the full engine: ambient middleware chain, CORS, the
// health probe and the authenticated API surface.
func SetupRouter(h HandlersConfig, jwt *auth.JWT, metrics *shared.AppMetrics, logger *otelzap.Logger) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	shared.SetupGinMiddleware(router, serviceName, metrics, logger)

	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	setupProtectedRoutes(router, h, jwt)

	return router
}

func setupProtectedRoutes(router *gin.Engine, h HandlersConfig, jwt *auth.JWT) {
	protected := router.Group("/")
	protected.Use(jwt.GinJwtMiddleware())
	{
		if h.TodoHandler != nil {
			protected.GET("/todos", h.TodoHandler.ListTodos)
			protected.POST("/todos", h.TodoHandler.CreateTodo)
			protected.PUT("/todos/:id", h.TodoHandler.UpdateTodo)
			protected.DELETE("/todos/:id", h.TodoHandler.DeleteTodo)
			protected.POST("/todos/:id/comments", h.TodoHandler.AddComment)
			protected.PUT("/todos/:id/comments/:commentId", h.TodoHandler.UpdateComment)
		}

		if h.LabelHandler != nil {
			protected.GET("/labels", h.LabelHandler.ListLabels)
			protected.POST("/labels", h.LabelHandler.CreateLabel)
		}
	}
}

func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}
}

// SetupRouterForTests wires the routes without the telemetry chain.
func SetupRouterForTests(h HandlersConfig, jwt *auth.JWT) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig()))

	setupProtectedRoutes(router, h, jwt)

	return router
}
