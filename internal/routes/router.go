package routes

import (
	"net/http"
	"strings"
	"time"

	"todo-api/internal/controller"
	"todo-api/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func Router(todos *controller.TodoController, origins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	router.Use(reflectRequestHeaders(originAllowed(origins)), cors.New(corsConfig(origins)))

	router.GET("/", todos.Root)

	// Health for load balancers and K8s probes
	router.GET("/health", todos.Health)
	router.GET("/ready", todos.Ready)

	router.GET("/todos", todos.ListTodos)
	router.POST("/todos", todos.CreateTodo)
	router.GET("/todos/:id", todos.GetTodo)
	router.PUT("/todos/:id", todos.UpdateTodo)
	router.DELETE("/todos/:id", todos.DeleteTodo)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	// Allow-Headers is left to reflectRequestHeaders so any requested header passes.
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// "*" cannot be combined with credentials; reflect the caller's origin instead.
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowOriginFunc = originAllowed(origins)
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func originAllowed(origins []string) func(string) bool {
	if len(origins) == 1 && origins[0] == "*" {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		set[o] = struct{}{}
	}
	return func(origin string) bool {
		_, ok := set[origin]
		return ok
	}
}

// reflectRequestHeaders answers a preflight from an allowed origin with the
// headers it asked for. Runs before cors.New, which then completes the response.
func reflectRequestHeaders(allowed func(string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodOptions || c.GetHeader("Access-Control-Request-Method") == "" {
			c.Next()
			return
		}
		requested := strings.TrimSpace(c.GetHeader("Access-Control-Request-Headers"))
		if requested != "" && allowed(c.GetHeader("Origin")) {
			c.Header("Access-Control-Allow-Headers", requested)
		}
		c.Next()
	}
}
