package server

import (
	"ctchen222/book-catalog/internal/api/controller"
	"ctchen222/book-catalog/internal/api/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PublicRoutes are reachable without a bearer token.
var PublicRoutes = []string{
	http.MethodPost + " /auth/register",
	http.MethodPost + " /auth/login",
}

type Server struct {
	engine *gin.Engine
}

// NewServer builds the gin engine: tracing and request logging first, then
// the access gate, then the routes.
func NewServer(users *controller.UserController, books *controller.BookController, validator middleware.TokenValidator) *Server {
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestTracing(),
		middleware.RequestLogger(),
		middleware.NewAccessGate(validator, PublicRoutes...).Handler(),
	)

	s := &Server{engine: engine}
	s.registerHandlers(users, books)
	return s
}

func (s *Server) registerHandlers(users *controller.UserController, books *controller.BookController) {
	authGroup := s.engine.Group("/auth")
	authGroup.POST("/register", users.Register)
	authGroup.POST("/login", users.Login)

	bookGroup := s.engine.Group("/books")
	bookGroup.GET("", books.List)
	bookGroup.POST("", books.BatchInsert)
	bookGroup.DELETE("", books.BatchDelete)
	bookGroup.GET("/:id", books.GetByID)
	bookGroup.PUT("/:id", books.Update)
	bookGroup.DELETE("/:id", books.Delete)
}

// Engine exposes the handler for http.Server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
