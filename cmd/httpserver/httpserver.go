// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/internal/middleware"
	"github.com/IsaacValiente/Mobility.Payments/internal/paymentdelivery"
	"github.com/IsaacValiente/Mobility.Payments/internal/paymentrepo"
	"github.com/IsaacValiente/Mobility.Payments/internal/paymentservice"
	"github.com/IsaacValiente/Mobility.Payments/internal/userdelivery"
	"github.com/IsaacValiente/Mobility.Payments/internal/userrepo"
	"github.com/IsaacValiente/Mobility.Payments/internal/userservice"
	"github.com/IsaacValiente/Mobility.Payments/pkg/configpkg"
	"github.com/IsaacValiente/Mobility.Payments/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

func newTokenMaker(config configpkg.Config) (tokenpkg.Maker, error) {
	switch config.TokenMaker {
	case "paseto":
		return tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	case "jwt", "":
		return tokenpkg.NewJWTMaker(config.TokenSymmetricKey)
	}

	return nil, errors.New("unsupported token maker: " + config.TokenMaker)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	paymentRepo := paymentrepo.NewRepoPGS(conn)

	tokenMaker, err := newTokenMaker(config)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	paymentService := paymentservice.New(paymentRepo, userService)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	paymentHandler := paymentdelivery.NewHandler(paymentService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())
	engine.Use(middleware.APIKeyAuth(config.APIKey))

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/payments", paymentHandler.List)
	authRoutes.GET("/payments/:id", paymentHandler.Get)
	authRoutes.POST("/payments", middleware.RequireRoles(domain.RoleSender), paymentHandler.Create)
	authRoutes.PATCH("/payments/:id/confirm", middleware.RequireRoles(domain.RoleReceiver), paymentHandler.Confirm)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
