package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/stock_analyser/config"
	"github.com/KotFed0t/stock_analyser/internal/transport/rest"
	"github.com/KotFed0t/stock_analyser/internal/transport/rest/middleware"
	"github.com/gin-gonic/gin"
)

type HTTPServer struct {
	server *http.Server
	cfg    *config.Config
}

func New(cfg *config.Config, ctrl *rest.Controller, sessionStore middleware.Session) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())

	setupRoutes(router, ctrl, sessionStore)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &HTTPServer{server: server, cfg: cfg}
}

func (s *HTTPServer) Start() {
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("error from server.ListenAndServe", slog.String("err", err.Error()))
			panic(err)
		}
	}()
	slog.Info("http server started!", slog.Int("port", s.cfg.HTTP.Port))
}

func (s *HTTPServer) Stop() {
	slog.Info("start stopping http server")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("error from server.Shutdown", slog.String("err", err.Error()))
	}

	slog.Info("http server stopped")
}

func setupRoutes(router *gin.Engine, ctrl *rest.Controller, sessionStore middleware.Session) {
	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", ctrl.Register)
		auth.POST("/login", ctrl.Login)
		auth.POST("/logout", middleware.Auth(sessionStore), ctrl.Logout)
	}

	authorized := api.Group("", middleware.Auth(sessionStore))
	{
		authorized.GET("/stocks/:symbol", ctrl.GetStock)
		authorized.GET("/stocks/:symbol/prediction", ctrl.Predict)
		authorized.GET("/compare", ctrl.Compare)

		authorized.GET("/watchlist", ctrl.GetWatchlist)
		authorized.POST("/watchlist", ctrl.AddWatch)
		authorized.DELETE("/watchlist/:symbol", ctrl.RemoveWatch)

		authorized.GET("/portfolio", ctrl.GetPortfolio)
		authorized.POST("/portfolio", ctrl.AddPortfolioLine)
		authorized.GET("/portfolio/report", ctrl.GetReport)

		authorized.PUT("/settings/theme", ctrl.SetTheme)
	}
}
