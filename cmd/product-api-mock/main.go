// Package main boots the development product API used by the console and productctl.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/product-console/internal/config"
	"github.com/fairyhunter13/product-console/internal/mockapi"
	"github.com/fairyhunter13/product-console/internal/obs"
	"github.com/fairyhunter13/product-console/internal/store"
)

func main() {
	cfg, err := config.LoadFile(".env")
	if err != nil {
		obs.Logger.Error("config_error", "error", err)
		os.Exit(1)
	}
	obs.Setup(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	users, err := mockapi.HashUsers(cfg.Mock.Users, bcrypt.DefaultCost)
	if err != nil {
		obs.Logger.Error("hash_users_error", "error", err)
		os.Exit(1)
	}
	if len(users) == 0 {
		obs.Logger.Warn("no_users_configured")
	}
	obs.Logger.Info("mock_api_starting", "users", len(users), "token_ttl", cfg.Mock.TokenTTL.String())

	router := mockapi.NewRouter(mockapi.NewAuthHandler(users, cfg.Mock.JWTSecret, cfg.Mock.TokenTTL), store.New())

	srv := &http.Server{
		Addr:              cfg.Mock.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.Mock.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("mock_api_stopped")
}
