package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"ayurwell-backend/internal/auth"
	"ayurwell-backend/internal/config"
	"ayurwell-backend/internal/handler"
	"ayurwell-backend/internal/service"
	"ayurwell-backend/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	if cfg.MockGateway.Enabled && cfg.Gateway.APIKey == "" {
		// the mock only checks that some bearer key is present
		cfg.Gateway.BaseURL = fmt.Sprintf("http://127.0.0.1:%d/mock/v1", cfg.Server.Port)
		cfg.Gateway.APIKey = "mock"
		logger.Warn("No gateway key configured, answering from the mock gateway")
	}
	if cfg.Gateway.APIKey == "" {
		logger.Warn("Gateway API key is not set; every chat request will fail with 500")
	}

	provider, err := newAuthProvider(cfg.Auth)
	if err != nil {
		logger.Fatalf("Failed to set up authentication: %v", err)
	}

	chatHandler := handler.NewChatHandler(service.NewChatService(cfg))

	gin.SetMode(gin.ReleaseMode)
	router := handler.SetupRouter(cfg, chatHandler, provider)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Infof("Chat proxy listening on port %d (model %s)", cfg.Server.Port, cfg.Gateway.Model)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// 等待信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
		server.Close()
	}
	logger.Info("Server stopped")
}

func newAuthProvider(cfg config.AuthConfig) (auth.Provider, error) {
	switch cfg.Provider {
	case "static":
		if len(cfg.StaticTokens) == 0 {
			return nil, fmt.Errorf("auth.static_tokens is empty")
		}
		logger.Warnf("Using static token authentication (%d tokens)", len(cfg.StaticTokens))
		return auth.NewStaticProvider(cfg.StaticTokens), nil
	case "gotrue", "":
		if cfg.URL == "" {
			return nil, fmt.Errorf("auth.url (or SUPABASE_URL) is required for the gotrue provider")
		}
		return auth.NewGoTrue(cfg.URL, cfg.AnonKey, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
	}
}
