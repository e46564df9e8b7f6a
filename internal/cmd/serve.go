package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"debate_arena/internal/api"
	"debate_arena/internal/logging"
	"debate_arena/internal/middleware"
	"debate_arena/internal/reasoning"
	"debate_arena/internal/repository"
	"debate_arena/internal/service"
	"debate_arena/internal/storage"
	"debate_arena/internal/utils"
	"debate_arena/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// 載入應用程式配置
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化資料庫連接
	db, err := storage.NewPostgresDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	repos := repository.NewRepositories(db)
	hub := service.NewWebSocketService(log.With("component", "hub"))

	var wg conc.WaitGroup
	var bc service.Broadcaster = hub
	if cfg.Redis.Enabled() {
		rdb, err := storage.NewRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()

		relay := service.NewRedisRelay(rdb, cfg.Redis.ChannelPrefix, hub, log.With("component", "relay"))
		bc = relay
		wg.Go(func() {
			if err := relay.Run(ctx); err != nil {
				log.Error("redis relay stopped", "error", err)
			}
		})
		log.Info("cross-instance fan-out enabled", "redis", cfg.Redis.Addr)
	}

	reasoner := reasoning.NewClient(cfg.Judge)
	services := service.NewServices(repos, hub, bc, reasoner, cfg.Judge, log)
	wg.Go(func() { services.Judge.Run(ctx) })

	if err := services.Room.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover reading timers: %w", err)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: newRouter(services, cfg, log),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("failed to run server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	services.Room.Shutdown()
	wg.Wait()
	return nil
}

func newRouter(services *service.Services, cfg *config.Config, log *slog.Logger) *gin.Engine {
	if logging.ParseLevel(cfg.Log.Level) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log.With("component", "http")))

	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, utils.DefaultTokenTTL)
	api.SetupRoutes(r, services, tokens, log)
	return r
}
