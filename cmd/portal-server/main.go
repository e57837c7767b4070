package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codearena/portal/internal/config"
	"github.com/codearena/portal/internal/db"
	"github.com/codearena/portal/internal/httpapi"
	"github.com/codearena/portal/internal/portal/service"
	"github.com/codearena/portal/internal/portal/store"
	"github.com/codearena/portal/internal/portal/store/memory"
	sqlitestore "github.com/codearena/portal/internal/portal/store/sqlite"
	"github.com/codearena/portal/internal/portal/types"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "portal-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		userStore      store.UserStore
		violationStore store.ViolationStore
	)

	switch cfg.Store {
	case "sqlite":
		conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath})
		if err != nil {
			logger.Fatalf("open db: %v", err)
		}
		defer conn.Close()

		writer := db.NewWorker(conn)
		defer writer.Close()

		if err := db.SeedAdmin(ctx, conn, db.SeedOptions{
			AdminUsername: cfg.AdminUsername,
			AdminPassword: cfg.AdminPassword,
		}); err != nil {
			logger.Fatalf("seed admin: %v", err)
		}

		userStore = sqlitestore.NewUserStore(conn, writer)
		violationStore = sqlitestore.NewViolationStore(conn, writer)
		logger.Printf("store: sqlite (%s)", cfg.DBPath)

	default:
		us := memory.NewUserStore()
		seedAdmin(ctx, us, cfg, logger)
		userStore = us
		violationStore = memory.NewViolationStore()
		logger.Printf("store: memory (volatile)")
	}

	broadcaster := service.NewBroadcaster()
	userSvc := service.NewUserService(userStore)
	violationSvc := service.NewViolationService(violationStore, userStore, broadcaster)

	sessions := httpapi.NewSessionManager(cfg.SessionTTL)
	janitor := httpapi.NewSessionJanitor(sessions,
		time.Duration(cfg.SessionSweepMinutes)*time.Minute, logger)
	janitor.Start(ctx)
	defer janitor.Stop()

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:     logger,
		Addr:       cfg.HTTPAddr,
		Users:      userSvc,
		Violations: violationSvc,
		Broadcast:  broadcaster,
		Sessions:   sessions,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// seedAdmin mirrors db.SeedAdmin for the in-memory backend.
func seedAdmin(ctx context.Context, us store.UserStore, cfg config.Config, logger *log.Logger) {
	_, err := us.CreateUser(ctx, types.User{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		Role:         types.RoleAdmin,
		TeamName:     "Organizer",
		TeamID:       "ADMIN",
		Round1Access: types.AccessActive,
		Round2Access: types.AccessActive,
		Round3Access: types.AccessActive,
	})
	if err != nil {
		logger.Fatalf("seed admin: %v", err)
	}
}
