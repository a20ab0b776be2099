package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"sms-relay/auth"
	"sms-relay/repositories"
	"sms-relay/runtime"
	"sms-relay/runtime/workers"
	"sms-relay/services"
	transporthttp "sms-relay/transport/http"
	"sms-relay/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes
// error reporting so every defer executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Core: store, registries, fan-out engine
	store := repositories.NewMessageStore(db, log)
	groups := repositories.NewGroupRepository(db)
	users := repositories.NewUserRepository(db)
	registry := runtime.NewRegistry()
	engine := runtime.NewEngine(log, store, groups, registry, config.PushBudget)

	issuer := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(users, issuer)
	groupService := services.NewGroupService(groups, engine)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers under supervision
	sup := workers.NewSupervisor(log)
	sup.Add(workers.NewStorageGC(log, db, config.GCInterval))
	sup.Add(workers.NewDeliveryReporter(log, engine, config.StatsInterval))
	go sup.Run(ctx)

	// 6. HTTP + WS server
	wsServer := &ws.Server{
		Log:        log,
		Engine:     engine,
		Issuer:     issuer,
		BufferSize: config.ConnectionBufferSize,
	}
	router := transporthttp.NewRouter(transporthttp.Deps{
		Messages: &transporthttp.MessageHandlers{Engine: engine},
		Groups:   &transporthttp.GroupHandlers{Groups: groupService},
		Auth:     &transporthttp.AuthHandlers{Auth: authService, Users: users},
		WS:       wsServer.Handle,
	})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
