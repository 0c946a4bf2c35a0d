// Package main is the bouncer gateway's process entry point: config load,
// version gate, database pools, policy chain build, HTTP server, graceful
// shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/aras-services/bouncer/config"
	gwmiddleware "github.com/aras-services/bouncer/internal/middleware"
	"github.com/aras-services/bouncer/internal/proxy"
	"github.com/aras-services/bouncer/internal/registry"
	"github.com/aras-services/bouncer/pkg/policy"

	"github.com/aras-services/bouncer/internal/dbpool"
	"github.com/aras-services/bouncer/internal/policies/bearer"
	"github.com/aras-services/bouncer/internal/policies/rbac"
	"github.com/aras-services/bouncer/internal/policies/requestlog"
)

const runningVersion = "0.1.0"

var devDefaultToken = "secret"

func main() {
	configPath := flag.String("config", "bouncer.yaml", "path to the gateway configuration file")
	printVersion := flag.Bool("version", false, "print the running version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println("bouncer version " + runningVersion)
		os.Exit(0)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// PHASE 1: configuration and version gate.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if err := config.ValidateVersion(cfg.BouncerVersion, runningVersion); err != nil {
		logger.Fatal("bouncer_version mismatch", zap.Error(err))
	}

	token := os.Getenv("BOUNCER_TOKEN")
	if token == "" {
		token = devDefaultToken
		logger.Warn("BOUNCER_TOKEN not set, using an insecure development default")
		logger.Warn("set BOUNCER_TOKEN before running this gateway in production")
	}

	// PHASE 2: database pools.
	pools, err := dbpool.Open(context.Background(), cfg.Databases)
	if err != nil {
		logger.Fatal("failed to open database pools", zap.Error(err))
	}
	defer pools.Close(context.Background())

	// PHASE 3: registry and policy chain build.
	reg := registry.New()
	RegisterBuiltins(reg)

	deps := policy.Dependencies{Databases: pools, Logger: logger}
	requestChain, adminRouter, err := reg.BuildChain(context.Background(), cfg.Policies, deps)
	if err != nil {
		logger.Fatal("failed to build policy chain", zap.Error(err))
	}

	// PHASE 4: router assembly.
	proxyHandler := proxy.New(cfg.Server.DestinationAddress, token, &http.Client{})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(60 * time.Second))

	r.With(gwmiddleware.NewAdminCORS()).Mount("/_admin", adminRouter.Handler())
	r.Handle("/*", requestChain.Wrap(proxyHandler))

	// PHASE 5: serve and graceful shutdown.
	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

// RegisterBuiltins registers the bearer, RBAC, and request logger
// factories. A downstream build that wants additional policies registers
// its own factories on the same *registry.Registry before BuildChain runs.
func RegisterBuiltins(reg *registry.Registry) {
	for _, f := range []policy.Factory{
		bearer.Factory{},
		rbac.Factory{},
		requestlog.Factory{},
	} {
		if err := reg.Register(f); err != nil {
			panic(fmt.Sprintf("bouncer: registering built-in factory %s: %v", f.PolicyID(), err))
		}
	}
}
