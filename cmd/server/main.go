// Command server runs the VirtualPyTest execution core: the Device
// Control & Session Layer, Navigation Cache & Pathfinder, AI Plan
// Builder, Block & Graph Executor, and Proxy & Async Job Registry, all
// exposed behind a single REST API.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/virtualpytest/core/internal/api/rest"
	"github.com/virtualpytest/core/internal/application/deviceio"
	"github.com/virtualpytest/core/internal/cache"
	"github.com/virtualpytest/core/internal/config"
	"github.com/virtualpytest/core/internal/logger"
	"github.com/virtualpytest/core/internal/registry"
	"github.com/virtualpytest/core/internal/storage"
	"github.com/virtualpytest/core/internal/wsnotify"
	"github.com/virtualpytest/core/pkg/adapters"
	"github.com/virtualpytest/core/pkg/blockexec"
	"github.com/virtualpytest/core/pkg/jobs"
	"github.com/virtualpytest/core/pkg/navcache"
	"github.com/virtualpytest/core/pkg/planner"
	"github.com/virtualpytest/core/pkg/session"
)

// unconfiguredLLMClient is the default adapters.LLMClient: wiring a real
// vendor (OpenAI, Gemini, ...) is an external-collaborator concern this
// module only defines the seam for.
type unconfiguredLLMClient struct{}

func (unconfiguredLLMClient) Complete(ctx context.Context, req adapters.LLMRequest) (*adapters.LLMResponse, error) {
	return nil, fmt.Errorf("no LLM client configured")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	logger.SetDefault(appLogger)
	appLogger.Info("starting execution core", "port", cfg.Server.Port)

	store := storage.NewStore(cfg.Database.URL)
	if err := store.InitSchema(context.Background()); err != nil {
		appLogger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	appLogger.Info("database connected")

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		appLogger.Error("failed to initialize redis", "error", err)
		os.Exit(1)
	}
	defer redisCache.Close()
	appLogger.Info("redis connected")

	deviceRegistry := registry.New()

	proxy := jobs.NewProxy(deviceRegistry, []byte(cfg.JobsProxy.SigningKey), cfg.Session.HostDialTimeout)

	pinger := deviceio.NewHTTPHostPinger(cfg.Session.HostDialTimeout)
	sessionManager := session.NewManager(redisCache, deviceRegistry, pinger, cfg.Session.HostDialTimeout, appLogger)
	go sessionManager.Watchdog(context.Background(), cfg.Session.WatchdogInterval)

	treeLoader := storage.NewTreeLoader(store)
	navCache := navcache.New(treeLoader, cfg.NavCache.TTL)

	plannerStore := storage.NewPlannerStore(store)
	llmClient := unconfiguredLLMClient{}
	plannerBuilder := planner.NewBuilder(plannerStore, navCache, llmClient, planner.Config{
		MaxNodes:         cfg.Planner.MaxNodes,
		MaxActions:       cfg.Planner.MaxActions,
		MaxVerifications: cfg.Planner.MaxVerifications,
		FuzzyThreshold:   cfg.Planner.FuzzyThreshold,
	})

	watchHub := wsnotify.NewHub(appLogger)
	conditionEvaluator := blockexec.NewConditionEvaluator(cfg.Planner.ConditionCacheSize)

	blockRegistry := blockexec.NewRegistry()
	forward := proxy.Forward
	actionExecutor := deviceio.NewProxyActionExecutor(forward)
	verificationExecutor := deviceio.NewProxyVerificationExecutor(forward)
	mustRegister(blockRegistry, "navigation", deviceio.NewNavigationExecutor(actionExecutor))
	mustRegister(blockRegistry, "action", deviceio.NewActionExecutor(actionExecutor))
	mustRegister(blockRegistry, "verification", deviceio.NewVerificationExecutor(verificationExecutor))

	executor := blockexec.New(blockRegistry, conditionEvaluator, watchHub, appLogger)

	jobRegistry := jobs.NewRegistry()
	janitor := jobs.NewJanitor(jobRegistry, cfg.JobsProxy.Retain, appLogger)
	if err := janitor.Start(cfg.JobsProxy.JanitorCron); err != nil {
		appLogger.Error("failed to start execution janitor", "error", err)
		os.Exit(1)
	}
	defer janitor.Stop()

	deps := &rest.Deps{
		Log:          appLogger,
		Sessions:     sessionManager,
		Registry:     deviceRegistry,
		NavCache:     navCache,
		Planner:      plannerBuilder,
		BlockExec:    executor,
		Jobs:         jobRegistry,
		Proxy:        proxy,
		TestCases:    rest.NewMemoryTestCaseStore(),
		Capabilities: deviceRegistry,
		Mappings:     plannerStore,
		Watch:        watchHub,
		ExecutionTTL: int(cfg.Session.DefaultTTL.Seconds()),
	}

	router := rest.NewRouter(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("http server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		appLogger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		appLogger.Info("shutdown initiated", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			appLogger.Error("graceful shutdown failed", "error", err)
			if err := server.Close(); err != nil {
				appLogger.Error("server close failed", "error", err)
			}
		}
		appLogger.Info("server stopped")
	}
}

func mustRegister(r *blockexec.Registry, blockType string, e blockexec.Executor) {
	if err := r.Register(blockType, e); err != nil {
		panic(err)
	}
}
