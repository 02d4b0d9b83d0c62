package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/nicolasmmb/go-datacollector/internal/config/env"
	"github.com/nicolasmmb/go-datacollector/internal/database"
	"github.com/nicolasmmb/go-datacollector/internal/fingerprint"
	"github.com/nicolasmmb/go-datacollector/internal/gateway"
	"github.com/nicolasmmb/go-datacollector/internal/logging"
	"github.com/nicolasmmb/go-datacollector/internal/repository/redis"
	"github.com/nicolasmmb/go-datacollector/internal/router"
	"github.com/nicolasmmb/go-datacollector/internal/service"
	"github.com/nicolasmmb/go-datacollector/internal/worker"
	"github.com/nicolasmmb/go-datacollector/libs"
)

func main() {
	if err := env.Load(); err != nil {
		log.Fatalf("Erro ao carregar variáveis de ambiente: %v", err)
	}
	env.ShowEnvValues()

	slog.SetDefault(logging.New(os.Stdout, env.Values.LOG_LEVEL, env.Values.LOG_FORMAT))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rds, err := database.ConnectToRedisClient(ctx, env.Values.REDIS_ADDR, 4*env.Values.WORKER_POOL+16)
	if err != nil {
		log.Fatalf("Erro ao obter o cliente Redis: %v", err)
	}
	defer database.CloseRedisClient()

	// Repositories
	configRepo := redis.NewConfigurationRepository(rds)
	installationRepo := redis.NewInstallationRepository(rds)
	healthCheckRepo := redis.NewHealthCheckRepository(rds)

	// Services
	gw := gateway.NewClient(env.Values.GATEWAY_URL, env.Values.AUTHORIZATION)
	configSvc := service.NewConfigurationService(
		configRepo,
		gw,
		env.Values.MERCHANT_ID,
		time.Duration(env.Values.CONFIG_TTL_SECONDS)*time.Second,
		env.Values.CONFIG_FETCH_RETRIES,
	)
	collector := service.NewDataCollector(configSvc, installationRepo, fingerprint.NewClient())
	preferredSvc := service.NewPreferredPaymentMethodsService(configSvc, gw)

	// Workers
	refreshWorker := worker.NewConfigurationRefreshWorker(configSvc, configRepo, time.Duration(env.Values.CONFIG_REFRESH_INTERVAL_MS)*time.Millisecond).
		WithTimeout(redis.CONFIGURATION_LOCK_TTL - 30*time.Second)
	go refreshWorker.Run(ctx)

	deviceDataWorker := worker.NewDeviceDataWorker(collector, env.Values.WORKER_POOL, env.Values.COLLECT_CHAN_SIZE)
	deviceDataWorker.Run(ctx)

	// Routes
	routes := router.Routes(router.NewHandler(deviceDataWorker, preferredSvc, configSvc, healthCheckRepo))
	routes.HandleFunc("/debug/pprof/", pprof.Index)
	routes.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	routes.HandleFunc("/debug/pprof/profile", pprof.Profile)
	routes.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	routes.HandleFunc("/debug/pprof/trace", pprof.Trace)

	SERVER_HOST := env.Values.SERVER_ADDR + ":" + fmt.Sprint(env.Values.SERVER_PORT)
	server := &http.Server{
		Addr:           SERVER_HOST,
		Handler:        routes,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 256 << 10, // 256 KB
	}

	if err := libs.GracefulShutdown(ctx, server, time.Second*10); err != nil {
		slog.Error("Servidor finalizado com erro", "error", err)
	}
}
