package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/lintang-b-s/chroute/pkg/config"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/chroute/pkg/kv"
	"github.com/lintang-b-s/chroute/pkg/logger"
	"github.com/lintang-b-s/chroute/pkg/server/rest"
	"github.com/lintang-b-s/chroute/pkg/server/rest/service"
	"github.com/lintang-b-s/chroute/pkg/snap"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var (
	configFile      = flag.String("config", "config.yaml", "config file")
	listenAddr      = flag.String("listenaddr", "", "server listen address (overrides config)")
	useH3           = flag.Bool("h3", false, "snap query points with the h3 index instead of an in memory r-tree")
	maxSnapDistance = flag.Float64("maxsnap", 1000, "max distance in meters from a query point to its nearest vertex")
	memprofile      = flag.String("memprofile", "", "write memory profile to this file")
	dev             = flag.Bool("dev", false, "human readable debug logs")
)

func main() {
	flag.Parse()

	newLogger := logger.New
	if *dev {
		newLogger = logger.NewDevelopment
	}
	lg, err := newLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	cfg := config.Default()
	if _, err := os.Stat(*configFile); err == nil {
		cfg, err = config.ReadConfig(*configFile)
		if err != nil {
			lg.Fatal("load config", zap.Error(err))
		}
	}
	if *listenAddr != "" {
		cfg.Server.Addr = *listenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("engine stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	store, err := kv.OpenHierarchyStore(cfg.Storage, lg)
	if err != nil {
		return err
	}
	g, tags, err := store.LoadGraph(ctx)
	store.Close()
	if err != nil {
		return fmt.Errorf("load contracted graph: %w", err)
	}
	recordMemProfile(memprofile, "load_contracted_graph")

	routingAlgorithm, err := routingalgorithm.NewRouteAlgorithm(g,
		routingalgorithm.WithLogger(lg),
		routingalgorithm.WithQueryOptions(routingalgorithm.QueryOptions{
			MaxSettledNodes: cfg.Query.MaxSettledNodes,
			Timeout:         cfg.Query.Timeout,
		}),
		routingalgorithm.WithUnpackCacheSize(cfg.Query.UnpackCacheSize),
		routingalgorithm.WithWorkers(cfg.Query.Workers),
	)
	if err != nil {
		return err
	}

	snapper, closeSnapper, err := newSnapper(cfg.Storage, g, lg)
	if err != nil {
		return err
	}
	defer closeSnapper()

	navigatorSvc := service.NewNavigationService(g, snapper, routingAlgorithm, tags, lg, *maxSnapDistance)
	recordMemProfile(memprofile, "service_init")

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	rest.NavigatorRouter(r, navigatorSvc, m)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	lg.Info("Contraction Hieararchies + Bidirectional Dijkstra Ready!!", zap.String("addr", cfg.Server.Addr))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newSnapper(opts config.StorageOptions, g *datastructure.Graph, lg *zap.Logger) (service.Snapper, func(), error) {
	if *useH3 {
		db, err := kv.OpenBadger(opts.H3Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open h3 index db: %w", err)
		}
		index := kv.NewH3Index(db, lg)
		return index, func() { index.Close() }, nil
	}

	snapper := snap.NewNodeSnapper(lg)
	snapper.Build(g)
	return snapper, func() {}, nil
}

func recordMemProfile(memprofile *string, name string) {
	if *memprofile != "" {
		*memprofile = strings.Replace(*memprofile, ".mprof", fmt.Sprintf("%s.mprof", name), -1)
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
