package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/lintang-b-s/chroute/pkg/config"
	"github.com/lintang-b-s/chroute/pkg/contractor"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/kv"
	"github.com/lintang-b-s/chroute/pkg/logger"
	"github.com/lintang-b-s/chroute/pkg/osmparser"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file")
	mapFile    = flag.String("f", "solo_jogja.osm.pbf", "openstreeetmap file buat road network graphnya")
	parallel   = flag.Bool("parallel", false, "contract independent sets of vertices in parallel (overrides config)")
	ordering   = flag.String("ordering", "", "lazy or eager (overrides config)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		// https://go.dev/blog/pprof
		// ./bin/chroute-preprocessing -cpuprofile=chroutecpu.prof -memprofile=chroutemem.mprof
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	lg, err := logger.New()
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	cfg, err := loadConfig(lg)
	if err != nil {
		lg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("preprocessing failed", zap.Error(err))
	}
	fmt.Printf("\n Contraction Hieararchies + Bidirectional Dijkstra Ready!!\n")
}

func loadConfig(lg *zap.Logger) (config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(*configFile); err == nil {
		cfg, err = config.ReadConfig(*configFile)
		if err != nil {
			return cfg, err
		}
	} else {
		lg.Warn("config file not found, using defaults", zap.String("file", *configFile))
	}

	if *parallel {
		cfg.Contraction.Parallel = true
	}
	switch *ordering {
	case "":
	case string(config.LAZY), string(config.EAGER):
		cfg.Contraction.Ordering = config.OrderingType(*ordering)
	default:
		return cfg, fmt.Errorf("%w: %q", config.ErrUnknownOrdering, *ordering)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	lg.Info("reading osm file", zap.String("file", *mapFile))
	osmParser := osmparser.NewOSMParser(osmparser.NewCarCostFunction(cfg.Profile), lg)
	g, tags, err := osmParser.Parse(ctx, *mapFile)
	if err != nil {
		return err
	}
	recordMemProfile(memprofile, "parsing_osm_data")

	store, err := kv.OpenHierarchyStore(cfg.Storage, lg)
	if err != nil {
		return err
	}
	defer store.Close()

	h3DB, err := kv.OpenBadger(cfg.Storage.H3Path)
	if err != nil {
		return fmt.Errorf("open h3 index db: %w", err)
	}
	h3Index := kv.NewH3Index(h3DB, lg)
	defer h3Index.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// h3 index hanya butuh koordinat vertex, jadi bisa jalan bareng kontraksi
	var wg sync.WaitGroup
	var h3Err error
	vertices := g.Clone()
	wg.Add(1)
	go func() {
		defer wg.Done()
		h3Err = h3Index.Build(ctx, vertices)
		if h3Err != nil {
			cancel()
		}
	}()

	err = contract(ctx, g, cfg.Contraction, lg)
	if err != nil {
		cancel()
	}
	wg.Wait()
	if h3Err != nil {
		return fmt.Errorf("build h3 index: %w", h3Err)
	}
	if err != nil {
		return err
	}
	recordMemProfile(memprofile, "finish_contracting_graph")

	lg.Info("saving contracted graph", zap.String("backend", string(cfg.Storage.Backend)), zap.String("path", cfg.Storage.Path))
	return store.SaveGraph(ctx, g, tags)
}

func contract(ctx context.Context, g *datastructure.Graph, opts config.ContractionOptions, lg *zap.Logger) error {
	st := time.Now()
	c := contractor.NewContractor(g,
		contractor.NewOrdering(string(opts.Ordering)),
		contractor.NewDijkstraWitnessCalculator(opts.MaxSettledNodes, opts.MaxHops),
		contractor.WithLogger(lg),
		contractor.WithWorkers(opts.Workers),
		contractor.WithPolicy(contractor.WeightedPolicy{
			EdgeDifference:      opts.Policy.EdgeDifference,
			ContractedNeighbors: opts.Policy.ContractedNeighbors,
			Depth:               opts.Policy.Depth,
			OriginalEdges:       opts.Policy.OriginalEdges,
		}),
	)

	var err error
	if opts.Parallel {
		err = c.ContractParallel(ctx)
	} else {
		err = c.Contract(ctx)
	}
	if err != nil {
		return err
	}

	stats := c.Stats()
	lg.Info("contraction done", zap.Any("stats", stats), zap.Duration("elapsed", time.Since(st)))
	return nil
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
