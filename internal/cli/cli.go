// Package cli implements the fbas-analyzer command line: flag parsing via
// cobra/pflag, config/logger/metrics/cache wiring following the teacher's
// startup sequence (cmd/octoreflex/main.go), and the single-file and bulk
// analysis flows.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trudi-group/fbas-analyzer-go/internal/analysis"
	"github.com/trudi-group/fbas-analyzer-go/internal/bulk"
	"github.com/trudi-group/fbas-analyzer-go/internal/cache"
	"github.com/trudi-group/fbas-analyzer-go/internal/config"
	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/fbasio"
	"github.com/trudi-group/fbas-analyzer-go/internal/observability"
)

// flags holds every command-line flag fbas-analyzer accepts, bound
// directly to pflag by newRootCommand.
type flags struct {
	configPath string

	nodesPath string
	orgsPath  string

	quorums       bool
	blockingSets  bool
	splittingSets bool
	allAnalyses   bool

	expectNoIntersection bool
	alternativeCheck     bool

	describe    bool
	pretty      bool
	resultsOnly bool

	mergeByOrg     bool
	mergeByISP     bool
	mergeByCountry bool

	bulkDir    string
	cachePath  string
	metricsAddr string
	verbosity  int
}

// Execute runs the fbas-analyzer command line, using os.Args and
// propagating its exit code via os.Exit.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "fbas-analyzer [nodes.json]",
		Short: "Analyze Federated Byzantine Agreement Systems for quorum intersection and resilience",
		Long: "fbas-analyzer loads a list of FBAS nodes (Stellar-network-style \"quorum set\" " +
			"configurations) and finds minimal quorums, minimal blocking sets, minimal splitting " +
			"sets, symmetric clusters, and the top tier, or checks whether every quorum pair " +
			"intersects.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.nodesPath = args[0]
			}
			return run(cmd.Context(), f)
		},
	}

	pf := cmd.Flags()
	pf.StringVar(&f.configPath, "config", "", "path to a config.yaml (defaults baked in if omitted)")

	pf.BoolVarP(&f.quorums, "quorums", "q", false, "find and report minimal quorums")
	pf.BoolVarP(&f.blockingSets, "blocking-sets", "b", false, "find and report minimal blocking sets")
	pf.BoolVarP(&f.splittingSets, "splitting-sets", "s", false, "find and report minimal splitting sets")
	pf.BoolVarP(&f.allAnalyses, "all", "a", false, "run all analyses (quorums, blocking sets, splitting sets)")

	pf.BoolVar(&f.expectNoIntersection, "expect-no-intersection", false,
		"expect that quorum intersection does not hold: check it with the non-intersecting-quorums search")
	pf.BoolVar(&f.alternativeCheck, "alternative-check", false,
		"use the alternative (non-intersecting-quorums search) quorum intersection check")

	pf.BoolVarP(&f.describe, "describe", "d", false, "print condensed descriptions instead of full node sets")
	pf.BoolVarP(&f.pretty, "pretty", "p", false, "print node labels (public keys/names) instead of raw node IDs")
	pf.BoolVar(&f.resultsOnly, "results-only", false, "suppress comments; print only machine-readable result lines")

	pf.StringVarP(&f.orgsPath, "organizations", "o", "", "path to a JSON file describing organization groupings")
	pf.BoolVar(&f.mergeByOrg, "merge-by-org", false, "merge nodes belonging to the same organization (requires --organizations)")
	pf.BoolVar(&f.mergeByISP, "merge-by-isp", false, "merge nodes sharing the same ISP, read from each node's own metadata")
	pf.BoolVar(&f.mergeByCountry, "merge-by-country", false, "merge nodes in the same country, read from each node's own metadata")

	pf.StringVar(&f.bulkDir, "bulk", "", "analyze every *.json file in this directory and write a CSV report to stdout")
	pf.StringVar(&f.cachePath, "cache", "", "path to a bbolt standard-form result cache (disabled if unset)")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "bind address for a Prometheus /metrics endpoint (disabled if unset)")
	pf.CountVarP(&f.verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")

	return cmd
}

func run(ctx context.Context, f *flags) error {
	cfg := config.Defaults()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if f.metricsAddr != "" {
		cfg.Observability.MetricsAddr = f.metricsAddr
	}
	if f.cachePath != "" {
		cfg.Cache.Enabled = true
		cfg.Cache.DBPath = f.cachePath
	}
	if f.verbosity > 0 {
		cfg.Observability.LogLevel = "debug"
	}

	logger, err := observability.BuildLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Observability.MetricsAddr != "" {
		metrics = observability.NewMetrics()
		go func() {
			if err := metrics.ServeMetrics(ctx, cfg.Observability.MetricsAddr); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		logger.Info("metrics server listening", zap.String("addr", cfg.Observability.MetricsAddr))
	}

	var cacheDB *cache.DB
	if cfg.Cache.Enabled {
		cacheDB, err = cache.Open(cfg.Cache.DBPath)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer func() { _ = cacheDB.Close() }()
		logger.Info("result cache enabled", zap.String("path", cfg.Cache.DBPath))
	}

	if f.bulkDir != "" {
		return runBulk(ctx, f, cfg, cacheDB, metrics, logger)
	}
	return runSingle(f, cacheDB, logger)
}

func runBulk(ctx context.Context, f *flags, cfg config.Config, cacheDB *cache.DB, metrics *observability.Metrics, logger *zap.Logger) error {
	bcfg := bulk.Config{
		Dir:           f.bulkDir,
		Workers:       cfg.Bulk.Workers,
		Cache:         cacheDB,
		Metrics:       metrics,
		Logger:        logger,
		WithISPs:      f.mergeByISP,
		WithCountries: f.mergeByCountry,
	}
	if f.mergeByOrg {
		bcfg.OrgsSuffix = "_organizations"
	}

	start := time.Now()
	if err := bulk.Run(ctx, bcfg, os.Stdout); err != nil {
		return fmt.Errorf("bulk run failed: %w", err)
	}
	logger.Info("bulk run complete", zap.Duration("duration", time.Since(start)))
	return nil
}

func runSingle(f *flags, cacheDB *cache.DB, logger *zap.Logger) error {
	if f.nodesPath == "" {
		return fmt.Errorf("a nodes.json path is required unless --bulk is set")
	}

	fb, err := fbasio.FromJSONFile(f.nodesPath)
	if err != nil {
		return fmt.Errorf("loading FBAS: %w", err)
	}

	groupings, err := resolveGroupings(f, fb)
	if err != nil {
		return err
	}

	var cachedHash []byte
	if cacheDB != nil {
		cachedHash = fbasio.StandardForm(fb)
		if cached, hit, err := cacheDB.Get(cachedHash); err == nil && hit {
			logger.Debug("cache hit", zap.String("nodes", f.nodesPath))
			return reportCached(f, fb, groupings, cached)
		}
	}

	a := analysis.New(fb, groupings)
	out := newOutput(os.Stdout, f.resultsOnly, f.pretty, f.describe, fb, groupings)

	reportOverview(a, out)
	findAndReportSymmetricClusters(a, out)

	runAll := f.allAnalyses || (!f.quorums && !f.blockingSets && !f.splittingSets)

	var mq, mbs, mss fbas.SetVecResult
	haveMQ, haveMBS, haveMSS := false, false, false

	if f.quorums || runAll {
		findAndReportMinimalQuorums(a, out)
		mq = a.MinimalQuorums()
		haveMQ = true
	} else {
		checkAndReportQuorumIntersection(a, out, f.alternativeCheck || f.expectNoIntersection)
	}

	if f.blockingSets || runAll {
		findAndReportMinimalBlockingSets(a, out)
		mbs = a.MinimalBlockingSets()
		haveMBS = true
	}
	if f.splittingSets || runAll {
		findAndReportMinimalSplittingSets(a, out)
		mss = a.MinimalSplittingSets()
		haveMSS = true
	}

	reportTopTierUncondensed(a, out)

	if cacheDB != nil {
		if !haveMQ {
			mq = a.MinimalQuorums()
		}
		if !haveMBS {
			mbs = a.MinimalBlockingSets()
		}
		if !haveMSS {
			mss = a.MinimalSplittingSets()
		}
		result := cache.Result{
			HasIntersection:      a.HasQuorumIntersection(),
			MinimalQuorums:       fbasio.ToUint32Sets(mq.Sets),
			MinimalBlockingSets:  fbasio.ToUint32Sets(mbs.Sets),
			MinimalSplittingSets: fbasio.ToUint32Sets(mss.Sets),
			ComputedAt:           time.Now().UTC().Format(time.RFC3339),
		}
		if err := cacheDB.Put(cachedHash, result); err != nil {
			logger.Warn("failed to populate cache", zap.Error(err))
		}
	}

	return nil
}

func resolveGroupings(f *flags, fb *fbas.Fbas) (*fbas.Groupings, error) {
	switch {
	case f.mergeByOrg && f.orgsPath != "":
		return fbasio.OrganizationsFromJSONFile(f.orgsPath, fb)
	case f.mergeByISP:
		return fbas.GroupByISP(fb), nil
	case f.mergeByCountry:
		return fbas.GroupByCountry(fb), nil
	case f.mergeByOrg:
		return nil, fmt.Errorf("--merge-by-org requires --organizations")
	default:
		return nil, nil
	}
}

// reportCached prints a condensed report straight from a cache hit,
// bypassing a freshly built Analysis entirely: cached node ids are in
// standard-form numbering, not the caller's original NodeID space, so
// only id-form (not pretty/grouped) output is meaningful here.
func reportCached(f *flags, fb *fbas.Fbas, groupings *fbas.Groupings, cached cache.Result) error {
	out := newOutput(os.Stdout, f.resultsOnly, false, f.describe, fb, groupings)
	out.comment("(served from cache; node ids below are in standard-form numbering)")

	mq := setVecResult{fbas.SetVecResult{Sets: fbasio.FromUint32Sets(cached.MinimalQuorums)}}
	mbs := setVecResult{fbas.SetVecResult{Sets: fbasio.FromUint32Sets(cached.MinimalBlockingSets)}}
	mss := setVecResult{fbas.SetVecResult{Sets: fbasio.FromUint32Sets(cached.MinimalSplittingSets)}}

	out.result("has_quorum_intersection", boolResult(cached.HasIntersection))
	out.result("minimal_quorums", mq)
	out.result("minimal_blocking_sets", mbs)
	out.result("minimal_splitting_sets", mss)
	return nil
}
