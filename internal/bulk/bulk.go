// Package bulk implements the directory-wide CSV analysis driver: one
// Analysis per input file, run across a bounded worker pool, with one
// output row per file. Grounded in the teacher's runWorker worker-pool
// pattern (cmd/octoreflex/main.go): a channel of work items drained by a
// fixed number of goroutines, with per-file failures logged and counted
// rather than aborting the whole run.
package bulk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trudi-group/fbas-analyzer-go/internal/analysis"
	"github.com/trudi-group/fbas-analyzer-go/internal/cache"
	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/fbasio"
	"github.com/trudi-group/fbas-analyzer-go/internal/observability"
)

// GroupStats mirrors the set of summary statistics reported for one
// grouping flavor (physical nodes, organizations, ISPs, or countries).
type GroupStats struct {
	TopTierSize int
	MBSMin      int
	MBSMax      int
	MBSMean     float64
	MSSMin      int
	MSSMax      int
	MSSMean     float64
	MQMin       int
	MQMax       int
	MQMean      float64
}

// DataPoint is one output row: the result of analyzing a single FBAS file,
// against every grouping flavor that was requested for this run.
type DataPoint struct {
	Label                 string
	HasQuorumIntersection bool
	Physical              GroupStats
	Orgs                  *GroupStats
	ISPs                  *GroupStats
	Countries             *GroupStats
	StandardFormHash      string
	AnalysisDurationMQ    time.Duration
	AnalysisDurationMBS   time.Duration
	AnalysisDurationMSS   time.Duration
	AnalysisDurationTotal time.Duration
}

// Config configures one bulk run.
type Config struct {
	Dir     string
	Workers int

	Cache   *cache.DB
	Metrics *observability.Metrics
	Logger  *zap.Logger

	// WithISPs and WithCountries derive extra groupings directly from each
	// file's own node metadata (isp / geoData.countryName).
	WithISPs      bool
	WithCountries bool

	// OrgsSuffix, if non-empty, looks for a companion organizations file
	// named "<base><OrgsSuffix>.json" next to each "<base>.json" input and,
	// if found, additionally analyzes that file's organization groupings.
	OrgsSuffix string
}

// Run analyzes every *.json file in cfg.Dir across cfg.Workers goroutines
// and writes one CSV row per file to out, sorted by label. A file that
// fails to parse or analyze is logged and counted as failed rather than
// aborting the run.
func Run(ctx context.Context, cfg Config, out *os.File) error {
	files, err := listInputFiles(cfg.Dir, cfg.OrgsSuffix)
	if err != nil {
		return fmt.Errorf("bulk.Run: %w", err)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan DataPoint)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				dp, err := analyzeFile(path, cfg)
				if err != nil {
					if cfg.Metrics != nil {
						cfg.Metrics.BulkFilesFailedTotal.Inc()
					}
					if cfg.Logger != nil {
						cfg.Logger.Error("bulk analysis failed", zap.String("file", path), zap.Error(err))
					}
					continue
				}
				select {
				case results <- dp:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var points []DataPoint
	for dp := range results {
		points = append(points, dp)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })

	return writeCSV(out, points)
}

func listInputFiles(dir, orgsSuffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if orgsSuffix != "" && strings.Contains(e.Name(), orgsSuffix) {
			continue // companion organizations files are consulted, not analyzed directly
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func labelFor(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".json")
	for _, substr := range []string{"_nodes_", "_nodes", "nodes_", "stellarbeat"} {
		base = strings.ReplaceAll(base, substr, "")
	}
	return strings.Trim(base, "_")
}

func analyzeFile(path string, cfg Config) (DataPoint, error) {
	start := time.Now()

	f, err := fbasio.FromJSONFile(path)
	if err != nil {
		return DataPoint{}, err
	}

	standardForm := fbasio.StandardForm(f)
	hash := cache.Key(standardForm)

	if cfg.Cache != nil {
		if cached, hit, _ := cfg.Cache.Get(standardForm); hit {
			if cfg.Metrics != nil {
				cfg.Metrics.CacheHitsTotal.Inc()
			}
			return dataPointFromCache(labelFor(path), hash, cached), nil
		}
		if cfg.Metrics != nil {
			cfg.Metrics.CacheMissesTotal.Inc()
		}
	}

	a := analysis.New(f, nil)

	mqStart := time.Now()
	mq := a.MinimalQuorums()
	mqDur := time.Since(mqStart)

	mbsStart := time.Now()
	mbs := a.MinimalBlockingSets()
	mbsDur := time.Since(mbsStart)

	mssStart := time.Now()
	mss := a.MinimalSplittingSets()
	mssDur := time.Since(mssStart)

	top := a.TopTier()

	dp := DataPoint{
		Label:                 labelFor(path),
		HasQuorumIntersection: a.HasQuorumIntersection(),
		Physical:              statsFrom(top.Len(), mq, mbs, mss),
		StandardFormHash:      hash,
		AnalysisDurationMQ:    mqDur,
		AnalysisDurationMBS:   mbsDur,
		AnalysisDurationMSS:   mssDur,
	}

	if cfg.WithISPs {
		stats := statsForGrouping(f, fbas.GroupByISP(f))
		dp.ISPs = &stats
	}
	if cfg.WithCountries {
		stats := statsForGrouping(f, fbas.GroupByCountry(f))
		dp.Countries = &stats
	}
	if cfg.OrgsSuffix != "" {
		if orgsPath := companionOrgsPath(path, cfg.OrgsSuffix); orgsPath != "" {
			if g, err := fbasio.OrganizationsFromJSONFile(orgsPath, f); err == nil {
				stats := statsForGrouping(f, g)
				dp.Orgs = &stats
			}
		}
	}

	dp.AnalysisDurationTotal = time.Since(start)

	if cfg.Metrics != nil {
		cfg.Metrics.BulkFilesProcessedTotal.Inc()
		cfg.Metrics.BulkAnalysisDuration.Observe(dp.AnalysisDurationTotal.Seconds())
	}

	if cfg.Cache != nil {
		result := cache.Result{
			HasIntersection:      dp.HasQuorumIntersection,
			MinimalQuorums:       fbasio.ToUint32Sets(mq.Sets),
			MinimalBlockingSets:  fbasio.ToUint32Sets(mbs.Sets),
			MinimalSplittingSets: fbasio.ToUint32Sets(mss.Sets),
			ComputedAt:           time.Now().UTC().Format(time.RFC3339),
		}
		if err := cfg.Cache.Put(standardForm, result); err != nil && cfg.Logger != nil {
			cfg.Logger.Warn("failed to write cache entry", zap.String("file", path), zap.Error(err))
		}
	}

	return dp, nil
}

func companionOrgsPath(nodesPath, suffix string) string {
	dir := filepath.Dir(nodesPath)
	base := strings.TrimSuffix(filepath.Base(nodesPath), ".json")
	candidate := filepath.Join(dir, base+suffix+".json")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func statsFrom(topTierSize int, mq, mbs, mss fbas.SetVecResult) GroupStats {
	return GroupStats{
		TopTierSize: topTierSize,
		MBSMin:      mbs.Min(), MBSMax: mbs.Max(), MBSMean: mbs.Mean(),
		MSSMin: mss.Min(), MSSMax: mss.Max(), MSSMean: mss.Mean(),
		MQMin: mq.Min(), MQMax: mq.Max(), MQMean: mq.Mean(),
	}
}

func statsForGrouping(f *fbas.Fbas, g *fbas.Groupings) GroupStats {
	a := analysis.New(f, g)
	mq := a.MinimalQuorums()
	mbs := a.MinimalBlockingSets()
	mss := a.MinimalSplittingSets()
	return statsFrom(a.TopTier().Len(), mq, mbs, mss)
}

func dataPointFromCache(label, hash string, cached cache.Result) DataPoint {
	mq := fbasio.FromUint32Sets(cached.MinimalQuorums)
	mbs := fbasio.FromUint32Sets(cached.MinimalBlockingSets)
	mss := fbasio.FromUint32Sets(cached.MinimalSplittingSets)

	involved := fbas.SetVecResult{Sets: mq}.InvolvedNodes()

	return DataPoint{
		Label:                 label,
		HasQuorumIntersection: cached.HasIntersection,
		Physical: statsFrom(involved.Len(),
			fbas.SetVecResult{Sets: mq}, fbas.SetVecResult{Sets: mbs}, fbas.SetVecResult{Sets: mss}),
		StandardFormHash: hash,
	}
}
