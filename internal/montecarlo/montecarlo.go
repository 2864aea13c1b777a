// Package montecarlo runs CPM repeatedly over sampled task durations to
// forecast completion dates.
package montecarlo

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

const (
	DefaultIterations = 1000
	DefaultBins       = 20
	DefaultDrivers    = 5
)

var tracer = otel.Tracer("tempo.montecarlo")

type Config struct {
	Iterations   int
	Seed         uint64
	Workers      int
	Bins         int
	Distribution Distribution
	// Drivers caps the number of risk drivers reported.
	Drivers int
	// Progress is called from worker goroutines after each iteration and
	// must be safe for concurrent use.
	Progress func(done, total int)
}

func (c Config) withDefaults() Config {
	if c.Iterations <= 0 {
		c.Iterations = DefaultIterations
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Workers > c.Iterations {
		c.Workers = c.Iterations
	}
	if c.Bins <= 0 {
		c.Bins = DefaultBins
	}
	if c.Distribution == "" {
		c.Distribution = Triangular
	}
	if c.Drivers <= 0 {
		c.Drivers = DefaultDrivers
	}
	return c
}

// Driver is a task that was critical in some share of iterations.
type Driver struct {
	TaskID    int
	Name      string
	Count     int
	Frequency float64
}

// Bin counts iterations whose completion fell in [Lower, Upper), measured in
// working time from the project start.
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

type Result struct {
	Iterations    int
	Seed          uint64
	Distribution  Distribution
	Deterministic time.Time
	P50           time.Time
	P80           time.Time
	P90           time.Time
	Earliest      time.Time
	Latest        time.Time
	// Mean, StdDev, Min and Max are in project units from the project start.
	Mean      float64
	StdDev    float64
	Min       float64
	Max       float64
	Histogram []Bin
	Drivers   []Driver
}

// Risk judges the forecast against a target date.
func (r *Result) Risk(now time.Time, target *time.Time) scheduler.RiskResult {
	return scheduler.ComputeRisk(scheduler.RiskInput{
		Now:        now,
		TargetDate: target,
		Finish:     r.Deterministic,
		P50:        r.P50,
		P80:        r.P80,
	})
}

type Simulator struct {
	logger  *slog.Logger
	metrics *Metrics
}

// New returns a simulator. A nil logger discards output and nil metrics
// registers on a private registry.
func New(logger *slog.Logger, metrics *Metrics) *Simulator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Simulator{logger: logger, metrics: metrics}
}

// Run simulates plan cfg.Iterations times. Iteration i draws from a PCG
// stream seeded by (cfg.Seed, i), so the result does not depend on the
// worker count. A cancelled ctx discards partial results and returns the
// context error.
func (s *Simulator) Run(ctx context.Context, plan *scheduler.Plan, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	ctx, span := tracer.Start(ctx, "montecarlo.Run",
		trace.WithAttributes(
			attribute.Int("simulation.iterations", cfg.Iterations),
			attribute.Int("simulation.workers", cfg.Workers),
			attribute.Int("simulation.tasks", plan.Len()),
			attribute.String("simulation.distribution", string(cfg.Distribution)),
		),
	)
	defer span.End()

	started := time.Now()
	s.logger.Debug("simulation started",
		slog.Int("iterations", cfg.Iterations),
		slog.Int("workers", cfg.Workers),
		slog.Uint64("seed", cfg.Seed),
	)

	base := plan.Durations()
	estimates := make(map[int]domain.ThreePoint)
	for i := 0; i < plan.Len(); i++ {
		if plan.IsSummary(i) {
			continue
		}
		if e, ok := plan.Estimate(i); ok {
			estimates[i] = e
		}
	}
	// Sample in index order so each stream is consumed identically.
	sampled := make([]int, 0, len(estimates))
	for i := range estimates {
		sampled = append(sampled, i)
	}
	sort.Ints(sampled)

	finishes := make([]time.Time, cfg.Iterations)
	critical := make([]int, plan.Len())
	var (
		mu   sync.Mutex
		next atomic.Int64
		done atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			local := make([]int, plan.Len())
			durations := make([]float64, len(base))
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				i := int(next.Add(1) - 1)
				if i >= cfg.Iterations {
					break
				}
				copy(durations, base)
				src := rand.NewPCG(cfg.Seed, uint64(i))
				for _, idx := range sampled {
					durations[idx] = sample(estimates[idx], cfg.Distribution, src)
				}
				sched := plan.Run(durations)
				finishes[i] = sched.ProjectFinish
				for _, id := range sched.CriticalIDs() {
					if idx, ok := plan.Index(id); ok {
						local[idx]++
					}
				}
				n := int(done.Add(1))
				if cfg.Progress != nil {
					cfg.Progress(n, cfg.Iterations)
				}
			}
			mu.Lock()
			for i, c := range local {
				critical[i] += c
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.runs.WithLabelValues("cancelled").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "simulation cancelled")
		s.logger.Info("simulation cancelled", slog.Int64("completed", done.Load()))
		return nil, err
	}

	res := summarize(plan, cfg, finishes, critical)
	res.Deterministic = plan.Run(base).ProjectFinish

	elapsed := time.Since(started)
	s.metrics.runs.WithLabelValues("ok").Inc()
	s.metrics.iterations.Add(float64(cfg.Iterations))
	s.metrics.duration.Observe(elapsed.Seconds())
	s.metrics.spread.Set(plan.Calendar().WorkingTimeBetween(res.P50, res.P90))
	span.SetStatus(codes.Ok, "")
	s.logger.Info("simulation finished",
		slog.Int("iterations", cfg.Iterations),
		slog.Duration("duration", elapsed),
		slog.Time("p50", res.P50),
		slog.Time("p90", res.P90),
	)
	return res, nil
}

func summarize(plan *scheduler.Plan, cfg Config, finishes []time.Time, critical []int) *Result {
	n := len(finishes)
	sorted := append([]time.Time(nil), finishes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	cal := plan.Calendar()
	start := plan.ProjectStart()
	offsets := make([]float64, n)
	for i, f := range sorted {
		offsets[i] = cal.WorkingTimeBetween(start, f)
	}
	mean, std := stat.MeanStdDev(offsets, nil)
	if n < 2 {
		std = 0
	}

	res := &Result{
		Iterations:   n,
		Seed:         cfg.Seed,
		Distribution: cfg.Distribution,
		P50:          sorted[percentileIndex(0.5, n)],
		P80:          sorted[percentileIndex(0.8, n)],
		P90:          sorted[percentileIndex(0.9, n)],
		Earliest:     sorted[0],
		Latest:       sorted[n-1],
		Mean:         mean,
		StdDev:       std,
		Min:          floats.Min(offsets),
		Max:          floats.Max(offsets),
		Histogram:    histogram(offsets, cfg.Bins),
	}

	for i, c := range critical {
		if c == 0 {
			continue
		}
		res.Drivers = append(res.Drivers, Driver{
			TaskID:    plan.TaskID(i),
			Name:      plan.Name(i),
			Count:     c,
			Frequency: float64(c) / float64(n),
		})
	}
	sort.Slice(res.Drivers, func(i, j int) bool {
		if res.Drivers[i].Count != res.Drivers[j].Count {
			return res.Drivers[i].Count > res.Drivers[j].Count
		}
		return res.Drivers[i].TaskID < res.Drivers[j].TaskID
	})
	if len(res.Drivers) > cfg.Drivers {
		res.Drivers = res.Drivers[:cfg.Drivers]
	}
	return res
}

// percentileIndex is floor(p*n) clamped to the last sample.
func percentileIndex(p float64, n int) int {
	i := int(math.Floor(p * float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}

// histogram buckets sorted offsets into bins of equal width. A zero spread
// collapses into a single bin.
func histogram(sorted []float64, bins int) []Bin {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi-lo <= 1e-9 {
		return []Bin{{Lower: lo, Upper: hi, Count: len(sorted)}}
	}
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	return out
}
