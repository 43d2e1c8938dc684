package sim

import (
	"context"
	"log/slog"
	"sync"

	"github.com/san-kum/mbsim/internal/compute"
)

// Ensemble runs the same configuration with consecutive seeds concurrently.
// Every run gets its own device and metrics from the factories, and logs
// through Logger tagged with its seed.
type Ensemble struct {
	cfg       Config
	numRuns   int
	seedStart int64

	NewDevice  func() (compute.Device, error)
	NewMetrics func() []Metric
	Logger     *slog.Logger
}

func NewEnsemble(cfg Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		cfg:       cfg,
		numRuns:   numRuns,
		seedStart: seedStart,
		NewDevice: func() (compute.Device, error) {
			return compute.NewCPUDevice(cfg.Workers), nil
		},
	}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			dev, err := e.NewDevice()
			if err != nil {
				errs[idx] = err
				return
			}
			defer dev.Close()

			cfg := e.cfg
			cfg.Seed = e.seedStart + int64(idx)

			d := New(cfg, dev)
			logger := e.Logger
			if logger == nil {
				logger = slog.Default()
			}
			d.SetLogger(logger.With("seed", cfg.Seed))
			if e.NewMetrics != nil {
				for _, m := range e.NewMetrics() {
					d.AddMetric(m)
				}
			}

			results[idx], errs[idx] = d.Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
