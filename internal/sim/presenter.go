package sim

import (
	"context"
	"log/slog"

	"github.com/san-kum/mbsim/internal/particle"
)

// Presenter consumes the frame produced at the end of every tick. The frame
// buffers are only valid for the duration of the call. Returning ErrHalt
// stops the run; any other error aborts it.
type Presenter interface {
	Present(ctx context.Context, f particle.Frame) error
}

type PresenterFunc func(ctx context.Context, f particle.Frame) error

func (fn PresenterFunc) Present(ctx context.Context, f particle.Frame) error {
	return fn(ctx, f)
}

// LogPresenter logs the per-iteration statistics every Every ticks.
// time_taken is the compute time of the logged tick alone.
type LogPresenter struct {
	Logger *slog.Logger
	Every  int
}

func NewLogPresenter(logger *slog.Logger, every int) *LogPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	if every <= 0 {
		every = 1
	}
	return &LogPresenter{Logger: logger, Every: every}
}

func (p *LogPresenter) Present(ctx context.Context, f particle.Frame) error {
	if f.Tick%p.Every != 0 {
		return nil
	}
	p.Logger.InfoContext(ctx, "tick",
		"iteration", f.Tick,
		"mean_sq", f.MeanSq,
		"collisions", f.Collisions,
		"time_taken", f.Elapsed,
	)
	return nil
}

// Limit halts the run once Ticks frames have been presented.
func Limit(ticks int) Presenter {
	return PresenterFunc(func(_ context.Context, f particle.Frame) error {
		if f.Tick+1 >= ticks {
			return ErrHalt
		}
		return nil
	})
}
