package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/particle"
	"github.com/san-kum/mbsim/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile  = "metadata.json"
	ticksFile     = "ticks.csv"
	particlesFile = "particles.csv"
)

// Store keeps finished runs as one directory each under baseDir. Runs are
// records of results; they cannot be resumed.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Device      string             `json:"device"`
	N           int                `json:"n"`
	Layout      string             `json:"layout"`
	Seed        int64              `json:"seed"`
	Radius      float64            `json:"radius"`
	Bounds      float64            `json:"bounds"`
	Speed       float64            `json:"speed"`
	Dt          float64            `json:"dt"`
	Ticks       int                `json:"ticks"`
	Completed   int                `json:"completed"`
	Halted      bool               `json:"halted"`
	Elapsed     time.Duration      `json:"elapsed_ns"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Bins        int                `json:"bins,omitempty"`
	BinWidth    float64            `json:"bin_width,omitempty"`
}

// HistogramSettings are the speed histogram parameters a run was analysed
// with.
type HistogramSettings struct {
	Bins  int
	Width float64
}

// Histogram returns the run's histogram settings, falling back to the
// defaults for runs stored without them.
func (m RunMetadata) Histogram() HistogramSettings {
	h := HistogramSettings{Bins: m.Bins, Width: m.BinWidth}
	if h.Bins <= 0 {
		h.Bins = analysis.DefaultBins
	}
	if h.Width <= 0 {
		h.Width = analysis.DefaultWidth
	}
	return h
}

// TickRecord is one row of ticks.csv. Durations are in microseconds.
type TickRecord struct {
	Tick       int     `csv:"tick"`
	SumSq      float64 `csv:"sum_sq"`
	MeanSq     float64 `csv:"mean_sq"`
	Collisions int     `csv:"collisions"`
	WallUs     float64 `csv:"wall_us"`
	CollideUs  float64 `csv:"collide_us"`
	IntegUs    float64 `csv:"integrate_us"`
	ReduceUs   float64 `csv:"reduce_us"`
}

// ParticleRecord is one row of particles.csv.
type ParticleRecord struct {
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	VX    float64 `csv:"vx"`
	VY    float64 `csv:"vy"`
}

func TickRecords(ticks []sim.TickStats) []*TickRecord {
	records := make([]*TickRecord, len(ticks))
	for i, t := range ticks {
		records[i] = &TickRecord{
			Tick:       t.Tick,
			SumSq:      t.SumSq,
			MeanSq:     t.MeanSq,
			Collisions: t.Collisions,
			WallUs:     micros(t.Wall),
			CollideUs:  micros(t.Collide),
			IntegUs:    micros(t.Integrate),
			ReduceUs:   micros(t.Reduce),
		}
	}
	return records
}

func ParticleRecords(s *particle.Store) []*ParticleRecord {
	records := make([]*ParticleRecord, s.N)
	for i := range records {
		records[i] = &ParticleRecord{
			Index: i,
			X:     s.Pos[2*i],
			Y:     s.Pos[2*i+1],
			VX:    s.Vel[2*i],
			VY:    s.Vel[2*i+1],
		}
	}
	return records
}

func micros(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

// Save writes the run's metadata, per-tick statistics and final snapshot.
func (s *Store) Save(result *sim.Result, hist HistogramSettings) (string, error) {
	cfg := result.Config
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Layout, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   now,
		Device:      result.Device,
		N:           cfg.N,
		Layout:      string(cfg.Layout),
		Seed:        cfg.Seed,
		Radius:      cfg.Radius,
		Bounds:      cfg.Bounds,
		Speed:       cfg.Speed,
		Dt:          cfg.Dt,
		Ticks:       cfg.Ticks,
		Completed:   len(result.Ticks),
		Halted:      result.Halted,
		Elapsed:     result.Elapsed,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
		Bins:        hist.Bins,
		BinWidth:    hist.Width,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, ticksFile), TickRecords(result.Ticks)); err != nil {
		return "", err
	}
	if result.Final != nil {
		if err := writeCSV(filepath.Join(runDir, particlesFile), ParticleRecords(result.Final)); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, records any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(records, f)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTicks(runID string) ([]*TickRecord, error) {
	var records []*TickRecord
	if err := s.readCSV(runID, ticksFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadParticles returns the final snapshot of a run.
func (s *Store) LoadParticles(runID string) (*particle.Store, error) {
	var records []*ParticleRecord
	if err := s.readCSV(runID, particlesFile, &records); err != nil {
		return nil, err
	}

	st := particle.NewStore(len(records))
	for i, r := range records {
		st.Pos[2*i], st.Pos[2*i+1] = r.X, r.Y
		st.Vel[2*i], st.Vel[2*i+1] = r.VX, r.VY
	}
	return st, nil
}

func (s *Store) readCSV(runID, name string, out any) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", ErrRunNotFound, runID, name)
		}
		return err
	}
	defer f.Close()
	return gocsv.UnmarshalFile(f, out)
}

// Latest returns the ID of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrRunNotFound
	}
	return runs[len(runs)-1].ID, nil
}
