package storage

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"
)

type ExportData struct {
	Run   RunMetadata   `json:"run"`
	Ticks []*TickRecord `json:"ticks"`
}

// ExportJSON writes a run's metadata and tick statistics as one document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	ticks, err := s.LoadTicks(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: *meta, Ticks: ticks})
}

// ExportCSV writes the tick statistics, or the final particle snapshot when
// particles is set.
func (s *Store) ExportCSV(w io.Writer, runID string, particles bool) error {
	if particles {
		st, err := s.LoadParticles(runID)
		if err != nil {
			return err
		}
		return gocsv.Marshal(ParticleRecords(st), w)
	}

	ticks, err := s.LoadTicks(runID)
	if err != nil {
		return err
	}
	return gocsv.Marshal(ticks, w)
}
