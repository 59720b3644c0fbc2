package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

// ReferenceSeed is the file layout accepted by LoadReferenceFile.
type ReferenceSeed struct {
	Flocks       []models.Flock          `json:"flocks"`
	DailyRecords []models.DailyRecord    `json:"daily_records"`
	Benchmarks   []models.BenchmarkCurve `json:"benchmarks"`
	CrateTypes   []models.CrateType      `json:"crate_types"`
}

// LoadReferenceFile builds a reference store from a JSON seed file.
func LoadReferenceFile(path string) (*ReferenceStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference file %s: %w", path, err)
	}
	var seed ReferenceSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("%w: reference file %s: %v", models.ErrInvalidInput, path, err)
	}
	return NewSeededReferenceStore(seed)
}

// NewSeededReferenceStore validates and loads every entry of seed. Flocks are
// loaded before the daily records that reference them.
func NewSeededReferenceStore(seed ReferenceSeed) (*ReferenceStore, error) {
	store := NewReferenceStore()
	for _, f := range seed.Flocks {
		if err := store.PutFlock(f); err != nil {
			return nil, fmt.Errorf("seed flock %s: %w", f.ID, err)
		}
	}
	for _, r := range seed.DailyRecords {
		if err := store.PutDailyRecord(r); err != nil {
			return nil, fmt.Errorf("seed record %s day %d: %w", r.FlockID, r.DayNumber, err)
		}
	}
	for _, c := range seed.Benchmarks {
		store.PutBenchmarkCurve(c)
	}
	for _, c := range seed.CrateTypes {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: seed crate type without id", models.ErrInvalidInput)
		}
		store.PutCrateType(c)
	}
	return store, nil
}
