// Package memory provides mutex-guarded in-process stores used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

// ReferenceStore holds flocks, daily records, benchmark curves and crate types.
type ReferenceStore struct {
	mu      sync.RWMutex
	flocks  map[string]models.Flock
	records map[string]map[int]models.DailyRecord
	curves  map[string]models.BenchmarkCurve
	crates  map[string]models.CrateType
}

// NewReferenceStore creates an empty reference store.
func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		flocks:  make(map[string]models.Flock),
		records: make(map[string]map[int]models.DailyRecord),
		curves:  make(map[string]models.BenchmarkCurve),
		crates:  make(map[string]models.CrateType),
	}
}

// PutFlock inserts or replaces a flock.
func (s *ReferenceStore) PutFlock(flock models.Flock) error {
	if err := flock.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flocks[flock.ID] = flock
	return nil
}

// PutDailyRecord inserts or replaces the record for its day.
func (s *ReferenceStore) PutDailyRecord(record models.DailyRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flocks[record.FlockID]; !ok {
		return fmt.Errorf("%w: flock %s", models.ErrNotFound, record.FlockID)
	}
	byDay, ok := s.records[record.FlockID]
	if !ok {
		byDay = make(map[int]models.DailyRecord)
		s.records[record.FlockID] = byDay
	}
	byDay[record.DayNumber] = record
	return nil
}

// PutBenchmarkCurve inserts or replaces a breed curve.
func (s *ReferenceStore) PutBenchmarkCurve(curve models.BenchmarkCurve) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.curves[curve.Breed] = models.NewBenchmarkCurve(curve.Breed, curve.Points)
}

// PutCrateType inserts or replaces a crate type.
func (s *ReferenceStore) PutCrateType(crate models.CrateType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crates[crate.ID] = crate
}

// GetFlock returns a flock by id.
func (s *ReferenceStore) GetFlock(_ context.Context, flockID string) (models.Flock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flock, ok := s.flocks[flockID]
	if !ok {
		return models.Flock{}, fmt.Errorf("%w: flock %s", models.ErrNotFound, flockID)
	}
	return flock, nil
}

// ListFlocks returns all flocks ordered by id.
func (s *ReferenceStore) ListFlocks(_ context.Context) ([]models.Flock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Flock, 0, len(s.flocks))
	for _, f := range s.flocks {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListDailyRecords returns a flock's records ordered by day.
func (s *ReferenceStore) ListDailyRecords(_ context.Context, flockID string) ([]models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.flocks[flockID]; !ok {
		return nil, fmt.Errorf("%w: flock %s", models.ErrNotFound, flockID)
	}
	out := make([]models.DailyRecord, 0, len(s.records[flockID]))
	for _, r := range s.records[flockID] {
		out = append(out, r)
	}
	models.SortRecords(out)
	return out, nil
}

// GetBenchmarkCurve returns the curve of a breed.
func (s *ReferenceStore) GetBenchmarkCurve(_ context.Context, breed string) (models.BenchmarkCurve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	curve, ok := s.curves[breed]
	if !ok {
		return models.BenchmarkCurve{}, fmt.Errorf("%w: benchmark curve %s", models.ErrNotFound, breed)
	}
	return curve, nil
}

// GetCrateType returns a crate type by id.
func (s *ReferenceStore) GetCrateType(_ context.Context, crateTypeID string) (models.CrateType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	crate, ok := s.crates[crateTypeID]
	if !ok {
		return models.CrateType{}, fmt.Errorf("%w: crate type %s", models.ErrNotFound, crateTypeID)
	}
	return crate, nil
}
