package models

import (
	"fmt"
	"time"
)

// Season affects the stocking density allowed in a crate.
type Season string

const (
	SeasonSummer Season = "summer"
	SeasonWinter Season = "winter"
)

// ParseSeason validates a season label.
func ParseSeason(value string) (Season, error) {
	switch Season(value) {
	case SeasonSummer, SeasonWinter:
		return Season(value), nil
	default:
		return "", fmt.Errorf("%w: unknown season %q", ErrInvalidInput, value)
	}
}

// WeighingKind is the label of a weighing method.
type WeighingKind string

const (
	WeighingIndividual        WeighingKind = "individual"
	WeighingDigitalScaleStack WeighingKind = "digital_scale_stack"
	WeighingPlatformScale     WeighingKind = "platform_scale"
)

// WeighingMethod is the closed set of ways birds are weighed during a catch.
// It is fixed when the session starts.
type WeighingMethod interface {
	Kind() WeighingKind
	// UsesBatches reports whether rows are recorded as crate batches rather than single crates.
	UsesBatches() bool
	weighingMethod()
}

// Individual weighs one crate at a time against the catalog tare.
type Individual struct{}

// DigitalScaleStack weighs a stack of crates with a manually entered crate tare.
type DigitalScaleStack struct{}

// PlatformScale weighs a pallet of crates; the pallet weight is subtracted from every batch.
type PlatformScale struct {
	PalletWeightKg float64
}

func (Individual) Kind() WeighingKind        { return WeighingIndividual }
func (DigitalScaleStack) Kind() WeighingKind { return WeighingDigitalScaleStack }
func (PlatformScale) Kind() WeighingKind     { return WeighingPlatformScale }

func (Individual) UsesBatches() bool        { return false }
func (DigitalScaleStack) UsesBatches() bool { return true }
func (PlatformScale) UsesBatches() bool     { return true }

func (Individual) weighingMethod()        {}
func (DigitalScaleStack) weighingMethod() {}
func (PlatformScale) weighingMethod()     {}

// NewWeighingMethod builds the variant for kind. The pallet weight is required for
// platform scales and rejected for every other method.
func NewWeighingMethod(kind WeighingKind, palletWeightKg *float64) (WeighingMethod, error) {
	switch kind {
	case WeighingIndividual, WeighingDigitalScaleStack:
		if palletWeightKg != nil {
			return nil, fmt.Errorf("%w: pallet weight only applies to %s", ErrInvalidInput, WeighingPlatformScale)
		}
		if kind == WeighingIndividual {
			return Individual{}, nil
		}
		return DigitalScaleStack{}, nil
	case WeighingPlatformScale:
		if palletWeightKg == nil || *palletWeightKg <= 0 {
			return nil, fmt.Errorf("%w: pallet weight is required for %s", ErrInvalidInput, WeighingPlatformScale)
		}
		return PlatformScale{PalletWeightKg: *palletWeightKg}, nil
	default:
		return nil, fmt.Errorf("%w: unknown weighing method %q", ErrInvalidInput, kind)
	}
}

// PalletWeight returns the pallet weight of a platform-scale method.
func PalletWeight(m WeighingMethod) (float64, bool) {
	if p, ok := m.(PlatformScale); ok {
		return p.PalletWeightKg, true
	}
	return 0, false
}

// DensityPlan is the crate distribution computed when a catch starts.
type DensityPlan struct {
	CrateTypeID            string   `json:"crate_type_id" bson:"crate_type_id"`
	Season                 Season   `json:"season" bson:"season"`
	TransportDurationHours *float64 `json:"transport_duration_hours,omitempty" bson:"transport_duration_hours,omitempty"`
	StandardDensity        int      `json:"planned_standard_density" bson:"standard_density"`
	StandardCrates         int      `json:"planned_standard_crates" bson:"standard_crates"`
	OddDensity             int      `json:"planned_odd_density" bson:"odd_density"`
	OddCrates              int      `json:"planned_odd_crates" bson:"odd_crates"`
	PlannedTotalBirds      int      `json:"planned_total_birds" bson:"planned_total_birds"`
	AvailableCrates        int      `json:"available_crates" bson:"available_crates"`
}

// SessionStatus is the catch session lifecycle state.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// CatchCrate is one individually weighed crate.
type CatchCrate struct {
	CrateNumber         int       `json:"crate_number" bson:"crate_number"`
	CrateTypeID         string    `json:"crate_type_id" bson:"crate_type_id"`
	BirdCount           int       `json:"bird_count" bson:"bird_count"`
	GrossWeightKg       float64   `json:"gross_weight_kg" bson:"gross_weight_kg"`
	TareWeightKg        float64   `json:"tare_weight_kg" bson:"tare_weight_kg"`
	NetWeightKg         float64   `json:"net_weight_kg" bson:"net_weight_kg"`
	AverageBirdWeightKg float64   `json:"average_bird_weight_kg" bson:"average_bird_weight_kg"`
	RecordedAt          time.Time `json:"recorded_at" bson:"recorded_at"`
}

// CatchBatch is a stack or pallet of crates weighed together.
type CatchBatch struct {
	ID                  string    `json:"id" bson:"id"`
	BatchNumber         int       `json:"batch_number" bson:"batch_number"`
	CrateTypeID         string    `json:"crate_type_id" bson:"crate_type_id"`
	NumberOfCrates      int       `json:"number_of_crates" bson:"number_of_crates"`
	BirdsPerCrate       int       `json:"birds_per_crate" bson:"birds_per_crate"`
	TotalGrossWeightKg  float64   `json:"total_gross_weight_kg" bson:"total_gross_weight_kg"`
	CrateWeightKg       float64   `json:"crate_weight_kg" bson:"crate_weight_kg"`
	PalletWeightKg      *float64  `json:"pallet_weight_kg,omitempty" bson:"pallet_weight_kg,omitempty"`
	TotalNetWeightKg    float64   `json:"total_net_weight_kg" bson:"total_net_weight_kg"`
	TotalBirds          int       `json:"total_birds" bson:"total_birds"`
	AverageBirdWeightKg float64   `json:"average_bird_weight_kg" bson:"average_bird_weight_kg"`
	RecordedAt          time.Time `json:"recorded_at" bson:"recorded_at"`
}

// SessionTotals are the running aggregates of a session. They are only ever
// produced by folding the session's crates or batches.
type SessionTotals struct {
	BirdsCaught       int     `json:"total_birds_caught"`
	NetWeightKg       float64 `json:"total_net_weight_kg"`
	AverageBirdWeight Metric  `json:"average_bird_weight_kg"`
}

// CatchSession is one catching operation on a flock.
type CatchSession struct {
	ID              string
	FlockID         string
	CatchDate       time.Time
	CatchTeam       string
	Method          WeighingMethod
	TargetBirds     *int
	TargetWeightKg  *float64
	Status          SessionStatus
	Plan            *DensityPlan
	Crates          []CatchCrate
	Batches         []CatchBatch
	LastCrateNumber int
	LastBatchNumber int
	Totals          SessionTotals
	Notes           string
	HarvestRecordID string
	CreatedAt       time.Time
	CompletedAt     *time.Time
	Version         int64
}

// Clone returns a deep copy so a mutation can be validated and folded before it is committed.
func (s *CatchSession) Clone() *CatchSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Crates = append([]CatchCrate(nil), s.Crates...)
	out.Batches = make([]CatchBatch, len(s.Batches))
	for i, b := range s.Batches {
		if b.PalletWeightKg != nil {
			p := *b.PalletWeightKg
			b.PalletWeightKg = &p
		}
		out.Batches[i] = b
	}
	if s.Plan != nil {
		plan := *s.Plan
		out.Plan = &plan
	}
	if s.TargetBirds != nil {
		v := *s.TargetBirds
		out.TargetBirds = &v
	}
	if s.TargetWeightKg != nil {
		v := *s.TargetWeightKg
		out.TargetWeightKg = &v
	}
	if s.CompletedAt != nil {
		v := *s.CompletedAt
		out.CompletedAt = &v
	}
	return &out
}

// RowCount is the number of recorded crates or batches.
func (s *CatchSession) RowCount() int {
	return len(s.Crates) + len(s.Batches)
}
