package catching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/domain/models"
	"github.com/mamadbah2/broiler/internal/service/shrinkage"
)

// SessionStore persists catch sessions together with their crates and batches.
// Save must reject a session whose Version no longer matches the stored one.
type SessionStore interface {
	Create(ctx context.Context, session *models.CatchSession) error
	Get(ctx context.Context, sessionID string) (*models.CatchSession, error)
	Save(ctx context.Context, session *models.CatchSession) error
	FindByBatch(ctx context.Context, batchID string) (string, error)
	ListByFlock(ctx context.Context, flockID string) ([]*models.CatchSession, error)
}

// HarvestRecorder creates the harvest record for a completed session. It keeps
// one record per session: a repeated call for the same session replaces the
// figures and returns the same id, so a retried completion never duplicates.
type HarvestRecorder interface {
	CreateHarvestRecord(ctx context.Context, req models.HarvestRequest) (string, error)
}

// ReferenceData resolves flocks and crate types.
type ReferenceData interface {
	GetFlock(ctx context.Context, flockID string) (models.Flock, error)
	GetCrateType(ctx context.Context, crateTypeID string) (models.CrateType, error)
}

// Notifier is told about completed sessions. Failures are logged, never returned.
type Notifier interface {
	NotifyCatchCompleted(ctx context.Context, session *models.CatchSession, harvestRecordID string) error
}

// StartRequest opens a catch session.
type StartRequest struct {
	FlockID        string
	CatchDate      time.Time
	CatchTeam      string
	Method         models.WeighingKind
	PalletWeightKg *float64
	TargetBirds    *int
	TargetWeightKg *float64
	Plan           *models.DensityPlan
}

// AddCrateRequest records one individually weighed crate.
type AddCrateRequest struct {
	SessionID     string
	CrateTypeID   string
	BirdCount     int
	GrossWeightKg float64
}

// CrateResult is returned after a crate is recorded.
type CrateResult struct {
	CrateNumber         int                  `json:"crate_number"`
	NetWeightKg         float64              `json:"net_weight"`
	AverageBirdWeightKg float64              `json:"average_bird_weight"`
	Totals              models.SessionTotals `json:"session_totals"`
}

// AddBatchRequest records a stack or pallet of crates.
type AddBatchRequest struct {
	SessionID          string
	CrateTypeID        string
	NumberOfCrates     int
	BirdsPerCrate      int
	TotalGrossWeightKg float64
	CrateWeightKg      float64
	PalletWeightKg     *float64
}

// BatchResult is returned after a batch is recorded.
type BatchResult struct {
	BatchID             string               `json:"batch_id"`
	BatchNumber         int                  `json:"batch_number"`
	CratesInBatch       int                  `json:"crates_in_batch"`
	TotalBirds          int                  `json:"total_birds"`
	TotalNetWeightKg    float64              `json:"total_net_weight"`
	AverageBirdWeightKg float64              `json:"average_bird_weight"`
	Totals              models.SessionTotals `json:"session_totals"`
}

// CompleteResult is returned when a session is completed.
type CompleteResult struct {
	HarvestRecordID string               `json:"harvest_record_id"`
	Totals          models.SessionTotals `json:"session_totals"`
}

// Service runs the catch session state machine. Every mutation of a session is
// serialised per session and commits a fully re-folded copy or nothing.
type Service struct {
	store    SessionStore
	harvest  HarvestRecorder
	ref      ReferenceData
	planner  *shrinkage.Planner
	notifier Notifier
	locks    *sessionLocks
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires the catch session service. The notifier may be nil.
func NewService(store SessionStore, harvest HarvestRecorder, ref ReferenceData, planner *shrinkage.Planner, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if planner == nil {
		planner = shrinkage.NewDefaultPlanner()
	}
	return &Service{
		store:    store,
		harvest:  harvest,
		ref:      ref,
		planner:  planner,
		notifier: notifier,
		locks:    newSessionLocks(),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Start opens an active session for a flock that is growing or being harvested.
func (s *Service) Start(ctx context.Context, req StartRequest) (*models.CatchSession, error) {
	if req.FlockID == "" {
		return nil, fmt.Errorf("%w: flock id is required", models.ErrInvalidInput)
	}
	method, err := models.NewWeighingMethod(req.Method, req.PalletWeightKg)
	if err != nil {
		return nil, err
	}
	if req.TargetBirds != nil && *req.TargetBirds <= 0 {
		return nil, fmt.Errorf("%w: target birds must be positive", models.ErrInvalidInput)
	}
	if req.TargetWeightKg != nil && *req.TargetWeightKg <= 0 {
		return nil, fmt.Errorf("%w: target weight must be positive", models.ErrInvalidInput)
	}
	if err := s.validatePlan(ctx, req.Plan); err != nil {
		return nil, err
	}

	flock, err := s.ref.GetFlock(ctx, req.FlockID)
	if err != nil {
		return nil, fmt.Errorf("load flock %s: %w", req.FlockID, err)
	}
	if !flock.AcceptsCatching() {
		return nil, fmt.Errorf("%w: flock %s is %s", models.ErrInvalidInput, flock.ID, flock.Status)
	}

	now := s.now().UTC()
	catchDate := req.CatchDate
	if catchDate.IsZero() {
		catchDate = now
	}

	session := &models.CatchSession{
		ID:             s.newID(),
		FlockID:        flock.ID,
		CatchDate:      catchDate,
		CatchTeam:      req.CatchTeam,
		Method:         method,
		TargetBirds:    req.TargetBirds,
		TargetWeightKg: req.TargetWeightKg,
		Status:         models.SessionActive,
		Plan:           req.Plan,
		CreatedAt:      now,
	}
	refold(session)

	if err := s.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create catch session: %w", err)
	}

	s.logger.Info("catch session started",
		zap.String("session_id", session.ID),
		zap.String("flock_id", session.FlockID),
		zap.String("weighing_method", string(method.Kind())))

	return session, nil
}

// Get returns a session with its totals re-derived from its rows.
func (s *Service) Get(ctx context.Context, sessionID string) (*models.CatchSession, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	refold(session)
	return session, nil
}

// ListByFlock returns the sessions recorded for a flock.
func (s *Service) ListByFlock(ctx context.Context, flockID string) ([]*models.CatchSession, error) {
	sessions, err := s.store.ListByFlock(ctx, flockID)
	if err != nil {
		return nil, fmt.Errorf("list catch sessions for flock %s: %w", flockID, err)
	}
	for _, session := range sessions {
		refold(session)
	}
	return sessions, nil
}

// AddCrate records an individually weighed crate.
func (s *Service) AddCrate(ctx context.Context, req AddCrateRequest) (CrateResult, error) {
	if req.CrateTypeID == "" {
		return CrateResult{}, fmt.Errorf("%w: crate type is required", models.ErrInvalidInput)
	}
	if req.BirdCount <= 0 {
		return CrateResult{}, fmt.Errorf("%w: bird count must be positive", models.ErrInvalidInput)
	}
	crateType, err := s.crateType(ctx, req.CrateTypeID)
	if err != nil {
		return CrateResult{}, err
	}
	if req.GrossWeightKg <= crateType.TareWeightKg {
		return CrateResult{}, fmt.Errorf("%w: gross weight %.3f kg does not exceed tare %.3f kg", models.ErrInvalidInput, req.GrossWeightKg, crateType.TareWeightKg)
	}

	var crate models.CatchCrate
	session, err := s.mutate(ctx, req.SessionID, func(session *models.CatchSession) error {
		if session.Method.UsesBatches() {
			return fmt.Errorf("%w: session %s records batches, not crates", models.ErrInvalidInput, session.ID)
		}
		net := CrateNet(req.GrossWeightKg, crateType.TareWeightKg)
		session.LastCrateNumber++
		crate = models.CatchCrate{
			CrateNumber:         session.LastCrateNumber,
			CrateTypeID:         crateType.ID,
			BirdCount:           req.BirdCount,
			GrossWeightKg:       req.GrossWeightKg,
			TareWeightKg:        crateType.TareWeightKg,
			NetWeightKg:         net,
			AverageBirdWeightKg: net / float64(req.BirdCount),
			RecordedAt:          s.now().UTC(),
		}
		session.Crates = append(session.Crates, crate)
		return nil
	})
	if err != nil {
		return CrateResult{}, err
	}

	return CrateResult{
		CrateNumber:         crate.CrateNumber,
		NetWeightKg:         crate.NetWeightKg,
		AverageBirdWeightKg: crate.AverageBirdWeightKg,
		Totals:              session.Totals,
	}, nil
}

// DeleteCrate removes a crate from an individual-weighing session.
func (s *Service) DeleteCrate(ctx context.Context, sessionID string, crateNumber int) (models.SessionTotals, error) {
	session, err := s.mutate(ctx, sessionID, func(session *models.CatchSession) error {
		for i, c := range session.Crates {
			if c.CrateNumber == crateNumber {
				session.Crates = append(session.Crates[:i], session.Crates[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: crate %d in session %s", models.ErrNotFound, crateNumber, sessionID)
	})
	if err != nil {
		return models.SessionTotals{}, err
	}
	return session.Totals, nil
}

// AddBatch records a stack or pallet of crates weighed together.
func (s *Service) AddBatch(ctx context.Context, req AddBatchRequest) (BatchResult, error) {
	switch {
	case req.CrateTypeID == "":
		return BatchResult{}, fmt.Errorf("%w: crate type is required", models.ErrInvalidInput)
	case req.NumberOfCrates <= 0:
		return BatchResult{}, fmt.Errorf("%w: number of crates must be positive", models.ErrInvalidInput)
	case req.BirdsPerCrate <= 0:
		return BatchResult{}, fmt.Errorf("%w: birds per crate must be positive", models.ErrInvalidInput)
	case req.CrateWeightKg <= 0:
		return BatchResult{}, fmt.Errorf("%w: crate weight must be positive", models.ErrInvalidInput)
	case req.TotalGrossWeightKg <= 0:
		return BatchResult{}, fmt.Errorf("%w: total gross weight must be positive", models.ErrInvalidInput)
	case req.PalletWeightKg != nil && *req.PalletWeightKg <= 0:
		return BatchResult{}, fmt.Errorf("%w: pallet weight must be positive", models.ErrInvalidInput)
	}
	if _, err := s.crateType(ctx, req.CrateTypeID); err != nil {
		return BatchResult{}, err
	}

	var batch models.CatchBatch
	session, err := s.mutate(ctx, req.SessionID, func(session *models.CatchSession) error {
		if !session.Method.UsesBatches() {
			return fmt.Errorf("%w: session %s records individual crates, not batches", models.ErrInvalidInput, session.ID)
		}

		var pallet *float64
		if sessionPallet, ok := models.PalletWeight(session.Method); ok {
			p := sessionPallet
			if req.PalletWeightKg != nil {
				p = *req.PalletWeightKg
			}
			pallet = &p
		} else if req.PalletWeightKg != nil {
			return fmt.Errorf("%w: pallet weight only applies to %s", models.ErrInvalidInput, models.WeighingPlatformScale)
		}

		palletKg := 0.0
		if pallet != nil {
			palletKg = *pallet
		}
		net := BatchNet(req.TotalGrossWeightKg, req.CrateWeightKg, req.NumberOfCrates, palletKg)
		if net <= 0 {
			return fmt.Errorf("%w: gross weight %.3f kg does not exceed crate and pallet tare", models.ErrInvalidInput, req.TotalGrossWeightKg)
		}

		birds := req.NumberOfCrates * req.BirdsPerCrate
		session.LastBatchNumber++
		batch = models.CatchBatch{
			ID:                  s.newID(),
			BatchNumber:         session.LastBatchNumber,
			CrateTypeID:         req.CrateTypeID,
			NumberOfCrates:      req.NumberOfCrates,
			BirdsPerCrate:       req.BirdsPerCrate,
			TotalGrossWeightKg:  req.TotalGrossWeightKg,
			CrateWeightKg:       req.CrateWeightKg,
			PalletWeightKg:      pallet,
			TotalNetWeightKg:    net,
			TotalBirds:          birds,
			AverageBirdWeightKg: net / float64(birds),
			RecordedAt:          s.now().UTC(),
		}
		session.Batches = append(session.Batches, batch)
		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}

	return BatchResult{
		BatchID:             batch.ID,
		BatchNumber:         batch.BatchNumber,
		CratesInBatch:       batch.NumberOfCrates,
		TotalBirds:          batch.TotalBirds,
		TotalNetWeightKg:    batch.TotalNetWeightKg,
		AverageBirdWeightKg: batch.AverageBirdWeightKg,
		Totals:              session.Totals,
	}, nil
}

// DeleteBatch removes a batch and re-folds its session.
func (s *Service) DeleteBatch(ctx context.Context, batchID string) (models.SessionTotals, error) {
	if batchID == "" {
		return models.SessionTotals{}, fmt.Errorf("%w: batch id is required", models.ErrInvalidInput)
	}
	sessionID, err := s.store.FindByBatch(ctx, batchID)
	if err != nil {
		return models.SessionTotals{}, err
	}

	session, err := s.mutate(ctx, sessionID, func(session *models.CatchSession) error {
		for i, b := range session.Batches {
			if b.ID == batchID {
				session.Batches = append(session.Batches[:i], session.Batches[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: catch batch %s", models.ErrNotFound, batchID)
	})
	if err != nil {
		return models.SessionTotals{}, err
	}
	return session.Totals, nil
}

// Complete closes the session and emits its harvest record. Sessions without
// any recorded crate or batch cannot be completed.
func (s *Service) Complete(ctx context.Context, sessionID, notes string) (CompleteResult, error) {
	var harvestID string
	session, err := s.mutate(ctx, sessionID, func(session *models.CatchSession) error {
		if session.RowCount() == 0 {
			return fmt.Errorf("%w: session %s has no recorded crates or batches", models.ErrInvalidState, session.ID)
		}
		refold(session)

		avg, _ := session.Totals.AverageBirdWeight.Value()
		req := models.HarvestRequest{
			SessionID:                session.ID,
			FlockID:                  session.FlockID,
			CatchDate:                session.CatchDate,
			WeighingMethod:           string(session.Method.Kind()),
			TotalBirds:               session.Totals.BirdsCaught,
			TotalNetWeightKg:         session.Totals.NetWeightKg,
			AverageBirdWeightKg:      avg,
			EstimatedDeliveredWeight: s.planner.DeliveredWeight(session.Totals.NetWeightKg),
			Notes:                    notes,
			CreatedAt:                s.now().UTC(),
		}

		id, err := s.harvest.CreateHarvestRecord(ctx, req)
		if err != nil {
			return fmt.Errorf("create harvest record: %w", err)
		}
		harvestID = id

		completedAt := s.now().UTC()
		session.Status = models.SessionCompleted
		session.CompletedAt = &completedAt
		session.Notes = notes
		session.HarvestRecordID = id
		return nil
	})
	if err != nil {
		if harvestID != "" {
			s.logger.Warn("harvest record written but session not committed, retry completes it",
				zap.String("session_id", sessionID),
				zap.String("harvest_record_id", harvestID),
				zap.Error(err))
		}
		return CompleteResult{}, err
	}

	s.logger.Info("catch session completed",
		zap.String("session_id", session.ID),
		zap.String("harvest_record_id", harvestID),
		zap.Int("birds", session.Totals.BirdsCaught),
		zap.Float64("net_weight_kg", session.Totals.NetWeightKg))

	if s.notifier != nil {
		if err := s.notifier.NotifyCatchCompleted(ctx, session, harvestID); err != nil {
			s.logger.Warn("catch completion notification failed", zap.String("session_id", session.ID), zap.Error(err))
		}
	}

	return CompleteResult{HarvestRecordID: harvestID, Totals: session.Totals}, nil
}

// mutate loads the session under its lock, applies fn to a copy, re-folds the
// totals and commits the copy. Nothing is written when fn fails.
func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*models.CatchSession) error) (*models.CatchSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", models.ErrInvalidInput)
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	current, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.SessionActive {
		return nil, fmt.Errorf("%w: session %s is %s", models.ErrInvalidState, sessionID, current.Status)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	refold(next)

	if err := s.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save catch session %s: %w", sessionID, err)
	}
	return next, nil
}

func (s *Service) crateType(ctx context.Context, crateTypeID string) (models.CrateType, error) {
	crate, err := s.ref.GetCrateType(ctx, crateTypeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.CrateType{}, fmt.Errorf("%w: unknown crate type %s", models.ErrInvalidInput, crateTypeID)
		}
		return models.CrateType{}, fmt.Errorf("load crate type %s: %w", crateTypeID, err)
	}
	return crate, nil
}

// validatePlan checks a client supplied density plan: its crate type must be
// in the catalog, its season known, and its crate arithmetic consistent.
func (s *Service) validatePlan(ctx context.Context, plan *models.DensityPlan) error {
	if plan == nil {
		return nil
	}
	if _, err := models.ParseSeason(string(plan.Season)); err != nil {
		return fmt.Errorf("density plan: %w", err)
	}
	if plan.TransportDurationHours != nil && *plan.TransportDurationHours < 0 {
		return fmt.Errorf("%w: density plan transport duration must not be negative", models.ErrInvalidInput)
	}
	if _, err := s.crateType(ctx, plan.CrateTypeID); err != nil {
		return fmt.Errorf("density plan: %w", err)
	}
	switch {
	case plan.StandardDensity <= 0 || plan.StandardCrates < 0 || plan.OddCrates < 0 || plan.OddDensity < 0:
		return fmt.Errorf("%w: density plan has non-positive densities or negative crate counts", models.ErrInvalidInput)
	case plan.StandardCrates+plan.OddCrates > plan.AvailableCrates:
		return fmt.Errorf("%w: density plan uses more crates than available", models.ErrInvalidInput)
	case plan.StandardCrates*plan.StandardDensity+plan.OddCrates*plan.OddDensity != plan.PlannedTotalBirds:
		return fmt.Errorf("%w: density plan crates do not add up to planned total", models.ErrInvalidInput)
	}
	return nil
}
