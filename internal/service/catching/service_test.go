package catching

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/broiler/internal/domain/models"
	"github.com/mamadbah2/broiler/internal/repository/memory"
)

type fixture struct {
	svc      *Service
	sessions *memory.SessionStore
	harvest  *memory.HarvestStore
	ref      *memory.ReferenceStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ref := memory.NewReferenceStore()
	ref.PutCrateType(models.CrateType{ID: "std", Name: "Standard", LengthCm: 100, WidthCm: 60, HeightCm: 28, TareWeightKg: 2.0})
	require.NoError(t, ref.PutFlock(models.Flock{
		ID: "flock-1", Breed: "ross308", PlacementDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		GrowingPeriodDays: 42, InitialCount: 1000, CurrentCount: 980, Status: models.FlockHarvesting,
	}))
	require.NoError(t, ref.PutFlock(models.Flock{
		ID: "flock-closed", PlacementDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		GrowingPeriodDays: 42, InitialCount: 500, CurrentCount: 0, Status: models.FlockClosed,
	}))

	sessions := memory.NewSessionStore()
	harvest := memory.NewHarvestStore()
	return fixture{
		svc:      NewService(sessions, harvest, ref, nil, nil, nil),
		sessions: sessions,
		harvest:  harvest,
		ref:      ref,
	}
}

func pallet(v float64) *float64 { return &v }

func (f fixture) start(t *testing.T, kind models.WeighingKind, palletKg *float64) *models.CatchSession {
	t.Helper()
	session, err := f.svc.Start(context.Background(), StartRequest{FlockID: "flock-1", Method: kind, PalletWeightKg: palletKg})
	require.NoError(t, err)
	return session
}

func assertFoldInvariant(t *testing.T, svc *Service, sessionID string) {
	t.Helper()
	session, err := svc.Get(context.Background(), sessionID)
	require.NoError(t, err)

	birds, net := 0, 0.0
	for _, c := range session.Crates {
		birds += c.BirdCount
		net += c.NetWeightKg
	}
	for _, b := range session.Batches {
		birds += b.TotalBirds
		net += b.TotalNetWeightKg
	}
	assert.Equal(t, birds, session.Totals.BirdsCaught)
	assert.InDelta(t, net, session.Totals.NetWeightKg, 1e-9)

	avg, ok := session.Totals.AverageBirdWeight.Value()
	if birds == 0 {
		assert.False(t, ok, "average must be unavailable with no birds")
		return
	}
	require.True(t, ok)
	assert.Equal(t, session.Totals.NetWeightKg/float64(session.Totals.BirdsCaught), avg)
}

func TestStart_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, StartRequest{FlockID: "flock-closed", Method: models.WeighingIndividual})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.Start(ctx, StartRequest{FlockID: "missing", Method: models.WeighingIndividual})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: models.WeighingPlatformScale})
	assert.ErrorIs(t, err, models.ErrInvalidInput, "platform scale needs a pallet weight")

	_, err = f.svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: models.WeighingDigitalScaleStack, PalletWeightKg: pallet(20)})
	assert.ErrorIs(t, err, models.ErrInvalidInput, "pallet weight only for platform scale")

	_, err = f.svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: "bathroom_scale"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	badPlan := &models.DensityPlan{CrateTypeID: "std", Season: models.SeasonSummer, StandardDensity: 14, StandardCrates: 10, PlannedTotalBirds: 141, AvailableCrates: 20}
	_, err = f.svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: models.WeighingIndividual, Plan: badPlan})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestStart_ValidatesPlanAgainstCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := func() *models.DensityPlan {
		return &models.DensityPlan{CrateTypeID: "std", Season: models.SeasonWinter, StandardDensity: 14, StandardCrates: 10, PlannedTotalBirds: 140, AvailableCrates: 20}
	}

	unknownCrate := valid()
	unknownCrate.CrateTypeID = "jumbo"
	noSeason := valid()
	noSeason.Season = ""
	badSeason := valid()
	badSeason.Season = "monsoon"
	negativeTransport := valid()
	negativeTransport.TransportDurationHours = pallet(-1)

	for name, plan := range map[string]*models.DensityPlan{
		"unknown crate type": unknownCrate,
		"missing season":     noSeason,
		"unknown season":     badSeason,
		"negative transport": negativeTransport,
	} {
		_, err := f.svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: models.WeighingIndividual, Plan: plan})
		assert.ErrorIs(t, err, models.ErrInvalidInput, name)
	}

	session, err := f.svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: models.WeighingIndividual, Plan: valid()})
	require.NoError(t, err)
	require.NotNil(t, session.Plan)
	assert.Equal(t, models.SeasonWinter, session.Plan.Season)
}

func TestStart_CreatesActiveSession(t *testing.T) {
	f := newFixture(t)
	target := 1000
	plan := &models.DensityPlan{CrateTypeID: "std", Season: models.SeasonSummer, StandardDensity: 14, StandardCrates: 71, OddDensity: 6, OddCrates: 1, PlannedTotalBirds: 1000, AvailableCrates: 80}

	session, err := f.svc.Start(context.Background(), StartRequest{
		FlockID: "flock-1", Method: models.WeighingIndividual, TargetBirds: &target, Plan: plan, CatchTeam: "team-a",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.SessionActive, session.Status)
	assert.Equal(t, models.WeighingIndividual, session.Method.Kind())
	assert.False(t, session.CatchDate.IsZero())
	assert.Equal(t, 0, session.Totals.BirdsCaught)
	assert.False(t, session.Totals.AverageBirdWeight.IsAvailable())
}

func TestAddCrate_NetAndAverage(t *testing.T) {
	f := newFixture(t)
	session := f.start(t, models.WeighingIndividual, nil)

	res, err := f.svc.AddCrate(context.Background(), AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22.0})
	require.NoError(t, err)

	assert.Equal(t, 1, res.CrateNumber)
	assert.Equal(t, 20.0, res.NetWeightKg)
	assert.Equal(t, 2.0, res.AverageBirdWeightKg)
	assert.Equal(t, 10, res.Totals.BirdsCaught)
	avg, ok := res.Totals.AverageBirdWeight.Value()
	require.True(t, ok)
	assert.InDelta(t, 2.000, avg, 1e-9)
}

func TestAddCrate_RejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.start(t, models.WeighingIndividual, nil)

	_, err := f.svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 0, GrossWeightKg: 22})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 2.0})
	assert.ErrorIs(t, err, models.ErrInvalidInput, "gross equal to tare")

	_, err = f.svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "unknown", BirdCount: 10, GrossWeightKg: 22})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.AddCrate(ctx, AddCrateRequest{SessionID: "missing", CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22})
	assert.ErrorIs(t, err, models.ErrNotFound)

	stored, err := f.svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Crates, "rejected requests leave no rows")
	assert.Equal(t, int64(1), stored.Version)
}

func TestAddCrate_WrongMethod(t *testing.T) {
	f := newFixture(t)
	session := f.start(t, models.WeighingDigitalScaleStack, nil)

	_, err := f.svc.AddCrate(context.Background(), AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestDeleteCrate_KeepsNumbersMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.start(t, models.WeighingIndividual, nil)

	for i := 0; i < 3; i++ {
		_, err := f.svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22.35})
		require.NoError(t, err)
	}

	totals, err := f.svc.DeleteCrate(ctx, session.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 20, totals.BirdsCaught)
	assertFoldInvariant(t, f.svc, session.ID)

	res, err := f.svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 12, GrossWeightKg: 26.1})
	require.NoError(t, err)
	assert.Equal(t, 4, res.CrateNumber)
	assertFoldInvariant(t, f.svc, session.ID)

	_, err = f.svc.DeleteCrate(ctx, session.ID, 3)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAddBatch_DigitalScaleStack(t *testing.T) {
	f := newFixture(t)
	session := f.start(t, models.WeighingDigitalScaleStack, nil)

	res, err := f.svc.AddBatch(context.Background(), AddBatchRequest{
		SessionID: session.ID, CrateTypeID: "std", NumberOfCrates: 5, BirdsPerCrate: 10, TotalGrossWeightKg: 110.0, CrateWeightKg: 2.0,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.BatchNumber)
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 5, res.CratesInBatch)
	assert.Equal(t, 50, res.TotalBirds)
	assert.Equal(t, 100.0, res.TotalNetWeightKg)
	assert.Equal(t, 2.0, res.AverageBirdWeightKg)
}

func TestAddBatch_PlatformScaleSubtractsPallet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.start(t, models.WeighingPlatformScale, pallet(20))

	res, err := f.svc.AddBatch(ctx, AddBatchRequest{
		SessionID: session.ID, CrateTypeID: "std", NumberOfCrates: 5, BirdsPerCrate: 10, TotalGrossWeightKg: 130.0, CrateWeightKg: 2.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.TotalNetWeightKg)

	res, err = f.svc.AddBatch(ctx, AddBatchRequest{
		SessionID: session.ID, CrateTypeID: "std", NumberOfCrates: 5, BirdsPerCrate: 10, TotalGrossWeightKg: 130.0, CrateWeightKg: 2.0, PalletWeightKg: pallet(25),
	})
	require.NoError(t, err)
	assert.Equal(t, 95.0, res.TotalNetWeightKg)
	assert.Equal(t, 2, res.BatchNumber)
}

func TestAddBatch_RejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stack := f.start(t, models.WeighingDigitalScaleStack, nil)
	individual := f.start(t, models.WeighingIndividual, nil)

	valid := AddBatchRequest{SessionID: stack.ID, CrateTypeID: "std", NumberOfCrates: 5, BirdsPerCrate: 10, TotalGrossWeightKg: 110, CrateWeightKg: 2}

	cases := map[string]func(r *AddBatchRequest){
		"no crates":        func(r *AddBatchRequest) { r.NumberOfCrates = 0 },
		"no birds":         func(r *AddBatchRequest) { r.BirdsPerCrate = 0 },
		"no crate weight":  func(r *AddBatchRequest) { r.CrateWeightKg = 0 },
		"tare above gross": func(r *AddBatchRequest) { r.TotalGrossWeightKg = 10 },
		"pallet on stack":  func(r *AddBatchRequest) { r.PalletWeightKg = pallet(20) },
		"unknown crate":    func(r *AddBatchRequest) { r.CrateTypeID = "nope" },
		"individual":       func(r *AddBatchRequest) { r.SessionID = individual.ID },
	}
	for name, mutateReq := range cases {
		req := valid
		mutateReq(&req)
		_, err := f.svc.AddBatch(ctx, req)
		assert.ErrorIs(t, err, models.ErrInvalidInput, name)
	}
}

func TestDeleteBatch_RefoldsAndRestoresZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.start(t, models.WeighingDigitalScaleStack, nil)

	var ids []string
	grosses := []float64{110.0, 131.7, 98.45}
	for _, gross := range grosses {
		res, err := f.svc.AddBatch(ctx, AddBatchRequest{
			SessionID: session.ID, CrateTypeID: "std", NumberOfCrates: 5, BirdsPerCrate: 10, TotalGrossWeightKg: gross, CrateWeightKg: 2.0,
		})
		require.NoError(t, err)
		ids = append(ids, res.BatchID)
		assertFoldInvariant(t, f.svc, session.ID)
	}

	totals, err := f.svc.DeleteBatch(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, 100, totals.BirdsCaught)
	assert.InDelta(t, 100.0+88.45, totals.NetWeightKg, 1e-9)
	assertFoldInvariant(t, f.svc, session.ID)

	_, err = f.svc.DeleteBatch(ctx, ids[1])
	assert.ErrorIs(t, err, models.ErrNotFound)

	for _, id := range []string{ids[0], ids[2]} {
		_, err := f.svc.DeleteBatch(ctx, id)
		require.NoError(t, err)
	}

	stored, err := f.svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Totals.BirdsCaught)
	assert.Equal(t, 0.0, stored.Totals.NetWeightKg)
	assert.False(t, stored.Totals.AverageBirdWeight.IsAvailable())
	assertFoldInvariant(t, f.svc, session.ID)
}

func TestComplete_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.start(t, models.WeighingIndividual, nil)

	_, err := f.svc.Complete(ctx, session.ID, "")
	assert.ErrorIs(t, err, models.ErrInvalidState, "no rows recorded")

	_, err = f.svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22.0})
	require.NoError(t, err)

	res, err := f.svc.Complete(ctx, session.ID, "rain during catch")
	require.NoError(t, err)
	require.NotEmpty(t, res.HarvestRecordID)

	record, ok := f.harvest.Get(res.HarvestRecordID)
	require.True(t, ok)
	assert.Equal(t, "flock-1", record.FlockID)
	assert.Equal(t, 10, record.TotalBirds)
	assert.Equal(t, 20.0, record.TotalNetWeightKg)
	assert.Equal(t, 2.0, record.AverageBirdWeightKg)
	assert.InDelta(t, 20.0*0.945, record.EstimatedDeliveredWeight, 1e-9)
	assert.Equal(t, "rain during catch", record.Notes)

	stored, err := f.svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, stored.Status)
	assert.Equal(t, res.HarvestRecordID, stored.HarvestRecordID)
	require.NotNil(t, stored.CompletedAt)

	_, err = f.svc.Complete(ctx, session.ID, "")
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, err = f.svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22.0})
	assert.ErrorIs(t, err, models.ErrInvalidState)
	assert.Equal(t, 1, f.harvest.Len())
}

type failingRecorder struct{}

func (failingRecorder) CreateHarvestRecord(context.Context, models.HarvestRequest) (string, error) {
	return "", errors.New("harvest service down")
}

func TestComplete_RecorderFailureLeavesSessionActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewService(f.sessions, failingRecorder{}, f.ref, nil, nil, nil)
	session, err := svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: models.WeighingIndividual})
	require.NoError(t, err)
	_, err = svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22.0})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, session.ID, "")
	require.Error(t, err)

	stored, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, stored.Status)
	assert.Empty(t, stored.HarvestRecordID)
}

// conflictOnComplete rejects the first save that marks a session completed,
// as if another replica had written in between.
type conflictOnComplete struct {
	*memory.SessionStore
	failed bool
}

func (c *conflictOnComplete) Save(ctx context.Context, session *models.CatchSession) error {
	if session.Status == models.SessionCompleted && !c.failed {
		c.failed = true
		return models.ErrVersionConflict
	}
	return c.SessionStore.Save(ctx, session)
}

func TestComplete_RetryAfterFailedSaveKeepsOneHarvestRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := &conflictOnComplete{SessionStore: f.sessions}
	svc := NewService(store, f.harvest, f.ref, nil, nil, nil)
	session, err := svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: models.WeighingIndividual})
	require.NoError(t, err)
	_, err = svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22.0})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, session.ID, "")
	require.ErrorIs(t, err, models.ErrVersionConflict)
	stored, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, stored.Status)

	_, err = svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 24.0})
	require.NoError(t, err)

	res, err := svc.Complete(ctx, session.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.harvest.Len())

	record, ok := f.harvest.Get(res.HarvestRecordID)
	require.True(t, ok)
	assert.Equal(t, 20, record.TotalBirds, "retry carries the latest totals")
	assert.InDelta(t, 42.0, record.TotalNetWeightKg, 1e-9)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) NotifyCatchCompleted(_ context.Context, session *models.CatchSession, harvestID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, session.ID+":"+harvestID)
	return errors.New("whatsapp unavailable")
}

func TestComplete_NotifiesBestEffort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := NewService(f.sessions, f.harvest, f.ref, nil, notifier, nil)
	session, err := svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: models.WeighingIndividual})
	require.NoError(t, err)
	_, err = svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22.0})
	require.NoError(t, err)

	res, err := svc.Complete(ctx, session.ID, "")
	require.NoError(t, err, "notification failures do not fail completion")
	assert.Equal(t, []string{session.ID + ":" + res.HarvestRecordID}, notifier.calls)
}

func TestAddCrate_ConcurrentOperatorsDoNotLoseUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.start(t, models.WeighingIndividual, nil)

	const operators = 8
	const perOperator = 25

	var wg sync.WaitGroup
	numbers := make(chan int, operators*perOperator)
	for op := 0; op < operators; op++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perOperator; i++ {
				res, err := f.svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 12, GrossWeightKg: 28.4})
				if !assert.NoError(t, err) {
					return
				}
				numbers <- res.CrateNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make([]int, 0, operators*perOperator)
	for n := range numbers {
		seen = append(seen, n)
	}
	sort.Ints(seen)
	require.Len(t, seen, operators*perOperator)
	for i, n := range seen {
		assert.Equal(t, i+1, n)
	}

	stored, err := f.svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, operators*perOperator*12, stored.Totals.BirdsCaught)
	assert.InDelta(t, float64(operators*perOperator)*26.4, stored.Totals.NetWeightKg, 1e-6)
	assertFoldInvariant(t, f.svc, session.ID)
}

func TestProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	targetBirds := 40
	targetWeight := 80.0
	session, err := f.svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: models.WeighingIndividual, TargetBirds: &targetBirds, TargetWeightKg: &targetWeight})
	require.NoError(t, err)

	_, err = f.svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22.0})
	require.NoError(t, err)

	_, p, err := f.svc.GetWithProgress(ctx, session.ID)
	require.NoError(t, err)
	birds, ok := p.BirdsPercent.Value()
	require.True(t, ok)
	assert.InDelta(t, 25.0, birds, 1e-9)
	weight, ok := p.WeightPercent.Value()
	require.True(t, ok)
	assert.InDelta(t, 25.0, weight, 1e-9)
	assert.False(t, p.PlannedBirds.IsAvailable())
	assert.InDelta(t, 18.9, p.EstimatedDeliveredKg, 1e-9)
}

type countingStore struct {
	*memory.SessionStore
	gets int
}

func (c *countingStore) Get(ctx context.Context, sessionID string) (*models.CatchSession, error) {
	c.gets++
	return c.SessionStore.Get(ctx, sessionID)
}

func TestGetWithProgress_SingleRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := &countingStore{SessionStore: f.sessions}
	svc := NewService(store, f.harvest, f.ref, nil, nil, nil)
	session, err := svc.Start(ctx, StartRequest{FlockID: "flock-1", Method: models.WeighingIndividual})
	require.NoError(t, err)
	_, err = svc.AddCrate(ctx, AddCrateRequest{SessionID: session.ID, CrateTypeID: "std", BirdCount: 10, GrossWeightKg: 22.0})
	require.NoError(t, err)

	store.gets = 0
	got, p, err := svc.GetWithProgress(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.gets)
	assert.Equal(t, got.Totals, p.Totals)
	assert.Equal(t, got.ID, p.SessionID)

	_, _, err = svc.GetWithProgress(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListByFlock(t *testing.T) {
	f := newFixture(t)
	f.start(t, models.WeighingIndividual, nil)
	f.start(t, models.WeighingDigitalScaleStack, nil)

	sessions, err := f.svc.ListByFlock(context.Background(), "flock-1")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
