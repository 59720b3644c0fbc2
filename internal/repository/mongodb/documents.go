package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

// sessionDocument is the stored shape of a catch session. Crates and batches
// are embedded so a session is always replaced as one document.
type sessionDocument struct {
	ID              string              `bson:"_id"`
	FlockID         string              `bson:"flock_id"`
	CatchDate       time.Time           `bson:"catch_date"`
	CatchTeam       string              `bson:"catch_team,omitempty"`
	Method          string              `bson:"weighing_method"`
	PalletWeightKg  *float64            `bson:"pallet_weight_kg,omitempty"`
	TargetBirds     *int                `bson:"target_birds,omitempty"`
	TargetWeightKg  *float64            `bson:"target_weight_kg,omitempty"`
	Status          string              `bson:"status"`
	Plan            *models.DensityPlan `bson:"plan,omitempty"`
	Crates          []models.CatchCrate `bson:"crates"`
	Batches         []models.CatchBatch `bson:"batches"`
	LastCrateNumber int                 `bson:"last_crate_number"`
	LastBatchNumber int                 `bson:"last_batch_number"`
	Notes           string              `bson:"notes,omitempty"`
	HarvestRecordID string              `bson:"harvest_record_id,omitempty"`
	CreatedAt       time.Time           `bson:"created_at"`
	CompletedAt     *time.Time          `bson:"completed_at,omitempty"`
	Version         int64               `bson:"version"`
}

// harvestDocument is a stored harvest record.
type harvestDocument struct {
	ID                    string `bson:"_id"`
	models.HarvestRequest `bson:",inline"`
}

// harvestUpsert sets the record figures and only assigns id when the record is new.
func harvestUpsert(req models.HarvestRequest, id string) bson.M {
	return bson.M{
		"$set":         req,
		"$setOnInsert": bson.M{"_id": id},
	}
}

func toDocument(s *models.CatchSession) sessionDocument {
	doc := sessionDocument{
		ID:              s.ID,
		FlockID:         s.FlockID,
		CatchDate:       s.CatchDate,
		CatchTeam:       s.CatchTeam,
		TargetBirds:     s.TargetBirds,
		TargetWeightKg:  s.TargetWeightKg,
		Status:          string(s.Status),
		Plan:            s.Plan,
		Crates:          s.Crates,
		Batches:         s.Batches,
		LastCrateNumber: s.LastCrateNumber,
		LastBatchNumber: s.LastBatchNumber,
		Notes:           s.Notes,
		HarvestRecordID: s.HarvestRecordID,
		CreatedAt:       s.CreatedAt,
		CompletedAt:     s.CompletedAt,
		Version:         s.Version,
	}
	if s.Method != nil {
		doc.Method = string(s.Method.Kind())
	}
	if pallet, ok := models.PalletWeight(s.Method); ok {
		doc.PalletWeightKg = &pallet
	}
	if doc.Crates == nil {
		doc.Crates = []models.CatchCrate{}
	}
	if doc.Batches == nil {
		doc.Batches = []models.CatchBatch{}
	}
	return doc
}

// toSession rebuilds the domain session. Totals are left zero; the ledger
// service re-folds them from the rows.
func (d sessionDocument) toSession() (*models.CatchSession, error) {
	method, err := models.NewWeighingMethod(models.WeighingKind(d.Method), d.PalletWeightKg)
	if err != nil {
		return nil, err
	}
	return &models.CatchSession{
		ID:              d.ID,
		FlockID:         d.FlockID,
		CatchDate:       d.CatchDate.UTC(),
		CatchTeam:       d.CatchTeam,
		Method:          method,
		TargetBirds:     d.TargetBirds,
		TargetWeightKg:  d.TargetWeightKg,
		Status:          models.SessionStatus(d.Status),
		Plan:            d.Plan,
		Crates:          d.Crates,
		Batches:         d.Batches,
		LastCrateNumber: d.LastCrateNumber,
		LastBatchNumber: d.LastBatchNumber,
		Notes:           d.Notes,
		HarvestRecordID: d.HarvestRecordID,
		CreatedAt:       d.CreatedAt.UTC(),
		CompletedAt:     d.CompletedAt,
		Version:         d.Version,
	}, nil
}
