package catching

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

// weightPlaces is the precision (grams) kept on row net weights.
const weightPlaces = 3

// CrateNet returns the net bird weight of a crate: gross minus catalog tare.
func CrateNet(grossKg, tareKg float64) float64 {
	return decimal.NewFromFloat(grossKg).
		Sub(decimal.NewFromFloat(tareKg)).
		Round(weightPlaces).
		InexactFloat64()
}

// BatchNet returns the net bird weight of a batch:
// gross - crateWeight*numberOfCrates - pallet.
func BatchNet(grossKg, crateWeightKg float64, crates int, palletKg float64) float64 {
	tare := decimal.NewFromFloat(crateWeightKg).Mul(decimal.NewFromInt(int64(crates)))
	return decimal.NewFromFloat(grossKg).
		Sub(tare).
		Sub(decimal.NewFromFloat(palletKg)).
		Round(weightPlaces).
		InexactFloat64()
}

// FoldCrates derives session totals from every recorded crate.
func FoldCrates(crates []models.CatchCrate) models.SessionTotals {
	birds := 0
	net := decimal.Zero
	for _, c := range crates {
		birds += c.BirdCount
		net = net.Add(decimal.NewFromFloat(c.NetWeightKg))
	}
	return totals(birds, net)
}

// FoldBatches derives session totals from every recorded batch.
func FoldBatches(batches []models.CatchBatch) models.SessionTotals {
	birds := 0
	net := decimal.Zero
	for _, b := range batches {
		birds += b.TotalBirds
		net = net.Add(decimal.NewFromFloat(b.TotalNetWeightKg))
	}
	return totals(birds, net)
}

func totals(birds int, net decimal.Decimal) models.SessionTotals {
	out := models.SessionTotals{
		BirdsCaught:       birds,
		NetWeightKg:       net.InexactFloat64(),
		AverageBirdWeight: models.Unavailable("no birds recorded"),
	}
	if birds > 0 {
		out.AverageBirdWeight = models.Available(out.NetWeightKg / float64(birds))
	}
	return out
}

// refold recomputes a session's totals from its rows.
func refold(session *models.CatchSession) {
	if session.Method != nil && session.Method.UsesBatches() {
		session.Totals = FoldBatches(session.Batches)
		return
	}
	session.Totals = FoldCrates(session.Crates)
}
