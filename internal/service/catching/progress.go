package catching

import (
	"context"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

// Progress compares a session's running totals with its targets and plan.
type Progress struct {
	SessionID            string               `json:"session_id"`
	Status               models.SessionStatus `json:"status"`
	Totals               models.SessionTotals `json:"totals"`
	TargetBirds          *int                 `json:"target_birds,omitempty"`
	BirdsPercent         models.Metric        `json:"birds_percent"`
	TargetWeightKg       *float64             `json:"target_weight_kg,omitempty"`
	WeightPercent        models.Metric        `json:"weight_percent"`
	PlannedBirds         models.Metric        `json:"planned_birds"`
	EstimatedDeliveredKg float64              `json:"estimated_delivered_weight_kg"`
}

// GetWithProgress returns a session and its progress view from a single read,
// so the rows and the progress always describe the same version.
func (s *Service) GetWithProgress(ctx context.Context, sessionID string) (*models.CatchSession, Progress, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, Progress{}, err
	}
	return session, s.progressOf(session), nil
}

func (s *Service) progressOf(session *models.CatchSession) Progress {
	p := Progress{
		SessionID:            session.ID,
		Status:               session.Status,
		Totals:               session.Totals,
		TargetBirds:          session.TargetBirds,
		BirdsPercent:         models.Unavailable("no target birds"),
		TargetWeightKg:       session.TargetWeightKg,
		WeightPercent:        models.Unavailable("no target weight"),
		PlannedBirds:         models.Unavailable("no density plan"),
		EstimatedDeliveredKg: s.planner.DeliveredWeight(session.Totals.NetWeightKg),
	}
	if session.TargetBirds != nil && *session.TargetBirds > 0 {
		p.BirdsPercent = models.Available(float64(session.Totals.BirdsCaught) / float64(*session.TargetBirds) * 100)
	}
	if session.TargetWeightKg != nil && *session.TargetWeightKg > 0 {
		p.WeightPercent = models.Available(session.Totals.NetWeightKg / *session.TargetWeightKg * 100)
	}
	if session.Plan != nil {
		p.PlannedBirds = models.Available(float64(session.Plan.PlannedTotalBirds))
	}
	return p
}
