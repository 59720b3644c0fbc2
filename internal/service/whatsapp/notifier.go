package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/domain/models"
	client "github.com/mamadbah2/broiler/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// Notifier delivers catch summaries and digests to the farm manager.
type Notifier struct {
	client    client.Client
	managerID string
	logger    *zap.Logger
}

// NewNotifier wires a notifier sending to managerID.
func NewNotifier(c client.Client, managerID string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{client: c, managerID: managerID, logger: logger}
}

// SendOutbound sends a text message to an arbitrary recipient.
func (n *Notifier) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := n.client.SendTextMessage(ctx, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	if err != nil {
		return err
	}
	n.logger.Debug("whatsapp message sent", zap.String("to", req.To), zap.String("message_id", resp.MessageID()))
	return nil
}

// SendToManager sends a text message to the configured farm manager.
func (n *Notifier) SendToManager(ctx context.Context, message string) error {
	return n.SendOutbound(ctx, models.OutboundMessageRequest{To: n.managerID, Message: message})
}

// NotifyCatchCompleted sends the catch summary of a completed session.
func (n *Notifier) NotifyCatchCompleted(ctx context.Context, session *models.CatchSession, harvestRecordID string) error {
	if err := n.SendToManager(ctx, CatchSummary(session, harvestRecordID)); err != nil {
		return fmt.Errorf("notify catch completion %s: %w", session.ID, err)
	}
	return nil
}

// CatchSummary renders a completed session for messaging.
func CatchSummary(session *models.CatchSession, harvestRecordID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Catch completed for flock %s", session.FlockID)
	fmt.Fprintf(&b, "\nDate %s", session.CatchDate.Format("2006-01-02"))
	if session.CatchTeam != "" {
		fmt.Fprintf(&b, ", team %s", session.CatchTeam)
	}
	if session.Method != nil {
		fmt.Fprintf(&b, "\nMethod %s, %d rows", strings.ReplaceAll(string(session.Method.Kind()), "_", " "), session.RowCount())
	}
	fmt.Fprintf(&b, "\nBirds %d", session.Totals.BirdsCaught)
	if session.TargetBirds != nil {
		fmt.Fprintf(&b, " of %d planned", *session.TargetBirds)
	}
	fmt.Fprintf(&b, "\nNet weight %.1f kg, average %s kg", session.Totals.NetWeightKg, session.Totals.AverageBirdWeight.Format("%.3f"))
	fmt.Fprintf(&b, "\nHarvest record %s", harvestRecordID)
	return b.String()
}
