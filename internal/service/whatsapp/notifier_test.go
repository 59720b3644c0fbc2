package whatsapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/broiler/internal/domain/models"
	client "github.com/mamadbah2/broiler/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(ctx context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("missing deadline")
	}
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

func completedSession() *models.CatchSession {
	target := 100
	return &models.CatchSession{
		ID:          "s-1",
		FlockID:     "F-01",
		CatchDate:   time.Date(2026, 10, 18, 4, 0, 0, 0, time.UTC),
		CatchTeam:   "north",
		Method:      models.DigitalScaleStack{},
		TargetBirds: &target,
		Batches:     []models.CatchBatch{{ID: "b-1"}, {ID: "b-2"}},
		Totals: models.SessionTotals{
			BirdsCaught:       100,
			NetWeightKg:       200,
			AverageBirdWeight: models.Available(2),
		},
	}
}

func TestNotifyCatchCompleted(t *testing.T) {
	fc := &fakeClient{}
	n := NewNotifier(fc, "224600000000", nil)

	require.NoError(t, n.NotifyCatchCompleted(context.Background(), completedSession(), "h-9"))
	require.Len(t, fc.sent, 1)
	assert.Equal(t, "224600000000", fc.sent[0].To)

	body := fc.sent[0].Body
	assert.Contains(t, body, "Catch completed for flock F-01")
	assert.Contains(t, body, "Date 2026-10-18, team north")
	assert.Contains(t, body, "Method digital scale stack, 2 rows")
	assert.Contains(t, body, "Birds 100 of 100 planned")
	assert.Contains(t, body, "Net weight 200.0 kg, average 2.000 kg")
	assert.Contains(t, body, "Harvest record h-9")
}

func TestNotifyCatchCompleted_WrapsClientError(t *testing.T) {
	n := NewNotifier(&fakeClient{err: errors.New("rate limited")}, "1", nil)

	err := n.NotifyCatchCompleted(context.Background(), completedSession(), "h-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s-1")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSendOutbound(t *testing.T) {
	fc := &fakeClient{}
	n := NewNotifier(fc, "1", nil)

	require.NoError(t, n.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "42", Message: "hi", PreviewURL: true}))
	require.Len(t, fc.sent, 1)
	assert.Equal(t, client.SendTextMessageRequest{To: "42", Body: "hi", PreviewURL: true}, fc.sent[0])
}
