package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/broiler/internal/config"
)

type stubDigest struct {
	text string
	err  error
}

func (s stubDigest) DailyDigest(context.Context) (string, error) { return s.text, s.err }

type stubSender struct {
	messages []string
	err      error
}

func (s *stubSender) SendToManager(_ context.Context, message string) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, message)
	return nil
}

var validCfg = config.ReportingConfig{CronSchedule: "0 6 * * *", Timezone: "UTC"}

func TestNewScheduler_Validation(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "every morning", Timezone: "UTC"}, stubDigest{}, &stubSender{}, nil)
	assert.Error(t, err)

	_, err = NewScheduler(config.ReportingConfig{CronSchedule: "0 6 * * *", Timezone: "Mars/Olympus"}, stubDigest{}, &stubSender{}, nil)
	assert.Error(t, err)
}

func TestRunDigest(t *testing.T) {
	sender := &stubSender{}
	s, err := NewScheduler(validCfg, stubDigest{text: "Growth digest"}, sender, nil)
	require.NoError(t, err)

	require.NoError(t, s.RunDigest(context.Background()))
	assert.Equal(t, []string{"Growth digest"}, sender.messages)
}

func TestRunDigest_Failures(t *testing.T) {
	s, err := NewScheduler(validCfg, stubDigest{err: errors.New("sheet offline")}, &stubSender{}, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, s.RunDigest(context.Background()), "build digest")

	s, err = NewScheduler(validCfg, stubDigest{text: "x"}, &stubSender{err: errors.New("whatsapp down")}, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, s.RunDigest(context.Background()), "send digest")
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(validCfg, stubDigest{}, &stubSender{}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}
