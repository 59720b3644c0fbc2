package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/broiler/internal/config"
)

const digestTimeout = 2 * time.Minute

// DigestBuilder renders the daily growth digest.
type DigestBuilder interface {
	DailyDigest(ctx context.Context) (string, error)
}

// ManagerSender delivers a message to the farm manager.
type ManagerSender interface {
	SendToManager(ctx context.Context, message string) error
}

// Scheduler runs the daily digest on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	digest   DigestBuilder
	sender   ManagerSender
	logger   *zap.Logger
}

// NewScheduler creates a scheduler evaluating cfg.CronSchedule in cfg.Timezone.
func NewScheduler(cfg config.ReportingConfig, digest DigestBuilder, sender ManagerSender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}
	if _, err := cron.ParseStandard(cfg.CronSchedule); err != nil {
		return nil, fmt.Errorf("parse digest schedule %q: %w", cfg.CronSchedule, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		digest:   digest,
		sender:   sender,
		logger:   logger,
	}, nil
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sendDigest); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunDigest builds and sends the digest once.
func (s *Scheduler) RunDigest(ctx context.Context) error {
	message, err := s.digest.DailyDigest(ctx)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	if err := s.sender.SendToManager(ctx, message); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

func (s *Scheduler) sendDigest() {
	s.logger.Info("generating growth digest")
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	if err := s.RunDigest(ctx); err != nil {
		s.logger.Error("growth digest failed", zap.Error(err))
		return
	}
	s.logger.Info("growth digest sent")
}
