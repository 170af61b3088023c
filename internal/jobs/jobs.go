// jobs.go
//
// HostelGate: admissions, residency and fee management for a charitable hostel trust
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of hostelgate.
// hostelgate is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// hostelgate is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with hostelgate.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hostelgate/hostelgate/internal/metrics"
	"github.com/hostelgate/hostelgate/internal/notify"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Job names used in logs and metrics
const (
	FeeSweep         = "fee_sweep"
	RenewalReminders = "renewal_reminders"
)

const jobTimeout = 5 * time.Minute

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	cron     *cron.Cron
	db       *gorm.DB
	notifier notify.Notifier
	log      *zap.Logger
}

// Schedules are cron expressions; an empty expression disables that job
type Schedules struct {
	FeeSweep         string
	RenewalReminders string
}

// New builds a scheduler. Runs of the same job never overlap.
func New(db *gorm.DB, notifier notify.Notifier, log *zap.Logger, schedules Schedules) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})),
		),
		db:       db,
		notifier: notifier,
		log:      log,
	}
	if schedules.FeeSweep != "" {
		if _, err := s.cron.AddFunc(schedules.FeeSweep, func() { s.Run(FeeSweep) }); err != nil {
			return nil, fmt.Errorf("invalid %s schedule %q: %w", FeeSweep, schedules.FeeSweep, err)
		}
	}
	if schedules.RenewalReminders != "" {
		if _, err := s.cron.AddFunc(schedules.RenewalReminders, func() { s.Run(RenewalReminders) }); err != nil {
			return nil, fmt.Errorf("invalid %s schedule %q: %w", RenewalReminders, schedules.RenewalReminders, err)
		}
	}
	return s, nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduled jobs still running at shutdown")
	}
}

// Run executes one job by name now
func (s *Scheduler) Run(job string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	var n int
	var err error
	switch job {
	case FeeSweep:
		n, err = services.SweepOverdueFees(s.db.WithContext(ctx))
	case RenewalReminders:
		n, err = services.SendRenewalReminders(ctx, s.db, s.notifier)
	default:
		err = fmt.Errorf("unknown job %q", job)
	}

	metrics.JobRuns.WithLabelValues(job, metrics.Result(err)).Inc()
	if err != nil {
		s.log.Error("Scheduled job failed", zap.String("job", job), zap.Error(err))
		return n, err
	}
	s.log.Info("Scheduled job finished",
		zap.String("job", job),
		zap.Int("affected", n),
		zap.Duration("duration", time.Since(start)),
	)
	return n, nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
