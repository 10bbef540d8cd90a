package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelin/comite/internal/events"
	"github.com/avelin/comite/internal/modules/report"
	"github.com/avelin/comite/internal/reliability"
)

// ReevaluationJob re-scores every stored dossier. Scheduled nightly so
// threshold or engine changes propagate without manual re-submission.
type ReevaluationJob struct {
	service *report.Service
	bus     *events.Bus
	timeout time.Duration
	log     zerolog.Logger
}

// NewReevaluationJob creates the nightly re-evaluation job.
func NewReevaluationJob(service *report.Service, bus *events.Bus, log zerolog.Logger) *ReevaluationJob {
	return &ReevaluationJob{
		service: service,
		bus:     bus,
		timeout: 30 * time.Minute,
		log:     log.With().Str("job", "reevaluation").Logger(),
	}
}

// Name implements Job.
func (j *ReevaluationJob) Name() string {
	return "dossier_reevaluation"
}

// Run implements Job.
func (j *ReevaluationJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	count, err := j.service.ReevaluateAll(ctx)
	if err != nil {
		return err
	}

	if j.bus != nil {
		j.bus.Emit(events.ReevaluationCompleted, "scheduler", map[string]interface{}{
			"dossiers": count,
		})
	}
	j.log.Info().Int("dossiers", count).Msg("Re-evaluation job completed")
	return nil
}

// BackupJob ships a backup archive and rotates old ones.
type BackupJob struct {
	backups       *reliability.BackupService
	retentionDays int
	timeout       time.Duration
	log           zerolog.Logger
}

// NewBackupJob creates the daily backup job.
func NewBackupJob(backups *reliability.BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backups:       backups,
		retentionDays: retentionDays,
		timeout:       15 * time.Minute,
		log:           log.With().Str("job", "backup").Logger(),
	}
}

// Name implements Job.
func (j *BackupJob) Name() string {
	return "store_backup"
}

// Run implements Job.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.backups.CreateAndUploadBackup(ctx); err != nil {
		return err
	}
	if err := j.backups.RotateOldBackups(ctx, j.retentionDays); err != nil {
		// Rotation failure leaves extra archives around, nothing is lost.
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}
