package reliability

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelin/comite/internal/database"
	"github.com/avelin/comite/internal/events"
)

// CachePruner removes expired cache entries.
type CachePruner interface {
	Prune(ctx context.Context) (int64, error)
}

// MaintenanceJob performs the nightly store maintenance: integrity checks,
// WAL checkpoints, cache pruning and a disk space check.
type MaintenanceJob struct {
	stores      []*database.DB
	cache       CachePruner
	bus         *events.Bus
	dataDir     string
	minFreeDisk uint64
	log         zerolog.Logger
}

// NewMaintenanceJob creates the nightly maintenance job.
func NewMaintenanceJob(stores []*database.DB, cache CachePruner, bus *events.Bus, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		stores:      stores,
		cache:       cache,
		bus:         bus,
		dataDir:     dataDir,
		minFreeDisk: 256 << 20,
		log:         log.With().Str("job", "maintenance").Logger(),
	}
}

// Name implements the scheduler job interface.
func (j *MaintenanceJob) Name() string {
	return "store_maintenance"
}

// Run executes the maintenance pass.
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting store maintenance")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, store := range j.stores {
		if err := store.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("store", store.Name()).Msg("Integrity check failed")
			return fmt.Errorf("integrity check failed for %s: %w", store.Name(), err)
		}

		if err := store.WALCheckpoint("TRUNCATE"); err != nil {
			// Not fatal, the autocheckpoint will catch up.
			j.log.Warn().Err(err).Str("store", store.Name()).Msg("WAL checkpoint failed")
		}
	}

	if j.cache != nil {
		pruned, err := j.cache.Prune(ctx)
		if err != nil {
			j.log.Warn().Err(err).Msg("Cache prune failed")
		} else if pruned > 0 {
			j.log.Info().Int64("pruned", pruned).Msg("Expired cache entries removed")
		}
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	if j.bus != nil {
		j.bus.Emit(events.MaintenanceCompleted, "reliability", map[string]interface{}{
			"durationMs": time.Since(startTime).Milliseconds(),
			"stores":     len(j.stores),
		})
	}

	j.log.Info().Dur("duration", time.Since(startTime)).Msg("Store maintenance completed")
	return nil
}

// checkDiskSpace fails the job when free space under the data directory
// drops below the floor.
func (j *MaintenanceJob) checkDiskSpace() error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(j.dataDir, &stat); err != nil {
		j.log.Warn().Err(err).Msg("Failed to stat filesystem")
		return nil
	}

	free := stat.Bavail * uint64(stat.Bsize)
	if free < j.minFreeDisk {
		return fmt.Errorf("low disk space under %s: %d bytes free", j.dataDir, free)
	}
	return nil
}
