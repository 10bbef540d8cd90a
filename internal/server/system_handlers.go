package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/avelin/comite/internal/database"
	"github.com/avelin/comite/internal/scheduler"
)

// SystemHandlers exposes the operational endpoints: status, store stats,
// disk usage and manual job triggers.
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	startedAt time.Time
	stores    []*database.DB

	reevaluationJob scheduler.Job
	backupJob       scheduler.Job
	maintenanceJob  scheduler.Job
}

// NewSystemHandlers creates the system handlers.
func NewSystemHandlers(log zerolog.Logger, dataDir string, stores []*database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		startedAt: time.Now(),
		stores:    stores,
	}
}

// SetJobs registers the job instances for manual triggering.
func (h *SystemHandlers) SetJobs(reevaluation, backup, maintenance scheduler.Job) {
	h.reevaluationJob = reevaluation
	h.backupJob = backup
	h.maintenanceJob = maintenance
}

// SystemStatusResponse is the payload of GET /api/system/status.
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
}

// HandleSystemStatus handles GET /api/system/status.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, ramPct := h.systemStats()

	h.writeJSON(w, http.StatusOK, SystemStatusResponse{
		Status:        "running",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPct,
		RAMPercent:    ramPct,
	})
}

// StoreStats is one store's entry in the stats response.
type StoreStats struct {
	Name         string `json:"name"`
	SizeBytes    int64  `json:"size_bytes"`
	WALSizeBytes int64  `json:"wal_size_bytes"`
	PageCount    int64  `json:"page_count"`
	Healthy      bool   `json:"healthy"`
}

// HandleDatabaseStats handles GET /api/system/database/stats.
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	out := make([]StoreStats, 0, len(h.stores))
	for _, store := range h.stores {
		entry := StoreStats{Name: store.Name()}
		if stats, err := store.GetStats(); err == nil {
			entry.SizeBytes = stats.SizeBytes
			entry.WALSizeBytes = stats.WALSizeBytes
			entry.PageCount = stats.PageCount
		}
		entry.Healthy = store.QuickCheck(r.Context()) == nil
		out = append(out, entry)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"stores": out})
}

// DiskUsageResponse is the payload of GET /api/system/disk.
type DiskUsageResponse struct {
	DataDirMB float64 `json:"data_dir_mb"`
	LogsDirMB float64 `json:"logs_dir_mb"`
	TotalMB   float64 `json:"total_mb"`
}

// HandleDiskUsage handles GET /api/system/disk.
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	dataSize := h.dirSize(h.dataDir)
	logsSize := h.dirSize(filepath.Join(h.dataDir, "logs"))

	h.writeJSON(w, http.StatusOK, DiskUsageResponse{
		DataDirMB: dataSize,
		LogsDirMB: logsSize,
		TotalMB:   dataSize + logsSize,
	})
}

// HandleTriggerReevaluation handles POST /api/system/jobs/reevaluation.
func (h *SystemHandlers) HandleTriggerReevaluation(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.reevaluationJob, "reevaluation")
}

// HandleTriggerBackup handles POST /api/system/jobs/backup.
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.backupJob, "backup")
}

// HandleTriggerMaintenance handles POST /api/system/jobs/maintenance.
func (h *SystemHandlers) HandleTriggerMaintenance(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.maintenanceJob, "maintenance")
}

// triggerJob runs a job synchronously and reports the outcome.
func (h *SystemHandlers) triggerJob(w http.ResponseWriter, job scheduler.Job, name string) {
	if job == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "Job not configured: " + name,
		})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job trigger")
	if err := job.Run(); err != nil {
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Job failed: " + err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "completed", "job": name})
}

// systemStats samples CPU and RAM usage. The CPU sample window is short so
// the status endpoint stays responsive.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

// dirSize returns the total size of a directory in MB.
func (h *SystemHandlers) dirSize(dirPath string) float64 {
	var totalSize int64
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}
	return float64(totalSize) / 1024 / 1024
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
