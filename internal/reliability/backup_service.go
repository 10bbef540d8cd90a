package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelin/comite/internal/database"
	"github.com/avelin/comite/internal/events"
)

const backupFilePrefix = "comite-backup-"

// BackupService snapshots the SQLite stores, archives them and ships the
// archive to the S3 bucket.
type BackupService struct {
	stores        []*database.DB
	s3            *S3Client
	bus           *events.Bus
	dataDir       string
	prefix        string
	engineVersion string
	log           zerolog.Logger
}

// BackupMetadata describes one backup archive.
type BackupMetadata struct {
	Timestamp     time.Time       `json:"timestamp"`
	EngineVersion string          `json:"engine_version"`
	Stores        []StoreMetadata `json:"stores"`
}

// StoreMetadata describes one store inside a backup.
type StoreMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo summarizes one stored backup.
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// NewBackupService creates a backup service over the given stores.
func NewBackupService(stores []*database.DB, s3Client *S3Client, bus *events.Bus, dataDir, prefix, engineVersion string, log zerolog.Logger) *BackupService {
	return &BackupService{
		stores:        stores,
		s3:            s3Client,
		bus:           bus,
		dataDir:       dataDir,
		prefix:        prefix,
		engineVersion: engineVersion,
		log:           log.With().Str("service", "backup").Logger(),
	}
}

// CreateAndUploadBackup snapshots every store, builds a tar.gz archive and
// uploads it.
func (s *BackupService) CreateAndUploadBackup(ctx context.Context) error {
	s.log.Info().Msg("Starting backup")
	startTime := time.Now()

	stagingDir := filepath.Join(s.dataDir, "backup-staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	metadata := BackupMetadata{
		Timestamp:     time.Now().UTC(),
		EngineVersion: s.engineVersion,
		Stores:        make([]StoreMetadata, 0, len(s.stores)),
	}

	var filenames []string
	for _, store := range s.stores {
		filename := store.Name() + ".db"
		snapshotPath := filepath.Join(stagingDir, filename)

		s.log.Debug().Str("store", store.Name()).Msg("Snapshotting store")
		if err := s.snapshot(ctx, store, snapshotPath); err != nil {
			return fmt.Errorf("failed to snapshot %s: %w", store.Name(), err)
		}

		info, err := os.Stat(snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to stat snapshot of %s: %w", store.Name(), err)
		}
		checksum, err := fileChecksum(snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to checksum snapshot of %s: %w", store.Name(), err)
		}

		metadata.Stores = append(metadata.Stores, StoreMetadata{
			Name:      store.Name(),
			Filename:  filename,
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
		filenames = append(filenames, filename)
	}

	metadataPath := filepath.Join(stagingDir, "backup-metadata.json")
	if err := writeMetadata(metadataPath, metadata); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	filenames = append(filenames, "backup-metadata.json")

	archiveName := fmt.Sprintf("%s%s.tar.gz", backupFilePrefix, time.Now().Format("2006-01-02-150405"))
	archivePath := filepath.Join(stagingDir, archiveName)
	if err := createArchive(archivePath, stagingDir, filenames); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	archiveInfo, err := os.Stat(archivePath)
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archiveFile.Close()

	key := objectKey(s.prefix, archiveName)
	if err := s.s3.Upload(ctx, key, archiveFile); err != nil {
		return fmt.Errorf("failed to upload backup: %w", err)
	}

	if s.bus != nil {
		s.bus.Emit(events.BackupCompleted, "reliability", map[string]interface{}{
			"key":       key,
			"sizeBytes": archiveInfo.Size(),
		})
	}

	s.log.Info().
		Dur("duration", time.Since(startTime)).
		Str("archive", archiveName).
		Int64("size_bytes", archiveInfo.Size()).
		Msg("Backup completed")
	return nil
}

// snapshot copies a live store to destPath with VACUUM INTO, which produces
// a consistent single-file image without locking writers out.
func (s *BackupService) snapshot(ctx context.Context, store *database.DB, destPath string) error {
	_, err := store.ExecContext(ctx, "VACUUM INTO ?", destPath)
	return err
}

// ListBackups lists the backups stored in the bucket, newest first.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.s3.List(ctx, objectKey(s.prefix, backupFilePrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(objects))
	now := time.Now()
	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}
		filename := filepath.Base(*obj.Key)
		if !strings.HasPrefix(filename, backupFilePrefix) || !strings.HasSuffix(filename, ".tar.gz") {
			continue
		}

		timestampStr := strings.TrimSuffix(strings.TrimPrefix(filename, backupFilePrefix), ".tar.gz")
		timestamp, err := time.Parse("2006-01-02-150405", timestampStr)
		if err != nil {
			s.log.Warn().Str("filename", filename).Msg("Failed to parse timestamp from filename")
			continue
		}

		var sizeBytes int64
		if obj.Size != nil {
			sizeBytes = *obj.Size
		}
		backups = append(backups, BackupInfo{
			Filename:  filename,
			Timestamp: timestamp,
			SizeBytes: sizeBytes,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// RotateOldBackups deletes backups past the retention period, always keeping
// the newest three.
func (s *BackupService) RotateOldBackups(ctx context.Context, retentionDays int) error {
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return err
	}

	const minBackupsToKeep = 3
	if len(backups) <= minBackupsToKeep || retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for i, backup := range backups {
		if i < minBackupsToKeep || !backup.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.s3.Delete(ctx, objectKey(s.prefix, backup.Filename)); err != nil {
			s.log.Error().Err(err).Str("filename", backup.Filename).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("Backup rotation completed")
	return nil
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

func createArchive(archivePath, sourceDir string, filenames []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archiveFile.Close()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	for _, filename := range filenames {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, filename), filename); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", filename, err)
		}
	}
	return nil
}

func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tarWriter, file)
	return err
}
