package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Older backups carry a date only, current ones a full timestamp.
var backupDirPattern = regexp.MustCompile(`^output_(\d{8}|\d{14})$`)

// BackupRotator prunes dated backup directories, keeping the newest ones.
type BackupRotator struct {
	backupBasePath    string
	coreDirectoryName string
	keep              int
	logger            log.FieldLogger
}

func NewBackupRotator(backupBasePath, coreDirectoryName string, keep int, logger log.FieldLogger) *BackupRotator {
	return &BackupRotator{
		backupBasePath:    backupBasePath,
		coreDirectoryName: coreDirectoryName,
		keep:              keep,
		logger:            logger,
	}
}

// Rotate returns the directories it removed.
func (r *BackupRotator) Rotate() ([]string, error) {
	removed := make([]string, 0)
	if r.keep < 1 {
		return removed, fmt.Errorf("number of directories to keep must be at least 1, got %d", r.keep)
	}

	r.logger.Info("@@@@@ Start Rotation")
	backupPath := filepath.Join(r.backupBasePath, r.coreDirectoryName)
	if err := os.MkdirAll(backupPath, os.ModePerm); err != nil {
		return removed, fmt.Errorf("Error creating backup directory %s: %w", backupPath, err)
	}

	entries, err := os.ReadDir(backupPath)
	if err != nil {
		return removed, fmt.Errorf("Error listing backup directory %s: %w", backupPath, err)
	}

	backups := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && backupDirPattern.MatchString(entry.Name()) {
			backups = append(backups, entry.Name())
		}
	}
	// newest first; the timestamps sort lexically
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))

	var firstErr error
	if len(backups) > r.keep {
		for _, name := range backups[r.keep:] {
			dir := filepath.Join(backupPath, name)
			if removeErr := os.RemoveAll(dir); removeErr != nil {
				r.logger.Warn(fmt.Sprintf("Error deleting directory %s: %s", dir, removeErr))
				if firstErr == nil {
					firstErr = removeErr
				}
				continue
			}
			removed = append(removed, dir)
			r.logger.Info(fmt.Sprintf("Delete directory %s", dir))
		}
	}

	r.logger.WithField(emptyLineField, true).Info("@@@@@ Done Rotation")

	return removed, firstErr
}
