package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	backupDirPrefix       = "output_"
	backupTimestampLayout = "20060102150405"
	// backupTimestampOffset labels a backup with the previous day, the day
	// the reports were produced for.
	backupTimestampOffset = -24 * time.Hour
)

var (
	// swapped in tests to simulate files that cannot be moved
	concreteMoveFunc = moveFile
	// swapped in tests to simulate a backup on another volume
	concreteRenameFunc = os.Rename
)

type ArchivePlan struct {
	SourceRoot string
	BackupRoot string
	Timestamp  string
}

func NewArchivePlan(sourceRoot, backupBasePath, coreDirectoryName string, now time.Time) ArchivePlan {
	timestamp := now.Add(backupTimestampOffset).Format(backupTimestampLayout)
	return ArchivePlan{
		SourceRoot: sourceRoot,
		BackupRoot: filepath.Join(backupBasePath, coreDirectoryName, backupDirPrefix+timestamp),
		Timestamp:  timestamp,
	}
}

type ArchiveReport struct {
	BackupRoot string
	Moved      int
	Failed     int
}

// BackupArchiver moves processed report files out of the output folder into
// a dated backup directory, keeping their layout below the root.
type BackupArchiver struct {
	backupBasePath    string
	coreDirectoryName string
	logger            log.FieldLogger
}

func NewBackupArchiver(backupBasePath, coreDirectoryName string, logger log.FieldLogger) *BackupArchiver {
	return &BackupArchiver{
		backupBasePath:    backupBasePath,
		coreDirectoryName: coreDirectoryName,
		logger:            logger,
	}
}

// Archive is best-effort per file: a file that cannot be moved stays where
// it is and the rest are still processed. The error only covers failures to
// set up the backup root or to read the source root.
func (a *BackupArchiver) Archive(root string, now time.Time) (ArchiveReport, error) {
	plan := NewArchivePlan(root, a.backupBasePath, a.coreDirectoryName, now)
	report := ArchiveReport{BackupRoot: plan.BackupRoot}

	if err := os.MkdirAll(plan.BackupRoot, os.ModePerm); err != nil {
		return report, fmt.Errorf("Error creating backup directory %s: %w", plan.BackupRoot, err)
	}

	walkErr := walkEligibleFiles(plan.SourceRoot, a.logger, func(fullPath, relPath string) {
		destination := filepath.Join(plan.BackupRoot, relPath)
		if moveErr := concreteMoveFunc(fullPath, destination); moveErr != nil {
			report.Failed++
			a.logger.Warn(fmt.Sprintf("Failed to move %s -> %s: %s", fullPath, destination, moveErr))
			return
		}
		report.Moved++
		a.logger.Info(fmt.Sprintf("Moved: %s -> %s", fullPath, destination))
	})

	return report, walkErr
}

// moveFile renames src to dst, creating dst's parents. Across volumes it
// copies and removes src only once the copy is complete.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return err
	}

	renameErr := concreteRenameFunc(src, dst)
	if renameErr == nil {
		return nil
	}
	if !errors.Is(renameErr, syscall.EXDEV) {
		return renameErr
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}

	return os.Remove(src)
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Sync(); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
