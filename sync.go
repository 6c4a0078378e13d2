package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var errRunInProgress = errors.New("Unable to acquire pipeline lock")

const (
	uploadStartMessage = "Starting upload files to remote volume"
	uploadDoneMessage  = "Done upload files to remote volume"
	backupStartMessage = "Starting move files to backup"
	backupDoneMessage  = "Done move files to backup"
)

// RunReport collects what one run did. The run itself reports done whether or
// not every file made it.
type RunReport struct {
	Uploads []UploadOutcome
	Archive ArchiveReport
}

func (r *RunReport) FailedUploads() int {
	failed := 0
	for _, outcome := range r.Uploads {
		if !outcome.Succeeded {
			failed++
		}
	}
	return failed
}

func (r *RunReport) AllSucceeded() bool {
	return r.FailedUploads() == 0 && r.Archive.Failed == 0
}

// Pipeline uploads the local output folder and then moves it to a backup.
type Pipeline struct {
	localOutputFolder string
	destinationPrefix string
	uploader          *RetryingUploader
	archiver          *BackupArchiver
	notifier          Notifier
	logger            log.FieldLogger
	now               func() time.Time
	lock              *sync.Mutex
}

func NewPipeline(appConfig AppConfig, client UploadClient, notifier Notifier, logger log.FieldLogger) *Pipeline {
	return &Pipeline{
		localOutputFolder: appConfig.LocalOutputFolder,
		destinationPrefix: appConfig.RemoteDestinationPrefix,
		uploader:          NewRetryingUploader(client, appConfig.RetryPolicy(), logger),
		archiver:          NewBackupArchiver(appConfig.BackupBasePath, appConfig.CoreDirectoryName, logger),
		notifier:          notifier,
		logger:            logger,
		now:               time.Now,
		lock:              new(sync.Mutex),
	}
}

// Run returns an error only when the output folder cannot be walked or
// another run is still in progress. Per-file failures end up in the report.
func (p *Pipeline) Run() (*RunReport, error) {
	report := &RunReport{Uploads: make([]UploadOutcome, 0)}
	if !p.lock.TryLock() {
		p.logger.Warn("Another upload run is already in progress. Skipping.")
		return report, errRunInProgress
	}
	defer p.lock.Unlock()

	runStartTime := time.Now()
	p.announce(inProgressPrefix, uploadStartMessage, false)

	walkErr := walkUploadTasks(p.localOutputFolder, p.destinationPrefix, p.logger, func(task UploadTask) {
		report.Uploads = append(report.Uploads, p.uploader.Upload(task))
	})
	if walkErr != nil {
		p.logger.Error(fmt.Sprintf("Upload aborted: %s", walkErr))
		return report, walkErr
	}
	p.announce(donePrefix, uploadDoneMessage, false)

	p.announce(inProgressPrefix, backupStartMessage, false)
	archiveReport, archiveErr := p.archiver.Archive(p.localOutputFolder, p.now())
	if archiveErr != nil {
		p.logger.Error(fmt.Sprintf("Backup incomplete: %s", archiveErr))
	}
	report.Archive = archiveReport

	uploaded := len(report.Uploads) - report.FailedUploads()
	// the counts go in the message too, the file log only keeps messages
	p.logger.WithFields(log.Fields{
		"uploaded":      uploaded,
		"upload_failed": report.FailedUploads(),
		"moved":         archiveReport.Moved,
		"move_failed":   archiveReport.Failed,
		"backup_root":   archiveReport.BackupRoot,
	}).Info(fmt.Sprintf("Run complete. Uploaded %d, upload failed %d, moved %d, move failed %d. Took %s",
		uploaded, report.FailedUploads(), archiveReport.Moved, archiveReport.Failed, time.Since(runStartTime)))
	p.announce(donePrefix, backupDoneMessage, true)

	return report, nil
}

// announce marks a phase boundary in the log and on the notification sink.
func (p *Pipeline) announce(prefix, message string, emptyLine bool) {
	entry := p.logger.WithFields(log.Fields{})
	if emptyLine {
		entry = p.logger.WithField(emptyLineField, true)
	}
	entry.Info(fmt.Sprintf("@@@@@ %s", message))
	notifyBestEffort(p.notifier, fmt.Sprintf("%s %s", prefix, message), p.logger)
}
