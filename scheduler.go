package main

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"
)

// newScheduler registers the daily upload run and the daily backup rotation.
func newScheduler(appConfig AppConfig, pipeline *Pipeline, rotator *BackupRotator, logger log.FieldLogger) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.Local)

	_, uploadErr := scheduler.Every(1).Day().At(appConfig.UploadAt).Do(func() {
		if _, err := pipeline.Run(); err != nil {
			logger.Error(fmt.Sprintf("Scheduled upload failed: %s", err))
		}
	})
	if uploadErr != nil {
		return nil, fmt.Errorf("Error scheduling upload at %q: %w", appConfig.UploadAt, uploadErr)
	}

	_, rotateErr := scheduler.Every(1).Day().At(appConfig.RotateAt).Do(func() {
		if _, err := rotator.Rotate(); err != nil {
			logger.Error(fmt.Sprintf("Scheduled rotation failed: %s", err))
		}
	})
	if rotateErr != nil {
		return nil, fmt.Errorf("Error scheduling rotation at %q: %w", appConfig.RotateAt, rotateErr)
	}

	return scheduler, nil
}
