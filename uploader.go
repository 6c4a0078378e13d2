package main

import (
	"fmt"
	"math"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

type UploadTask struct {
	LocalPath  string
	RemotePath string
}

type UploadOutcome struct {
	Task      UploadTask
	Succeeded bool
	Attempts  int
	LastError error
}

// RetryPolicy caps attempts per file. After failed attempt k the uploader
// waits BackoffBase * 2^k, except after the last attempt.
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase time.Duration
}

func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BackoffBase < 0 {
		return fmt.Errorf("backoff base must not be negative, got %s", p.BackoffBase)
	}
	return nil
}

// maxBackoff is where Backoff saturates instead of overflowing.
const maxBackoff = time.Duration(math.MaxInt64)

func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if p.BackoffBase <= 0 || attempt < 0 {
		return 0
	}
	if attempt >= 63 || p.BackoffBase > maxBackoff>>uint(attempt) {
		return maxBackoff
	}
	return p.BackoffBase << uint(attempt)
}

type RetryingUploader struct {
	client UploadClient
	policy RetryPolicy
	logger log.FieldLogger
	sleep  func(time.Duration)
}

func NewRetryingUploader(client UploadClient, policy RetryPolicy, logger log.FieldLogger) *RetryingUploader {
	return &RetryingUploader{
		client: client,
		policy: policy,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Upload never returns an error; failures are reported through the outcome
// and the log.
func (u *RetryingUploader) Upload(task UploadTask) UploadOutcome {
	outcome := UploadOutcome{Task: task}

	for {
		outcome.Attempts++
		err := u.attempt(task)
		if err == nil {
			outcome.Succeeded = true
			outcome.LastError = nil
			u.logger.Info(fmt.Sprintf("Uploaded: %s -> %s", task.LocalPath, task.RemotePath))
			return outcome
		}

		outcome.LastError = err
		u.logger.Warn(fmt.Sprintf("Failed to upload %s (Attempt %d/%d): %s",
			task.LocalPath, outcome.Attempts, u.policy.MaxAttempts, err))

		if outcome.Attempts >= u.policy.MaxAttempts {
			u.logger.Error(fmt.Sprintf("Failed to upload %s after %d attempts.",
				task.LocalPath, outcome.Attempts))
			return outcome
		}

		u.sleep(u.policy.Backoff(outcome.Attempts))
	}
}

func (u *RetryingUploader) attempt(task UploadTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("upload client panicked: %v", r)
		}
	}()

	fd, fileErr := os.Open(task.LocalPath)
	if fileErr != nil {
		return fileErr
	}
	defer fd.Close()

	return u.client.UploadFile(task.RemotePath, fd)
}
