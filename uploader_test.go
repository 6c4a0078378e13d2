package main

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSleeper struct {
	waits []time.Duration
}

func (f *fakeSleeper) Sleep(d time.Duration) {
	f.waits = append(f.waits, d)
}

func newTestUploader(client UploadClient, policy RetryPolicy) (*RetryingUploader, *fakeSleeper, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	sleeper := &fakeSleeper{}
	uploader := NewRetryingUploader(client, policy, logger)
	uploader.sleep = sleeper.Sleep
	return uploader, sleeper, hook
}

func logMessages(hook *logtest.Hook) []string {
	messages := make([]string, 0)
	for _, entry := range hook.AllEntries() {
		messages = append(messages, entry.Message)
	}
	return messages
}

type panicClient struct{}

func (panicClient) UploadFile(string, io.Reader) error {
	panic("boom")
}

func TestRetryPolicyValidate(t *testing.T) {
	assert.NoError(t, RetryPolicy{MaxAttempts: 1}.Validate())
	assert.Error(t, RetryPolicy{MaxAttempts: 0}.Validate())
	assert.Error(t, RetryPolicy{MaxAttempts: 3, BackoffBase: -time.Second}.Validate())
}

func TestRetryPolicyBackoffDoubles(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 4, BackoffBase: time.Second}
	assert.Equal(t, 2*time.Second, policy.Backoff(1))
	assert.Equal(t, 4*time.Second, policy.Backoff(2))
	assert.Equal(t, 8*time.Second, policy.Backoff(3))
}

func TestRetryPolicyBackoffSaturates(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 100, BackoffBase: time.Second}
	assert.Equal(t, time.Second<<33, policy.Backoff(33))
	assert.Equal(t, maxBackoff, policy.Backoff(34))
	assert.Equal(t, maxBackoff, policy.Backoff(63))
	assert.Equal(t, maxBackoff, policy.Backoff(99))

	for attempt := 1; attempt < 100; attempt++ {
		assert.GreaterOrEqual(t, int64(policy.Backoff(attempt)), int64(policy.Backoff(attempt-1)), attempt)
	}
	assert.Equal(t, time.Duration(0), RetryPolicy{MaxAttempts: 3}.Backoff(5))
}

func TestUploadSucceedsFirstAttempt(t *testing.T) {
	localPath := filepath.Join(t.TempDir(), "a.json")
	writeTestFile(t, localPath, `{"ok":true}`)
	task := UploadTask{LocalPath: localPath, RemotePath: "/vol/a.json"}

	client := NewMockClient(nil)
	uploader, sleeper, hook := newTestUploader(client, RetryPolicy{MaxAttempts: 3, BackoffBase: time.Second})
	outcome := uploader.Upload(task)

	assert.True(t, outcome.Succeeded)
	assert.Equal(t, 1, outcome.Attempts)
	assert.NoError(t, outcome.LastError)
	assert.Equal(t, task, outcome.Task)
	assert.Empty(t, sleeper.waits)
	require.Len(t, client.UploadRequests, 1)
	assert.Equal(t, `{"ok":true}`, client.UploadRequests[0].Body)
	assert.Equal(t, []string{"Uploaded: " + localPath + " -> /vol/a.json"}, logMessages(hook))
}

func TestUploadSucceedsOnAttemptM(t *testing.T) {
	for m := 1; m <= 4; m++ {
		localPath := filepath.Join(t.TempDir(), "a.csv")
		writeTestFile(t, localPath, "1,2")

		client := NewMockClient(map[string]int{"/vol/a.csv": m - 1})
		uploader, sleeper, _ := newTestUploader(client, RetryPolicy{MaxAttempts: 4, BackoffBase: time.Second})
		outcome := uploader.Upload(UploadTask{LocalPath: localPath, RemotePath: "/vol/a.csv"})

		assert.True(t, outcome.Succeeded, "m=%d", m)
		assert.Equal(t, m, outcome.Attempts, "m=%d", m)
		assert.Len(t, client.UploadRequests, m, "m=%d", m)
		assert.Len(t, sleeper.waits, m-1, "m=%d", m)
	}
}

func TestUploadAlwaysFailingExhaustsAttempts(t *testing.T) {
	localPath := filepath.Join(t.TempDir(), "a.json")
	writeTestFile(t, localPath, "{}")

	client := NewMockClient(map[string]int{"/vol/a.json": alwaysFail})
	uploader, sleeper, hook := newTestUploader(client, RetryPolicy{MaxAttempts: 3, BackoffBase: 500 * time.Millisecond})
	outcome := uploader.Upload(UploadTask{LocalPath: localPath, RemotePath: "/vol/a.json"})

	assert.False(t, outcome.Succeeded)
	assert.Equal(t, 3, outcome.Attempts)
	assert.ErrorIs(t, outcome.LastError, errMockUpload)
	assert.Len(t, client.UploadRequests, 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.waits)

	messages := logMessages(hook)
	require.Len(t, messages, 4)
	assert.Equal(t, "Failed to upload "+localPath+" (Attempt 1/3): mock upload failure", messages[0])
	assert.Equal(t, "Failed to upload "+localPath+" (Attempt 3/3): mock upload failure", messages[2])
	assert.Equal(t, "Failed to upload "+localPath+" after 3 attempts.", messages[3])
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
}

func TestUploadSingleAttemptNeverSleeps(t *testing.T) {
	localPath := filepath.Join(t.TempDir(), "a.json")
	writeTestFile(t, localPath, "{}")

	client := NewMockClient(map[string]int{"/vol/a.json": alwaysFail})
	uploader, sleeper, _ := newTestUploader(client, RetryPolicy{MaxAttempts: 1, BackoffBase: time.Second})
	outcome := uploader.Upload(UploadTask{LocalPath: localPath, RemotePath: "/vol/a.json"})

	assert.False(t, outcome.Succeeded)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Empty(t, sleeper.waits)
}

func TestUploadMissingLocalFileCountsAsFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.json")

	client := NewMockClient(nil)
	uploader, sleeper, _ := newTestUploader(client, RetryPolicy{MaxAttempts: 2, BackoffBase: time.Second})
	outcome := uploader.Upload(UploadTask{LocalPath: missing, RemotePath: "/vol/gone.json"})

	assert.False(t, outcome.Succeeded)
	assert.Equal(t, 2, outcome.Attempts)
	assert.Error(t, outcome.LastError)
	assert.Empty(t, client.UploadRequests)
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeper.waits)
}

func TestUploadRecoversClientPanic(t *testing.T) {
	localPath := filepath.Join(t.TempDir(), "a.json")
	writeTestFile(t, localPath, "{}")

	uploader, _, _ := newTestUploader(panicClient{}, RetryPolicy{MaxAttempts: 2})
	outcome := uploader.Upload(UploadTask{LocalPath: localPath, RemotePath: "/vol/a.json"})

	assert.False(t, outcome.Succeeded)
	assert.Equal(t, 2, outcome.Attempts)
	assert.ErrorContains(t, outcome.LastError, "boom")
	assert.False(t, errors.Is(outcome.LastError, errMockUpload))
}
