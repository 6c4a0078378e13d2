package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() AppConfig {
	return AppConfig{
		Provider:           providerVolume,
		RemoteHost:         "example.cloud",
		LocalOutputFolder:  "output",
		MaxRetries:         3,
		BackoffBaseSeconds: 1,
		DirectoriesToKeep:  15,
	}
}

func TestLoadAppConfigFromEnvironment(t *testing.T) {
	t.Setenv("REMOTE_HOST", "adb-1.cloud.example")
	t.Setenv("REMOTE_TOKEN", "token")
	t.Setenv("REMOTE_DESTINATION_PREFIX", "/Volumes/main/reports")
	t.Setenv("REMOTE_OVERWRITE", "true")
	t.Setenv("UPLOAD_FILES_MAX_RETRIES", "5")
	t.Setenv("BACKUP_OUTPUT_PATH", "")
	t.Setenv("CORE_DIRECTORY", "")

	appConfig, err := LoadAppConfig("")
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, providerVolume, appConfig.Provider)
	assert.Equal(t, "adb-1.cloud.example", appConfig.RemoteHost)
	assert.Equal(t, "token", appConfig.RemoteToken)
	assert.Equal(t, "/Volumes/main/reports", appConfig.RemoteDestinationPrefix)
	assert.True(t, appConfig.RemoteOverwrite)
	assert.Equal(t, 5, appConfig.MaxRetries)
	assert.Equal(t, 1, appConfig.BackoffBaseSeconds)
	assert.Equal(t, 15, appConfig.DirectoriesToKeep)
	assert.Equal(t, "output", appConfig.LocalOutputFolder)
	assert.Equal(t, "log/app.log", appConfig.LogFile)
	assert.Equal(t, "02:45", appConfig.UploadAt)
	assert.Equal(t, filepath.Join(filepath.Dir(cwd), "backups"), appConfig.BackupBasePath)
	assert.Equal(t, filepath.Base(cwd), appConfig.CoreDirectoryName)
}

func TestApplyWorkingDirDefaultsKeepsExplicitValues(t *testing.T) {
	appConfig := AppConfig{BackupBasePath: "/srv/backups", CoreDirectoryName: "scraper"}
	appConfig.applyWorkingDirDefaults("/home/app/current")
	assert.Equal(t, "/srv/backups", appConfig.BackupBasePath)
	assert.Equal(t, "scraper", appConfig.CoreDirectoryName)

	appConfig = AppConfig{}
	appConfig.applyWorkingDirDefaults("/home/app/current")
	assert.Equal(t, filepath.Join("/home/app", "backups"), appConfig.BackupBasePath)
	assert.Equal(t, "current", appConfig.CoreDirectoryName)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	noRetries := validConfig()
	noRetries.MaxRetries = 0
	assert.ErrorContains(t, noRetries.Validate(), "max attempts")

	noHost := validConfig()
	noHost.RemoteHost = ""
	assert.ErrorContains(t, noHost.Validate(), "REMOTE_HOST")

	awsWithoutBucket := validConfig()
	awsWithoutBucket.Provider = providerAWS
	assert.ErrorContains(t, awsWithoutBucket.Validate(), "S3_BUCKET")

	unknown := validConfig()
	unknown.Provider = "ftp"
	assert.ErrorContains(t, unknown.Validate(), "Unknown remote provider")

	noKeep := validConfig()
	noKeep.DirectoriesToKeep = 0
	assert.Error(t, noKeep.Validate())
}

func TestRetryPolicyFromConfig(t *testing.T) {
	appConfig := validConfig()
	appConfig.BackoffBaseSeconds = 2
	assert.Equal(t, RetryPolicy{MaxAttempts: 3, BackoffBase: 2 * time.Second}, appConfig.RetryPolicy())
}

func TestConfigStringArray(t *testing.T) {
	appConfig := validConfig()
	appConfig.SNSTopic = "arn:aws:sns:us-east-1:1:reports"
	lines := appConfig.ConfigStringArray()

	assert.Contains(t, lines, "  - RemoteHost: example.cloud")
	assert.Contains(t, lines, "  - SNSTopic: arn:aws:sns:us-east-1:1:reports")
	assert.NotContains(t, lines, "  - S3Bucket: ")
}
