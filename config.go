package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jinzhu/configor"
	"github.com/joho/godotenv"
)

const (
	providerVolume = "volume"
	providerAWS    = "aws"
)

type AppConfig struct {
	Provider                string `default:"volume" env:"REMOTE_PROVIDER"`
	RemoteHost              string `env:"REMOTE_HOST"`
	RemoteToken             string `env:"REMOTE_TOKEN"`
	RemoteDestinationPrefix string `env:"REMOTE_DESTINATION_PREFIX"`
	RemoteOverwrite         bool   `env:"REMOTE_OVERWRITE"`
	AWSRegion               string `env:"AWS_REGION"`
	AWSProfile              string `env:"AWS_PROFILE"`
	S3Bucket                string `env:"S3_BUCKET"`

	LocalOutputFolder  string `default:"output" env:"LOCAL_OUTPUT_FOLDER"`
	MaxRetries         int    `default:"3" env:"UPLOAD_FILES_MAX_RETRIES"`
	BackoffBaseSeconds int    `default:"1" env:"UPLOAD_BACKOFF_BASE_SECONDS"`

	BackupBasePath    string `env:"BACKUP_OUTPUT_PATH"`
	CoreDirectoryName string `env:"CORE_DIRECTORY"`
	DirectoriesToKeep int    `default:"15" env:"NUMBER_OF_DIRECTORY_TO_KEEP"`

	LogFile         string `default:"log/app.log" env:"LOG_FILE"`
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string `env:"SLACK_CHANNEL"`
	SNSTopic        string `env:"SNS_TOPIC"`

	UploadAt string `default:"02:45" env:"UPLOAD_AT"`
	RotateAt string `default:"03:00" env:"ROTATE_AT"`
}

// LoadAppConfig reads .env (if any), the optional config file and the
// environment, in increasing order of precedence.
func LoadAppConfig(configFilePath string) (AppConfig, error) {
	var appConfig AppConfig

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return appConfig, fmt.Errorf("Error reading .env file: %w", err)
	}

	files := make([]string, 0)
	if configFilePath != "" {
		files = append(files, configFilePath)
	}
	if err := configor.New(&configor.Config{ENVPrefix: "REPORTSYNC"}).Load(&appConfig, files...); err != nil {
		return appConfig, fmt.Errorf("Error loading configuration: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return appConfig, err
	}
	appConfig.applyWorkingDirDefaults(cwd)

	return appConfig, appConfig.Validate()
}

// applyWorkingDirDefaults places backups next to the project directory:
// <parent of cwd>/backups/<basename of cwd>.
func (c *AppConfig) applyWorkingDirDefaults(cwd string) {
	if c.BackupBasePath == "" {
		c.BackupBasePath = filepath.Join(filepath.Dir(cwd), "backups")
	}
	if c.CoreDirectoryName == "" {
		c.CoreDirectoryName = filepath.Base(cwd)
	}
}

func (c AppConfig) Validate() error {
	if err := c.RetryPolicy().Validate(); err != nil {
		return err
	}
	if c.DirectoriesToKeep < 1 {
		return fmt.Errorf("NUMBER_OF_DIRECTORY_TO_KEEP must be at least 1, got %d", c.DirectoriesToKeep)
	}
	if c.LocalOutputFolder == "" {
		return fmt.Errorf("LOCAL_OUTPUT_FOLDER is required")
	}

	switch c.Provider {
	case providerVolume:
		if c.RemoteHost == "" {
			return fmt.Errorf("REMOTE_HOST is required for the %s provider", providerVolume)
		}
	case providerAWS:
		if c.S3Bucket == "" || c.AWSRegion == "" {
			return fmt.Errorf("S3_BUCKET and AWS_REGION are required for the %s provider", providerAWS)
		}
	default:
		return fmt.Errorf("Unknown remote provider: %s", c.Provider)
	}

	return nil
}

func (c AppConfig) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.MaxRetries,
		BackoffBase: time.Duration(c.BackoffBaseSeconds) * time.Second,
	}
}

func (c AppConfig) ConfigStringArray() []string {
	configStrArr := make([]string, 0)
	configStrArr = append(configStrArr, fmt.Sprintf("  - Provider: %s", c.Provider))
	if c.Provider == providerAWS {
		configStrArr = append(configStrArr, fmt.Sprintf("  - AWSRegion: %s", c.AWSRegion))
		configStrArr = append(configStrArr, fmt.Sprintf("  - S3Bucket: %s", c.S3Bucket))
	} else {
		configStrArr = append(configStrArr, fmt.Sprintf("  - RemoteHost: %s", c.RemoteHost))
	}
	configStrArr = append(configStrArr, fmt.Sprintf("  - Destination: %s", c.RemoteDestinationPrefix))
	configStrArr = append(configStrArr, fmt.Sprintf("  - Output Folder: %s", c.LocalOutputFolder))
	configStrArr = append(configStrArr, fmt.Sprintf("  - Max Attempts: %d", c.MaxRetries))
	configStrArr = append(configStrArr, fmt.Sprintf("  - Backups: %s", filepath.Join(c.BackupBasePath, c.CoreDirectoryName)))
	configStrArr = append(configStrArr, fmt.Sprintf("  - Backups To Keep: %d", c.DirectoriesToKeep))

	if c.SNSTopic != "" {
		configStrArr = append(configStrArr, fmt.Sprintf("  - SNSTopic: %s", c.SNSTopic))
	}
	if c.SlackWebhookURL != "" {
		configStrArr = append(configStrArr, fmt.Sprintf("  - Slack Channel: %s", c.SlackChannel))
	}

	return configStrArr
}
