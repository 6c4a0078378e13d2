package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFilePath string
	logLevel       string
	failOnError    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("Failed to execute command")
	}
}

var rootCmd = &cobra.Command{
	Use:           "reportsync",
	Short:         "Upload report files to a remote volume and archive them locally",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Upload the output folder once, then move it to a dated backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig, logger, err := setup()
		if err != nil {
			return err
		}
		pipeline, err := pipelineFromConfig(appConfig, logger)
		if err != nil {
			return err
		}

		report, err := pipeline.Run()
		if err != nil {
			return err
		}
		if failOnError && !report.AllSucceeded() {
			return fmt.Errorf("%d uploads and %d moves failed", report.FailedUploads(), report.Archive.Failed)
		}

		return nil
	},
}

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Delete all but the newest backup directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig, logger, err := setup()
		if err != nil {
			return err
		}
		rotator := NewBackupRotator(appConfig.BackupBasePath, appConfig.CoreDirectoryName, appConfig.DirectoriesToKeep, logger)
		_, err = rotator.Rotate()

		return err
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run uploads and rotations daily at the configured times",
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig, logger, err := setup()
		if err != nil {
			return err
		}
		pipeline, err := pipelineFromConfig(appConfig, logger)
		if err != nil {
			return err
		}
		rotator := NewBackupRotator(appConfig.BackupBasePath, appConfig.CoreDirectoryName, appConfig.DirectoriesToKeep, logger)

		scheduler, err := newScheduler(appConfig, pipeline, rotator, logger)
		if err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Scheduler started. Upload at %s, rotation at %s", appConfig.UploadAt, appConfig.RotateAt))
		scheduler.StartBlocking()

		return nil
	},
}

var jsonToEnvCmd = &cobra.Command{
	Use:   "json-to-env <json-file> <env-file> [branch]",
	Short: "Convert a flat JSON object into an env file",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch := ""
		if len(args) > 2 {
			branch = args[2]
		}

		result, err := JSONToEnv(args[0], args[1], branch)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFilePath, "configfile", "", "Configuration File Path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero when any file failed to upload or move")

	rootCmd.AddCommand(runCmd, rotateCmd, scheduleCmd, jsonToEnvCmd)
}

func setup() (AppConfig, *log.Logger, error) {
	appConfig, configErr := LoadAppConfig(configFilePath)
	if configErr != nil {
		return appConfig, nil, configErr
	}

	logger, err := newAppLogger(appConfig.LogFile, logLevel)
	if err != nil {
		return appConfig, nil, err
	}
	logger.Debug("Configuration:")
	for _, line := range appConfig.ConfigStringArray() {
		logger.Debug(line)
	}

	return appConfig, logger, nil
}

func pipelineFromConfig(appConfig AppConfig, logger log.FieldLogger) (*Pipeline, error) {
	client, err := ClientFromConfig(appConfig)
	if err != nil {
		return nil, err
	}
	notifier, err := NotifierFromConfig(appConfig)
	if err != nil {
		return nil, err
	}

	return NewPipeline(appConfig, client, notifier, logger), nil
}
