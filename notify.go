package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

const (
	inProgressPrefix = ":arrows_counterclockwise:"
	donePrefix       = ":white_check_mark:"
)

// Notifier delivers short phase messages to operators. Delivery is best-effort.
type Notifier interface {
	Notify(message string) error
}

// multiNotifier fans a message out to every configured sink.
type multiNotifier []Notifier

func (m multiNotifier) Notify(message string) error {
	var firstErr error
	for _, notifier := range m {
		if err := notifier.Notify(message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NotifierFromConfig returns nil when no sink is configured.
func NotifierFromConfig(appConfig AppConfig) (Notifier, error) {
	notifiers := make(multiNotifier, 0)

	if appConfig.SlackWebhookURL != "" {
		notifiers = append(notifiers, NewSlackNotifier(appConfig))
	}

	if appConfig.SNSTopic != "" {
		snsNotifier, err := NewSNSNotifier(appConfig)
		if err != nil {
			return nil, fmt.Errorf("Error creating sns notifier: %w", err)
		}
		notifiers = append(notifiers, snsNotifier)
	}

	switch len(notifiers) {
	case 0:
		return nil, nil
	case 1:
		return notifiers[0], nil
	default:
		return notifiers, nil
	}
}

func notifyBestEffort(notifier Notifier, message string, logger log.FieldLogger) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(message); err != nil {
		logger.Debug(fmt.Sprintf("Notification not delivered: %s", err))
	}
}
