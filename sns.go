package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

const snsSubject = "reportsync status"

func NewSNSNotifier(appConfig AppConfig) (*SNSNotifier, error) {
	cfg, cfgErr := config.LoadDefaultConfig(context.TODO(),
		config.WithSharedConfigProfile(appConfig.AWSProfile),
		config.WithRegion(appConfig.AWSRegion))
	if cfgErr != nil {
		return nil, cfgErr
	}
	snsClient := &SNSClient{sns.NewFromConfig(cfg)}

	return &SNSNotifier{Client: snsClient, Topic: appConfig.SNSTopic}, nil
}

type SNSClientIface interface {
	PublishMessage(msg *sns.PublishInput) error
}

type SNSClient struct {
	Client *sns.Client
}

func (s *SNSClient) PublishMessage(msg *sns.PublishInput) error {
	_, publishErr := s.Client.Publish(context.TODO(), msg)
	return publishErr
}

type SNSNotifier struct {
	Client SNSClientIface
	Topic  string
}

func (s *SNSNotifier) Notify(message string) error {
	snsPublishReq := &sns.PublishInput{
		Message:  aws.String(message),
		TopicArn: aws.String(s.Topic),
		Subject:  aws.String(snsSubject),
	}

	return s.Client.PublishMessage(snsPublishReq)
}
