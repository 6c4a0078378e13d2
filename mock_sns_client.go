package main

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type MockSNSClient struct {
	PublishRequests []*sns.PublishInput
	Fail            bool
}

func (c *MockSNSClient) PublishMessage(msg *sns.PublishInput) error {
	c.PublishRequests = append(c.PublishRequests, msg)
	if c.Fail {
		return errors.New("mock publish failure")
	}
	return nil
}

func NewMockSNSClient() *MockSNSClient {
	return &MockSNSClient{
		PublishRequests: make([]*sns.PublishInput, 0),
	}
}
