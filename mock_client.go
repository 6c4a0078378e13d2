package main

import (
	"errors"
	"io"
)

var errMockUpload = errors.New("mock upload failure")

// alwaysFail makes a MockUploadClient reject every attempt for a path.
const alwaysFail = -1

type MockUploadClient struct {
	UploadRequests []MockRequest
	// failures holds how many attempts still fail per remote path.
	failures map[string]int
}

type MockRequest struct {
	RemotePath string
	Body       string
	Err        error
}

func NewMockClient(failures map[string]int) *MockUploadClient {
	if failures == nil {
		failures = make(map[string]int)
	}
	return &MockUploadClient{
		UploadRequests: make([]MockRequest, 0),
		failures:       failures,
	}
}

func (m *MockUploadClient) UploadFile(remotePath string, body io.Reader) error {
	content, readErr := io.ReadAll(body)
	request := MockRequest{RemotePath: remotePath, Body: string(content), Err: readErr}

	if readErr == nil {
		if remaining := m.failures[remotePath]; remaining != 0 {
			if remaining > 0 {
				m.failures[remotePath] = remaining - 1
			}
			request.Err = errMockUpload
		}
	}
	m.UploadRequests = append(m.UploadRequests, request)

	return request.Err
}

// Succeeded returns the remote paths of every accepted upload, in order.
func (m *MockUploadClient) Succeeded() []string {
	paths := make([]string, 0)
	for _, request := range m.UploadRequests {
		if request.Err == nil {
			paths = append(paths, request.RemotePath)
		}
	}
	return paths
}
