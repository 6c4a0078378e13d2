package main

import (
	"fmt"
	"io"
)

// UploadClient stores a single object at remotePath on the remote volume.
type UploadClient interface {
	UploadFile(remotePath string, body io.Reader) error
}

func ClientFromConfig(c AppConfig) (UploadClient, error) {
	var uploadClient UploadClient

	switch c.Provider {
	case providerVolume:
		uploadClient = NewVolumeClient(c)
	case providerAWS:
		s3Client, err := NewS3BucketClient(c)
		if err != nil {
			return uploadClient, err
		}
		uploadClient = s3Client
	default:
		return uploadClient, fmt.Errorf("Unknown remote provider: %s", c.Provider)
	}

	return uploadClient, nil
}
