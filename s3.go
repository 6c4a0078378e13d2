package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client uploads report files into a single bucket. Remote paths map to
// object keys without their leading slash.
type S3Client struct {
	Client *s3.Client
	Bucket string
}

func NewS3BucketClient(appConfig AppConfig) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithSharedConfigProfile(appConfig.AWSProfile),
		config.WithRegion(appConfig.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("Error creating s3 client: %w", err)
	}

	return &S3Client{Client: s3.NewFromConfig(cfg), Bucket: appConfig.S3Bucket}, nil
}

func (s *S3Client) UploadFile(remotePath string, body io.Reader) error {
	uploader := manager.NewUploader(s.Client)
	_, putErr := uploader.Upload(context.TODO(), &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(strings.TrimPrefix(remotePath, "/")),
		Body:   body,
	})

	return putErr
}
