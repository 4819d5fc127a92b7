package config

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	Region     string
}

// NewS3Config initializes the S3 client for the configured recipe image bucket.
// Credentials come from the default AWS chain.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.S3BucketName,
		Region:     cfg.AWSRegion,
	}, nil
}

// PublicURL returns the public URL of an object in the bucket.
func (s *S3Config) PublicURL(key string) string {
	return "https://" + s.BucketName + ".s3." + s.Region + ".amazonaws.com/" + key
}
