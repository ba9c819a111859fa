package s3

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"

	"docchat/internal/config"
)

// SecretKeys are the credentials required to talk to S3.
var SecretKeys = []string{
	config.KeyAWSAccessKeyID,
	config.KeyAWSSecretAccessKey,
	config.KeyAWSRegion,
}

// Store archives original files in an S3 bucket for audit and
// re-indexing.
type Store struct {
	client *awss3.Client
	bucket string
	logger *log.Logger
}

func NewStore(ctx context.Context, secrets *config.Secrets, bucket string, logger *log.Logger) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(secrets.Get(config.KeyAWSRegion)),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			secrets.Get(config.KeyAWSAccessKeyID),
			secrets.Get(config.KeyAWSSecretAccessKey),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Store{
		client: awss3.NewFromConfig(cfg),
		bucket: bucket,
		logger: logger,
	}, nil
}

// Upload stores a local file under the given key.
func (s *Store) Upload(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return err
	}
	s.logger.Info("file uploaded", "bucket", s.bucket, "key", key)
	return nil
}

// Read fetches the content of an archived object.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
