package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/plateledger/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3SnapshotStore writes roster snapshots as JSON objects to an
// S3-compatible bucket.
type S3SnapshotStore struct {
	config *sc.Config
}

func NewS3SnapshotStore(cfg *sc.Config) *S3SnapshotStore {
	return &S3SnapshotStore{config: cfg}
}

// SnapshotKey lays snapshots out by UTC date of application.
func SnapshotKey(snap *RosterSnapshot) string {
	d := snap.AppliedAt
	return fmt.Sprintf("rosters/%d/%02d/%02d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3SnapshotStore) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Save uploads snap and returns its object key.
func (s *S3SnapshotStore) Save(ctx context.Context, snap *RosterSnapshot) (string, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}

	c, err := s.client(ctx)
	if err != nil {
		return "", fmt.Errorf("error creating s3 client: %w", err)
	}

	key := SnapshotKey(snap)
	_, err = putObject(c, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading snapshot: %w", err)
	}

	return key, nil
}
