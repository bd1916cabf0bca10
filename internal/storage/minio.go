package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/s3utils"
)

const defaultContentType = "application/octet-stream"

// MinIOClient uploads drawing files to a MinIO bucket.
type MinIOClient struct {
	client     *minio.Client
	bucketName string
	endpoint   string
	useSSL     bool
	created    bool
}

// MinIOConfig holds MinIO connection settings.
type MinIOConfig struct {
	Endpoint  string // e.g., "localhost:9000"
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinIOClient creates a new MinIO storage client and makes sure the bucket exists.
func NewMinIOClient(ctx context.Context, cfg MinIOConfig) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOClient{
		client:     client,
		bucketName: cfg.Bucket,
		endpoint:   cfg.Endpoint,
		useSSL:     cfg.UseSSL,
		created:    !exists,
	}, nil
}

// Bucket returns the target bucket name.
func (m *MinIOClient) Bucket() string {
	return m.bucketName
}

// Created reports whether NewMinIOClient had to create the bucket.
func (m *MinIOClient) Created() bool {
	return m.created
}

type policyStatement struct {
	Effect    string   `json:"Effect"`
	Principal string   `json:"Principal"`
	Action    []string `json:"Action"`
	Resource  []string `json:"Resource"`
}

type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

// PublicReadPolicy returns the policy document granting anonymous GetObject on every key of bucket.
func PublicReadPolicy(bucket string) (string, error) {
	p := bucketPolicy{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: "*",
			Action:    []string{"s3:GetObject"},
			Resource:  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
		}},
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ApplyPublicReadPolicy makes every object in the bucket anonymously readable.
func (m *MinIOClient) ApplyPublicReadPolicy(ctx context.Context) error {
	policy, err := PublicReadPolicy(m.bucketName)
	if err != nil {
		return fmt.Errorf("failed to build bucket policy: %w", err)
	}
	if err := m.client.SetBucketPolicy(ctx, m.bucketName, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	return nil
}

// Upload stores the file at localPath under key.
func (m *MinIOClient) Upload(ctx context.Context, key, localPath string) error {
	_, err := m.client.FPutObject(ctx, m.bucketName, key, localPath, minio.PutObjectOptions{
		ContentType: detectContentType(localPath),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}

	return nil
}

// ObjectURL returns the public address of key.
func (m *MinIOClient) ObjectURL(key string) string {
	return ObjectURL(m.endpoint, m.bucketName, key, m.useSSL)
}

// ObjectURL builds <scheme>://<endpoint>/<bucket>/<key> with the key percent-encoded.
func ObjectURL(endpoint, bucket, key string, useSSL bool) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, bucket, s3utils.EncodePath(key))
}

func detectContentType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return defaultContentType
	}
	return mt.String()
}
