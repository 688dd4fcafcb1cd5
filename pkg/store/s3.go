//go:build s3store
// +build s3store

// This file provides an S3-backed submission store. It is excluded
// from regular builds; enable it with the s3store build tag.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store persists submissions as JSON objects under a key prefix,
// one object per submission.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	s3Client := s3.NewFromConfig(cfg)
//	store := store.NewS3Store(s3Client, "my-bucket", "submissions/")
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates a new S3 submission store.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: key prefix for submissions (e.g., "submissions/")
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3Store) objectKey(formName, id string) string {
	return fmt.Sprintf("%s%s/%s.json", s.prefix, formName, id)
}

// Save uploads the submission as one JSON object.
func (s *S3Store) Save(ctx context.Context, sub Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("store: marshal submission: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(sub.Form, sub.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"form":        sub.Form,
			"received-at": sub.ReceivedAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("store: s3 upload failed: %w", err)
	}
	return nil
}

// List fetches the form's submissions, newest first by modification
// time. Every listed object is fetched, so keep prefixes per
// environment and limits small.
func (s *S3Store) List(ctx context.Context, formName string, limit int) ([]Submission, error) {
	type entry struct {
		key string
		mod time.Time
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + formName + "/"),
	})

	var entries []entry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("store: s3 list failed: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			e := entry{key: *obj.Key}
			if obj.LastModified != nil {
				e.mod = *obj.LastModified
			}
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].mod.After(entries[j].mod)
	})
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	subs := make([]Submission, 0, len(entries))
	for _, e := range entries {
		result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(e.key),
		})
		if err != nil {
			return nil, fmt.Errorf("store: s3 get %s: %w", e.key, err)
		}
		data, err := io.ReadAll(result.Body)
		result.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("store: s3 read %s: %w", e.key, err)
		}

		var sub Submission
		if err := json.Unmarshal(data, &sub); err != nil {
			return nil, fmt.Errorf("store: unmarshal %s: %w", e.key, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Close is a no-op; the S3 client is owned by the caller.
func (s *S3Store) Close() error {
	return nil
}

// Compile-time interface check
var _ Store = (*S3Store)(nil)
