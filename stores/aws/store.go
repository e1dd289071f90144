package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"excaliapp/core"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "drawings/"

// S3API is the part of *s3.Client the store calls.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// s3Store keeps one JSON object per drawing. The owner is stored inside the
// object, so listing reads every object under the prefix.
type s3Store struct {
	s3Client S3API
	bucket   string
}

// NewStore creates a new S3-based store using the default credential chain.
// A non-empty endpoint targets an S3 compatible service with path-style addressing.
func NewStore(ctx context.Context, bucketName, endpoint string) (*s3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return NewStoreWithClient(s3Client, bucketName), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client S3API, bucketName string) *s3Store {
	return &s3Store{s3Client: client, bucket: bucketName}
}

func drawingKey(id string) (string, error) {
	// ids become object names, never paths
	if id == "" || id == "." || id == ".." || path.Base(id) != id {
		return "", fmt.Errorf("%w: invalid drawing id %q", core.ErrBadRequest, id)
	}
	return keyPrefix + id + ".json", nil
}

func (s *s3Store) read(ctx context.Context, key string) (*core.Drawing, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var d core.Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return &d, nil
}

func (s *s3Store) write(ctx context.Context, d *core.Drawing) error {
	key, err := drawingKey(d.ID)
	if err != nil {
		return err
	}

	stored := *d
	stored.InStorage = ""
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal drawing: %w", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to save drawing %s: %w", d.ID, err)
	}
	return nil
}

func (s *s3Store) List(ctx context.Context, userID string) ([]*core.Drawing, error) {
	drawings := make([]*core.Drawing, 0)

	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list drawings: %w", err)
		}

		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			d, err := s.read(ctx, key)
			if err != nil {
				logrus.WithError(err).WithField("key", key).Warn("Skipping unreadable drawing")
				continue
			}
			if d.UserID == userID {
				drawings = append(drawings, d)
			}
		}
	}
	return drawings, nil
}

func (s *s3Store) Lookup(ctx context.Context, id string) (*core.Drawing, error) {
	key, err := drawingKey(id)
	if err != nil {
		return nil, err
	}
	d, err := s.read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("drawing %s: %w", id, err)
	}
	return d, nil
}

func (s *s3Store) Get(ctx context.Context, userID, id string) (*core.Drawing, error) {
	d, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}
	return d, nil
}

// Create is check-then-put; S3 has no conditional create at this SDK level.
func (s *s3Store) Create(ctx context.Context, d *core.Drawing) error {
	_, err := s.Lookup(ctx, d.ID)
	if err == nil {
		return fmt.Errorf("drawing %s already exists", d.ID)
	}
	if !errors.Is(err, core.ErrNotFound) {
		return err
	}
	return s.write(ctx, d)
}

func (s *s3Store) Update(ctx context.Context, d *core.Drawing) error {
	existing, err := s.Get(ctx, d.UserID, d.ID)
	if err != nil {
		return err
	}

	existing.Name = d.Name
	existing.Data = d.Data
	existing.Thumbnail = d.Thumbnail
	existing.IsPublic = d.IsPublic
	existing.UpdatedAt = d.UpdatedAt
	return s.write(ctx, existing)
}

func (s *s3Store) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	key, _ := drawingKey(id)
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete drawing %s: %w", id, err)
	}
	return nil
}
