// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3 stores the snapshot as a single object in an S3-compatible bucket.
type S3 struct {
	s3     *s3.Client
	bucket string
	key    string
}

// NewS3 creates an S3 medium configured for path-style addressing, which
// CEPH/Hetzner and MinIO endpoints require.
func NewS3(endpoint, region, accessKey, secretKey, bucket, key string) (*S3, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, errors.New("s3 endpoint and credentials are required")
	}
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3{s3: client, bucket: bucket, key: key}, nil
}

func (m *S3) Name() string { return "s3:" + m.bucket + "/" + m.key }

// Load downloads the snapshot object.
func (m *S3) Load(ctx context.Context) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, DefaultTimeout)
	defer cancel()

	output, err := m.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.key),
	})
	if isMissingObject(err) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("s3 download %s/%s: %w", m.bucket, m.key, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body %s/%s: %w", m.bucket, m.key, err)
	}
	return data, nil
}

// Save uploads the snapshot object. A PutObject replaces the object
// atomically from a reader's point of view.
func (m *S3) Save(ctx context.Context, data []byte) error {
	ctx, cancel := withTimeout(ctx, DefaultTimeout)
	defer cancel()

	_, err := m.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(m.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", m.bucket, m.key, err)
	}
	return nil
}

func (m *S3) Close() error { return nil }

// isMissingObject recognizes the typed NoSuchKey error as well as the bare
// codes some S3-compatible servers send instead.
func isMissingObject(err error) bool {
	if err == nil {
		return false
	}
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
