//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

package docstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"
)

const cosDefaultTimeout = 60 * time.Second

// COSBackend stores blobs as objects in a Tencent Cloud Object Storage
// bucket. When this backend is configured its failures are surfaced to the
// caller: a durable store that silently loses documents is worse than a
// visible error.
type COSBackend struct {
	client *cos.Client
}

// COSOption configures the COS backend.
type COSOption func(*cosOptions)

type cosOptions struct {
	secretID  string
	secretKey string
	timeout   time.Duration
}

// WithCOSSecretID sets the COS secret id. Defaults to the COS_SECRETID
// environment variable.
func WithCOSSecretID(id string) COSOption {
	return func(o *cosOptions) { o.secretID = id }
}

// WithCOSSecretKey sets the COS secret key. Defaults to the COS_SECRETKEY
// environment variable.
func WithCOSSecretKey(key string) COSOption {
	return func(o *cosOptions) { o.secretKey = key }
}

// WithCOSTimeout sets the request timeout.
func WithCOSTimeout(timeout time.Duration) COSOption {
	return func(o *cosOptions) { o.timeout = timeout }
}

// NewCOSBackend creates a backend against the given bucket URL, e.g.
// "https://bucket.cos.region.myqcloud.com".
func NewCOSBackend(bucketURL string, opts ...COSOption) (*COSBackend, error) {
	o := cosOptions{
		secretID:  os.Getenv("COS_SECRETID"),
		secretKey: os.Getenv("COS_SECRETKEY"),
		timeout:   cosDefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("docstore: parse bucket url: %w", err)
	}
	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Timeout: o.timeout,
		Transport: &cos.AuthorizationTransport{
			SecretID:  o.secretID,
			SecretKey: o.secretKey,
		},
	})
	return &COSBackend{client: client}, nil
}

// Get returns the object for key, or (nil, nil) when absent.
func (b *COSBackend) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := b.client.Object.Get(ctx, key, nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("docstore: cos get %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("docstore: cos read %s: %w", key, err)
	}
	return data, nil
}

// Set stores the object under key.
func (b *COSBackend) Set(ctx context.Context, key string, data []byte) error {
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: "application/json",
		},
	}
	if _, err := b.client.Object.Put(ctx, key, bytes.NewReader(data), opt); err != nil {
		return fmt.Errorf("docstore: cos put %s: %w", key, err)
	}
	return nil
}

// Delete removes the object under key. Deleting an absent key is not an
// error.
func (b *COSBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.client.Object.Delete(ctx, key); err != nil && !cos.IsNotFoundError(err) {
		return fmt.Errorf("docstore: cos delete %s: %w", key, err)
	}
	return nil
}
