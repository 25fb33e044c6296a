// Package blob stores uploaded files (profile photos, report attachments)
// in S3 and hands back public URLs.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/apperr"
)

// Allowed upload content types, mapped to the stored file extension.
var extByContentType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
	"text/csv":        ".csv",
}

// Uploader is the capability handlers depend on.
type Uploader interface {
	Upload(ctx context.Context, folder, contentType string, data []byte) (string, error)
}

// S3Uploader stores blobs in a single bucket, keyed by folder and a fresh
// uuid so names never collide.
type S3Uploader struct {
	client *s3.S3
	bucket string
	region string
}

func NewS3Uploader(region, bucket string) (*S3Uploader, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	return &S3Uploader{client: s3.New(sess), bucket: bucket, region: region}, nil
}

// Upload stores the blob and returns its public URL. Unknown content types
// are rejected as validation failures before anything leaves the process.
func (u *S3Uploader) Upload(ctx context.Context, folder, contentType string, data []byte) (string, error) {
	ext, ok := extByContentType[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported content type %q", apperr.ErrValidation, contentType)
	}

	key := path.Join(folder, uuid.New().String()+ext)
	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}
