package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// minPartSize is the minimum allowed part size for S3 multipart uploads (5 MiB).
const minPartSize = 5 * 1024 * 1024

// Writer uploads objects under the client's bucket and key prefix.
type Writer struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewWriter creates a Writer bound to the client's bucket.
func NewWriter(c *Client) *Writer {
	return &Writer{
		client: c.S3(),
		bucket: c.Bucket(),
		prefix: c.prefix,
	}
}

// Key returns the full object key for name.
func (w *Writer) Key(name string) string {
	if w.prefix == "" {
		return name
	}
	return path.Join(w.prefix, name)
}

// Put uploads data under name, overwriting any existing object. Payloads
// above the multipart threshold go through the upload manager.
func (w *Writer) Put(ctx context.Context, name string, data []byte, contentType string) error {
	key := w.Key(name)
	if len(data) >= minPartSize {
		return w.putMultipart(ctx, key, data, contentType)
	}

	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put object %s: %w", key, err)
	}
	return nil
}

func (w *Writer) putMultipart(ctx context.Context, key string, data []byte, contentType string) error {
	uploader := manager.NewUploader(w.client, func(u *manager.Uploader) {
		u.PartSize = minPartSize
	})

	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: multipart upload %s: %w", key, err)
	}
	return nil
}
