package s3blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// snapshotTimeLayout names snapshot prefixes, e.g. "20260828T120000Z".
const snapshotTimeLayout = "20060102T150405Z"

// SnapshotUploader copies the marketplace JSON documents into a timestamped
// prefix in the bucket.
type SnapshotUploader struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewSnapshotUploader creates a SnapshotUploader over the client's bucket.
// prefix is the root key prefix for all snapshots, e.g. "polymira".
func NewSnapshotUploader(c *Client, prefix string) *SnapshotUploader {
	return &SnapshotUploader{
		uploader: manager.NewUploader(c.S3()),
		bucket:   c.Bucket(),
		prefix:   prefix,
	}
}

// Upload stores each existing file under a key like
// {prefix}/{timestamp}/forecasts.json and returns the snapshot prefix.
// Missing files are skipped so a fresh deployment can still snapshot.
func (u *SnapshotUploader) Upload(ctx context.Context, files []string, now time.Time) (string, error) {
	snapPrefix := path.Join(u.prefix, now.UTC().Format(snapshotTimeLayout))

	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("s3blob: open %s: %w", file, err)
		}

		key := path.Join(snapPrefix, filepath.Base(file))
		_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        f,
			ContentType: aws.String("application/json"),
		})
		f.Close()
		if err != nil {
			return "", fmt.Errorf("s3blob: upload %s: %w", key, err)
		}
	}

	return snapPrefix, nil
}
