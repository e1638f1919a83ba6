// internal/worker/s3_uploader.go
package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"uihlog/internal/config"
	"uihlog/internal/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfgLib "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// PutObjectAPI is the part of *s3.Client the exporter needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter uploads finished output files to S3 after a run.
//   - one object per output file under <prefix>/<run id>/<name>
//   - retry with exponential backoff at application level only
//     (SDK retries are disabled so the two never stack)
//   - every attempt has its own timeout and honours ctx
type S3Exporter struct {
	cfg     config.Config
	metrics *metrics.Metrics
	log     zerolog.Logger
	client  PutObjectAPI

	backoff    time.Duration
	maxBackoff time.Duration
}

// NewS3Exporter loads the default AWS config for cfg.AWSRegion.
func NewS3Exporter(ctx context.Context, cfg config.Config, m *metrics.Metrics, log zerolog.Logger) (*S3Exporter, error) {
	opts := []func(*awsCfgLib.LoadOptions) error{}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsCfgLib.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsCfgLib.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.RetryMaxAttempts = 0
	})
	return newS3Exporter(cfg, m, log, client), nil
}

func newS3Exporter(cfg config.Config, m *metrics.Metrics, log zerolog.Logger, client PutObjectAPI) *S3Exporter {
	if m == nil {
		m = metrics.New()
	}
	return &S3Exporter{
		cfg:        cfg,
		metrics:    m,
		log:        log,
		client:     client,
		backoff:    200 * time.Millisecond,
		maxBackoff: 2 * time.Second,
	}
}

// Export uploads every path. It stops at the first file that still fails
// after all retries; the local outputs are complete either way.
func (u *S3Exporter) Export(ctx context.Context, paths []string) error {
	for _, p := range paths {
		key := ObjectKey(u.cfg.S3Prefix, u.cfg.RunID, p)
		if err := u.exportFile(ctx, key, p); err != nil {
			return fmt.Errorf("export %s: %w", p, err)
		}
		atomic.AddInt64(&u.metrics.S3ObjectsUploaded, 1)
		u.log.Debug().Str("bucket", u.cfg.S3Bucket).Str("key", key).Msg("output exported")
	}
	return nil
}

func (u *S3Exporter) exportFile(ctx context.Context, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return u.UploadFileWithRetryCtx(ctx, key, f, info.Size())
}

// UploadFileWithRetryCtx
// -----------------------
// Uploads a local file, rewinding it before every retry.
func (u *S3Exporter) UploadFileWithRetryCtx(
	ctx context.Context,
	key string,
	f io.ReadSeeker,
	size int64,
) error {

	var lastErr error
	backoff := u.backoff

	for attempt := 1; attempt <= u.cfg.S3Retries; attempt++ {

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}

		err := u.putObject(ctx, key, f, size)
		if err == nil {
			return nil
		}
		lastErr = err
		atomic.AddInt64(&u.metrics.S3PutErrors, 1)
		u.log.Warn().Err(err).Str("key", key).Int("attempt", attempt).Msg("s3 put failed")

		if attempt == u.cfg.S3Retries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > u.maxBackoff {
				backoff = u.maxBackoff
			}
		}
	}

	return lastErr
}

// putObject performs exactly one PutObject call under S3Timeout.
func (u *S3Exporter) putObject(
	ctx context.Context,
	key string,
	body io.Reader,
	size int64,
) error {

	timeout := u.cfg.S3Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	in := &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.S3Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("text/plain; charset=utf-8"),
	}
	if strings.HasSuffix(key, ".gz") {
		in.ContentType = aws.String("application/gzip")
	}

	_, err := u.client.PutObject(ctx2, in)
	return err
}
