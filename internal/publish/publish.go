// Package publish uploads materialized episodes to S3-compatible object storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"episodekit/internal/logging"
)

// ObjectClient is the subset of *s3.Client used by Publisher.
type ObjectClient interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds explicit construction parameters.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional; custom endpoint such as MinIO
	// PathStyle addresses objects as endpoint/bucket/key.
	PathStyle bool
	Prefix    string
	// Static credentials; when empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Publisher uploads episode directories under bucket/prefix.
type Publisher struct {
	client ObjectClient
	bucket string
	prefix string
	logger *slog.Logger
}

// New builds a Publisher backed by an S3 client. optFns are applied to the
// client options after the endpoint settings.
func New(ctx context.Context, cfg Config, logger *slog.Logger, optFns ...func(*s3.Options)) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, fn := range optFns {
			fn(o)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client ObjectClient, bucket, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logging.NewComponentLogger(logger, "publish"),
	}
}

// Report summarizes one published episode.
type Report struct {
	Bucket   string
	Uploaded []string
	// Skipped lists keys that already existed and were left untouched.
	Skipped []string
	Bytes   int64
}

// Key returns the object key for a file of episode name.
func (p *Publisher) Key(name, rel string) string {
	return path.Join(p.prefix, name, filepath.ToSlash(rel))
}

// PublishEpisode uploads every regular file under dir to
// <prefix>/<name>/<relative path>. Objects that already exist are never
// overwritten; they are reported as skipped.
func (p *Publisher) PublishEpisode(ctx context.Context, dir, name string) (Report, error) {
	report := Report{Bucket: p.bucket}
	if name == "" {
		name = filepath.Base(dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return report, fmt.Errorf("stat episode directory: %w", err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("publish %s: not a directory", dir)
	}

	err = filepath.WalkDir(dir, func(filePath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, filePath)
		if err != nil {
			return err
		}
		key := p.Key(name, rel)
		exists, err := p.exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			p.logger.Debug("object exists; skipping", logging.String("key", key))
			report.Skipped = append(report.Skipped, key)
			return nil
		}
		n, err := p.put(ctx, key, filePath)
		if err != nil {
			return err
		}
		report.Uploaded = append(report.Uploaded, key)
		report.Bytes += n
		return nil
	})
	if err != nil {
		return report, err
	}
	p.logger.Info("episode published",
		logging.String(logging.FieldEpisode, name),
		logging.String("bucket", p.bucket),
		logging.Int("uploaded", len(report.Uploaded)),
		logging.Int("skipped", len(report.Skipped)),
		logging.Int64("bytes", report.Bytes),
	)
	return report, nil
}

func (p *Publisher) exists(ctx context.Context, key string) (bool, error) {
	_, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(p.bucket), Key: aws.String(key)})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head %s: %w", key, err)
}

func (p *Publisher) put(ctx context.Context, key, filePath string) (int64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return 0, err
	}
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(filePath)),
	})
	if err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}
	return info.Size(), nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

func contentType(filePath string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filePath))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
