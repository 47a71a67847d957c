package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cenkalti/backoff/v4"

	"github.com/taiwx/humigrid/internal/metrics"
	"github.com/taiwx/humigrid/internal/models"
)

// s3API is the slice of the S3 client the source needs, so tests can
// substitute a fake.
type s3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // custom endpoint for S3-compatible stores
}

// S3Source reads station snapshots from an S3 bucket.
type S3Source struct {
	client s3API
	bucket string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Source{client: client, bucket: cfg.Bucket}, nil
}

// ListDates walks the year, month and day common prefixes under weather/.
func (s *S3Source) ListDates(ctx context.Context) ([]string, error) {
	var dates []string
	years, err := s.commonPrefixes(ctx, rootPrefix)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	for _, year := range years {
		months, err := s.commonPrefixes(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("list months under %s: %w", year, err)
		}
		for _, month := range months {
			days, err := s.commonPrefixes(ctx, month)
			if err != nil {
				return nil, fmt.Errorf("list days under %s: %w", month, err)
			}
			for _, day := range days {
				if date, ok := dateFromPrefix(day); ok {
					dates = append(dates, date)
				}
			}
		}
	}
	slices.Sort(dates)
	return slices.Compact(dates), nil
}

func (s *S3Source) ListFrames(ctx context.Context, date string) ([]FrameRef, error) {
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("list frames: bad date %q: %w", date, err)
	}
	prefix := rootPrefix + parsed.Format("2006/01/02") + "/"

	var refs []FrameRef
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			metrics.SourceRequests.WithLabelValues("list", "error").Inc()
			return nil, fmt.Errorf("list frames for %s: %w", date, err)
		}
		metrics.SourceRequests.WithLabelValues("list", "ok").Inc()
		for _, obj := range page.Contents {
			if ref, ok := frameRefFromKey(aws.ToString(obj.Key), aws.ToInt64(obj.Size)); ok {
				refs = append(refs, ref)
			}
		}
	}
	slices.SortFunc(refs, func(a, b FrameRef) int {
		return strings.Compare(a.Time, b.Time)
	})
	return refs, nil
}

// Fetch downloads one frame object with exponential retry. Missing keys are
// permanent failures; everything else is retried briefly.
func (s *S3Source) Fetch(ctx context.Context, ref FrameRef) ([]models.StationReading, error) {
	var body []byte
	operation := func() error {
		start := time.Now()
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(ref.Key),
		})
		if err != nil {
			var noKey *s3types.NoSuchKey
			if errors.As(err, &noKey) {
				return backoff.Permanent(err)
			}
			return err
		}
		defer out.Body.Close()

		body, err = io.ReadAll(out.Body)
		if err != nil {
			return err
		}
		metrics.FetchLatency.Observe(time.Since(start).Seconds())
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		metrics.SourceRequests.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", ref.Key, err)
	}
	metrics.SourceRequests.WithLabelValues("get", "ok").Inc()

	return decodeSnapshot(body)
}

func (s *S3Source) commonPrefixes(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			metrics.SourceRequests.WithLabelValues("list", "error").Inc()
			return nil, err
		}
		metrics.SourceRequests.WithLabelValues("list", "ok").Inc()
		for _, cp := range page.CommonPrefixes {
			out = append(out, aws.ToString(cp.Prefix))
		}
	}
	return out, nil
}
