package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/brand-loop/creatives/internal/models"
)

// ErrNotFound is returned when no artifact exists under the requested
// session and filename.
var ErrNotFound = errors.New("artifact not found")

// Client is the S3-backed artifact store. Artifacts are immutable; each
// save appends a new revision under sessions/{session}/artifacts/{filename}/
// and returns the 1-based revision count for that filename. In the normal
// flow every filename is written exactly once, so a revision above 1 means
// a caller re-derived an already-used filename.
type Client struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string // optional base URL for a public bucket
}

// NewClient creates a new S3 artifact store client.
func NewClient(endpoint, region, bucket, accessKey, secretKey, publicURL string) (*Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	}

	// Custom endpoint for MinIO/LocalStack
	if endpoint != "" {
		configOpts = append(configOpts, config.WithBaseEndpoint(endpoint))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Path-style addressing for MinIO compatibility. Relaxed checksums so
	// S3-compatible backends (e.g. Cloudflare R2) that don't fully support
	// CRC32 headers work correctly.
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	log.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucket).
		Msg("S3 artifact store initialized")

	return &Client{
		s3Client:  s3Client,
		bucket:    bucket,
		publicURL: publicURL,
	}, nil
}

func artifactPrefix(sessionID, filename string) string {
	return path.Join("sessions", sessionID, "artifacts", filename) + "/"
}

// SaveArtifact persists artifact bytes under the session and filename and
// returns the store-assigned revision for that filename.
func (c *Client) SaveArtifact(ctx context.Context, sessionID string, artifact *models.Artifact) (int, error) {
	prefix := artifactPrefix(sessionID, artifact.Filename)
	revs, err := c.listRevisions(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list artifact revisions: %w", err)
	}

	rev := 1
	if len(revs) > 0 {
		rev = revs[len(revs)-1] + 1
	}
	key := prefix + strconv.Itoa(rev)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(artifact.Data),
		ContentType:   aws.String(artifact.MimeType),
		ContentLength: aws.Int64(artifact.Size()),
	}
	if _, err := c.s3Client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("failed to upload artifact to S3: %w", err)
	}

	log.Info().
		Str("bucket", c.bucket).
		Str("key", key).
		Str("mime_type", artifact.MimeType).
		Int64("size_bytes", artifact.Size()).
		Msg("Artifact uploaded")

	return rev, nil
}

// LoadArtifact retrieves the latest revision of an artifact. Returns
// ErrNotFound when nothing is stored under the filename.
func (c *Client) LoadArtifact(ctx context.Context, sessionID, filename string) (*models.Artifact, error) {
	prefix := artifactPrefix(sessionID, filename)
	revs, err := c.listRevisions(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifact revisions: %w", err)
	}
	if len(revs) == 0 {
		return nil, ErrNotFound
	}

	key := prefix + strconv.Itoa(revs[len(revs)-1])
	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact body: %w", err)
	}

	mimeType := "application/octet-stream"
	if result.ContentType != nil && *result.ContentType != "" {
		mimeType = *result.ContentType
	}

	return &models.Artifact{
		Filename: filename,
		MimeType: mimeType,
		Data:     data,
	}, nil
}

// listRevisions returns the sorted numeric revisions stored under prefix.
func (c *Client) listRevisions(ctx context.Context, prefix string) ([]int, error) {
	var revs []int
	var continuation *string
	for {
		out, err := c.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			if obj.Key == nil {
				continue
			}
			rev, err := strconv.Atoi(strings.TrimPrefix(*obj.Key, prefix))
			if err != nil {
				continue
			}
			revs = append(revs, rev)
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}
	sort.Ints(revs)
	return revs, nil
}

// PublicURL returns the public URL for the first revision of an artifact.
// Empty if publicURL was not configured.
func (c *Client) PublicURL(sessionID, filename string) string {
	if c.publicURL == "" {
		return ""
	}
	key := artifactPrefix(sessionID, filename) + "1"
	if strings.HasSuffix(c.publicURL, "/") {
		return c.publicURL + key
	}
	return c.publicURL + "/" + key
}

// PresignedURL generates a presigned download URL for the latest revision
// of an artifact.
func (c *Client) PresignedURL(ctx context.Context, sessionID, filename string, expiration time.Duration) (string, error) {
	prefix := artifactPrefix(sessionID, filename)
	revs, err := c.listRevisions(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to list artifact revisions: %w", err)
	}
	if len(revs) == 0 {
		return "", ErrNotFound
	}
	key := prefix + strconv.Itoa(revs[len(revs)-1])

	presignClient := s3.NewPresignClient(c.s3Client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiration
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}
