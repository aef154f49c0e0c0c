// Package archive persists raw provider payloads to S3 before parsing, so a
// run can be audited or replayed after the provider response is gone.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dancepulse/dancepulse/internal/models"
)

// objectPutter is the slice of the S3 API the archiver needs.
type objectPutter interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes one JSON object per city per run under
// <prefix>/<date>/<country>/<city>.json.
type S3Archiver struct {
	client objectPutter
	bucket string
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// NewS3Archiver builds an archiver using the ambient AWS credential chain.
func NewS3Archiver(ctx context.Context, bucket, prefix string, logger *slog.Logger) (*S3Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
		now:    time.Now,
	}, nil
}

type rawArchive struct {
	City       string            `json:"city"`
	Country    string            `json:"country_code"`
	ArchivedAt time.Time         `json:"archived_at"`
	Count      int               `json:"count"`
	Events     []models.RawEvent `json:"events"`
}

// ArchiveRaw uploads the unparsed events for one city. Failures are returned
// to the caller, which treats archiving as best effort.
func (a *S3Archiver) ArchiveRaw(ctx context.Context, city models.City, events []models.RawEvent) error {
	if len(events) == 0 {
		return nil
	}

	at := a.now().UTC()
	payload := rawArchive{
		City:       city.Name,
		Country:    city.CountryCode,
		ArchivedAt: at,
		Count:      len(events),
		Events:     events,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal raw archive: %w", err)
	}

	key := a.objectKey(city, at)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload raw archive: %w", err)
	}

	a.logger.Debug("archived raw payload",
		"bucket", a.bucket,
		"key", key,
		"events", len(events))
	return nil
}

func (a *S3Archiver) objectKey(city models.City, at time.Time) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(city.Name), " ", "-"))
	key := fmt.Sprintf("%s/%s/%s.json", at.Format("2006-01-02"), strings.ToLower(city.CountryCode), slug)
	if a.prefix != "" {
		key = a.prefix + "/" + key
	}
	return key
}
