package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dancepulse/dancepulse/internal/models"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, input)
	return &s3.PutObjectOutput{}, nil
}

func testArchiver(putter *fakePutter) *S3Archiver {
	return &S3Archiver{
		client: putter,
		bucket: "dancepulse-raw",
		prefix: "raw",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

func TestArchiveRawUploadsCityPayload(t *testing.T) {
	putter := &fakePutter{}
	archiver := testArchiver(putter)

	city := models.City{Name: "São Paulo", CountryCode: "BR"}
	events := []models.RawEvent{
		{Title: "Noche de Salsa"},
		{Title: "Forró na Praça"},
	}

	if err := archiver.ArchiveRaw(context.Background(), city, events); err != nil {
		t.Fatalf("ArchiveRaw returned error: %v", err)
	}

	if len(putter.inputs) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(putter.inputs))
	}

	input := putter.inputs[0]
	if got := *input.Bucket; got != "dancepulse-raw" {
		t.Errorf("unexpected bucket %q", got)
	}
	if got := *input.Key; got != "raw/2026-05-01/br/são-paulo.json" {
		t.Errorf("unexpected key %q", got)
	}

	body, err := io.ReadAll(input.Body)
	if err != nil {
		t.Fatalf("failed to read upload body: %v", err)
	}

	var payload rawArchive
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("upload body is not valid JSON: %v", err)
	}
	if payload.City != "São Paulo" || payload.Count != 2 || len(payload.Events) != 2 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestArchiveRawSkipsEmptyBatches(t *testing.T) {
	putter := &fakePutter{}
	archiver := testArchiver(putter)

	if err := archiver.ArchiveRaw(context.Background(), models.City{Name: "Lima"}, nil); err != nil {
		t.Fatalf("ArchiveRaw returned error: %v", err)
	}
	if len(putter.inputs) != 0 {
		t.Fatalf("expected no uploads for an empty batch, got %d", len(putter.inputs))
	}
}

func TestArchiveRawWrapsUploadErrors(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	archiver := testArchiver(putter)

	err := archiver.ArchiveRaw(context.Background(), models.City{Name: "Lima", CountryCode: "PE"}, []models.RawEvent{{Title: "Salsa"}})
	if err == nil {
		t.Fatal("expected error from failed upload")
	}
	if !strings.Contains(err.Error(), "failed to upload raw archive") {
		t.Errorf("unexpected error: %v", err)
	}
}
