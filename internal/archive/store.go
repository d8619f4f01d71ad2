// Package archive writes the transcript of every completed booking to S3.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store archives booking records to S3. It satisfies booking.Archiver.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
	now      func() time.Time
}

// NewStore creates an archive Store. If bucket is empty, all operations are no-ops.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger, now: time.Now}
}

// Enabled returns true if archival is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// ArchiveBooking converts a confirmed chat booking into a scrubbed BookingRecord and stores it.
func (s *Store) ArchiveBooking(ctx context.Context, sessionID string, c booking.Confirmation, transcript []string) error {
	if !s.Enabled() {
		return nil
	}
	msgs := TranscriptMessages(transcript)
	ScrubMessages(msgs)

	return s.Put(ctx, &BookingRecord{
		Version:      RecordVersion,
		SessionID:    sessionID,
		BookingID:    c.BookingID,
		ArchivedAt:   s.now().UTC(),
		PhoneHash:    HashPhone(c.CustomerPhone),
		BarberID:     c.BarberID,
		BarberName:   c.BarberName,
		Service:      c.Service,
		Slot:         c.Slot,
		Channel:      c.Channel,
		MessageCount: len(msgs),
		Messages:     msgs,
	})
}

// Put writes record as JSON and appends it to the monthly manifest.
func (s *Store) Put(ctx context.Context, record *BookingRecord) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("archive: marshal record: %w", err)
	}

	at := record.ArchivedAt
	if at.IsZero() {
		at = s.now().UTC()
	}
	key := fmt.Sprintf("bookings/v1/by-date/%d/%02d/%02d/%s.json", at.Year(), at.Month(), at.Day(), record.BookingID)

	if _, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", key, err)
	}
	s.logger.Info("archived booking to S3", "session_id", record.SessionID, "booking_id", record.BookingID, "s3_key", key)

	entry := ManifestEntry{
		SessionID:    record.SessionID,
		BookingID:    record.BookingID,
		S3Key:        key,
		BarberID:     record.BarberID,
		Service:      record.Service,
		ArchivedAt:   at.Format(time.RFC3339),
		MessageCount: record.MessageCount,
	}
	if err := s.AppendManifest(ctx, at, entry); err != nil {
		s.logger.Warn("failed to append manifest", "error", err, "booking_id", record.BookingID)
	}
	return nil
}

// AppendManifest adds a JSONL line to the manifest of at's month.
// S3 has no append, so this is a read-modify-write.
func (s *Store) AppendManifest(ctx context.Context, at time.Time, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}
	key := fmt.Sprintf("bookings/v1/manifests/%d-%02d.jsonl", at.Year(), at.Month())

	var buf bytes.Buffer
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	switch {
	case err == nil:
		existing, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("archive: read manifest: %w", readErr)
		}
		buf.Write(existing)
		if len(existing) > 0 && existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	case isNotFound(err):
		s.logger.Debug("manifest not found, creating new", "key", key)
	default:
		return fmt.Errorf("archive: s3 get manifest: %w", err)
	}
	buf.Write(line)
	buf.WriteByte('\n')

	if _, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	}); err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "StatusCode: 404")
}

// TranscriptMessages parses "User: "/"Assistant: " history lines.
func TranscriptMessages(transcript []string) []Message {
	out := make([]Message, 0, len(transcript))
	for _, line := range transcript {
		role, content, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		out = append(out, Message{Role: strings.ToLower(role), Content: content})
	}
	return out
}
