package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/katalux/roofers-landing/internal/leads"
	"github.com/katalux/roofers-landing/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ManifestEntry is one line of the monthly lead manifest. Contact details
// are hashed so the manifest can be shared for reporting.
type ManifestEntry struct {
	LeadID      string `json:"lead_id"`
	FormID      string `json:"form_id"`
	S3Key       string `json:"s3_key"`
	PhoneHash   string `json:"phone_hash"`
	EmailHash   string `json:"email_hash"`
	SubmittedAt string `json:"submitted_at"`
	ArchivedAt  string `json:"archived_at"`
}

// Store archives accepted leads to S3.
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
	return &Store{
		bucket:   bucket,
		s3Client: s3Client,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// LeadKey is the object key for a lead archived at t.
func LeadKey(t time.Time, lead *leads.Lead) string {
	return fmt.Sprintf("leads/v1/by-date/%d/%02d/%02d/%s/%s.json",
		t.Year(), t.Month(), t.Day(), lead.FormID, lead.ID)
}

// ArchiveLead writes lead as JSON and appends it to the monthly manifest.
func (s *Store) ArchiveLead(ctx context.Context, lead *leads.Lead) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("archive: marshal lead: %w", err)
	}

	now := s.now()
	key := LeadKey(now, lead)

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", key, err)
	}

	s.logger.Info("archived lead to S3", "lead_id", lead.ID, "form_id", lead.FormID, "s3_key", key)

	entry := ManifestEntry{
		LeadID:      lead.ID,
		FormID:      lead.FormID,
		S3Key:       key,
		PhoneHash:   HashPhone(lead.Phone),
		EmailHash:   HashEmail(lead.Email),
		SubmittedAt: lead.SubmittedAt.UTC().Format(time.RFC3339),
		ArchivedAt:  now.Format(time.RFC3339),
	}
	if err := s.AppendManifest(ctx, entry); err != nil {
		// the lead object is already stored
		s.logger.Warn("failed to append manifest", "error", err, "lead_id", lead.ID)
	}
	return nil
}

// ManifestKey is the monthly manifest object key for t.
func ManifestKey(t time.Time) string {
	return fmt.Sprintf("leads/v1/manifests/%d-%02d.jsonl", t.Year(), t.Month())
}

// AppendManifest appends a JSONL line to the monthly manifest file.
// Uses read-modify-write since S3 doesn't support append.
func (s *Store) AppendManifest(ctx context.Context, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}

	manifestKey := ManifestKey(s.now())

	var existing []byte
	getResp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(manifestKey),
	})
	switch {
	case err == nil:
		existing, err = io.ReadAll(getResp.Body)
		getResp.Body.Close()
		if err != nil {
			return fmt.Errorf("archive: read manifest: %w", err)
		}
	case isNotFound(err):
		s.logger.Debug("manifest not found, creating new", "key", manifestKey)
	default:
		return fmt.Errorf("archive: s3 get manifest: %w", err)
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	return errors.As(err, &nf)
}
