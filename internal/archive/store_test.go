package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/katalux/roofers-landing/internal/leads"
	"github.com/katalux/roofers-landing/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client records PutObject/GetObject calls for testing.
type mockS3Client struct {
	putCalls []putCall
	objects  map[string][]byte
	getErr   error
}

type putCall struct {
	bucket string
	key    string
	body   []byte
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.putCalls = append(m.putCalls, putCall{bucket: *input.Bucket, key: *input.Key, body: body})
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

var archiveTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func testStore(mock S3API) *Store {
	store := NewStore(mock, "lead-bucket", logging.Discard())
	store.now = func() time.Time { return archiveTime }
	return store
}

func testLead(id string) *leads.Lead {
	lead := leads.NewLead("heroForm", leads.Submission{
		Name:      "Jane Roofer",
		Company:   "Acme Roofing",
		Phone:     "(555) 123-4567",
		Email:     "Jane@Acme.com",
		Timestamp: archiveTime.Add(-time.Second),
	})
	lead.ID = id
	return lead
}

func TestStore_ArchiveLead(t *testing.T) {
	mock := newMockS3()
	store := testStore(mock)

	require.NoError(t, store.ArchiveLead(context.Background(), testLead("lead-1")))
	require.Len(t, mock.putCalls, 2)

	leadPut := mock.putCalls[0]
	assert.Equal(t, "lead-bucket", leadPut.bucket)
	assert.Equal(t, "leads/v1/by-date/2026/10/19/heroForm/lead-1.json", leadPut.key)
	var stored leads.Lead
	require.NoError(t, json.Unmarshal(leadPut.body, &stored))
	assert.Equal(t, "Acme Roofing", stored.Company)

	manifest := mock.putCalls[1]
	assert.Equal(t, "leads/v1/manifests/2026-10.jsonl", manifest.key)
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(manifest.body), &entry))
	assert.Equal(t, "lead-1", entry.LeadID)
	assert.Equal(t, HashPhone("5551234567"), entry.PhoneHash)
	assert.Equal(t, HashEmail("jane@acme.com"), entry.EmailHash)
	assert.NotContains(t, string(manifest.body), "Acme")
}

func TestStore_ManifestAppends(t *testing.T) {
	mock := newMockS3()
	store := testStore(mock)

	require.NoError(t, store.ArchiveLead(context.Background(), testLead("a")))
	require.NoError(t, store.ArchiveLead(context.Background(), testLead("b")))

	lines := strings.Split(strings.TrimSpace(string(mock.objects[ManifestKey(archiveTime)])), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"lead_id":"a"`)
	assert.Contains(t, lines[1], `"lead_id":"b"`)
}

func TestStore_ManifestReadErrorDoesNotFailArchive(t *testing.T) {
	mock := newMockS3()
	mock.getErr = errors.New("access denied")
	store := testStore(mock)

	require.NoError(t, store.ArchiveLead(context.Background(), testLead("lead-1")))
	assert.Len(t, mock.putCalls, 1, "manifest skipped, lead stored")
}

func TestStore_Disabled(t *testing.T) {
	var nilStore *Store
	assert.False(t, nilStore.Enabled())
	assert.NoError(t, nilStore.ArchiveLead(context.Background(), testLead("x")))

	store := NewStore(newMockS3(), "", nil)
	assert.False(t, store.Enabled())
	assert.NoError(t, store.ArchiveLead(context.Background(), testLead("x")))
}

func TestHashes(t *testing.T) {
	assert.Equal(t, HashPhone("(555) 123-4567"), HashPhone("555.123.4567"))
	assert.Equal(t, HashEmail(" USER@example.com "), HashEmail("user@example.com"))
	assert.Len(t, HashPhone("5551234567"), 64)
}
