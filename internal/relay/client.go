package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/katalux/roofers-landing/internal/leads"
	"github.com/katalux/roofers-landing/internal/observability/metrics"
	"github.com/katalux/roofers-landing/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "katalux-lead-relay/1.0"
	subjectPrefix    = "New roofing lead: "
	maxErrorBody     = 512
)

// ErrEndpointRequired is returned by New when no relay URL is configured.
var ErrEndpointRequired = errors.New("relay: endpoint URL is required")

// Config controls how the relay client behaves.
type Config struct {
	// Endpoint is the form-relay URL, e.g. https://formspree.io/f/<id>.
	Endpoint string
	// Timeout bounds one attempt. Negative disables the bound.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	Metrics    *metrics.LeadMetrics
	UserAgent  string
}

// Client posts lead submissions to a third-party form-relay endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.LeadMetrics
	tracer     trace.Tracer
	userAgent  string
}

// New creates a configured Client.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		switch {
		case timeout == 0:
			timeout = defaultTimeout
		case timeout < 0:
			timeout = 0
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger,
		metrics:    cfg.Metrics,
		tracer:     otel.Tracer("github.com/katalux/roofers-landing/internal/relay"),
		userAgent:  userAgent,
	}, nil
}

// Payload is the JSON body sent to the relay. The underscore fields are
// understood by Formspree-style relays as mail headers.
type Payload struct {
	Name      string `json:"name"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Subject   string `json:"_subject"`
	ReplyTo   string `json:"_replyto"`
	Timestamp string `json:"timestamp"`
}

// NewPayload builds the relay body for sub.
func NewPayload(sub leads.Submission) Payload {
	return Payload{
		Name:      sub.Name,
		Company:   sub.Company,
		Phone:     sub.Phone,
		Email:     sub.Email,
		Subject:   subjectPrefix + strings.TrimSpace(sub.Company),
		ReplyTo:   sub.Email,
		Timestamp: sub.TimestampString(),
	}
}

// Submit sends sub in exactly one POST. Any 2xx response is success; every
// other outcome is a *leads.SubmissionError. There are no retries.
func (c *Client) Submit(ctx context.Context, sub leads.Submission) error {
	ctx, span := c.tracer.Start(ctx, "relay.submit", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	status, err := c.post(ctx, NewPayload(sub))
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "relay submission failed")
		c.metrics.ObserveRelay("error", elapsed.Seconds())
		c.logger.Error("relay submission failed", "error", err, "status", status, "duration_ms", elapsed.Milliseconds())
		return err
	}

	c.metrics.ObserveRelay("ok", elapsed.Seconds())
	c.logger.Info("relay submission accepted", "status", status, "duration_ms", elapsed.Milliseconds())
	return nil
}

func (c *Client) post(ctx context.Context, payload Payload) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, &leads.SubmissionError{Err: fmt.Errorf("relay: marshal payload: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, &leads.SubmissionError{Err: fmt.Errorf("relay: build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &leads.SubmissionError{Err: fmt.Errorf("relay: post: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var cause error
		if msg := strings.TrimSpace(string(snippet)); msg != "" {
			cause = errors.New(msg)
		}
		return resp.StatusCode, &leads.SubmissionError{StatusCode: resp.StatusCode, Err: cause}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
