// Package intake is what submitting a lead form does on the service: relay
// the lead, then record, archive, and announce it in the background.
package intake

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/katalux/roofers-landing/internal/leadform"
	"github.com/katalux/roofers-landing/internal/leads"
	"github.com/katalux/roofers-landing/internal/observability/metrics"
	"github.com/katalux/roofers-landing/pkg/logging"
)

const (
	stepRecord  = "record"
	stepArchive = "archive"
	stepNotify  = "notify"
	stepEnqueue = "enqueue"

	defaultSideEffectTimeout = 10 * time.Second
	unknownFormID            = "unknown"
)

// ErrRelayRequired is returned by New without a relay.
var ErrRelayRequired = errors.New("intake: relay is required")

// Archiver stores accepted leads for later reporting.
type Archiver interface {
	ArchiveLead(ctx context.Context, lead *leads.Lead) error
}

// Notifier tells operators about accepted leads.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead *leads.Lead) error
}

// Config wires the pipeline. Only Relay is required.
type Config struct {
	Relay      leadform.Submitter
	Repository leads.Repository
	Archive    Archiver
	Notifier   Notifier
	Metrics    *metrics.LeadMetrics
	Logger     *logging.Logger
	// SideEffectTimeout bounds the follow-up steps after a successful relay.
	SideEffectTimeout time.Duration
	// FollowUpWorkers and FollowUpBacklog size the background dispatcher.
	FollowUpWorkers int
	FollowUpBacklog int
}

// Pipeline implements leadform.Submitter.
type Pipeline struct {
	relay             leadform.Submitter
	repo              leads.Repository
	archive           Archiver
	notifier          Notifier
	metrics           *metrics.LeadMetrics
	logger            *logging.Logger
	sideEffectTimeout time.Duration
	followUps         *Dispatcher
}

var _ leadform.Submitter = (*Pipeline)(nil)

// New builds a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Relay == nil {
		return nil, ErrRelayRequired
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.SideEffectTimeout
	if timeout <= 0 {
		timeout = defaultSideEffectTimeout
	}
	p := &Pipeline{
		relay:             cfg.Relay,
		repo:              cfg.Repository,
		archive:           cfg.Archive,
		notifier:          cfg.Notifier,
		metrics:           cfg.Metrics,
		logger:            logger.Component("intake"),
		sideEffectTimeout: timeout,
	}
	p.followUps = NewDispatcher(p.followUp, cfg.FollowUpWorkers, cfg.FollowUpBacklog)
	return p, nil
}

// Submit relays sub. The relay's error is the only one returned; once the
// relay accepts the lead the remaining steps run in the background and are
// best effort.
func (p *Pipeline) Submit(ctx context.Context, sub leads.Submission) error {
	if err := p.relay.Submit(ctx, sub); err != nil {
		return err
	}

	formID, ok := leadform.FormIDFromContext(ctx)
	if !ok {
		formID = unknownFormID
	}
	lead := leads.NewLead(formID, sub)
	lead.ID = uuid.New().String()
	client := leadform.ClientInfoFromContext(ctx)
	lead.RemoteIP = client.RemoteIP
	lead.UserAgent = client.UserAgent

	if err := p.followUps.Enqueue(ctx, lead); err != nil {
		// never drop a relayed lead: do the work on the request instead
		p.metrics.ObserveSideEffectFailure(stepEnqueue)
		p.logger.Warn("running lead follow-ups inline",
			"lead_id", lead.ID,
			"form_id", lead.FormID,
			"error", err,
		)
		p.followUp(context.WithoutCancel(ctx), lead)
	}

	p.logger.Info("lead accepted", "lead_id", lead.ID, "form_id", lead.FormID)
	return nil
}

// Flush waits for follow-ups already handed off to finish.
func (p *Pipeline) Flush(ctx context.Context) error {
	return p.followUps.Flush(ctx)
}

// Close stops the background workers after draining the backlog.
func (p *Pipeline) Close(ctx context.Context) error {
	return p.followUps.Close(ctx)
}

// followUp records, archives, and announces lead. ctx must already be
// detached from the visitor's request.
func (p *Pipeline) followUp(ctx context.Context, lead *leads.Lead) {
	ctx, cancel := context.WithTimeout(ctx, p.sideEffectTimeout)
	defer cancel()

	if p.repo != nil {
		p.run(ctx, stepRecord, lead, p.repo.Create)
	}
	if p.archive != nil {
		p.run(ctx, stepArchive, lead, p.archive.ArchiveLead)
	}
	if p.notifier != nil {
		p.run(ctx, stepNotify, lead, p.notifier.NotifyNewLead)
	}
}

func (p *Pipeline) run(ctx context.Context, step string, lead *leads.Lead, fn func(context.Context, *leads.Lead) error) {
	if err := fn(ctx, lead); err != nil {
		p.metrics.ObserveSideEffectFailure(step)
		p.logger.Error("lead follow-up failed",
			"step", step,
			"lead_id", lead.ID,
			"form_id", lead.FormID,
			"error", err,
		)
	}
}
