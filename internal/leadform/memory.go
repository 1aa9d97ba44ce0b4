package leadform

import (
	"sync"

	"github.com/katalux/roofers-landing/internal/leads"
)

// MemoryHost is an in-memory form element.
type MemoryHost struct {
	mu      sync.Mutex
	values  map[string]string
	label   string
	enabled bool
}

// NewMemoryHost creates an empty form with an enabled button.
func NewMemoryHost(buttonLabel string) *MemoryHost {
	return &MemoryHost{
		values:  make(map[string]string),
		label:   buttonLabel,
		enabled: true,
	}
}

func (h *MemoryHost) Value(name string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.values[name]
	return v, ok
}

func (h *MemoryHost) SetValue(name, value string) {
	h.mu.Lock()
	h.values[name] = value
	h.mu.Unlock()
}

func (h *MemoryHost) ButtonLabel() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.label
}

func (h *MemoryHost) ButtonEnabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.enabled
}

func (h *MemoryHost) SetButton(label string, enabled bool) {
	h.mu.Lock()
	h.label = label
	h.enabled = enabled
	h.mu.Unlock()
}

func (h *MemoryHost) Reset() {
	h.mu.Lock()
	for name := range h.values {
		h.values[name] = ""
	}
	h.mu.Unlock()
}

// Values returns a copy of the lead fields, empty when unset.
func (h *MemoryHost) Values() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]string, len(leads.Fields))
	for _, name := range leads.Fields {
		out[name] = h.values[name]
	}
	return out
}

// MemoryPresenter records alerts and notices.
type MemoryPresenter struct {
	mu      sync.Mutex
	alerts  []string
	notices []*MemoryNotice
}

// NewMemoryPresenter creates an empty presenter.
func NewMemoryPresenter() *MemoryPresenter {
	return &MemoryPresenter{}
}

func (p *MemoryPresenter) Alert(text string) {
	p.mu.Lock()
	p.alerts = append(p.alerts, text)
	p.mu.Unlock()
}

func (p *MemoryPresenter) ShowNotice(text string) Notice {
	n := &MemoryNotice{text: text}
	p.mu.Lock()
	p.notices = append(p.notices, n)
	p.mu.Unlock()
	return n
}

// Alerts returns every alert shown so far.
func (p *MemoryPresenter) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.alerts...)
}

// LastAlert returns the most recent alert, or "".
func (p *MemoryPresenter) LastAlert() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.alerts) == 0 {
		return ""
	}
	return p.alerts[len(p.alerts)-1]
}

// Notices returns every notice shown so far, dismissed or not.
func (p *MemoryPresenter) Notices() []*MemoryNotice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*MemoryNotice(nil), p.notices...)
}

// Visible returns the texts of notices not yet dismissed.
func (p *MemoryPresenter) Visible() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, n := range p.notices {
		if !n.Dismissed() {
			out = append(out, n.Text())
		}
	}
	return out
}

// MemoryNotice is a notice shown by MemoryPresenter.
type MemoryNotice struct {
	mu        sync.Mutex
	text      string
	dismissed bool
}

func (n *MemoryNotice) Text() string { return n.text }

func (n *MemoryNotice) Dismiss() {
	n.mu.Lock()
	n.dismissed = true
	n.mu.Unlock()
}

func (n *MemoryNotice) Dismissed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dismissed
}
