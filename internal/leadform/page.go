package leadform

import (
	"fmt"
	"sort"
)

// Page identifiers of the landing page's two lead forms.
const (
	HeroFormID  = "heroForm"
	FinalFormID = "finalForm"
)

// Definition describes one lead form on the page.
type Definition struct {
	ID          string
	ButtonLabel string
}

// DefaultDefinitions returns the landing page's forms.
func DefaultDefinitions() []Definition {
	return []Definition{
		{ID: HeroFormID, ButtonLabel: "Get My Free Diagnosis"},
		{ID: FinalFormID, ButtonLabel: "Book My Strategy Call"},
	}
}

// Page holds the forms a landing page exposes and the workflow settings
// they share. It is built once at startup.
type Page struct {
	defs      map[string]Definition
	submitter Submitter
	opts      Options
}

// NewPage registers defs. IDs must be unique and non-empty.
func NewPage(submitter Submitter, opts Options, defs ...Definition) (*Page, error) {
	if submitter == nil {
		return nil, fmt.Errorf("leadform: submitter required")
	}
	p := &Page{
		defs:      make(map[string]Definition, len(defs)),
		submitter: submitter,
		opts:      opts.withDefaults(),
	}
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("leadform: form id required")
		}
		if _, dup := p.defs[def.ID]; dup {
			return nil, fmt.Errorf("leadform: duplicate form id %q", def.ID)
		}
		p.defs[def.ID] = def
	}
	return p, nil
}

// Definition looks up a registered form.
func (p *Page) Definition(id string) (Definition, bool) {
	def, ok := p.defs[id]
	return def, ok
}

// IDs lists registered form IDs in sorted order.
func (p *Page) IDs() []string {
	ids := make([]string, 0, len(p.defs))
	for id := range p.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Options returns the shared workflow settings with defaults applied.
func (p *Page) Options() Options { return p.opts }

// Bind attaches the workflow for form id to a host element. Each call
// returns an independent Form.
func (p *Page) Bind(id string, host Host, presenter Presenter) (*Form, error) {
	if _, ok := p.defs[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, id)
	}
	return NewForm(id, host, presenter, p.submitter, p.opts), nil
}
