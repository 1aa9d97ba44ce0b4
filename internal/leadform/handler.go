package leadform

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	httpmiddleware "github.com/katalux/roofers-landing/internal/http/middleware"
	"github.com/katalux/roofers-landing/internal/leads"
	"github.com/katalux/roofers-landing/pkg/logging"
)

const maxBodyBytes = 16 << 10

// ButtonView is the submit control as the page should render it.
type ButtonView struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// View is the form as it stands after a submission, for the page to render.
type View struct {
	FormID          string            `json:"form_id"`
	State           State             `json:"state"`
	Errors          []string          `json:"errors,omitempty"`
	Alert           string            `json:"alert,omitempty"`
	Notice          string            `json:"notice,omitempty"`
	NoticeTTLMillis int64             `json:"notice_ttl_ms,omitempty"`
	Button          ButtonView        `json:"button"`
	Fields          map[string]string `json:"fields"`
}

// PhoneFormatRequest is the body of POST /phone/format.
type PhoneFormatRequest struct {
	Value string `json:"value"`
}

// PhoneFormatResponse echoes the formatted number and its validity.
type PhoneFormatResponse struct {
	Value string `json:"value"`
	Valid bool   `json:"valid"`
}

// Handler lets pages without scripting submit lead forms over HTTP. Each
// request binds a fresh form to a request-scoped host holding the posted
// fields.
type Handler struct {
	page   *Page
	logger *logging.Logger
}

// NewHandler creates a new lead form handler
func NewHandler(page *Page, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{page: page, logger: logger}
}

// Routes mounts the form endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{formID}", h.SubmitForm)
	return r
}

// SubmitForm handles POST /forms/{formID} with a form-encoded or JSON body.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	def, ok := h.page.Definition(formID)
	if !ok {
		http.Error(w, "unknown form", http.StatusNotFound)
		return
	}

	values, err := decodeFields(w, r)
	if err != nil {
		h.logger.Error("failed to decode form body", "error", err, "form_id", formID)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	host := NewMemoryHost(def.ButtonLabel)
	presenter := NewMemoryPresenter()
	form, err := h.page.Bind(formID, host, presenter)
	if err != nil {
		http.Error(w, "unknown form", http.StatusNotFound)
		return
	}
	for _, name := range leads.Fields {
		if v, ok := values[name]; ok {
			form.Input(name, v)
		}
	}

	ctx := WithClientInfo(r.Context(), ClientInfo{
		RemoteIP:  httpmiddleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	outcome := form.Submit(ctx)

	view := View{
		FormID: formID,
		State:  outcome.State,
		Errors: outcome.Messages,
		Alert:  presenter.LastAlert(),
		Button: ButtonView{Label: host.ButtonLabel(), Disabled: !host.ButtonEnabled()},
		Fields: host.Values(),
	}
	if visible := presenter.Visible(); len(visible) > 0 {
		view.Notice = visible[len(visible)-1]
		view.NoticeTTLMillis = h.page.Options().NoticeDuration.Milliseconds()
	}

	writeJSON(w, statusFor(outcome), view)
}

// FormatPhone handles POST /phone/format for as-you-type formatting.
func (h *Handler) FormatPhone(w http.ResponseWriter, r *http.Request) {
	var req PhoneFormatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, PhoneFormatResponse{
		Value: leads.FormatPhone(req.Value),
		Valid: leads.IsValidPhone(req.Value),
	})
}

func statusFor(o Outcome) int {
	switch {
	case errors.Is(o.Err, ErrSubmitInFlight):
		return http.StatusConflict
	case o.State == Success:
		return http.StatusOK
	case o.State == Invalid:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.EqualFold(mediaType, "application/json") {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		return body, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(leads.Fields))
	for _, name := range leads.Fields {
		if _, ok := r.PostForm[name]; ok {
			values[name] = r.PostForm.Get(name)
		}
	}
	return values, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
