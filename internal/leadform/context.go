package leadform

import "context"

type ctxKey string

const (
	formIDKey ctxKey = "leadform.form_id"
	clientKey ctxKey = "leadform.client"
)

// ClientInfo describes the visitor behind a submission, when known.
type ClientInfo struct {
	RemoteIP  string
	UserAgent string
}

// WithFormID stores the submitting form's ID on the context.
func WithFormID(ctx context.Context, formID string) context.Context {
	return context.WithValue(ctx, formIDKey, formID)
}

// FormIDFromContext extracts the submitting form's ID from the context.
func FormIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(formIDKey).(string)
	return id, ok && id != ""
}

// WithClientInfo stores visitor details on the context.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientKey, info)
}

// ClientInfoFromContext returns visitor details, zero if absent.
func ClientInfoFromContext(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientKey).(ClientInfo)
	return info
}
