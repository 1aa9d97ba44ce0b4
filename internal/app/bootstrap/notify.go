package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/katalux/roofers-landing/internal/config"
	"github.com/katalux/roofers-landing/internal/notify"
	"github.com/katalux/roofers-landing/pkg/logging"
)

const (
	providerStub     = "stub"
	providerSendGrid = "sendgrid"
	providerSES      = "ses"
)

// BuildEmailSender picks the operator email provider. awsCfg is only read
// for SES. Misconfigured providers fall back to the stub sender and the
// returned reason says why.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.EmailSender, string, string) {
	if logger == nil {
		logger = logging.Default()
	}
	stub := notify.NewStubEmailSender(logger)
	if cfg == nil {
		return stub, providerStub, "missing config"
	}

	switch cfg.EmailProvider {
	case providerSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			return stub, providerStub, "SENDGRID_API_KEY not set"
		}
		return sender, providerSendGrid, ""
	case providerSES:
		if awsCfg == nil {
			return stub, providerStub, "aws config unavailable"
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
		return sender, providerSES, ""
	case "", providerStub:
		return stub, providerStub, ""
	default:
		return stub, providerStub, "unknown EMAIL_PROVIDER " + cfg.EmailProvider
	}
}
