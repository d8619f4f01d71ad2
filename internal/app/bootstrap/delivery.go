package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/archive"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	appconfig "github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/config"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/notify"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// BuildNotifier selects the confirmation e-mail provider from EMAIL_PROVIDER
// (sendgrid, ses or none). Unusable providers fall back to the logging stub.
func BuildNotifier(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) *notify.Service {
	if logger == nil {
		logger = logging.Default()
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sg != nil {
			sender = sg
		} else {
			logger.Warn("EMAIL_PROVIDER=sendgrid but SENDGRID_API_KEY is empty")
		}
	case "ses":
		if awsCfg != nil && strings.TrimSpace(cfg.SESFromEmail) != "" {
			sender = notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
				FromEmail: cfg.SESFromEmail,
				FromName:  cfg.SalonName,
			}, logger)
		} else {
			logger.Warn("EMAIL_PROVIDER=ses but AWS config or SES_FROM_EMAIL is missing")
		}
	}
	return notify.NewService(sender, cfg.SalonName, logger)
}

// BuildArchiver returns the S3 transcript archive, or nil when ARCHIVE_BUCKET
// is unset.
func BuildArchiver(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) booking.Archiver {
	if cfg == nil || awsCfg == nil || strings.TrimSpace(cfg.ArchiveBucket) == "" {
		return nil
	}
	return archive.NewStore(s3.NewFromConfig(*awsCfg), cfg.ArchiveBucket, logger)
}
