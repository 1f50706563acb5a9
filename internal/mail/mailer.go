package mail

import (
	"context"
	"fmt"
	"log"
	"time"

	appCfg "figueroa/trainer-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Mailer sends a single transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sesMailer implements Mailer over Amazon SES.
type sesMailer struct {
	client *ses.Client
	source string
}

func NewSESMailer(cfg appCfg.MailConfig) (Mailer, error) {
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(), awsCfg.WithRegion(cfg.Region))
	if err != nil {
		log.Printf("ERROR: Failed to load AWS SDK config for SES: %v", err)
		return nil, err
	}
	return &sesMailer{
		client: ses.NewFromConfig(awsSDKConfig),
		source: cfg.Source,
	}, nil
}

func (m *sesMailer) Send(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
		Source: aws.String(m.source),
	}

	_, err := m.client.SendEmail(ctx, input)
	if err != nil {
		log.Printf("ERROR: SES send to %s failed: %v", to, err)
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}

// RecoveryBody renders the password-reset email text. The expiry notice
// follows the configured code lifetime.
func RecoveryBody(code string, ttl time.Duration) (subject, body string) {
	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	subject = "Your password reset code"
	body = fmt.Sprintf("Your password reset code is: %s\n\nIt expires in %d minutes. If you did not request it, ignore this email.", code, minutes)
	return subject, body
}
