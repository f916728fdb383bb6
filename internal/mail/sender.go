// Package mail is the transport collaborator for weekly delivery emails.
// Retry-with-backoff on the wire belongs to the transport, not the
// delivery engine.
package mail

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Sender delivers one rendered message to one recipient address
type Sender interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// SESSender sends mail through AWS SES
type SESSender struct {
	client    *sesv2.Client
	fromEmail string
}

// NewSESSender creates an SES-backed sender from an AWS config
func NewSESSender(cfg aws.Config) (*SESSender, error) {
	from := os.Getenv("SES_FROM_EMAIL")
	if from == "" {
		return nil, fmt.Errorf("SES_FROM_EMAIL environment variable is not set")
	}
	return &SESSender{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: from,
	}, nil
}

// Send delivers a plain-text email via SES
func (s *SESSender) Send(ctx context.Context, to, subject, body string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// LogSender logs messages instead of sending them; used for local runs
// without mail credentials
type LogSender struct{}

// Send logs the message and reports success
func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	log.Printf("Mail (dry run) to %s: %s\n%s", to, subject, body)
	return nil
}
