// internal/mail/ses.go
//
// SES v2 transport.
//
// Context
//   Delivers through the AWS SES v2 SendEmail API with static
//   credentials.  The From address doubles as Reply-To, and the body is
//   sent as HTML with UTF-8 charsets, matching what the legacy endpoint
//   put in its mail headers.

package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const charsetUTF8 = "UTF-8"

// SESConfig carries the static credentials for the transport.
type SESConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

// SESTransport sends through AWS SES v2.
type SESTransport struct {
	client *sesv2.Client
}

// NewSESTransport builds the AWS client once; it is safe for concurrent
// use afterwards.
func NewSESTransport(ctx context.Context, cfg SESConfig) (*SESTransport, error) {
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESTransport{client: sesv2.NewFromConfig(awsCfg)}, nil
}

// Send implements Transport.
func (t *SESTransport) Send(ctx context.Context, m Message) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.From),
		ReplyToAddresses: []string{m.From},
		Destination: &types.Destination{
			ToAddresses: []string{m.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(m.Subject),
					Charset: aws.String(charsetUTF8),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(m.HTML),
						Charset: aws.String(charsetUTF8),
					},
				},
			},
		},
	}

	if _, err := t.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
