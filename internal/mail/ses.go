package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI defines the subset of the SES v2 client used by SES.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES submits messages through the AWS SES v2 SendEmail API.
type SES struct {
	sender
	client sesAPI
}

// NewSES creates an SES transport over an existing client.
func NewSES(cfg Config, client sesAPI) *SES {
	return &SES{
		sender: sender{from: cfg.From, fromName: cfg.FromName},
		client: client,
	}
}

// NewSESFromConfig builds a real SES v2 client. Static credentials are used
// when configured, otherwise the default AWS credential chain.
func NewSESFromConfig(cfg Config) (*SES, error) {
	optFns := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), optFns...)
	if err != nil {
		return nil, fmt.Errorf("ses: load aws config: %w", err)
	}

	sesOptFns := []func(*sesv2.Options){}
	if cfg.Endpoint != "" {
		sesOptFns = append(sesOptFns, func(o *sesv2.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	return NewSES(cfg, sesv2.NewFromConfig(awsCfg, sesOptFns...)), nil
}

func (s *SES) Name() string { return "ses" }

// Send submits msg with an HTML body, plus a text part when present.
func (s *SES) Send(ctx context.Context, msg *Message) error {
	_, err := s.client.SendEmail(ctx, s.buildInput(msg))
	if err != nil {
		return classifySESError(err)
	}
	return nil
}

func (s *SES) buildInput(msg *Message) *sesv2.SendEmailInput {
	from, fromName := s.resolve(msg)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(formatAddress(fromName, from)),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	}
	if msg.TextBody != "" {
		input.Content.Simple.Body.Text = &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")}
	}
	return input
}

// classifySESError maps SES API exceptions onto DeliveryError.
func classifySESError(err error) error {
	de := &DeliveryError{Transport: "ses", Message: err.Error()}

	var (
		rejected     *types.MessageRejected
		notVerified  *types.MailFromDomainNotVerifiedException
		suspended    *types.AccountSuspendedException
		paused       *types.SendingPausedException
		badRequest   *types.BadRequestException
		notFound     *types.NotFoundException
		tooMany      *types.TooManyRequestsException
		limitExceeds *types.LimitExceededException
	)
	switch {
	case errors.As(err, &rejected),
		errors.As(err, &notVerified),
		errors.As(err, &suspended),
		errors.As(err, &paused),
		errors.As(err, &badRequest),
		errors.As(err, &notFound):
		de.Permanent = true
	case errors.As(err, &tooMany), errors.As(err, &limitExceeds):
		de.Permanent = false
	default:
		return fmt.Errorf("ses: send email: %w", err)
	}
	return de
}
