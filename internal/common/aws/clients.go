// internal/common/aws/clients.go

// Package aws wraps the AWS SDK clients the membership backend talks to:
// SES for member emails and SNS for admin alert fan-out.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

func loadConfig(ctx context.Context, region string) (awsCfg config.LoadOptionsFunc, err error) {
	if region == "" {
		return nil, fmt.Errorf("aws region is required")
	}
	return config.WithRegion(region), nil
}

// SESClient sends transactional email (payment receipts, approval notices).
type SESClient struct {
	client *ses.Client
	region string
}

func NewSESClient(ctx context.Context, region string) (*SESClient, error) {
	opt, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadDefaultConfig(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("load aws config for SES: %w", err)
	}
	return &SESClient{client: ses.NewFromConfig(cfg), region: region}, nil
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}

// SNSClient publishes operational alerts to the admin topic.
type SNSClient struct {
	client *sns.Client
	region string
}

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	opt, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadDefaultConfig(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("load aws config for SNS: %w", err)
	}
	return &SNSClient{client: sns.NewFromConfig(cfg), region: region}, nil
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input)
}
