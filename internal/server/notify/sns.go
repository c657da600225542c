package notify

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newSNSClientFromConfig = func(cfg aws.Config, optFns ...func(*sns.Options)) snsPublisher {
		return sns.NewFromConfig(cfg, optFns...)
	}
)

// snsPublisher is the slice of the SNS client used by the dispatcher;
// a test seam.
type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSDispatcher sends verification codes as SMS through AWS SNS.
type SNSDispatcher struct {
	region          string
	accessKeyID     string
	secretAccessKey string
	window          time.Duration
}

// NewSNSDispatcher constructs a dispatcher with static credentials. When
// accessKeyID is empty the default AWS credential chain is used.
func NewSNSDispatcher(region, accessKeyID, secretAccessKey string, window time.Duration) *SNSDispatcher {
	return &SNSDispatcher{
		region:          region,
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
		window:          window,
	}
}

func (d *SNSDispatcher) getClient(ctx context.Context) (snsPublisher, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(d.region),
	}
	if d.accessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(d.accessKeyID, d.secretAccessKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newSNSClientFromConfig(cfg), nil
}

// Send publishes the code to the contact phone number.
func (d *SNSDispatcher) Send(ctx context.Context, code int, contactHandle string) error {
	client, err := d.getClient(ctx)
	if err != nil {
		return err
	}

	_, err = client.Publish(ctx, &sns.PublishInput{
		Message:     aws.String(messageBody(code, int(d.window.Minutes()))),
		PhoneNumber: aws.String(contactHandle),
	})
	return err
}
