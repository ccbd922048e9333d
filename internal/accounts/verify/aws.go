package verify

import (
	"context"
	"fmt"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
)

type awsVerifier struct{}

// Verify calls STS GetCallerIdentity with the stored access key.
func (awsVerifier) Verify(ctx context.Context, a accounts.Account) (string, error) {
	if a.AWSAccessKeyID == "" || a.AWSSecretKey == "" {
		return "", fmt.Errorf("aws credentials missing")
	}

	region := a.AWSRegion
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx,
		awscfg.WithRegion(region),
		awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(a.AWSAccessKeyID, a.AWSSecretKey, ""),
		),
	)
	if err != nil {
		return "", fmt.Errorf("aws config load: %w", err)
	}

	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("sts get-caller-identity: %w", err)
	}

	arn := ""
	if out.Arn != nil {
		arn = *out.Arn
	}
	return arn, nil
}
