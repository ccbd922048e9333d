package scanner

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/time/rate"

	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

type awsScanner struct {
	limiter *rate.Limiter
}

func (s *awsScanner) Scan(ctx context.Context, account accounts.Account) ([]domain.Finding, error) {
	region := account.AWSRegion
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx,
		awscfg.WithRegion(region),
		awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(account.AWSAccessKeyID, account.AWSSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config load: %w", err)
	}
	client := s3.NewFromConfig(cfg)

	buckets, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	var findings []domain.Finding
	for _, b := range buckets.Buckets {
		name := aws.ToString(b.Name)
		if name == "" {
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		findings = append(findings, s.checkBucket(ctx, client, name, region)...)
	}

	log.Printf("[info] operation=aws_scan message=scanned %d buckets, %d findings account=%s",
		len(buckets.Buckets), len(findings), account.Name)
	return findings, nil
}

func (s *awsScanner) checkBucket(ctx context.Context, client *s3.Client, bucket, region string) []domain.Finding {
	var findings []domain.Finding

	pab, err := client.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: aws.String(bucket)})
	if err != nil || pab.PublicAccessBlockConfiguration == nil || !fullyBlocked(pab) {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityHigh,
			Title:          fmt.Sprintf("S3 bucket %s does not block public access", bucket),
			Description:    "The bucket has no public access block configuration, or the configuration does not block all four public access paths.",
			Resource:       bucket,
			ResourceType:   "s3_bucket",
			Region:         region,
			Recommendation: "Enable all four settings of the S3 Block Public Access feature for this bucket.",
		})
	}

	if _, err := client.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(bucket)}); err != nil {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Title:          fmt.Sprintf("S3 bucket %s has no default encryption", bucket),
			Description:    "Objects written without an explicit encryption header are stored unencrypted.",
			Resource:       bucket,
			ResourceType:   "s3_bucket",
			Region:         region,
			Recommendation: "Configure default SSE-S3 or SSE-KMS encryption on the bucket.",
		})
	}

	ver, err := client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(bucket)})
	if err == nil && ver.Status != "Enabled" {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityLow,
			Title:          fmt.Sprintf("S3 bucket %s has versioning disabled", bucket),
			Resource:       bucket,
			ResourceType:   "s3_bucket",
			Region:         region,
			Recommendation: "Enable versioning to protect against accidental deletes and overwrites.",
		})
	}

	return findings
}

func fullyBlocked(pab *s3.GetPublicAccessBlockOutput) bool {
	c := pab.PublicAccessBlockConfiguration
	return aws.ToBool(c.BlockPublicAcls) &&
		aws.ToBool(c.BlockPublicPolicy) &&
		aws.ToBool(c.IgnorePublicAcls) &&
		aws.ToBool(c.RestrictPublicBuckets)
}
