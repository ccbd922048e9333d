package scanner

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

type gcpScanner struct {
	limiter *rate.Limiter
}

func (s *gcpScanner) Scan(ctx context.Context, account accounts.Account) ([]domain.Finding, error) {
	if account.GCPCredentialsJSON == "" {
		return nil, fmt.Errorf("gcp credentials missing")
	}
	project := account.GCPProjectID
	if project == "" {
		return nil, fmt.Errorf("gcp project id missing")
	}

	svc, err := storage.NewService(ctx, option.WithCredentialsJSON([]byte(account.GCPCredentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("gcp storage service: %w", err)
	}

	var findings []domain.Finding
	scanned := 0

	call := svc.Buckets.List(project).Context(ctx)
	err = call.Pages(ctx, func(page *storage.Buckets) error {
		for _, b := range page.Items {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
			scanned++
			findings = append(findings, checkGCSBucket(b)...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list gcs buckets: %w", err)
	}

	log.Printf("[info] operation=gcp_scan message=scanned %d buckets, %d findings account=%s",
		scanned, len(findings), account.Name)
	return findings, nil
}

func checkGCSBucket(b *storage.Bucket) []domain.Finding {
	var findings []domain.Finding

	iam := b.IamConfiguration
	if iam == nil || iam.PublicAccessPrevention != "enforced" {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityHigh,
			Title:          fmt.Sprintf("GCS bucket %s does not enforce public access prevention", b.Name),
			Description:    "Objects in the bucket can be made public through ACLs or IAM bindings.",
			Resource:       b.Name,
			ResourceType:   "gcs_bucket",
			Region:         b.Location,
			Recommendation: "Set publicAccessPrevention to enforced on the bucket.",
		})
	}

	if iam == nil || iam.UniformBucketLevelAccess == nil || !iam.UniformBucketLevelAccess.Enabled {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Title:          fmt.Sprintf("GCS bucket %s allows per-object ACLs", b.Name),
			Description:    "Uniform bucket-level access is disabled, so legacy object ACLs can grant unintended access.",
			Resource:       b.Name,
			ResourceType:   "gcs_bucket",
			Region:         b.Location,
			Recommendation: "Enable uniform bucket-level access.",
		})
	}

	if b.Versioning == nil || !b.Versioning.Enabled {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityLow,
			Title:          fmt.Sprintf("GCS bucket %s has versioning disabled", b.Name),
			Resource:       b.Name,
			ResourceType:   "gcs_bucket",
			Region:         b.Location,
			Recommendation: "Enable object versioning to protect against accidental deletes.",
		})
	}

	return findings
}
