package session

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	log "github.com/sirupsen/logrus"
)

// IAMListMFADevicesAPI is the subset of the IAM client used for MFA discovery
type IAMListMFADevicesAPI interface {
	ListMFADevices(ctx context.Context, params *iam.ListMFADevicesInput, optFns ...func(*iam.Options)) (*iam.ListMFADevicesOutput, error)
}

// IAMMfaDevice discovers the MFA device registered to the IAM user owning a
// set of base credentials
type IAMMfaDevice struct {
	Region string

	// NewClient overrides the IAM client construction, for tests
	NewClient func(cfg aws.Config) IAMListMFADevicesAPI
}

func (d *IAMMfaDevice) client(base Credentials) IAMListMFADevicesAPI {
	cfg := aws.Config{
		Region:      d.Region,
		Credentials: credentials.NewStaticCredentialsProvider(base.AccessKeyID, base.SecretAccessKey, base.SessionToken),
		Retryer:     func() aws.Retryer { return aws.NopRetryer{} },
	}
	if d.NewClient != nil {
		return d.NewClient(cfg)
	}
	return iam.NewFromConfig(cfg)
}

// Serial returns the serial number of the first MFA device listed for the user
func (d *IAMMfaDevice) Serial(ctx context.Context, base Credentials) (string, error) {
	resp, err := d.client(base).ListMFADevices(ctx, &iam.ListMFADevicesInput{})
	if err != nil {
		return "", classifyAPIError("ListMFADevices", err)
	}
	if len(resp.MFADevices) == 0 {
		return "", fmt.Errorf("%w: no MFA device registered for %s", ErrInvalidArgument, FormatKeyForDisplay(base.AccessKeyID))
	}

	serial := aws.ToString(resp.MFADevices[0].SerialNumber)
	log.Infof("Using MFA device %s", serial)
	return serial, nil
}
