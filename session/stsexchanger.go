package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	log "github.com/sirupsen/logrus"
)

// STSAPI is the subset of the STS client used to exchange credentials
type STSAPI interface {
	GetSessionToken(ctx context.Context, params *sts.GetSessionTokenInput, optFns ...func(*sts.Options)) (*sts.GetSessionTokenOutput, error)
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// STSExchanger exchanges credentials with AWS STS. Each call builds a client
// signed with the calling credentials and performs a single attempt.
type STSExchanger struct {
	Region               string
	STSRegionalEndpoints string

	// NewClient overrides the STS client construction, for tests
	NewClient func(cfg aws.Config) STSAPI
}

func (e *STSExchanger) client(c Credentials) STSAPI {
	cfg := aws.Config{
		Region:                      e.Region,
		Credentials:                 credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		EndpointResolverWithOptions: getSTSEndpointResolver(e.STSRegionalEndpoints),
		Retryer:                     func() aws.Retryer { return aws.NopRetryer{} },
	}
	if e.NewClient != nil {
		return e.NewClient(cfg)
	}
	return sts.NewFromConfig(cfg)
}

// GetSessionToken requests an MFA-authenticated session token
func (e *STSExchanger) GetSessionToken(ctx context.Context, base Credentials, mfaSerial, mfaCode string, lifetime time.Duration) (*CachedSession, error) {
	input := &sts.GetSessionTokenInput{
		DurationSeconds: aws.Int32(int32(lifetime.Seconds())),
	}
	if mfaSerial != "" {
		input.SerialNumber = aws.String(mfaSerial)
		input.TokenCode = aws.String(mfaCode)
	}

	log.Debugf("Calling GetSessionToken with %s", FormatKeyForDisplay(base.AccessKeyID))
	resp, err := e.client(base).GetSessionToken(ctx, input)
	if err != nil {
		return nil, classifyAPIError(opGetSessionToken, err)
	}
	return newCachedSession(resp.Credentials)
}

// AssumeRole requests credentials for roleARN using the calling session
func (e *STSExchanger) AssumeRole(ctx context.Context, calling Credentials, roleARN, sessionName, externalID string, lifetime time.Duration) (*CachedSession, error) {
	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(sessionName),
		DurationSeconds: aws.Int32(int32(lifetime.Seconds())),
	}
	if externalID != "" {
		input.ExternalId = aws.String(externalID)
	}

	log.Debugf("Calling AssumeRole for %s as %s", roleARN, sessionName)
	resp, err := e.client(calling).AssumeRole(ctx, input)
	if err != nil {
		return nil, classifyAPIError(opAssumeRole, err)
	}
	return newCachedSession(resp.Credentials)
}

const (
	opGetSessionToken = "GetSessionToken"
	opAssumeRole      = "AssumeRole"
)

// classifyAPIError maps an AWS error onto ErrAuthFailure. AssumeRole
// parameters STS rejects, such as a malformed session name, are
// ErrInvalidArgument instead. A rejected MFA code is always an auth failure.
func classifyAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if op == opAssumeRole && apiErr.ErrorCode() == "ValidationError" {
			return fmt.Errorf("%w: %s: %s", ErrInvalidArgument, op, apiErr.ErrorMessage())
		}
		return fmt.Errorf("%w: %s: %s: %s", ErrAuthFailure, op, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("%w: %s: %v", ErrAuthFailure, op, err)
}
