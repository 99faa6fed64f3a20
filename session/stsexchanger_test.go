package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/aws/smithy-go"
	"github.com/google/go-cmp/cmp"
)

type mockSTS struct {
	cfg            aws.Config
	sessionTokenIn *sts.GetSessionTokenInput
	assumeRoleIn   *sts.AssumeRoleInput
	credentials    *ststypes.Credentials
	err            error
}

func (m *mockSTS) GetSessionToken(ctx context.Context, params *sts.GetSessionTokenInput, optFns ...func(*sts.Options)) (*sts.GetSessionTokenOutput, error) {
	m.sessionTokenIn = params
	if m.err != nil {
		return nil, m.err
	}
	return &sts.GetSessionTokenOutput{Credentials: m.credentials}, nil
}

func (m *mockSTS) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	m.assumeRoleIn = params
	if m.err != nil {
		return nil, m.err
	}
	return &sts.AssumeRoleOutput{Credentials: m.credentials}, nil
}

func newMockExchanger(m *mockSTS) *STSExchanger {
	return &STSExchanger{
		Region: "eu-west-1",
		NewClient: func(cfg aws.Config) STSAPI {
			m.cfg = cfg
			return m
		},
	}
}

var stsExpiration = time.Date(2022, 9, 2, 0, 0, 0, 0, time.UTC)

func stsCredentials() *ststypes.Credentials {
	return &ststypes.Credentials{
		AccessKeyId:     aws.String("ASIAISSUED"),
		SecretAccessKey: aws.String("issued-secret"),
		SessionToken:    aws.String("issued-token"),
		Expiration:      aws.Time(stsExpiration),
	}
}

func TestSTSExchangerGetSessionToken(t *testing.T) {
	m := &mockSTS{credentials: stsCredentials()}
	e := newMockExchanger(m)

	got, err := e.GetSessionToken(context.Background(), Credentials{AccessKeyID: "AKIABASE", SecretAccessKey: "s"}, "arn:aws:iam::1:mfa/alice", "123456", 36*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	want := &CachedSession{AccessKeyID: "ASIAISSUED", SecretAccessKey: "issued-secret", SessionToken: "issued-token", Expiration: stsExpiration}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}
	if aws.ToInt32(m.sessionTokenIn.DurationSeconds) != 129600 {
		t.Errorf("DurationSeconds = %d", aws.ToInt32(m.sessionTokenIn.DurationSeconds))
	}
	if aws.ToString(m.sessionTokenIn.SerialNumber) != "arn:aws:iam::1:mfa/alice" || aws.ToString(m.sessionTokenIn.TokenCode) != "123456" {
		t.Errorf("unexpected MFA parameters %+v", m.sessionTokenIn)
	}

	if m.cfg.Region != "eu-west-1" {
		t.Errorf("region = %q", m.cfg.Region)
	}
	creds, err := m.cfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKIABASE" || creds.SessionToken != "" {
		t.Errorf("client signed with %+v", creds)
	}
	if m.cfg.Retryer().MaxAttempts() != 1 {
		t.Errorf("expected a single attempt, got %d", m.cfg.Retryer().MaxAttempts())
	}
}

func TestSTSExchangerAssumeRole(t *testing.T) {
	m := &mockSTS{credentials: stsCredentials()}
	e := newMockExchanger(m)

	calling := Credentials{AccessKeyID: "ASIASTS", SecretAccessKey: "s", SessionToken: "t"}
	if _, err := e.AssumeRole(context.Background(), calling, "arn:aws:iam::1:role/admin", "alice-1661990400", "ext", time.Hour); err != nil {
		t.Fatal(err)
	}

	in := m.assumeRoleIn
	if aws.ToString(in.RoleArn) != "arn:aws:iam::1:role/admin" ||
		aws.ToString(in.RoleSessionName) != "alice-1661990400" ||
		aws.ToString(in.ExternalId) != "ext" ||
		aws.ToInt32(in.DurationSeconds) != 3600 {
		t.Errorf("unexpected AssumeRole input %+v", in)
	}
	if in.SerialNumber != nil || in.TokenCode != nil {
		t.Error("AssumeRole must not send MFA parameters")
	}

	creds, err := m.cfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.SessionToken != "t" {
		t.Errorf("AssumeRole must be signed with the session token, got %+v", creds)
	}
}

func TestSTSExchangerErrors(t *testing.T) {
	validation := &smithy.GenericAPIError{Code: "ValidationError", Message: "failed to satisfy constraint"}

	var testCases = []struct {
		name     string
		op       string
		err      error
		expected error
	}{
		{"assume role validation", opAssumeRole, validation, ErrInvalidArgument},
		{"assume role access denied", opAssumeRole, &smithy.GenericAPIError{Code: "AccessDenied", Message: "not authorized"}, ErrAuthFailure},
		{"assume role invalid token", opAssumeRole, &smithy.GenericAPIError{Code: "InvalidClientTokenId"}, ErrAuthFailure},
		{"assume role transport", opAssumeRole, errors.New("dial tcp: no route to host"), ErrAuthFailure},
		{"session token short mfa code", opGetSessionToken, validation, ErrAuthFailure},
		{"session token access denied", opGetSessionToken, &smithy.GenericAPIError{Code: "AccessDenied", Message: "MultiFactorAuthentication failed"}, ErrAuthFailure},
		{"session token transport", opGetSessionToken, errors.New("dial tcp: no route to host"), ErrAuthFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newMockExchanger(&mockSTS{err: tc.err})

			var err error
			if tc.op == opGetSessionToken {
				_, err = e.GetSessionToken(context.Background(), Credentials{}, "serial", "12345", time.Hour)
			} else {
				_, err = e.AssumeRole(context.Background(), Credentials{}, "arn", "name", "", time.Hour)
			}
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
			if tc.expected == ErrAuthFailure && errors.Is(err, ErrInvalidArgument) {
				t.Errorf("%v must not be an invalid argument error", err)
			}
		})
	}
}

func TestSTSExchangerIncompleteResponse(t *testing.T) {
	creds := stsCredentials()
	creds.SessionToken = nil
	e := newMockExchanger(&mockSTS{credentials: creds})

	_, err := e.GetSessionToken(context.Background(), Credentials{}, "serial", "123456", time.Hour)
	if !errors.Is(err, ErrAuthFailure) {
		t.Errorf("expected ErrAuthFailure, got %v", err)
	}
}

func TestSTSEndpointResolver(t *testing.T) {
	legacy := getSTSEndpointResolver("legacy")
	ep, err := legacy.ResolveEndpoint(sts.ServiceID, "eu-west-1")
	if err != nil {
		t.Fatal(err)
	}
	if ep.URL != "https://sts.amazonaws.com" || ep.SigningRegion != "eu-west-1" {
		t.Errorf("unexpected endpoint %+v", ep)
	}

	var notFound *aws.EndpointNotFoundError
	if _, err := legacy.ResolveEndpoint(sts.ServiceID, "af-south-1"); !errors.As(err, &notFound) {
		t.Errorf("af-south-1 has no legacy endpoint, got %v", err)
	}
	if _, err := getSTSEndpointResolver("regional").ResolveEndpoint(sts.ServiceID, "eu-west-1"); !errors.As(err, &notFound) {
		t.Errorf("regional endpoints should fall through to the default resolver, got %v", err)
	}
}

type mockIAM struct {
	devices []iamtypes.MFADevice
}

func (m *mockIAM) ListMFADevices(ctx context.Context, params *iam.ListMFADevicesInput, optFns ...func(*iam.Options)) (*iam.ListMFADevicesOutput, error) {
	return &iam.ListMFADevicesOutput{MFADevices: m.devices}, nil
}

func TestIAMMfaDevice(t *testing.T) {
	m := &mockIAM{devices: []iamtypes.MFADevice{
		{SerialNumber: aws.String("arn:aws:iam::1:mfa/alice"), UserName: aws.String("alice")},
	}}
	d := &IAMMfaDevice{Region: "us-east-1", NewClient: func(aws.Config) IAMListMFADevicesAPI { return m }}

	serial, err := d.Serial(context.Background(), Credentials{AccessKeyID: "AKIABASE"})
	if err != nil {
		t.Fatal(err)
	}
	if serial != "arn:aws:iam::1:mfa/alice" {
		t.Errorf("serial = %q", serial)
	}

	m.devices = nil
	if _, err := d.Serial(context.Background(), Credentials{AccessKeyID: "AKIABASE"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument without devices, got %v", err)
	}
}
