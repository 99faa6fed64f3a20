package session

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	log "github.com/sirupsen/logrus"
)

// legacyGlobalSTSRegions are the regions that used sts.amazonaws.com before
// regional endpoints became the default
var legacyGlobalSTSRegions = map[string]bool{
	"ap-northeast-1": true,
	"ap-south-1":     true,
	"ap-southeast-1": true,
	"ap-southeast-2": true,
	"aws-global":     true,
	"ca-central-1":   true,
	"eu-central-1":   true,
	"eu-north-1":     true,
	"eu-west-1":      true,
	"eu-west-2":      true,
	"eu-west-3":      true,
	"sa-east-1":      true,
	"us-east-1":      true,
	"us-east-2":      true,
	"us-west-1":      true,
	"us-west-2":      true,
}

// getSTSEndpointResolver resolves endpoints in accordance with
// https://docs.aws.amazon.com/credref/latest/refdocs/setting-global-sts_regional_endpoints.html
func getSTSEndpointResolver(stsRegionalEndpoints string) aws.EndpointResolverWithOptionsFunc {
	return func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if stsRegionalEndpoints == "legacy" && service == sts.ServiceID && legacyGlobalSTSRegions[region] {
			log.Debugf("Using legacy STS endpoint sts.amazonaws.com for %s", region)

			return aws.Endpoint{
				URL:           "https://sts.amazonaws.com",
				SigningRegion: region,
			}, nil
		}

		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	}
}
