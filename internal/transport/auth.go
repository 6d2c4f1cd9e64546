package transport

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"

	"specprobe/internal/errors"
)

// signSigV4 signs the probe with AWS SigV4. Lambda probes never reach here;
// direct invocation is authorized by the SDK credential chain itself.
func (c *Client) signSigV4(ctx context.Context, req *http.Request, payload []byte) error {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to load AWS configuration").
			WithContext("suggestion", "ensure AWS credentials are configured")
	}

	region := cfg.Region
	if region == "" {
		return errors.New(errors.ErrorTypeAuth, "AWS region not configured").
			WithContext("suggestion", "set AWS_REGION or AWS_DEFAULT_REGION environment variable")
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to retrieve AWS credentials").
			WithContext("suggestion", "check AWS credential configuration")
	}

	hash := sha256.Sum256(payload)
	payloadHash := fmt.Sprintf("%x", hash)

	signer := v4.NewSigner()
	if err := signer.SignHTTP(ctx, creds, req, payloadHash, c.sigv4Service, region, time.Now()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to sign request with SigV4").
			WithContext("service", c.sigv4Service).
			WithContext("region", region)
	}

	c.logger.Debug().
		Str("service", c.sigv4Service).
		Str("region", region).
		Msg("SigV4 signature applied")

	return nil
}
