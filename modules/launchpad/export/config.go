package export

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
)

type Config struct {
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`   // S3 compatible endpoint, e.g. MinIO. Empty uses AWS.
	SignerKey string `mapstructure:"signer_key"` // hex secp256k1 private key used to sign export digests.
}

// NewS3Uploader creates an upload manager from the default AWS credential chain.
func NewS3Uploader(ctx context.Context, config Config) (*manager.Uploader, error) {
	opts := make([]func(*awsconfig.LoadOptions) error, 0, 1)
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "can't load aws user config")
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = true
		}
	})
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 10 * 1024 * 1024
		u.Concurrency = 4
	}), nil
}
