package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/addrnav-dev/addrnav/internal/config"
	"github.com/addrnav-dev/addrnav/internal/errors"
	"github.com/addrnav-dev/addrnav/pkg/assets"
)

func publishCmd() *cobra.Command {
	var (
		configPath string
		distDir    string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload built assets to S3",
		Long: `Upload the asset bundle and its manifest to the configured S3 bucket.

The bucket, key prefix, and region come from the assets.s3 section of
` + config.ConfigFileName + `. Credentials are read from the standard
AWS environment variables.

Examples:
  addrnav publish
  addrnav publish --dist build/assets`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), configPath, distDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.ConfigFileName, "Path to the configuration file")
	cmd.Flags().StringVarP(&distDir, "dist", "d", "dist", "Directory with the built assets")

	return cmd
}

func runPublish(ctx context.Context, configPath, distDir string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if cfg.Assets.S3.Bucket == "" {
		return errors.New("A301", errors.CategoryCLI, "no S3 bucket configured").
			WithSuggestion(`Set assets.s3.bucket in ` + config.ConfigFileName)
	}
	if cfg.Assets.Manifest == "" {
		return errors.New("A302", errors.CategoryCLI, "no asset manifest configured").
			WithSuggestion(`Set assets.manifest in ` + config.ConfigFileName)
	}

	manifest, err := assets.Load(cfg.Assets.Manifest)
	if err != nil {
		return errors.New("A303", errors.CategoryCLI, "cannot load asset manifest").Wrap(err)
	}

	client, err := s3ClientFromEnv(cfg.Assets.S3.Region)
	if err != nil {
		return err
	}

	publisher := assets.NewPublisher(client, cfg.Assets.S3.Bucket, cfg.Assets.S3.Prefix)
	info("uploading %d assets to s3://%s/%s", manifest.Len(), cfg.Assets.S3.Bucket, cfg.Assets.S3.Prefix)
	if err := publisher.Publish(ctx, os.DirFS(distDir), manifest); err != nil {
		return err
	}

	success("published %d assets and manifest", manifest.Len())
	return nil
}

// s3ClientFromEnv builds an S3 client from the standard AWS
// environment variables. The full aws config loader is deliberately
// avoided: publish needs exactly one credential source.
func s3ClientFromEnv(region string) (*s3.Client, error) {
	key := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if key == "" || secret == "" {
		return nil, errors.New("A304", errors.CategoryCLI, "missing AWS credentials").
			WithSuggestion("Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")
	}
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		return nil, errors.New("A305", errors.CategoryCLI, "missing AWS region").
			WithSuggestion("Set assets.s3.region in " + config.ConfigFileName + " or AWS_REGION")
	}

	creds := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     key,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		}, nil
	})
	return s3.New(s3.Options{Region: region, Credentials: creds}), nil
}
