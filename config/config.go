/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/joho/godotenv"
	"github.com/suparena/artifactreplication/errors"
	"gopkg.in/yaml.v3"
)

// Registry backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendBadger   = "badger"
)

// Defaults.
const (
	DefaultTableName      = "CrossAccountBuildReplication"
	DefaultIndexName      = "gsi1"
	DefaultS3Region       = "us-east-1"
	DefaultMaxConcurrency = 16
)

// Config is the full service configuration.
type Config struct {
	AWS         AWSConfig         `yaml:"aws"`
	Registry    RegistryConfig    `yaml:"registry"`
	Replication ReplicationConfig `yaml:"replication"`
	Log         LogConfig         `yaml:"log"`
}

// AWSConfig holds credentials and region. Empty keys fall back to the default
// credential chain.
type AWSConfig struct {
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Region    string `yaml:"region"`
}

// RegistryConfig selects and configures the registry backend.
type RegistryConfig struct {
	Backend   string `yaml:"backend"`
	TableName string `yaml:"tableName"`
	IndexName string `yaml:"indexName"`
	// BadgerPath is the database directory; empty runs in memory.
	BadgerPath string `yaml:"badgerPath"`
}

// ReplicationConfig configures the copy side.
type ReplicationConfig struct {
	S3Region       string `yaml:"s3Region"`
	RoleArn        string `yaml:"roleArn"`
	MaxConcurrency int    `yaml:"maxConcurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Registry: RegistryConfig{
			Backend:   BackendDynamoDB,
			TableName: DefaultTableName,
			IndexName: DefaultIndexName,
		},
		Replication: ReplicationConfig{
			S3Region:       DefaultS3Region,
			MaxConcurrency: DefaultMaxConcurrency,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then a .env file in the working directory if
// present, then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"AWS_ACCESS_KEY":         &c.AWS.AccessKey,
		"AWS_SECRET_KEY":         &c.AWS.SecretKey,
		"AWS_REGION":             &c.AWS.Region,
		"AWS_DDB_TABLE":          &c.Registry.TableName,
		"REPLICATION_INDEX_NAME": &c.Registry.IndexName,
		"REGISTRY_BACKEND":       &c.Registry.Backend,
		"BADGER_PATH":            &c.Registry.BadgerPath,
		"REPLICATION_S3_REGION":  &c.Replication.S3Region,
		"REPLICATION_ROLE_ARN":   &c.Replication.RoleArn,
		"LOG_LEVEL":              &c.Log.Level,
		"LOG_FORMAT":             &c.Log.Format,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("REPLICATION_MAX_CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidationError("REPLICATION_MAX_CONCURRENCY", fmt.Sprintf("not an integer: %q", v))
		}
		c.Replication.MaxConcurrency = n
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	switch c.Registry.Backend {
	case BackendDynamoDB:
		if c.Registry.TableName == "" {
			return errors.NewValidationError("registry.tableName", "required for the dynamodb backend")
		}
		if c.Registry.IndexName == "" {
			return errors.NewValidationError("registry.indexName", "required for the dynamodb backend")
		}
	case BackendBadger:
	default:
		return errors.NewValidationError("registry.backend", fmt.Sprintf("unknown backend %q", c.Registry.Backend))
	}

	if c.Replication.MaxConcurrency < 1 {
		return errors.NewValidationError("replication.maxConcurrency", "must be at least 1")
	}
	if (c.AWS.AccessKey == "") != (c.AWS.SecretKey == "") {
		return errors.NewValidationError("aws", "accessKey and secretKey must be set together")
	}
	return nil
}

// NewAWSConfig loads the AWS configuration for the registry.
// Static keys are used when configured, otherwise the default credential chain.
func NewAWSConfig(ctx context.Context, c AWSConfig) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	if c.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewReplicationAWSConfig derives the configuration for the S3 copier from
// base: the replication region, and an assumed role when RoleArn is set.
func NewReplicationAWSConfig(base aws.Config, c ReplicationConfig) aws.Config {
	cfg := base.Copy()
	if c.S3Region != "" {
		cfg.Region = c.S3Region
	}
	if c.RoleArn != "" {
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(base), c.RoleArn,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = "artifact-replication"
			})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}
	return cfg
}
