package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// s3API defines the subset of the S3 client interface used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store stores assets in an S3-compatible bucket.
type S3Store struct {
	client        s3API
	bucket        string
	prefix        string
	folder        string
	publicBaseURL string
	logger        zerolog.Logger
}

// NewS3Store creates an S3Store. publicBaseURL is the URL under which object
// keys are publicly reachable.
func NewS3Store(client s3API, bucket, prefix, folder, publicBaseURL string, logger zerolog.Logger) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        bucket,
		prefix:        prefix,
		folder:        cleanFolder(folder, "newsletters"),
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// NewS3StoreFromConfig builds a real AWS S3 client. Custom endpoints
// (MinIO, LocalStack) are supported via Config.S3Endpoint.
func NewS3StoreFromConfig(cfg Config, logger zerolog.Logger) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("assets: s3 bucket is required")
	}

	optFns := []func(*awsconfig.LoadOptions) error{}
	if cfg.S3Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.S3Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), optFns...)
	if err != nil {
		return nil, fmt.Errorf("assets: load aws config: %w", err)
	}

	s3OptFns := []func(*s3.Options){}
	if cfg.S3Endpoint != "" {
		s3OptFns = append(s3OptFns, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		})
	}

	return NewS3Store(
		s3.NewFromConfig(awsCfg, s3OptFns...),
		cfg.S3Bucket,
		cfg.S3Prefix,
		cfg.Folder,
		publicS3URL(cfg, awsCfg.Region),
		logger,
	), nil
}

func publicS3URL(cfg Config, region string) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.S3Endpoint != "":
		return joinURL(cfg.S3Endpoint, cfg.S3Bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, region)
	}
}

// Upload puts data at <prefix><folder>/<uuid>.<ext> with its sniffed
// content type.
func (s *S3Store) Upload(ctx context.Context, data []byte, folder string) (url string, err error) {
	defer func() { observe("upload", err) }()

	format, err := DetectFormat(data)
	if err != nil {
		return "", err
	}

	folder = cleanFolder(folder, s.folder)
	key := s.prefix + folder + "/" + uuid.NewString() + "." + format.Ext
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(format.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("assets: s3 put: %w", err)
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("key", key).
		Int("size", len(data)).
		Msg("asset stored")
	return joinURL(s.publicBaseURL, key), nil
}

// Delete removes every object under <prefix><folder>/<derivedID>. so the
// caller does not need to know the extension. When the default folder holds
// no match, the whole store prefix is scanned for objects uploaded under
// another folder hint.
func (s *S3Store) Delete(ctx context.Context, derivedID string) (err error) {
	defer func() { observe("delete", err) }()

	if err := validateID(derivedID); err != nil {
		return err
	}

	keys, err := s.listKeys(ctx, s.prefix+s.folder+"/"+derivedID+".", derivedID)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		if keys, err = s.listKeys(ctx, s.prefix, derivedID); err != nil {
			return err
		}
	}

	for _, key := range keys {
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("assets: s3 delete %s: %w", key, err)
		}
	}
	return nil
}

// listKeys pages through objects under prefix and keeps those stored for id.
func (s *S3Store) listKeys(ctx context.Context, prefix, id string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("assets: s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if isAssetFile(path.Base(key), id) {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}
