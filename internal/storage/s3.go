package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Skotchmaster/shopfront/internal/config"
)

type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images in an S3 compatible bucket (AWS, R2, MinIO) and stores
// absolute public URLs in image_url.
type S3Store struct {
	Client     ObjectAPI
	Bucket     string
	PublicBase string
}

func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3Store(client ObjectAPI, bucket, publicBase string) *S3Store {
	return &S3Store{Client: client, Bucket: bucket, PublicBase: strings.TrimRight(publicBase, "/")}
}

func (s *S3Store) Save(ctx context.Context, up Upload) (string, error) {
	key := GenerateName(up.Field, up.Filename)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          up.Body,
		ContentType:   aws.String(up.ContentType),
		ContentLength: aws.Int64(up.Size),
	})
	if err != nil {
		return "", fmt.Errorf("upload image to s3: %w", err)
	}
	return s.PublicBase + "/" + url.PathEscape(key), nil
}

func (s *S3Store) key(imageURL string) (string, bool) {
	if !strings.HasPrefix(imageURL, s.PublicBase+"/") {
		return "", false
	}
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", false
	}
	key := path.Base(u.Path)
	if key == "." || key == "/" {
		return "", false
	}
	return key, true
}

func (s *S3Store) Owns(imageURL string) bool {
	_, ok := s.key(imageURL)
	return ok
}

func (s *S3Store) Remove(ctx context.Context, imageURL string) error {
	key, ok := s.key(imageURL)
	if !ok {
		return nil
	}
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete s3 object: %w", err)
	}
	return nil
}
