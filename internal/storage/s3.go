package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"invoice-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("logo must be a PNG, JPEG, GIF or WebP image")

var logoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// putObjectAPI is the slice of the S3 client the store uses
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// LogoStore keeps account logos in an S3 compatible bucket
type LogoStore struct {
	client    putObjectAPI
	bucket    string
	publicURL string
}

// NewLogoStore builds a client from the storage config. Static credentials
// are used when configured, otherwise the default AWS chain applies.
func NewLogoStore(ctx context.Context, cfg *config.Config) (*LogoStore, error) {
	sc := cfg.Storage
	if sc.Bucket == "" {
		return nil, errors.New("storage bucket not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(sc.Region)}
	if sc.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sc.AccessKey, sc.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure object storage: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := sc.PublicURL
	if publicURL == "" {
		if sc.Endpoint != "" {
			publicURL = strings.TrimRight(sc.Endpoint, "/") + "/" + sc.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", sc.Bucket, sc.Region)
		}
	}

	return newLogoStore(client, sc.Bucket, publicURL), nil
}

func newLogoStore(client putObjectAPI, bucket, publicURL string) *LogoStore {
	return &LogoStore{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// LogoKey is where an upload for accountID lands
func LogoKey(accountID, ext string) string {
	return fmt.Sprintf("logos/%s/%s%s", accountID, uuid.NewString(), ext)
}

// DetectImage sniffs data and returns its content type and file extension
func DetectImage(data []byte) (string, string, error) {
	contentType := http.DetectContentType(data)
	ext, ok := logoExtensions[contentType]
	if !ok {
		return "", "", ErrUnsupportedImage
	}
	return contentType, ext, nil
}

// UploadLogo stores data and returns the public URL of the object
func (s *LogoStore) UploadLogo(ctx context.Context, accountID string, data []byte) (string, error) {
	contentType, ext, err := DetectImage(data)
	if err != nil {
		return "", err
	}

	key := LogoKey(accountID, ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}

	return s.publicURL + "/" + key, nil
}
