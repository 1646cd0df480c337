// Package storage implementa el almacenamiento de objetos sobre cualquier servicio compatible S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/pkg/config"
	"github.com/jhoicas/factures-api/pkg/logger"
)

// defaultPresignExpiration si el llamador no indica TTL.
const defaultPresignExpiration = 2 * time.Minute

// S3Storage cliente S3 compartido por todas las peticiones (seguro para uso concurrente).
type S3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	log           *logger.Logger
}

// NewS3Storage construye el cliente con credenciales estáticas. Endpoint vacío = AWS.
func NewS3Storage(ctx context.Context, cfg config.S3Config, log *logger.Logger) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: S3_BUCKET es obligatorio")
	}
	if log == nil {
		log = logger.Nop()
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: configuración AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		log:           log,
	}, nil
}

// GetObjectStream abre el cuerpo del objeto como stream. El llamador debe cerrarlo.
// Errores: domain.ErrObjectNotFound si la clave no existe, domain.ErrObjectStore en otro caso.
func (s *S3Storage) GetObjectStream(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: clave vacía", domain.ErrObjectNotFound)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("%w: get %s: %v", domain.ErrObjectStore, key, err)
	}
	if out.Body == nil {
		return nil, fmt.Errorf("%w: %s sin cuerpo", domain.ErrObjectStore, key)
	}
	return out.Body, nil
}

// PutFile sube un contenido de tamaño conocido (archivo temporal del ZIP).
func (s *S3Storage) PutFile(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	if key == "" {
		return fmt.Errorf("%w: clave vacía", domain.ErrStorageWrite)
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", domain.ErrStorageWrite, key, err)
	}
	s.log.Debug().Str("key", key).Int64("size", size).Msg("objeto subido")
	return nil
}

// GenerateDownloadURL URL GET prefirmada válida durante ttl.
func (s *S3Storage) GenerateDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage: clave vacía")
	}
	if ttl <= 0 {
		ttl = defaultPresignExpiration
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("storage: prefirmar descarga: %w", err)
	}
	return req.URL, time.Now().Add(ttl), nil
}

// GenerateUploadURL URL PUT prefirmada para subir un documento directamente desde el navegador.
func (s *S3Storage) GenerateUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage: clave vacía")
	}
	if ttl <= 0 {
		ttl = defaultPresignExpiration
	}
	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("storage: prefirmar subida: %w", err)
	}
	return req.URL, time.Now().Add(ttl), nil
}

// Bucket nombre del bucket configurado.
func (s *S3Storage) Bucket() string { return s.bucket }

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	// Algunos servicios compatibles S3 devuelven el código sin tipo concreto.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return strings.Contains(err.Error(), "NoSuchKey")
}
