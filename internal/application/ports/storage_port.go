package ports

import (
	"context"
	"io"
	"time"
)

// ObjectFetcher abre documentos del almacenamiento de objetos.
// Errores esperados: domain.ErrObjectNotFound, domain.ErrObjectStore.
type ObjectFetcher interface {
	GetObjectStream(ctx context.Context, key string) (io.ReadCloser, error)
}

// ArchiveStore persiste un ZIP ya construido y genera su enlace temporal de descarga.
type ArchiveStore interface {
	PutFile(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)
}

// URLSigner genera URLs prefirmadas para subir y descargar documentos individuales.
type URLSigner interface {
	GenerateUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)
}
