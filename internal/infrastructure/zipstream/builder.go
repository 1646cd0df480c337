// Package zipstream escribe archivos ZIP de forma incremental: cada entrada se comprime
// a medida que llegan sus bytes y el directorio central se escribe al cerrar.
package zipstream

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docker/go-units"
	"github.com/klauspost/compress/flate"

	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/pkg/logger"
)

// copyBufferSize tamaño del único buffer de copia; acota la memoria por entrada.
const copyBufferSize = 32 * 1024

// defaultLargeEntry umbral a partir del cual se registra un aviso (no fatal).
const defaultLargeEntry = 200 * units.MiB

// ErrSourceRead la lectura del origen de una entrada falló a mitad de copia.
var ErrSourceRead = errors.New("zip: lectura del origen interrumpida")

// ProgressFunc recibe el total de bytes comprimidos emitidos hasta el momento.
type ProgressFunc func(written int64)

// Option configura el Builder.
type Option func(*Builder)

// WithLogger inyecta el logger para avisos del compresor.
func WithLogger(l *logger.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithProgress registra un observador de progreso.
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) { b.out.progress = fn }
}

// WithModified fija la fecha de modificación de todas las entradas.
func WithModified(t time.Time) Option {
	return func(b *Builder) { b.modified = t }
}

// WithLargeEntryWarning cambia el umbral de aviso por tamaño de entrada.
func WithLargeEntryWarning(size int64) Option {
	return func(b *Builder) { b.largeEntry = size }
}

// Builder ZIP en streaming con deflate a máxima compresión.
// No es seguro para uso concurrente: una exportación, un Builder.
type Builder struct {
	zw         *zip.Writer
	out        *countingWriter
	log        *logger.Logger
	buf        []byte
	modified   time.Time
	largeEntry int64
	entries    int
	closed     bool
	broken     error
}

// NewBuilder construye un Builder que escribe en w.
func NewBuilder(w io.Writer, opts ...Option) *Builder {
	b := &Builder{
		out:        &countingWriter{w: w},
		log:        logger.Nop(),
		buf:        make([]byte, copyBufferSize),
		modified:   time.Now(),
		largeEntry: defaultLargeEntry,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.zw = zip.NewWriter(b.out)
	b.zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return b
}

// Add añade una entrada copiando r a través del compresor. Devuelve los bytes sin
// comprimir leídos de r.
//
// Si falla la lectura de r, el error envuelve ErrSourceRead y el Builder sigue usable
// (la entrada queda truncada). Cualquier fallo de escritura envuelve
// domain.ErrArchiveEncoding y deja el Builder inutilizable.
func (b *Builder) Add(name string, r io.Reader) (int64, error) {
	fw, err := b.create(name)
	if err != nil {
		return 0, err
	}
	src := &sourceReader{r: r}
	n, err := io.CopyBuffer(fw, src, b.buf)
	if err != nil {
		if src.err != nil {
			b.log.Warn().Err(src.err).Str("entry", name).Int64("bytes", n).Msg("zip: origen interrumpido, entrada truncada")
			return n, fmt.Errorf("%w: %s: %v", ErrSourceRead, name, src.err)
		}
		return n, b.fail(fmt.Errorf("zip: escribir %s: %w", name, err))
	}
	b.warnSize(name, n)
	return n, nil
}

// AddBytes añade una entrada pequeña ya en memoria (marcadores de error).
func (b *Builder) AddBytes(name string, data []byte) error {
	fw, err := b.create(name)
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return b.fail(fmt.Errorf("zip: escribir %s: %w", name, err))
	}
	return nil
}

// Close vacía el compresor y escribe el directorio central. Tras Close el archivo es un ZIP válido.
func (b *Builder) Close() error {
	if b.broken != nil {
		return b.broken
	}
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.zw.Close(); err != nil {
		return b.fail(fmt.Errorf("zip: cerrar archivo: %w", err))
	}
	return nil
}

// Entries número de entradas escritas.
func (b *Builder) Entries() int { return b.entries }

// Written bytes emitidos hacia el destino.
func (b *Builder) Written() int64 { return b.out.n }

func (b *Builder) create(name string) (io.Writer, error) {
	if b.broken != nil {
		return nil, b.broken
	}
	if b.closed {
		return nil, fmt.Errorf("%w: builder cerrado", domain.ErrArchiveEncoding)
	}
	fw, err := b.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: b.modified,
	})
	if err != nil {
		return nil, b.fail(fmt.Errorf("zip: crear entrada %s: %w", name, err))
	}
	b.entries++
	return fw, nil
}

func (b *Builder) fail(err error) error {
	b.broken = fmt.Errorf("%w: %v", domain.ErrArchiveEncoding, err)
	return b.broken
}

func (b *Builder) warnSize(name string, n int64) {
	switch {
	case n == 0:
		b.log.Warn().Str("entry", name).Msg("zip: entrada vacía")
	case n >= b.largeEntry:
		b.log.Warn().Str("entry", name).Str("size", units.BytesSize(float64(n))).Msg("zip: entrada más grande de lo esperado")
	}
}

// sourceReader distingue los errores de lectura del origen de los de escritura.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

type countingWriter struct {
	w        io.Writer
	n        int64
	progress ProgressFunc
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if n > 0 && c.progress != nil {
		c.progress(c.n)
	}
	return n, err
}
