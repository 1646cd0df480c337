package http

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"unicode"

	"github.com/docker/go-units"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/application/export"
	"github.com/jhoicas/factures-api/pkg/logger"
)

const (
	// streamBufferSize buffer entre el productor del ZIP y la conexión.
	streamBufferSize = 64 * 1024
	// progressStep cada cuántos bytes emitidos se registra el progreso.
	progressStep = 8 * units.MiB
)

// MonthExporter lo que el handler necesita de export.Exporter.
type MonthExporter interface {
	Prepare(ctx context.Context, rawKey string) (*export.Job, error)
	WriteArchive(ctx context.Context, job *export.Job, w io.Writer, progress export.ProgressFunc) error
	EmailLink(ctx context.Context, rawKey, email string) (*export.LinkResult, error)
}

// ExportHandler exportación mensual de documentos en ZIP.
type ExportHandler struct {
	exporter MonthExporter
	log      *logger.Logger
}

// NewExportHandler construye el handler.
func NewExportHandler(exporter MonthExporter, log *logger.Logger) *ExportHandler {
	return &ExportHandler{exporter: exporter, log: log}
}

// Download GET /api/invoices/month/:monthKey/documents.zip
//
// Los 400/404 se resuelven antes de emitir nada. El ZIP se produce en una goroutine
// que escribe en un io.Pipe; la respuesta se envía en chunked a medida que llegan bytes.
// Si el productor falla antes del primer byte se responde 500; después, la conexión
// se corta y el fallo queda en el log. Si el cliente se desconecta, el pipe se cierra
// y el trabajo se cancela sin abrir más documentos.
func (h *ExportHandler) Download(c *fiber.Ctx) error {
	job, err := h.exporter.Prepare(c.UserContext(), c.Params("monthKey"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	// Las cabeceras se calculan antes de arrancar el productor.
	disposition := contentDisposition(job.Filename())

	body, err := h.openStream(job)
	if err != nil {
		return respondError(c, h.log, err)
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, disposition)
	c.Set(fiber.HeaderCacheControl, "no-store")
	h.log.Info().Str("month", job.Key.String()).Str("user", GetUserID(c)).Msg("export: descarga iniciada")
	return c.SendStream(body, -1)
}

// EmailLink POST /api/invoices/month/:monthKey/documents.zip/email
func (h *ExportHandler) EmailLink(c *fiber.Ctx) error {
	var in dto.EmailExportRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if _, err := h.exporter.EmailLink(c.UserContext(), c.Params("monthKey"), in.Email); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.OKResponse{OK: true})
}

// openStream arranca el productor del ZIP y espera su primer byte. El cuerpo se
// escribe después de que el handler retorna: el trabajo no puede depender del
// contexto de la petición.
func (h *ExportHandler) openStream(job *export.Job) (*streamBody, error) {
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		err := h.exporter.WriteArchive(ctx, job, pw, h.progressLogger(job))
		_ = pw.CloseWithError(err)
	}()

	body := &streamBody{Reader: bufio.NewReaderSize(pr, streamBufferSize), pipe: pr, cancel: cancel, done: done}
	if _, err := body.Peek(1); err != nil {
		_ = body.Close()
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}

func (h *ExportHandler) progressLogger(job *export.Job) export.ProgressFunc {
	next := int64(progressStep)
	return func(written int64) {
		if written < next {
			return
		}
		next = written + progressStep
		h.log.Debug().
			Str("month", job.Key.String()).
			Str("written", units.HumanSize(float64(written))).
			Msg("export: progreso")
	}
}

// streamBody cuerpo de la respuesta. fasthttp llama a Close al terminar o al fallar la
// escritura hacia el cliente, lo que desbloquea y cancela al productor.
type streamBody struct {
	*bufio.Reader
	pipe   *io.PipeReader
	cancel context.CancelFunc
	// done se cierra cuando el productor ha terminado.
	done <-chan struct{}
}

func (s *streamBody) Close() error {
	s.cancel()
	return s.pipe.Close()
}

// contentDisposition nombre ASCII de respaldo más filename* (RFC 5987) con el nombre UTF-8.
// transform.Chain guarda estado: se construye uno por llamada.
func contentDisposition(name string) string {
	asciiFold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	fallback, _, err := transform.String(asciiFold, name)
	if err != nil {
		fallback = name
	}
	fallback = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || r == '"' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, fallback)
	return `attachment; filename="` + fallback + `"; filename*=UTF-8''` + url.PathEscape(name)
}
