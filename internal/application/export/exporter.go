package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docker/go-units"

	"github.com/jhoicas/factures-api/internal/application/ports"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/archive"
	"github.com/jhoicas/factures-api/internal/domain/monthkey"
	"github.com/jhoicas/factures-api/internal/infrastructure/zipstream"
	"github.com/jhoicas/factures-api/pkg/config"
	"github.com/jhoicas/factures-api/pkg/logger"
)

// Exporter exportación mensual de documentos: localizar, planificar, construir y entregar.
type Exporter struct {
	locator MonthLocator
	fetcher ports.ObjectFetcher
	store   ports.ArchiveStore
	mailer  ports.Mailer
	planner archive.Planner
	cfg     config.ExportConfig
	log     *logger.Logger
	now     func() time.Time
}

// NewExporter construye el exportador. store y mailer sólo se usan en modo email.
func NewExporter(
	locator MonthLocator,
	fetcher ports.ObjectFetcher,
	store ports.ArchiveStore,
	mailer ports.Mailer,
	cfg config.ExportConfig,
	log *logger.Logger,
) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 60 * time.Second
	}
	if cfg.LinkTTL <= 0 {
		cfg.LinkTTL = 24 * time.Hour
	}
	return &Exporter{
		locator: locator,
		fetcher: fetcher,
		store:   store,
		mailer:  mailer,
		planner: archive.Planner{Scheme: archive.ParseFilenameScheme(cfg.FilenameScheme)},
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// Prepare valida la clave de mes, localiza las facturas y planifica las entradas.
// No abre ningún documento: los 400/404 se deciden antes de emitir un solo byte.
func (e *Exporter) Prepare(ctx context.Context, rawKey string) (*Job, error) {
	key, err := monthkey.Parse(rawKey)
	if err != nil {
		return nil, err
	}
	start, end := key.Range()
	invoices, err := e.locator.ListForMonth(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("export: localizar facturas de %s: %w", key, err)
	}
	if len(invoices) == 0 {
		return nil, domain.ErrNoInvoicesForMonth
	}
	descs := archive.Describe(invoices)
	if len(descs) == 0 {
		return nil, domain.ErrNoDocumentsForMonth
	}
	title := key.Title()
	return &Job{
		Key:       key,
		Title:     title,
		Invoices:  len(invoices),
		Entries:   e.planner.Plan(title, descs),
		StartedAt: e.now(),
	}, nil
}

// WriteArchive escribe el ZIP del trabajo en w, entrada por entrada y en orden de plan.
// Un documento que no se puede obtener se sustituye por un marcador __FAILED__/ y el
// trabajo continúa. Sólo un fallo del propio ZIP (o la cancelación de ctx) lo aborta.
func (e *Exporter) WriteArchive(ctx context.Context, job *Job, w io.Writer, progress ProgressFunc) error {
	log := e.log.Child(e.log.With().Str("month", job.Key.String()))
	log.Info().Int("invoices", job.Invoices).Int("documents", job.Documents()).Msg("export: inicio")

	opts := []zipstream.Option{zipstream.WithLogger(log), zipstream.WithModified(job.StartedAt)}
	if progress != nil {
		opts = append(opts, zipstream.WithProgress(zipstream.ProgressFunc(progress)))
	}
	b := zipstream.NewBuilder(w, opts...)
	defer func() { job.Written = b.Written() }()

	for _, entry := range job.Entries {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("done", b.Entries()).Msg("export: cancelado")
			return err
		}
		if err := e.writeEntry(ctx, log, job, b, entry); err != nil {
			log.Error().Err(err).Str("entry", entry.Path).Msg("export: abortado")
			return err
		}
	}
	if err := b.Close(); err != nil {
		log.Error().Err(err).Msg("export: no se pudo finalizar el ZIP")
		return err
	}
	log.Info().
		Int("entries", b.Entries()).
		Int("failures", len(job.Failures)).
		Str("source", units.HumanSize(float64(job.SourceBytes))).
		Str("zip", units.HumanSize(float64(b.Written()))).
		Dur("elapsed", e.now().Sub(job.StartedAt)).
		Msg("export: completado")
	return nil
}

// writeEntry primera etapa (adquirir) y segunda (escribir) para una entrada.
// El stream adquirido se cierra en todos los caminos.
func (e *Exporter) writeEntry(ctx context.Context, log *logger.Logger, job *Job, b *zipstream.Builder, entry archive.Entry) error {
	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
	defer cancel()

	acq := acquire(fetchCtx, e.fetcher, entry)
	defer acq.release()

	if acq.failure != nil {
		// La cancelación del trabajo no es un fallo del documento.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return e.writeFailure(log, job, b, entry, *acq.failure, acq.err)
	}

	n, err := b.Add(entry.Path, acq.body)
	job.SourceBytes += n
	if err == nil {
		return nil
	}
	if !errors.Is(err, zipstream.ErrSourceRead) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	// Entrada truncada: se deja y se añade el marcador con la causa.
	return e.writeFailure(log, job, b, entry, archive.Substitute(entry, err), err)
}

func (e *Exporter) writeFailure(log *logger.Logger, job *Job, b *zipstream.Builder, entry archive.Entry, f archive.FailureEntry, cause error) error {
	f.Path = uniqueFailurePath(job, f.Path)
	var documentID, invoiceNumber string
	if entry.Source != nil {
		documentID = entry.Source.DocumentID
		invoiceNumber = entry.Source.InvoiceNumber
	}
	log.Warn().
		Err(cause).
		Str("document", documentID).
		Str("invoice", invoiceNumber).
		Str("entry", entry.Path).
		Msg("export: documento no disponible, se añade marcador")
	if err := b.AddBytes(f.Path, f.Body); err != nil {
		return err
	}
	job.Failures = append(job.Failures, Failure{
		DocumentID:    documentID,
		InvoiceNumber: invoiceNumber,
		PlannedPath:   entry.Path,
		MarkerPath:    f.Path,
		Err:           cause,
	})
	return nil
}

// uniqueFailurePath evita repetir un marcador si dos documentos sanean al mismo nombre.
func uniqueFailurePath(job *Job, p string) string {
	taken := func(candidate string) bool {
		for _, f := range job.Failures {
			if f.MarkerPath == candidate {
				return true
			}
		}
		return false
	}
	if !taken(p) {
		return p
	}
	base := p[:len(p)-len(".txt")]
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d).txt", base, n)
		if !taken(candidate) {
			return candidate
		}
	}
}
