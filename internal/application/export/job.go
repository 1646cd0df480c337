package export

import (
	"time"

	"github.com/jhoicas/factures-api/internal/domain/archive"
	"github.com/jhoicas/factures-api/internal/domain/monthkey"
)

// Failure documento sustituido por un marcador __FAILED__/.
type Failure struct {
	DocumentID    string
	InvoiceNumber string
	PlannedPath   string
	MarkerPath    string
	Err           error
}

// Job estado en vuelo de una exportación. Vive lo que dura la petición; no se persiste
// ni se comparte entre exportaciones.
type Job struct {
	Key       monthkey.MonthKey
	Title     string
	Invoices  int
	Entries   []archive.Entry
	StartedAt time.Time

	// Written bytes del ZIP emitidos; SourceBytes bytes de documentos leídos.
	Written     int64
	SourceBytes int64
	Failures    []Failure
}

// Filename nombre sugerido para la descarga: "<Título saneado>-<YYYY-MM>.zip".
func (j *Job) Filename() string {
	return archive.Sanitize(j.Title) + "-" + j.Key.String() + ".zip"
}

// Documents número de documentos planificados.
func (j *Job) Documents() int { return len(j.Entries) }
