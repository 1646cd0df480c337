package export

import (
	"context"
	"fmt"
	"io"

	"github.com/jhoicas/factures-api/internal/application/ports"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/archive"
)

// acquisition resultado de la primera etapa: o bien un stream abierto, o bien el
// marcador que lo sustituye. Nunca ambos.
type acquisition struct {
	entry   archive.Entry
	body    io.ReadCloser
	failure *archive.FailureEntry
	err     error
}

// release cierra el stream si lo hay. Seguro de llamar varias veces.
func (a *acquisition) release() {
	if a.body != nil {
		_ = a.body.Close()
		a.body = nil
	}
}

// acquire abre el origen de una entrada. Un fallo se convierte en marcador.
func acquire(ctx context.Context, fetcher ports.ObjectFetcher, entry archive.Entry) acquisition {
	if entry.Source == nil {
		return substitute(entry, fmt.Errorf("%w: entrada sin origen", domain.ErrDocumentFetch))
	}
	body, err := fetcher.GetObjectStream(ctx, entry.Source.StorageKey)
	if err != nil {
		return substitute(entry, fmt.Errorf("%w: %w", domain.ErrDocumentFetch, err))
	}
	return acquisition{entry: entry, body: body}
}

func substitute(entry archive.Entry, cause error) acquisition {
	f := archive.Substitute(entry, cause)
	return acquisition{entry: entry, failure: &f, err: cause}
}
