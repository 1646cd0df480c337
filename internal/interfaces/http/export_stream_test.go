package http

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factures-api/internal/application/export"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/entity"
	"github.com/jhoicas/factures-api/pkg/config"
	"github.com/jhoicas/factures-api/pkg/logger"
)

type streamLocator []*entity.MonthInvoice

func (l streamLocator) ListForMonth(context.Context, time.Time, time.Time) ([]*entity.MonthInvoice, error) {
	return l, nil
}

// endlessFetcher k1 es un documento sin fin: el productor no termina hasta que
// alguien deje de leer.
type endlessFetcher struct {
	mu     sync.Mutex
	opened []string
}

func (f *endlessFetcher) GetObjectStream(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.opened = append(f.opened, key)
	f.mu.Unlock()
	if key == "k1" {
		return io.NopCloser(rand.New(rand.NewSource(1))), nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrObjectNotFound, key)
}

func (f *endlessFetcher) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

func TestOpenStream_CierreDelClienteCancelaElProductor(t *testing.T) {
	invoices := streamLocator{{
		InvoiceID:     "inv-1",
		InvoiceNumber: "JEL-26-001",
		SupplierName:  "Acme",
		Structure:     entity.Structure1,
		InvoiceDate:   time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		Documents: []*entity.Document{
			{ID: "d1", Type: entity.DocumentTypePDF, StorageKey: "k1"},
			{ID: "d2", Type: entity.DocumentTypePDF, StorageKey: "k2"},
			{ID: "d3", Type: entity.DocumentTypePDF, StorageKey: "k3"},
		},
	}}
	fetcher := &endlessFetcher{}
	ex := export.NewExporter(invoices, fetcher, nil, nil, config.ExportConfig{FetchTimeout: time.Second}, logger.Nop())
	h := NewExportHandler(ex, logger.Nop())

	job, err := ex.Prepare(context.Background(), "2026-02")
	require.NoError(t, err)

	body, err := h.openStream(job)
	require.NoError(t, err)

	// El cliente lee un poco y se desconecta.
	_, err = io.ReadFull(body, make([]byte, 4096))
	require.NoError(t, err)
	require.NoError(t, body.Close())

	select {
	case <-body.done:
	case <-time.After(5 * time.Second):
		t.Fatal("el productor sigue vivo tras cerrar el cuerpo")
	}
	assert.Equal(t, []string{"k1"}, fetcher.keys())
}

func TestContentDisposition_Concurrente(t *testing.T) {
	names := []string{
		"Février 2026-2026-02.zip",
		"Août 2026-2026-08.zip",
		"Décembre 2026-2026-12.zip",
	}
	want := map[string]string{
		names[0]: `attachment; filename="Fevrier 2026-2026-02.zip"; filename*=UTF-8''F%C3%A9vrier%202026-2026-02.zip`,
		names[1]: `attachment; filename="Aout 2026-2026-08.zip"; filename*=UTF-8''Ao%C3%BBt%202026-2026-08.zip`,
		names[2]: `attachment; filename="Decembre 2026-2026-12.zip"; filename*=UTF-8''D%C3%A9cembre%202026-2026-12.zip`,
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				name := names[(g+i)%len(names)]
				if got := contentDisposition(name); got != want[name] {
					errs <- got
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	var bad []string
	for got := range errs {
		bad = append(bad, got)
	}
	assert.Empty(t, bad, strings.Join(bad, "\n"))
}
