package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factures-api/internal/application/export"
	"github.com/jhoicas/factures-api/internal/application/ports"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/entity"
	"github.com/jhoicas/factures-api/pkg/config"
)

type fakeLocator struct {
	invoices []*entity.MonthInvoice
	err      error
	calls    int
	start    time.Time
	end      time.Time
}

func (f *fakeLocator) ListForMonth(_ context.Context, start, end time.Time) ([]*entity.MonthInvoice, error) {
	f.calls++
	f.start, f.end = start, end
	return f.invoices, f.err
}

type fakeFetcher struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    map[string]error
	opened  []string
	// onOpen se ejecuta en cada apertura (p. ej. para cancelar el trabajo).
	onOpen func(key string)
}

func (f *fakeFetcher) GetObjectStream(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.opened = append(f.opened, key)
	f.mu.Unlock()
	if f.onOpen != nil {
		f.onOpen(key)
	}
	if err, ok := f.fail[key]; ok {
		return nil, err
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeStore struct {
	putKey  string
	body    []byte
	size    int64
	putErr  error
	signErr error
}

func (s *fakeStore) PutFile(_ context.Context, key string, body io.ReadSeeker, size int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.putKey, s.body, s.size = key, data, size
	return nil
}

func (s *fakeStore) GenerateDownloadURL(_ context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if s.signErr != nil {
		return "", time.Time{}, s.signErr
	}
	return "https://s3.example/" + key + "?X-Amz-Expires=" + fmt.Sprint(int(ttl.Seconds())), time.Now().Add(ttl), nil
}

type fakeMailer struct {
	sent []ports.MailMessage
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg ports.MailMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func doc(id, typ, key string) *entity.Document {
	return &entity.Document{ID: id, Type: typ, StorageKey: key}
}

// janvier dos facturas, tres documentos.
func janvier() []*entity.MonthInvoice {
	return []*entity.MonthInvoice{
		{
			InvoiceID:     "inv-1",
			InvoiceNumber: "JEL-26-001",
			SupplierName:  "Acme",
			Structure:     entity.Structure1,
			InvoiceDate:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Documents: []*entity.Document{
				doc("d1", entity.DocumentTypePDF, "k1"),
				doc("d2", entity.DocumentTypeImage, "k2"),
			},
		},
		{
			InvoiceID:     "inv-2",
			InvoiceNumber: "JEL-26-002",
			SupplierName:  "Bio/Sud",
			Structure:     entity.Structure2,
			InvoiceDate:   time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
			Documents:     []*entity.Document{doc("d3", entity.DocumentTypePDF, "k3")},
		},
	}
}

func objects() map[string][]byte {
	return map[string][]byte{
		"k1": []byte("%PDF-1 acme"),
		"k2": bytes.Repeat([]byte{0xff, 0xd8, 0x01}, 5000),
		"k3": []byte("%PDF-1 bio"),
	}
}

func newExporter(loc export.MonthLocator, f ports.ObjectFetcher, s ports.ArchiveStore, m ports.Mailer) *export.Exporter {
	return export.NewExporter(loc, f, s, m, config.ExportConfig{FetchTimeout: time.Second, LinkTTL: 24 * time.Hour}, nil)
}

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = body
	}
	return out
}

func TestPrepare_ClaveInvalidaNoTocaLaBase(t *testing.T) {
	loc := &fakeLocator{invoices: janvier()}
	ex := newExporter(loc, &fakeFetcher{}, nil, nil)

	for _, raw := range []string{"2026-13", "2026-1", "", "26-01", "2026/01"} {
		_, err := ex.Prepare(context.Background(), raw)
		assert.ErrorIs(t, err, domain.ErrInvalidMonthKey, raw)
	}
	assert.Zero(t, loc.calls)
}

func TestPrepare_RangoDelMesEnUTC(t *testing.T) {
	loc := &fakeLocator{invoices: janvier()}
	ex := newExporter(loc, &fakeFetcher{}, nil, nil)

	job, err := ex.Prepare(context.Background(), "2024-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), loc.start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), loc.end)
	assert.Equal(t, "Février 2024", job.Title)
	assert.Equal(t, "Février 2024-2024-02.zip", job.Filename())
	assert.Equal(t, 3, job.Documents())
}

func TestPrepare_SinFacturas(t *testing.T) {
	ex := newExporter(&fakeLocator{}, &fakeFetcher{}, nil, nil)
	_, err := ex.Prepare(context.Background(), "2026-01")
	assert.ErrorIs(t, err, domain.ErrNoInvoicesForMonth)
}

func TestPrepare_FacturasSinDocumentos(t *testing.T) {
	inv := janvier()
	for _, i := range inv {
		i.Documents = nil
	}
	fetcher := &fakeFetcher{}
	ex := newExporter(&fakeLocator{invoices: inv}, fetcher, nil, nil)
	_, err := ex.Prepare(context.Background(), "2026-01")
	assert.ErrorIs(t, err, domain.ErrNoDocumentsForMonth)
	assert.Empty(t, fetcher.opened)
}

func TestWriteArchive_TodosLosDocumentos(t *testing.T) {
	fetcher := &fakeFetcher{objects: objects()}
	ex := newExporter(&fakeLocator{invoices: janvier()}, fetcher, nil, nil)
	job, err := ex.Prepare(context.Background(), "2026-01")
	require.NoError(t, err)

	var buf bytes.Buffer
	var last int64
	err = ex.WriteArchive(context.Background(), job, &buf, func(n int64) { last = n })
	require.NoError(t, err)

	files := readZip(t, buf.Bytes())
	assert.Equal(t, map[string][]byte{
		"Janvier 2026/Cocci'Bulles/Acme/JEL-26-001-01-PDF.pdf":            objects()["k1"],
		"Janvier 2026/Cocci'Bulles/Acme/JEL-26-001-02-IMAGE.jpg":          objects()["k2"],
		"Janvier 2026/Milles et une Bulles/Bio-Sud/JEL-26-002-01-PDF.pdf": objects()["k3"],
	}, files)
	assert.Empty(t, job.Failures)
	assert.Equal(t, int64(buf.Len()), job.Written)
	assert.Equal(t, job.Written, last)
	assert.Equal(t, []string{"k1", "k2", "k3"}, fetcher.opened)
}

func TestWriteArchive_FallosSustituidosPorMarcadores(t *testing.T) {
	fetcher := &fakeFetcher{
		objects: objects(),
		fail:    map[string]error{"k2": fmt.Errorf("%w: timeout", domain.ErrObjectStore)},
	}
	delete(fetcher.objects, "k3") // no existe en el bucket
	ex := newExporter(&fakeLocator{invoices: janvier()}, fetcher, nil, nil)
	job, err := ex.Prepare(context.Background(), "2026-01")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ex.WriteArchive(context.Background(), job, &buf, nil))

	files := readZip(t, buf.Bytes())
	// N-K documentos reales + K marcadores.
	require.Len(t, files, 3)
	assert.Contains(t, files, "Janvier 2026/Cocci'Bulles/Acme/JEL-26-001-01-PDF.pdf")
	assert.Contains(t, files, "__FAILED__/JEL-26-001-d2.txt")
	assert.Contains(t, files, "__FAILED__/JEL-26-002-d3.txt")

	marker := string(files["__FAILED__/JEL-26-001-d2.txt"])
	assert.Contains(t, marker, "JEL-26-001")
	assert.Contains(t, marker, "d2")
	assert.Contains(t, marker, "timeout")

	require.Len(t, job.Failures, 2)
	assert.ErrorIs(t, job.Failures[0].Err, domain.ErrDocumentFetch)
	assert.ErrorIs(t, job.Failures[1].Err, domain.ErrObjectNotFound)
}

func TestWriteArchive_TodosFallanSigueSiendoUnZipValido(t *testing.T) {
	fetcher := &fakeFetcher{objects: map[string][]byte{}}
	ex := newExporter(&fakeLocator{invoices: janvier()}, fetcher, nil, nil)
	job, err := ex.Prepare(context.Background(), "2026-01")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ex.WriteArchive(context.Background(), job, &buf, nil))

	files := readZip(t, buf.Bytes())
	require.Len(t, files, 3)
	for name := range files {
		assert.True(t, strings.HasPrefix(name, "__FAILED__/"), name)
	}
}

type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "parcial"), nil
	}
	return 0, errors.New("connection reset")
}

type readerFetcher struct {
	*fakeFetcher
	broken string
}

func (f *readerFetcher) GetObjectStream(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == f.broken {
		return io.NopCloser(&failingReader{}), nil
	}
	return f.fakeFetcher.GetObjectStream(ctx, key)
}

func TestWriteArchive_LecturaInterrumpidaAnadeMarcador(t *testing.T) {
	fetcher := &readerFetcher{fakeFetcher: &fakeFetcher{objects: objects()}, broken: "k1"}
	ex := newExporter(&fakeLocator{invoices: janvier()}, fetcher, nil, nil)
	job, err := ex.Prepare(context.Background(), "2026-01")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ex.WriteArchive(context.Background(), job, &buf, nil))

	files := readZip(t, buf.Bytes())
	assert.Equal(t, []byte("parcial"), files["Janvier 2026/Cocci'Bulles/Acme/JEL-26-001-01-PDF.pdf"])
	assert.Contains(t, string(files["__FAILED__/JEL-26-001-d1.txt"]), "connection reset")
	require.Len(t, job.Failures, 1)
	assert.Equal(t, objects()["k3"], files["Janvier 2026/Milles et une Bulles/Bio-Sud/JEL-26-002-01-PDF.pdf"])
}

func TestWriteArchive_CancelacionDetieneLasDescargas(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher := &fakeFetcher{objects: objects()}
	fetcher.onOpen = func(key string) {
		if key == "k1" {
			cancel()
		}
	}
	ex := newExporter(&fakeLocator{invoices: janvier()}, fetcher, nil, nil)
	job, err := ex.Prepare(context.Background(), "2026-01")
	require.NoError(t, err)

	err = ex.WriteArchive(ctx, job, io.Discard, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"k1"}, fetcher.opened)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteArchive_ErrorDeEscrituraAbortaElTrabajo(t *testing.T) {
	fetcher := &fakeFetcher{objects: objects()}
	ex := newExporter(&fakeLocator{invoices: janvier()}, fetcher, nil, nil)
	job, err := ex.Prepare(context.Background(), "2026-01")
	require.NoError(t, err)

	err = ex.WriteArchive(context.Background(), job, brokenWriter{}, nil)
	assert.ErrorIs(t, err, domain.ErrArchiveEncoding)
}

func TestEmailLink_EmailInvalidoAntesDeCualquierAcceso(t *testing.T) {
	loc := &fakeLocator{invoices: janvier()}
	fetcher := &fakeFetcher{objects: objects()}
	store := &fakeStore{}
	mailer := &fakeMailer{}
	ex := newExporter(loc, fetcher, store, mailer)

	for _, email := range []string{"", "not-an-email", "a@", "@b.fr"} {
		_, err := ex.EmailLink(context.Background(), "2026-01", email)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail, email)
	}
	assert.Zero(t, loc.calls)
	assert.Empty(t, fetcher.opened)
	assert.Empty(t, store.putKey)
	assert.Empty(t, mailer.sent)
}

func TestEmailLink_SinFacturasNoEnviaCorreo(t *testing.T) {
	mailer := &fakeMailer{}
	store := &fakeStore{}
	ex := newExporter(&fakeLocator{}, &fakeFetcher{}, store, mailer)

	_, err := ex.EmailLink(context.Background(), "2026-01", "compta@example.fr")
	assert.ErrorIs(t, err, domain.ErrNoInvoicesForMonth)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, store.putKey)
}

func TestEmailLink_SubeElZipYEnviaElEnlace(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	ex := newExporter(&fakeLocator{invoices: janvier()}, &fakeFetcher{objects: objects()}, store, mailer)

	res, err := ex.EmailLink(context.Background(), "2026-01", "  compta@example.fr ")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(store.putKey, "exports/2026-01/"), store.putKey)
	assert.True(t, strings.HasSuffix(store.putKey, ".zip"))
	assert.Equal(t, int64(len(store.body)), store.size)
	assert.Len(t, readZip(t, store.body), 3)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "compta@example.fr", msg.To)
	assert.Equal(t, "Factures Janvier 2026", msg.Subject)
	assert.Contains(t, msg.Text, "Voici le lien de téléchargement pour les factures du mois de Janvier 2026")
	assert.Contains(t, msg.Text, res.URL)
	assert.Contains(t, msg.Text, "24 heures")
	assert.Contains(t, msg.HTML, "Janvier 2026")
	assert.Equal(t, store.putKey, res.Key)
}

func TestEmailLink_FalloDeAlmacenamiento(t *testing.T) {
	store := &fakeStore{putErr: fmt.Errorf("%w: access denied", domain.ErrStorageWrite)}
	mailer := &fakeMailer{}
	ex := newExporter(&fakeLocator{invoices: janvier()}, &fakeFetcher{objects: objects()}, store, mailer)

	_, err := ex.EmailLink(context.Background(), "2026-01", "compta@example.fr")
	assert.ErrorIs(t, err, domain.ErrStorageWrite)
	assert.Empty(t, mailer.sent)
}

func TestEmailLink_FalloDeCorreo(t *testing.T) {
	mailer := &fakeMailer{err: fmt.Errorf("%w: 421", domain.ErrMailTransport)}
	ex := newExporter(&fakeLocator{invoices: janvier()}, &fakeFetcher{objects: objects()}, &fakeStore{}, mailer)

	_, err := ex.EmailLink(context.Background(), "2026-01", "compta@example.fr")
	assert.ErrorIs(t, err, domain.ErrMailTransport)
}

// hangingFetcher k2 no responde hasta que vence su contexto.
type hangingFetcher struct {
	*fakeFetcher
	hung string
}

func (f *hangingFetcher) GetObjectStream(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == f.hung {
		f.mu.Lock()
		f.opened = append(f.opened, key)
		f.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.fakeFetcher.GetObjectStream(ctx, key)
}

func TestWriteArchive_TimeoutPorDocumentoSoloAfectaAlColgado(t *testing.T) {
	fetcher := &hangingFetcher{fakeFetcher: &fakeFetcher{objects: objects()}, hung: "k2"}
	ex := export.NewExporter(&fakeLocator{invoices: janvier()}, fetcher, nil, nil,
		config.ExportConfig{FetchTimeout: 50 * time.Millisecond}, nil)
	job, err := ex.Prepare(context.Background(), "2026-01")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ex.WriteArchive(context.Background(), job, &buf, nil))

	files := readZip(t, buf.Bytes())
	require.Len(t, files, 3)
	assert.Equal(t, objects()["k1"], files["Janvier 2026/Cocci'Bulles/Acme/JEL-26-001-01-PDF.pdf"])
	assert.Contains(t, files, "__FAILED__/JEL-26-001-d2.txt")
	assert.Equal(t, objects()["k3"], files["Janvier 2026/Milles et une Bulles/Bio-Sud/JEL-26-002-01-PDF.pdf"])

	require.Len(t, job.Failures, 1)
	assert.Equal(t, "d2", job.Failures[0].DocumentID)
	assert.ErrorIs(t, job.Failures[0].Err, context.DeadlineExceeded)
	assert.Equal(t, []string{"k1", "k2", "k3"}, fetcher.opened)
}
