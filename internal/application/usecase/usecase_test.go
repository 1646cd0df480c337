package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/application/usecase"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/entity"
)

type fakeSigner struct {
	key         string
	contentType string
	ttl         time.Duration
	err         error
}

func (s *fakeSigner) GenerateUploadURL(_ context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error) {
	s.key, s.contentType, s.ttl = key, contentType, ttl
	return "https://put/" + key, time.Now().Add(ttl), s.err
}

func (s *fakeSigner) GenerateDownloadURL(_ context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	s.key, s.ttl = key, ttl
	return "https://get/" + key, time.Now().Add(ttl), s.err
}

type fakeDocuments struct {
	docs map[string]*entity.Document
}

func (f *fakeDocuments) Create(context.Context, *entity.Document) error { return nil }

func (f *fakeDocuments) GetByID(_ context.Context, id string) (*entity.Document, error) {
	return f.docs[id], nil
}

func (f *fakeDocuments) ListByInvoice(context.Context, string) ([]*entity.Document, error) {
	return nil, nil
}

func (f *fakeDocuments) DeleteByInvoice(context.Context, string) error { return nil }

func presignRequest() dto.PresignUploadRequest {
	return dto.PresignUploadRequest{
		Filename:      "scan facture.PDF",
		MimeType:      "application/pdf",
		InvoiceDate:   "2026-01-15T00:00:00.000Z",
		SupplierName:  "Orange Business",
		InvoiceNumber: "JEL-26-004",
		Structure:     entity.Structure1,
	}
}

func TestDocumentKey_Estructura(t *testing.T) {
	key, err := usecase.DocumentKey(presignRequest())
	require.NoError(t, err)
	assert.Equal(t, "invoices/Cocci_Bulles/2026/01/Orange_Business/FACTURE_JEL-26-004.PDF", key)
}

func TestDocumentKey_SufijoDesdeElSegundoArchivo(t *testing.T) {
	in := presignRequest()
	in.FileIndex = 1
	key, err := usecase.DocumentKey(in)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, "FACTURE_JEL-26-004.PDF"), key)

	in.FileIndex = 3
	in.Structure = entity.Structure2
	key, err = usecase.DocumentKey(in)
	require.NoError(t, err)
	assert.Equal(t, "invoices/Mille_Et_Une_Bulles/2026/01/Orange_Business/FACTURE_JEL-26-004_3.PDF", key)
}

func TestDocumentKey_SaneadoYExtension(t *testing.T) {
	in := presignRequest()
	in.Filename = "sans-extension"
	in.SupplierName = "  L'Épicerie / Bio  "
	in.Structure = "AUTRE"
	key, err := usecase.DocumentKey(in)
	require.NoError(t, err)
	assert.Equal(t, "invoices/AUTRE/2026/01/Lpicerie__Bio/FACTURE_JEL-26-004.pdf", key)

	in.SupplierName = "///"
	in.MimeType = "image/jpeg"
	key, err = usecase.DocumentKey(in)
	require.NoError(t, err)
	assert.Equal(t, "invoices/AUTRE/2026/01/UNKNOWN/FACTURE_JEL-26-004", key)
}

func TestDocumentKey_FechaInvalida(t *testing.T) {
	in := presignRequest()
	in.InvoiceDate = "15/01/2026"
	_, err := usecase.DocumentKey(in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPresign_FirmaConTipoYTTL(t *testing.T) {
	signer := &fakeSigner{}
	uc := usecase.NewUploadUseCase(signer)
	res, err := uc.Presign(context.Background(), presignRequest())
	require.NoError(t, err)
	assert.Equal(t, signer.key, res.Key)
	assert.Equal(t, "https://put/"+res.Key, res.UploadURL)
	assert.Equal(t, "application/pdf", signer.contentType)
	assert.Equal(t, 120*time.Second, signer.ttl)
}

func TestDownloadURL(t *testing.T) {
	signer := &fakeSigner{}
	docs := &fakeDocuments{docs: map[string]*entity.Document{
		"d1": {ID: "d1", StorageKey: "invoices/x.pdf"},
	}}
	uc := usecase.NewDocumentUseCase(docs, signer)

	res, err := uc.DownloadURL(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "https://get/invoices/x.pdf", res.DownloadURL)
	assert.Equal(t, usecase.DocumentURLTTL, signer.ttl)

	_, err = uc.DownloadURL(context.Background(), "d2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	signer.err = errors.New("sin credenciales")
	_, err = uc.DownloadURL(context.Background(), "d1")
	assert.ErrorIs(t, err, domain.ErrObjectStore)
}
