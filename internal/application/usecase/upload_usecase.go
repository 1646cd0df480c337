package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/application/ports"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/entity"
)

// storageLabels nombres de estructura usados en las claves S3 (distintos de las etiquetas del ZIP).
var storageLabels = map[string]string{
	entity.Structure1: "Cocci Bulles",
	entity.Structure2: "Mille Et Une Bulles",
}

const maxSegmentLen = 80

var (
	spaces       = regexp.MustCompile(`\s+`)
	keyForbidden = regexp.MustCompile(`[^\w\-().]`)
	extForbidden = regexp.MustCompile(`[^\w]`)
	datePrefix   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

// UploadUseCase prefirma la subida directa de documentos al almacenamiento.
type UploadUseCase struct {
	signer ports.URLSigner
}

// NewUploadUseCase construye el caso de uso.
func NewUploadUseCase(signer ports.URLSigner) *UploadUseCase {
	return &UploadUseCase{signer: signer}
}

// Presign calcula la clave del documento y devuelve una URL PUT prefirmada (120 s).
func (uc *UploadUseCase) Presign(ctx context.Context, in dto.PresignUploadRequest) (*dto.PresignUploadResponse, error) {
	key, err := DocumentKey(in)
	if err != nil {
		return nil, err
	}
	url, _, err := uc.signer.GenerateUploadURL(ctx, key, in.MimeType, DocumentURLTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrObjectStore, err)
	}
	return &dto.PresignUploadResponse{UploadURL: url, Key: key}, nil
}

// DocumentKey clave S3 del documento:
// invoices/<Estructura>/<YYYY>/<MM>/<Proveedor>/FACTURE_<Número>[_<i>].<ext>
// El sufijo _<i> sólo aparece a partir del segundo archivo de la factura.
func DocumentKey(in dto.PresignUploadRequest) (string, error) {
	date := strings.TrimSpace(in.InvoiceDate)
	if len(date) > 10 {
		date = date[:10]
	}
	m := datePrefix.FindStringSubmatch(date)
	if m == nil {
		return "", fmt.Errorf("%w: invoiceDate debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
	}
	structure := in.Structure
	if label, ok := storageLabels[structure]; ok {
		structure = label
	}
	suffix := ""
	if in.FileIndex >= 2 {
		suffix = fmt.Sprintf("_%d", in.FileIndex)
	}
	return fmt.Sprintf("invoices/%s/%s/%s/%s/FACTURE_%s%s%s",
		keySegment(structure), m[1], m[2], keySegment(in.SupplierName), keySegment(in.InvoiceNumber), suffix, extension(in.Filename, in.MimeType),
	), nil
}

// keySegment segmento seguro para S3: espacios a "_", sólo [A-Za-z0-9_-().], 80 caracteres.
func keySegment(s string) string {
	s = spaces.ReplaceAllString(strings.TrimSpace(s), "_")
	s = keyForbidden.ReplaceAllString(s, "")
	if len(s) > maxSegmentLen {
		s = s[:maxSegmentLen]
	}
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func extension(filename, mimeType string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		if ext := extForbidden.ReplaceAllString(filename[i+1:], ""); ext != "" {
			return "." + ext
		}
	}
	if mimeType == "application/pdf" {
		return ".pdf"
	}
	return ""
}
