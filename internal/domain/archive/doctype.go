package archive

import "github.com/jhoicas/factures-api/internal/domain/entity"

// DocumentType enumeración cerrada de tipos de documento exportables.
type DocumentType int

const (
	DocumentOther DocumentType = iota
	DocumentPDF
	DocumentImage
)

type docTypeInfo struct {
	label string
	ext   string
}

// docTypes tabla exhaustiva; añadir un tipo exige añadir su fila.
var docTypes = [...]docTypeInfo{
	DocumentOther: {label: "FICHIER", ext: "bin"},
	DocumentPDF:   {label: "PDF", ext: "pdf"},
	DocumentImage: {label: "IMAGE", ext: "jpg"},
}

// ParseDocumentType convierte el valor persistido (PDF, IMAGE...) al enumerado.
// Valores desconocidos se tratan como DocumentOther.
func ParseDocumentType(s string) DocumentType {
	switch s {
	case entity.DocumentTypePDF:
		return DocumentPDF
	case entity.DocumentTypeImage:
		return DocumentImage
	default:
		return DocumentOther
	}
}

func (t DocumentType) info() docTypeInfo {
	if t < 0 || int(t) >= len(docTypes) {
		return docTypes[DocumentOther]
	}
	return docTypes[t]
}

// Label etiqueta usada en el nombre del archivo.
func (t DocumentType) Label() string { return t.info().label }

// Ext extensión sin punto.
func (t DocumentType) Ext() string { return t.info().ext }

func (t DocumentType) String() string { return t.Label() }
