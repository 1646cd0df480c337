package archive

import (
	"fmt"
	"path"
	"strings"

	"github.com/jhoicas/factures-api/internal/domain/entity"
)

// FailedPrefix carpeta reservada para los documentos que no se pudieron obtener.
const FailedPrefix = "__FAILED__/"

// Descriptor instantánea inmutable de un documento a exportar.
type Descriptor struct {
	DocumentID    string
	SupplierName  string
	InvoiceNumber string
	StructureCode string
	Type          DocumentType
	StorageKey    string
	Sequence      int // posición 1-based dentro de su factura (orden de creación)
}

// Entry entrada planificada del ZIP. Source es nil para los marcadores de error.
type Entry struct {
	Path   string
	Source *Descriptor
}

// FilenameScheme controla el nombre de archivo dentro de la carpeta del proveedor.
type FilenameScheme int

const (
	// SchemeInvoiceNumber "<Factura>-<NN>-<Tipo>.<ext>": único por construcción.
	SchemeInvoiceNumber FilenameScheme = iota
	// SchemeSequence "<NN>-<Tipo>.<ext>": dos facturas del mismo proveedor colisionan
	// y el guardia añade " (2)", " (3)"...
	SchemeSequence
)

// ParseFilenameScheme "sequence" o cualquier otro valor (por defecto número de factura).
func ParseFilenameScheme(s string) FilenameScheme {
	if strings.EqualFold(strings.TrimSpace(s), "sequence") {
		return SchemeSequence
	}
	return SchemeInvoiceNumber
}

// StructureLabels tabla de etiquetas legibles por código de estructura.
var StructureLabels = map[string]string{
	entity.Structure1: "Cocci'Bulles",
	entity.Structure2: "Milles et une Bulles",
}

// StructureLabel resuelve la etiqueta; los códigos desconocidos pasan tal cual.
func StructureLabel(code string) string {
	if label, ok := StructureLabels[code]; ok {
		return label
	}
	return code
}

// Describe aplana las facturas del mes (ya ordenadas por fecha) en descriptores,
// numerando los documentos de cada factura desde 1.
func Describe(invoices []*entity.MonthInvoice) []Descriptor {
	var out []Descriptor
	for _, inv := range invoices {
		for i, doc := range inv.Documents {
			out = append(out, Descriptor{
				DocumentID:    doc.ID,
				SupplierName:  inv.SupplierName,
				InvoiceNumber: inv.InvoiceNumber,
				StructureCode: inv.Structure,
				Type:          ParseDocumentType(doc.Type),
				StorageKey:    doc.StorageKey,
				Sequence:      i + 1,
			})
		}
	}
	return out
}

// Planner calcula las rutas virtuales de forma determinista.
type Planner struct {
	Scheme FilenameScheme
	// Labels resuelve códigos de estructura; nil usa StructureLabel.
	Labels func(code string) string
}

// Plan devuelve una entrada por descriptor, en el mismo orden, con rutas
// <Mes>/<Estructura>/<Proveedor>/<archivo>. Las rutas son únicas dentro del resultado.
func (p Planner) Plan(monthTitle string, descs []Descriptor) []Entry {
	labels := p.Labels
	if labels == nil {
		labels = StructureLabel
	}
	month := Sanitize(monthTitle)
	used := make(map[string]struct{}, len(descs))
	entries := make([]Entry, 0, len(descs))
	for i := range descs {
		d := &descs[i]
		dir := path.Join(month, Sanitize(labels(d.StructureCode)), Sanitize(d.SupplierName))
		base := p.filename(d)
		full := unique(used, dir, base, d.Type.Ext())
		entries = append(entries, Entry{Path: full, Source: d})
	}
	return entries
}

func (p Planner) filename(d *Descriptor) string {
	name := fmt.Sprintf("%02d-%s", d.Sequence, Sanitize(d.Type.Label()))
	if p.Scheme == SchemeInvoiceNumber {
		name = Sanitize(d.InvoiceNumber) + "-" + name
	}
	return name
}

func unique(used map[string]struct{}, dir, base, ext string) string {
	candidate := dir + "/" + base + "." + ext
	for n := 2; ; n++ {
		key := strings.ToLower(candidate)
		if _, taken := used[key]; !taken {
			used[key] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s/%s (%d).%s", dir, base, n, ext)
	}
}
