package archive

import (
	"fmt"
	"strings"
)

// FailureEntry marcador de texto que sustituye a un documento no obtenido.
type FailureEntry struct {
	Path string
	Body []byte
}

// Substitute construye el marcador __FAILED__/ para una entrada cuyo origen falló.
// Función pura: mismo input, mismo marcador.
func Substitute(entry Entry, cause error) FailureEntry {
	var invoiceNumber, documentID, storageKey string
	if entry.Source != nil {
		invoiceNumber = entry.Source.InvoiceNumber
		documentID = entry.Source.DocumentID
		storageKey = entry.Source.StorageKey
	}
	msg := "erreur inconnue"
	if cause != nil {
		msg = cause.Error()
	}

	var b strings.Builder
	b.WriteString("Impossible de récupérer ce document.\n\n")
	fmt.Fprintf(&b, "Facture : %s\n", invoiceNumber)
	fmt.Fprintf(&b, "Document : %s\n", documentID)
	fmt.Fprintf(&b, "Emplacement prévu : %s\n", entry.Path)
	fmt.Fprintf(&b, "Clé de stockage : %s\n", storageKey)
	fmt.Fprintf(&b, "Erreur : %s\n", msg)

	name := Sanitize(invoiceNumber) + "-" + Sanitize(documentID) + ".txt"
	return FailureEntry{Path: FailedPrefix + name, Body: []byte(b.String())}
}
