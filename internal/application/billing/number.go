package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// InvoicePrefix prefijo de numeración del año: "JEL-26-".
func InvoicePrefix(year int) string {
	return fmt.Sprintf("JEL-%02d-", year%100)
}

// NextInvoiceNumber calcula el siguiente número a partir del último del año ("" si no hay).
// La secuencia tiene al menos 3 dígitos: JEL-26-001 ... JEL-26-999, JEL-26-1000.
func NextInvoiceNumber(last string, year int) string {
	prefix := InvoicePrefix(year)
	next := 1
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil && n >= 0 {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, next)
}
