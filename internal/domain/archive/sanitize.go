package archive

import (
	"regexp"
	"strings"
)

// PlaceholderName sustituye a un segmento que queda vacío tras sanear.
const PlaceholderName = "file"

var forbidden = regexp.MustCompile(`[\\/:*?"<>|]+`)

// Sanitize reemplaza cada secuencia de caracteres prohibidos en nombres de entrada ZIP
// (\ / : * ? " < > |) por "-" y recorta espacios. Si el nombre no contiene nada más que
// caracteres prohibidos o espacios (o es "." / ".."), devuelve PlaceholderName.
func Sanitize(name string) string {
	if strings.TrimSpace(forbidden.ReplaceAllString(name, "")) == "" {
		return PlaceholderName
	}
	out := strings.TrimSpace(forbidden.ReplaceAllString(name, "-"))
	if out == "." || out == ".." {
		return PlaceholderName
	}
	return out
}
