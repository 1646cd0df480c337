// Package monthkey resuelve claves de mes "YYYY-MM" a intervalos UTC y títulos legibles.
package monthkey

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/jhoicas/factures-api/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var pattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// frenchMonths nombres de mes en minúsculas, índice 0 = enero.
var frenchMonths = [12]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var titleCaser = cases.Title(language.French)

// MonthKey identifica un mes natural. Month siempre está en [1,12].
type MonthKey struct {
	Year  int
	Month time.Month
}

// Parse valida "YYYY-MM" y devuelve la clave. Falla con domain.ErrInvalidMonthKey.
func Parse(s string) (MonthKey, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return MonthKey{}, fmt.Errorf("%w: %q", domain.ErrInvalidMonthKey, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return MonthKey{}, fmt.Errorf("%w: mes %02d fuera de 01..12", domain.ErrInvalidMonthKey, month)
	}
	return MonthKey{Year: year, Month: time.Month(month)}, nil
}

// String serializa como "YYYY-MM".
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Range devuelve el intervalo semiabierto [start, end) en UTC: primer instante del mes
// y primer instante del mes siguiente.
func (k MonthKey) Range() (start, end time.Time) {
	start = time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// Days número de días naturales del mes (años bisiestos incluidos).
func (k MonthKey) Days() int {
	start, end := k.Range()
	return int(end.Sub(start).Hours() / 24)
}

// Title título en francés con mayúscula inicial, ej. "Janvier 2026".
func (k MonthKey) Title() string {
	return titleCaser.String(fmt.Sprintf("%s %d", frenchMonths[k.Month-1], k.Year))
}
