package parse

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// NumberFormat knows which runes a device's locale uses for digit
// grouping and the decimal point. Devices managed from European NOCs are
// routinely configured with comma-decimal output, so this cannot be
// hardcoded.
type NumberFormat struct {
	Group   rune
	Decimal rune
}

// FormatFor picks a number format from a BCP 47-ish locale string. An
// unparsable locale falls back to English conventions.
func FormatFor(locale string) NumberFormat {
	en := NumberFormat{Group: ',', Decimal: '.'}
	tag, err := language.Parse(locale)
	if err != nil {
		return en
	}
	base, _ := tag.Base()
	switch base.String() {
	case "nb", "nn", "no", "da", "sv", "fi", "de", "nl", "it", "es", "pt", "tr", "is":
		return NumberFormat{Group: '.', Decimal: ','}
	case "fr":
		return NumberFormat{Group: ' ', Decimal: ','}
	default:
		return en
	}
}

func (f NumberFormat) normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch r {
		case f.Group, ' ', ' ': // group separators and stray (non-breaking) spaces
			continue
		case f.Decimal:
			b.WriteRune('.')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Float parses a locale-formatted number.
func (f NumberFormat) Float(s string) (float64, error) {
	n, err := strconv.ParseFloat(f.normalize(s), 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	return n, nil
}

// Uint parses a locale-formatted counter. Counters are integral; a
// fractional part means the field isn't what we think it is.
func (f NumberFormat) Uint(s string) (uint64, error) {
	n, err := strconv.ParseUint(f.normalize(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad counter %q: %w", s, err)
	}
	return n, nil
}

// Int parses a locale-formatted signed integer, e.g. a temperature.
func (f NumberFormat) Int(s string) (int, error) {
	n, err := strconv.ParseInt(f.normalize(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad integer %q: %w", s, err)
	}
	return int(n), nil
}
