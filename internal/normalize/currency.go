package normalize

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/mafia-stats/gomafia-sync/internal/errors"
)

// currencyMarkers are the ruble suffixes gomafia renders on prize funds
var currencyMarkers = []string{"₽", "руб.", "руб", "р."}

// emptyAmounts are what the site shows when no prize fund is set
var emptyAmounts = map[string]bool{
	"":  true,
	"–": true,
	"—": true,
	"-": true,
}

// Currency parses a prize-fund string such as "60 000 ₽" or "1 500,50 ₽"
// into a decimal amount. Dash placeholders and blank input mean no value
// and return (nil, nil). Any letters outside the recognized currency
// markers make the input unparseable and return a validation error.
func Currency(s string) (*decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if emptyAmounts[trimmed] {
		return nil, nil
	}

	cleaned := trimmed
	for _, marker := range currencyMarkers {
		cleaned = strings.ReplaceAll(cleaned, marker, "")
	}

	// The site groups digits with regular, non-breaking or narrow spaces
	// and uses a comma as the decimal mark.
	var b strings.Builder
	for _, r := range cleaned {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		case r == '.':
			b.WriteRune(r)
		case r == ' ' || r == ' ' || r == ' ' || unicode.IsSpace(r):
			// group separator
		default:
			return nil, errors.NewValidationError("unparseable currency string: "+s, nil)
		}
	}

	value, err := decimal.NewFromString(b.String())
	if err != nil {
		return nil, errors.NewValidationError("unparseable currency string: "+s, err)
	}
	return &value, nil
}
