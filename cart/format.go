/*
format.go - Numeric display formatting

PURPOSE:
  Formatting is a display concern, kept out of the arithmetic. All cart
  math runs on raw decimals; FormatValue renders a decimal for receipts
  per the cart's configuration (decimal count, decimal point, thousands
  separator).

SEE ALSO:
  - totals.go: Formatted total accessors
*/
package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatConfig controls numeric display formatting.
type FormatConfig struct {
	Decimals      int    `json:"decimals" yaml:"decimals"`
	DecimalPoint  string `json:"decimal_point" yaml:"decimal_point"`
	ThousandsSep  string `json:"thousands_sep" yaml:"thousands_sep"`
	FormatNumbers bool   `json:"format_numbers" yaml:"format_numbers"`
}

// DefaultFormat is two decimals, "." point, "," separator, formatting on.
func DefaultFormat() FormatConfig {
	return FormatConfig{
		Decimals:      2,
		DecimalPoint:  ".",
		ThousandsSep:  ",",
		FormatNumbers: true,
	}
}

// FormatValue renders v per cfg. With FormatNumbers disabled the raw
// decimal string is returned unchanged.
func FormatValue(v decimal.Decimal, cfg FormatConfig) string {
	if !cfg.FormatNumbers {
		return v.String()
	}

	s := v.StringFixed(int32(cfg.Decimals))
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := strings.Join(groups, cfg.ThousandsSep)
	if cfg.Decimals > 0 {
		out += cfg.DecimalPoint + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
