package util

import (
	"fmt"
	"math"
)

var prefixes = []struct {
	scale  float64
	symbol string
}{
	{1e6, "M"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
}

// FormatValueFactor prints value with the SI prefix that keeps the mantissa
// in [1, 1000).
func FormatValueFactor(value float64, unit string) string {
	if value == 0 {
		return fmt.Sprintf("%.3f %s", value, unit)
	}
	absValue := math.Abs(value)
	for _, p := range prefixes {
		if absValue >= p.scale {
			return fmt.Sprintf("%.3f %s%s", value/p.scale, p.symbol, unit)
		}
	}
	return fmt.Sprintf("%.3e %s", value, unit)
}

func FormatFrequency(freq float64) string {
	switch {
	case freq >= 1e6:
		return fmt.Sprintf("%7.3f MHz", freq/1e6)
	case freq >= 1e3:
		return fmt.Sprintf("%7.3f kHz", freq/1e3)
	default:
		return fmt.Sprintf("%7.3f Hz ", freq)
	}
}

// FormatPhasor prints name=magnitude<phase with the magnitude in unit.
func FormatPhasor(name string, mag, phase float64, unit string) string {
	return fmt.Sprintf("%s=%s<%6.1fdeg", name, FormatValueFactor(mag, unit), phase)
}
