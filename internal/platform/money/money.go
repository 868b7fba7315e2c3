package money

import (
	"strconv"
	"strings"
)

// Format muestra kuruş como TL con separadores turcos: 123456 -> "1.234,56 ₺".
func Format(kurus int64) string {
	neg := kurus < 0
	if neg {
		kurus = -kurus
	}

	lira := strconv.FormatInt(kurus/100, 10)
	frac := kurus % 100

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range lira {
		if i > 0 && (len(lira)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	b.WriteString(" ₺")
	return b.String()
}

// ParseLira acepta "1234,56", "1.234,56" o "1234.56" y devuelve kuruş.
func ParseLira(s string) (int64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "₺"))
	s = strings.TrimSpace(strings.TrimSuffix(s, "TL"))
	if s == "" {
		return 0, false
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, false
	}
	var f int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, false
		}
		if len(frac) == 1 {
			frac += "0"
		}
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, false
		}
	}
	return w*100 + f, true
}
