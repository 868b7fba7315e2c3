package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleTR colapsa espacios y aplica title-case turco
// ("İSTANBUL" -> "İstanbul", "ŞANLIURFA" -> "Şanlıurfa").
func TitleTR(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// cases.Caser no es seguro para uso concurrente: uno por llamada.
	return cases.Title(language.Turkish).String(s)
}

// LowerTR: minúsculas con reglas turcas (I -> ı, İ -> i).
func LowerTR(s string) string {
	return cases.Lower(language.Turkish).String(s)
}

var asciiFold = strings.NewReplacer(
	"ç", "c", "ğ", "g", "ı", "i", "ö", "o", "ş", "s", "ü", "u",
	"â", "a", "î", "i", "û", "u",
)

// Slug arma un slug ASCII: "Kedi Maması (Yetişkin)" -> "kedi-mamasi-yetiskin".
func Slug(s string) string {
	s = asciiFold.Replace(LowerTR(strings.TrimSpace(s)))

	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
