package textnorm

import "testing"

func TestTitleTR(t *testing.T) {
	cases := map[string]string{
		"İSTANBUL":              "İstanbul",
		"ŞANLIURFA":             "Şanlıurfa",
		"  golden   retriever ": "Golden Retriever",
		"":                      "",
	}
	for in, want := range cases {
		if got := TitleTR(in); got != want {
			t.Fatalf("TitleTR(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Kedi Maması (Yetişkin)": "kedi-mamasi-yetiskin",
		"KÖPEK TASMASI":          "kopek-tasmasi",
		"  --Çiğ  Ürün-- ":       "cig-urun",
		"İç Mekan 2kg":           "ic-mekan-2kg",
		"!!!":                    "",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
