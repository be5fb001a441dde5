package feeds

import (
	"strings"
	"testing"
)

func TestNormalize_TrimsAndStripsBOM(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \n\t ", ""},
		{"surrounding whitespace", "  <rss></rss>\n", "<rss></rss>"},
		{"utf-8 BOM", "\xEF\xBB\xBF<rss></rss>", "<rss></rss>"},
		{"BOM after whitespace trim", "\n\xEF\xBB\xBF<rss></rss>\n", "<rss></rss>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_ConvertsDeclaredEncoding(t *testing.T) {
	// "café" with é as the single ISO-8859-1 byte 0xE9.
	in := `<?xml version="1.0" encoding="ISO-8859-1"?><rss><channel><title>caf` + "\xe9" + `</title></channel></rss>`

	got := Normalize(in)
	if !strings.Contains(got, "café") {
		t.Fatalf("Normalize did not convert ISO-8859-1 text: %q", got)
	}
}

func TestNormalize_UTF8DeclarationUntouched(t *testing.T) {
	in := `<?xml version="1.0" encoding="UTF-8"?><rss><channel><title>café</title></channel></rss>`

	if got := Normalize(in); got != in {
		t.Fatalf("Normalize changed UTF-8 input:\n got %q\nwant %q", got, in)
	}
}

func TestNormalize_UnknownEncodingPassesThrough(t *testing.T) {
	in := `<?xml version="1.0" encoding="NOT-A-CHARSET"?><rss></rss>`

	if got := Normalize(in); got != in {
		t.Fatalf("Normalize changed input with bogus encoding:\n got %q\nwant %q", got, in)
	}
}

func TestNormalize_CaseInsensitiveDeclaration(t *testing.T) {
	in := `<?XML version="1.0" ENCODING='iso-8859-1'?><rss><channel><title>caf` + "\xe9" + `</title></channel></rss>`

	got := Normalize(in)
	if !strings.Contains(got, "café") {
		t.Fatalf("Normalize ignored case-variant declaration: %q", got)
	}
}
