// Package feeds implements the fetch-and-normalize pipeline: downloading a
// subscribed RSS or Atom document, normalizing it to UTF-8, parsing both
// dialects into one transient model, deriving a stable identity per item,
// and handing the cleaned batch to storage in a single transaction.
package feeds

import (
	"regexp"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// encodingDecl matches the encoding attribute of an XML declaration at the
// start of the document.
var encodingDecl = regexp.MustCompile(`(?i)^<\?xml[^>]+encoding=["']([^"']+)["']`)

// Normalize prepares a raw response body for parsing: surrounding
// whitespace and a leading UTF-8 byte-order mark are removed, and when the
// XML declaration names an encoding other than UTF-8 the text is converted.
// Conversion is best-effort; a bogus declared encoding leaves the text
// unchanged rather than failing the fetch.
func Normalize(raw string) string {
	xml := strings.TrimSpace(raw)
	if xml == "" {
		return xml
	}

	xml = strings.TrimPrefix(xml, "\ufeff")

	if m := encodingDecl.FindStringSubmatch(xml); m != nil {
		name := strings.ToUpper(m[1])
		if name != "UTF-8" {
			if converted, err := convertToUTF8(xml, m[1]); err == nil {
				xml = converted
			}
		}
	}

	return strings.TrimSpace(xml)
}

// convertToUTF8 decodes text from the named charset into UTF-8.
func convertToUTF8(text, charset string) (string, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", err
	}

	converted, _, err := transform.String(enc.NewDecoder(), text)
	if err != nil {
		return "", err
	}
	return converted, nil
}
