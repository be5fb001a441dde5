package feeds

import (
	"regexp"
	"strings"
)

var markupTagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanSummary strips all markup tags from a summary and trims it. An
// absent or empty-after-cleaning summary stays absent.
func CleanSummary(summary *string) *string {
	if summary == nil {
		return nil
	}
	return stringValue(markupTagPattern.ReplaceAllString(*summary, ""))
}

// CleanContent trims content, preserving its markup. An absent or
// empty-after-trim content stays absent.
func CleanContent(content *string) *string {
	if content == nil {
		return nil
	}
	return stringValue(strings.TrimSpace(*content))
}
