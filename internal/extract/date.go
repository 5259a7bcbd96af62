package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// apDateLayout is the fixed output format for publication dates,
// matching AP style (e.g. "Feb. 21, 2025").
const apDateLayout = "Jan. 02, 2006"

// dateTextWindow bounds the pattern search over body text.
const dateTextWindow = 1000

// datePatterns are tried in order over the body-text window: month-name
// dates, MM/DD/YYYY, MM-DD-YYYY, YYYY-MM-DD.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`),
}

// monthNameLayouts cover AP-style month-name dates that the permissive
// parser does not always accept.
var monthNameLayouts = []string{
	"Jan. 2, 2006",
	"Jan. 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"January 2 2006",
}

// resolveDate walks the date strategy chain, first success wins. The
// boolean reports whether a real date was found; when false the
// returned value is the current processing date, a low-confidence
// signal for callers.
func (e *Extractor) resolveDate(published *time.Time, doc *goquery.Document, text string) (string, bool) {
	// Tier 1: structured publish date from the parsed document.
	if published != nil && !published.IsZero() {
		return published.Format(apDateLayout), true
	}
	if date, ok := structuredDate(doc); ok {
		return date, true
	}

	// Tier 2: date-like metadata tags.
	if date, ok := dateFromMetadata(doc); ok {
		return date, true
	}

	// Tier 3: pattern search over the start of the body text.
	if date, ok := dateFromText(text); ok {
		return date, true
	}

	// Tier 4: current processing date, last resort.
	return e.now().Format(apDateLayout), false
}

// structuredDate reads the explicit publish-date carriers: the
// article:published_time meta property and <time datetime> attributes.
func structuredDate(doc *goquery.Document) (string, bool) {
	if content, ok := doc.Find("meta[property='article:published_time']").Attr("content"); ok {
		if parsed, err := parseLooseDate(content); err == nil {
			return parsed.Format(apDateLayout), true
		}
	}
	if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if parsed, err := parseLooseDate(datetime); err == nil {
			return parsed.Format(apDateLayout), true
		}
	}
	return "", false
}

// dateFromMetadata scans meta tags whose name or property resembles a
// publication date and parses the first value that succeeds.
func dateFromMetadata(doc *goquery.Document) (string, bool) {
	result := ""
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		key, _ := s.Attr("name")
		if key == "" {
			key, _ = s.Attr("property")
		}
		key = strings.ToLower(key)
		if !strings.Contains(key, "date") {
			return true
		}
		content, _ := s.Attr("content")
		if parsed, err := parseLooseDate(content); err == nil {
			result = parsed.Format(apDateLayout)
			return false
		}
		return true
	})
	return result, result != ""
}

// dateFromText searches the first dateTextWindow characters of the body
// text with each pattern in order; the first match that also parses
// wins.
func dateFromText(text string) (string, bool) {
	sample := text
	if len(sample) > dateTextWindow {
		sample = sample[:dateTextWindow]
	}

	for _, pattern := range datePatterns {
		for _, match := range pattern.FindAllString(sample, -1) {
			if parsed, err := parseLooseDate(match); err == nil {
				return parsed.Format(apDateLayout), true
			}
		}
	}
	return "", false
}

// parseLooseDate parses a date string permissively: explicit AP-style
// month-name layouts first, then natural-language parsing.
func parseLooseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range monthNameLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return dateparse.ParseAny(value)
}
