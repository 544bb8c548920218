package kuma

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"statusmirror/internal/domain"
)

const (
	// Current upstream versions render the payload as the text content of a
	// dedicated element.
	preloadElementSelector = "#preload-data"

	// Older versions assign it to a global inside an inline script.
	preloadGlobalMarker = "window.preloadData"

	snippetLimit = 240
)

// extractor is one strategy for finding the embedded payload. Strategies are
// tried in order, first non-empty result wins; adding a third upstream
// convention means appending here, not growing a conditional.
type extractor struct {
	name string
	fn   func(doc *goquery.Document) (string, bool)
}

var extractors = []extractor{
	{name: "preload-element", fn: extractPreloadElement},
	{name: "window-global", fn: extractWindowGlobal},
}

// LocatePreload finds the raw preload payload text inside the fetched HTML.
// On failure it returns a *domain.PayloadNotFoundError carrying a head
// snippet and the script ids that were scanned.
func LocatePreload(endpoint, html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", &domain.PayloadNotFoundError{
			Endpoint: endpoint,
			Snippet:  headSnippet(html),
		}
	}

	for _, ex := range extractors {
		if raw, ok := ex.fn(doc); ok {
			return raw, nil
		}
	}

	return "", &domain.PayloadNotFoundError{
		Endpoint:  endpoint,
		Snippet:   headSnippet(html),
		ScriptIDs: scriptIDs(doc),
	}
}

func extractPreloadElement(doc *goquery.Document) (string, bool) {
	text := strings.TrimSpace(doc.Find(preloadElementSelector).Text())
	return text, text != ""
}

func extractWindowGlobal(doc *goquery.Document) (string, bool) {
	var raw string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		at := strings.Index(text, preloadGlobalMarker)
		if at < 0 {
			return true
		}
		obj, ok := extractObjectLiteral(text[at+len(preloadGlobalMarker):])
		if !ok {
			return true
		}
		raw = obj
		return false
	})
	return raw, raw != ""
}

// extractObjectLiteral captures from the first '{' after the assignment to
// its balanced closing '}'. A real brace-balance scan is required here: the
// payload routinely contains braces inside string values, which defeats any
// single greedy regex.
func extractObjectLiteral(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '"', '\'', '`':
			i = skipJSString(s, i) - 1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// skipJSString returns the index just past the string literal opening at i.
func skipJSString(s string, i int) int {
	quote := s[i]
	i++
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return i
}

func headSnippet(html string) string {
	html = strings.TrimSpace(html)
	if len(html) > snippetLimit {
		return html[:snippetLimit]
	}
	return html
}

func scriptIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok && id != "" {
			ids = append(ids, id)
		}
	})
	return ids
}
