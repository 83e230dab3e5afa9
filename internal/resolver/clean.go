package resolver

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are removed before the markup is sent to the model.
var noiseSelectors = []string{"script", "style", "noscript", "svg", "link", "meta", "iframe", "template"}

// CleanHTML strips elements that carry no form structure. Fragments (such as a
// single <form>) come back as fragments. Unparseable input is returned trimmed.
func CleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(out)
}

// Truncate cuts s to at most maxChars characters. maxChars <= 0 disables truncation.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
