package scrape

import (
	"html"
	"strings"
)

// textPods are tried first; their first <plaintext> is the answer.
var textPods = []string{"Result", "Current result", "Table"}

// imagePods are tried when no text pod exists; the answer is the image src.
var imagePods = []string{"Plot", "Plots"}

// WolframAnswer extracts the answer from a Wolfram|Alpha v2 query response.
func WolframAnswer(doc string) (string, bool) {
	for _, title := range textPods {
		c := NewCursor(doc)
		if !c.Skip("<pod title='" + title + "'") {
			continue
		}
		if !c.Skip("<plaintext>") {
			return "", false
		}
		text, ok := c.Take("</plaintext")
		if !ok {
			return "", false
		}
		text = strings.TrimSpace(html.UnescapeString(text))
		return text, text != ""
	}

	for _, title := range imagePods {
		c := NewCursor(doc)
		if !c.Skip("<pod title='" + title + "'") {
			continue
		}
		if !c.Skip("src='") {
			return "", false
		}
		src, ok := c.Take("'")
		if !ok {
			return "", false
		}
		src = strings.TrimSpace(html.UnescapeString(src))
		return src, src != ""
	}
	return "", false
}
