package scrape

import "strings"

const (
	contentsStart = "<!-- START OF CONTENTS -->"
	contentsEnd   = "<!-- END OF CONTENTS -->"
)

// StormMapPath returns the src of the first <img id=...> inside the content
// area of the NHC homepage. The result is usually a site-relative path.
func StormMapPath(page string) (string, bool) {
	c := NewCursor(page)
	if !c.Skip(contentsStart) {
		return "", false
	}
	area, ok := c.Take(contentsEnd)
	if !ok {
		area = c.Rest()
	}

	ac := NewCursor(area)
	if !ac.Seek("<img id=") {
		return "", false
	}
	tag, ok := ac.Take(">")
	if !ok {
		return "", false
	}

	tc := NewCursor(tag)
	if !tc.Skip("src=") {
		return "", false
	}
	link, ok := tc.Take("useMap=")
	if !ok {
		link = tc.Rest()
	}
	link = strings.NewReplacer("'", "", `"`, "").Replace(link)
	link = strings.TrimSpace(link)
	return link, link != ""
}
