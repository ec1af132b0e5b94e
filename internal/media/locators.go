package media

import (
	"regexp"
	"strings"
)

var urlRe = regexp.MustCompile(`https?://[^\s]+`)

// Known media hosts whose presence switches input handling from search
// query to direct locator extraction.
var mediaHosts = []string{"youtube.com", "youtu.be"}

// ExtractLocators returns every URL-like substring of text in order of
// appearance.
func ExtractLocators(text string) []string {
	return urlRe.FindAllString(text, -1)
}

// ContainsMediaURL reports whether text mentions a recognizable media host.
func ContainsMediaURL(text string) bool {
	lowered := strings.ToLower(text)
	for _, host := range mediaHosts {
		if strings.Contains(lowered, host) {
			return true
		}
	}
	return false
}
