package pipeline

import (
	"regexp"
	"strings"
)

// The generator occasionally leaks prompt-template syntax into the
// message. These are the tokens observed in production output; anything
// still bracketed after the known replacements is collapsed too.
var knownPlaceholders = []string{
	"[Nome del Negozio",
	"Nome del Negozio",
	"{shop_name}",
	"{name}",
}

var bracketRe = regexp.MustCompile(`\[.*?\]`)

// sanitize substitutes the shop name for any unresolved template
// placeholder in the generated text.
func sanitize(text, shopName string) string {
	for _, token := range knownPlaceholders {
		text = strings.ReplaceAll(text, token, shopName)
	}
	text = bracketRe.ReplaceAllString(text, shopName)
	return strings.TrimSpace(text)
}
