package service

import (
	"regexp"
	"strings"
)

// compileTerms builds one case-insensitive alternation over terms. Words inside a term
// match across any run of whitespace, so "sun pharma" also matches "Sun  Pharma"
// and "sunpharma". Returns nil when there is nothing to match.
func compileTerms(terms []string) *regexp.Regexp {
	alternatives := make([]string, 0, len(terms))
	for _, term := range terms {
		words := strings.Fields(strings.ToLower(term))
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alternatives = append(alternatives, strings.Join(words, `\s*`))
	}
	if len(alternatives) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alternatives, "|") + `)`)
}

func matches(re *regexp.Regexp, s string) bool {
	return re != nil && re.MatchString(s)
}
