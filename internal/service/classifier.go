package service

import (
	"regexp"

	"github.com/finx/finx-pharma/internal/config"
	"github.com/finx/finx-pharma/internal/model"
)

// Classifier decides whether a query is in the pharma/equity domain and whether it
// explicitly asks for fresh web information. Safe for concurrent use.
type Classifier struct {
	domain    *regexp.Regexp
	webIntent *regexp.Regexp
}

// NewClassifier compiles the routing vocabulary. Entity aliases count as domain terms.
func NewClassifier(routing config.RoutingConfig) *Classifier {
	var domainTerms []string
	for _, e := range routing.Entities {
		domainTerms = append(domainTerms, e.Aliases...)
	}
	domainTerms = append(domainTerms, routing.DomainTerms...)

	return &Classifier{
		domain:    compileTerms(domainTerms),
		webIntent: compileTerms(routing.WebIntentTerms),
	}
}

// Classify matching is substring based and deliberately broad: a false positive only
// costs a retrieval that may come back empty.
func (c *Classifier) Classify(query string) model.ClassificationResult {
	return model.ClassificationResult{
		IsDomainQuery:     matches(c.domain, query),
		IsWebSearchIntent: matches(c.webIntent, query),
	}
}
