package service

import (
	"regexp"

	"github.com/finx/finx-pharma/internal/config"
)

type entityPattern struct {
	namespace string
	pattern   *regexp.Regexp
}

// NamespaceResolver maps a query to the vector store partition of the first
// tracked company it mentions.
type NamespaceResolver struct {
	entities         []entityPattern // priority order
	defaultNamespace string
}

// NewNamespaceResolver keeps the configured entity order; it decides ties when a
// query names several companies.
func NewNamespaceResolver(routing config.RoutingConfig) *NamespaceResolver {
	r := &NamespaceResolver{defaultNamespace: routing.DefaultNamespace}
	for _, e := range routing.Entities {
		if e.Namespace == "" {
			continue
		}
		if re := compileTerms(e.Aliases); re != nil {
			r.entities = append(r.entities, entityPattern{namespace: e.Namespace, pattern: re})
		}
	}
	return r
}

// Resolve returns the namespace of the first matching entity, or the default.
func (r *NamespaceResolver) Resolve(query string) string {
	for _, e := range r.entities {
		if e.pattern.MatchString(query) {
			return e.namespace
		}
	}
	return r.defaultNamespace
}

// Default returns the namespace used when a query names no tracked company.
func (r *NamespaceResolver) Default() string {
	return r.defaultNamespace
}
