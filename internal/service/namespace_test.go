package service

import (
	"testing"

	"github.com/finx/finx-pharma/internal/config"
)

func TestNamespaceResolverResolve(t *testing.T) {
	r := NewNamespaceResolver(config.DefaultRoutingConfig())

	tests := []struct {
		query string
		want  string
	}{
		{"What is Cipla's latest revenue?", "cipla"},
		{"CIPLA", "cipla"},
		{"Sun Pharma specialty business", "sunpharma"},
		{"sunpharma", "sunpharma"},
		{"Sun Pharmaceutical Industries", "sunpharma"},
		{"Dr Reddy's Q2", "drreddy"},
		{"dr. reddy", "drreddy"},
		{"compare Cipla and Sun Pharma", "cipla"},
		{"Sun Pharma vs Dr Reddy", "sunpharma"},
		{"pharma sector outlook", "drreddy"},
		{"", "drreddy"},
	}

	for _, tt := range tests {
		if got := r.Resolve(tt.query); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestNamespaceResolverConfiguredDefault(t *testing.T) {
	routing := config.DefaultRoutingConfig()
	routing.DefaultNamespace = "industry"
	r := NewNamespaceResolver(routing)

	if got := r.Resolve("generic drug pricing"); got != "industry" {
		t.Errorf("Resolve() = %q, want configured default", got)
	}
	if r.Default() != "industry" {
		t.Errorf("Default() = %q", r.Default())
	}
}
