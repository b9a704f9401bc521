package merge

import (
	"fmt"
	"strings"
)

// Strategy decides how a main row is paired with a secondary row.
type Strategy string

const (
	StrategyExactName      Strategy = "exact-name"
	StrategyNormalizedName Strategy = "normalized-name"
	StrategyLinkedInURL    Strategy = "linkedin-url"

	DefaultStrategy = StrategyNormalizedName
)

var strategyAliases = map[string]Strategy{
	"exact":      StrategyExactName,
	"name":       StrategyExactName,
	"lead-name":  StrategyNormalizedName,
	"normalized": StrategyNormalizedName,
	"fuzzy-name": StrategyNormalizedName,
	"linkedin":   StrategyLinkedInURL,
	"url":        StrategyLinkedInURL,
}

func ParseStrategy(s string) (Strategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultStrategy, nil
	}
	switch Strategy(s) {
	case StrategyExactName, StrategyNormalizedName, StrategyLinkedInURL:
		return Strategy(s), nil
	}
	if alias, ok := strategyAliases[s]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("unknown match strategy %q", s)
}

func (s Strategy) Valid() bool {
	switch s {
	case StrategyExactName, StrategyNormalizedName, StrategyLinkedInURL:
		return true
	}
	return false
}

// NormalizeKey maps a raw cell to the lookup key. Blank input yields "" which never matches.
func (s Strategy) NormalizeKey(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	switch s {
	case StrategyNormalizedName:
		return NormalizeName(raw)
	case StrategyLinkedInURL:
		return NormalizeLinkedInURL(raw)
	default:
		return raw
	}
}

// keyCandidates are header names tried when no key column is configured.
func (s Strategy) keyCandidates() []string {
	if s == StrategyLinkedInURL {
		return []string{"linkedin", "linkedin url", "perfil linkedin", "linkedin profile", "profile url", "url"}
	}
	return []string{"name", "nome", "lead", "lead name", "full name", "nome completo"}
}

// NormalizeName lowercases and collapses runs of whitespace.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// NormalizeLinkedInURL strips scheme, www, query, fragment and trailing slashes, then lowercases.
func NormalizeLinkedInURL(s string) string {
	u := strings.ToLower(strings.TrimSpace(s))
	for _, scheme := range []string{"https://", "http://"} {
		u = strings.TrimPrefix(u, scheme)
	}
	u = strings.TrimPrefix(u, "www.")
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}
