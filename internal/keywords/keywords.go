// Package keywords implements ordered keyword dispatch tables: a list of
// rules evaluated top to bottom where the first rule whose keyword occurs in
// the input wins.
package keywords

import "strings"

// Rule maps a set of keywords to a fixed result list.
type Rule struct {
	Keywords []string
	Result   []string
}

// Matches reports whether any keyword occurs in text, ignoring case.
func (r Rule) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Table is an ordered list of rules.
type Table []Rule

// Lookup returns a copy of the first matching rule's result, or nil.
func (t Table) Lookup(text string) []string {
	for _, r := range t {
		if r.Matches(text) {
			return append([]string(nil), r.Result...)
		}
	}
	return nil
}
