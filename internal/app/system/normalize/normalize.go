// Package normalize cleans user-supplied strings before validation and
// storage.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses internal runs of whitespace. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Username trims and lowercases a staff username.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PostalCode trims, collapses whitespace and uppercases.
func PostalCode(s string) string {
	return strings.ToUpper(Name(s))
}

// QueryParam trims a query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Filter trims a filter value; "all" (any case) means no filter and becomes "".
func Filter(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}
