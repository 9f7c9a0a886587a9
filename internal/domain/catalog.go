package domain

import "strings"

// CatalogKind names one of the lookup tables referenced by tickets.
type CatalogKind string

const (
	CatalogCategory    CatalogKind = "category"
	CatalogCriticality CatalogKind = "criticality"
	CatalogLocation    CatalogKind = "location"
	CatalogState       CatalogKind = "state"
)

// CatalogKinds lists every lookup table.
var CatalogKinds = []CatalogKind{CatalogCategory, CatalogCriticality, CatalogLocation, CatalogState}

// CatalogEntry is a row of a lookup table. Description holds the responsible
// unit for categories and the long description for states.
type CatalogEntry struct {
	ID          int64
	Name        string
	Description *string
}

// Role is an entry of the closed role catalog.
type Role struct {
	ID   int64
	Name string
}

// MatchesName reports whether name equals one of candidates, ignoring case and
// surrounding spaces.
func MatchesName(name string, candidates []string) bool {
	name = strings.TrimSpace(name)
	for _, candidate := range candidates {
		if strings.EqualFold(name, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}
