package dto

// CatalogResponse is a lookup table row.
type CatalogResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// RoleResponse is a role catalog row.
type RoleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NamedCountResponse is a catalog row with its ticket count.
type NamedCountResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DashboardResponse aggregates ticket counts.
type DashboardResponse struct {
	Total         int64                `json:"total"`
	OpenCount     int64                `json:"open_count"`
	ClosedCount   int64                `json:"closed_count"`
	ByState       []NamedCountResponse `json:"by_state"`
	ByCriticality []NamedCountResponse `json:"by_criticality"`
}
