package domain

// NamedCount is a catalog row with the number of tickets pointing at it.
type NamedCount struct {
	ID    int64
	Name  string
	Count int64
}

// DashboardStats aggregates ticket counts. Open and Closed always sum to Total.
type DashboardStats struct {
	Total         int64
	Open          int64
	Closed        int64
	ByState       []NamedCount
	ByCriticality []NamedCount
}
