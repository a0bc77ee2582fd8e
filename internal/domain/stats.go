package domain

// DashboardStats backs the admin dashboard summary.
type DashboardStats struct {
	Users    int64   `json:"users"`
	Products int64   `json:"products"`
	Orders   int64   `json:"orders"`
	Revenue  float64 `json:"revenue"`
}
