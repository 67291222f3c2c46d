package domain

// Counts are the entity totals shown on the dashboard.
type Counts struct {
	Branches       int
	Rooms          int
	AvailableRooms int
	RentedRooms    int
	Tenants        int
}

// MonthRevenue is one point of the revenue chart.
type MonthRevenue struct {
	Year    int
	Month   int
	Revenue int64
}

// Dashboard is the administrator overview.
type Dashboard struct {
	Counts
	RevenueThisMonth int64
	DebtThisMonth    int64
	Chart            []MonthRevenue
}
