package domain

type RoleCount struct {
	Role  UserRole `db:"role" json:"role"`
	Count int64    `db:"count" json:"count"`
}

type DashboardStats struct {
	TotalUsers         int64              `json:"totalUsers"`
	ActiveUsers        int64              `json:"activeUsers"`
	UsersByRole        map[UserRole]int64 `json:"usersByRole"`
	TotalTrips         int64              `json:"totalTrips"`
	TotalWishlistSpots int64              `json:"totalWishlistSpots"`
	TotalNotifications int64              `json:"totalNotifications"`
	RecentUsers        []User             `json:"recentUsers"`
}
