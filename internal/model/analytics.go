package model

// Analytics is the dashboard summary returned by
// analytics.getDashboardStats. Revenue counts delivered orders only.
type Analytics struct {
	TotalOrders  int         `json:"totalOrders"`
	Revenue      float64     `json:"revenue"`
	OrdersToday  int         `json:"ordersToday"`
	PopularItems []*MenuItem `json:"popularItems"`
}
