package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/food-ordering/internal/model"
)

// AnalyticsRepo computes the dashboard aggregates. When a kitchen code
// is given, the counts are restricted to that kitchen's menu items;
// an empty code aggregates over everything (admin view).
type AnalyticsRepo struct {
	DB   *sql.DB
	Menu *MenuRepo
}

func NewAnalyticsRepo(db *sql.DB, menu *MenuRepo) *AnalyticsRepo {
	return &AnalyticsRepo{DB: db, Menu: menu}
}

const popularItemLimit = 5

// DashboardStats returns order totals, delivered revenue, today's
// order count and the most popular items.
func (r *AnalyticsRepo) DashboardStats(ctx context.Context, kitchenCode string) (*model.Analytics, error) {
	var (
		stats  model.Analytics
		filter string
		args   []any
	)
	if kitchenCode != "" {
		// Scope orders to those containing the kitchen's items.
		filter = ` WHERE EXISTS (
			SELECT 1 FROM order_items oi
			JOIN menu_items mi ON mi.id = oi.menu_item_id
			WHERE oi.order_id = o.id AND mi.kitchen_code = ?)`
		args = []any{kitchenCode}
	}

	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders o"+filter, args...).Scan(&stats.TotalOrders); err != nil {
		return nil, err
	}

	revQuery := "SELECT COALESCE(SUM(o.total), 0) FROM orders o"
	revArgs := []any{}
	if filter != "" {
		revQuery += filter + " AND o.status = ?"
		revArgs = append(revArgs, kitchenCode, model.StatusDelivered)
	} else {
		revQuery += " WHERE o.status = ?"
		revArgs = append(revArgs, model.StatusDelivered)
	}
	if err := r.DB.QueryRowContext(ctx, revQuery, revArgs...).Scan(&stats.Revenue); err != nil {
		return nil, err
	}

	todayQuery := "SELECT COUNT(*) FROM orders o"
	todayArgs := []any{}
	if filter != "" {
		todayQuery += filter + " AND DATE(o.created_at) = CURDATE()"
		todayArgs = append(todayArgs, kitchenCode)
	} else {
		todayQuery += " WHERE DATE(o.created_at) = CURDATE()"
	}
	if err := r.DB.QueryRowContext(ctx, todayQuery, todayArgs...).Scan(&stats.OrdersToday); err != nil {
		return nil, err
	}

	popular, err := r.Menu.PopularItems(ctx, popularItemLimit, kitchenCode)
	if err != nil {
		return nil, err
	}
	stats.PopularItems = popular
	return &stats, nil
}
