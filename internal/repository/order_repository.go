package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/food-ordering/internal/model"
)

// OrderRepo provides persistence for orders and their line items.
// Reads return the denormalized view: the order row joined with the
// customer record, and each line joined with its menu item. All
// timestamps are stored in UTC.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

const orderSelect = `SELECT o.id, o.customer_id, o.status, o.total,
	o.customer_name, o.customer_phone, o.customer_address,
	o.created_at, o.updated_at,
	u.name, u.email, u.role, u.kitchen_code, u.created_at, u.updated_at
	FROM orders o
	LEFT JOIN users u ON u.id = o.customer_id`

const orderItemSelect = `SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.price,
	mi.name, mi.description, mi.price, mi.category, mi.image, mi.available, mi.kitchen_code
	FROM order_items oi
	LEFT JOIN menu_items mi ON mi.id = oi.menu_item_id`

// Create persists the order row and all line items in one transaction
// so a partial order can never be observed. On success the populated
// denormalized view is returned.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var address any
	if o.CustomerInfo.Address != "" {
		address = o.CustomerInfo.Address
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (customer_id, status, total, customer_name, customer_phone, customer_address)
		 VALUES (?,?,?,?,?,?)`,
		o.CustomerID, o.Status, o.Total, o.CustomerInfo.Name, o.CustomerInfo.Phone, address)
	if err != nil {
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if len(o.Items) > 0 {
		// Single multi-row insert for all lines.
		query := "INSERT INTO order_items (order_id, menu_item_id, quantity, price) VALUES "
		args := make([]any, 0, len(o.Items)*4)
		placeholders := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			placeholders = append(placeholders, "(?,?,?,?)")
			args = append(args, orderID, it.MenuItemID, it.Quantity, it.Price)
		}
		query += strings.Join(placeholders, ",")
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, uint64(orderID))
}

// GetByID returns one order with its customer and line items.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx, orderSelect+" WHERE o.id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	items, err := r.itemsFor(ctx, "WHERE oi.order_id=?", id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// ListByCustomer returns a customer's orders, newest first.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]*model.Order, error) {
	return r.list(ctx, " WHERE o.customer_id=? ORDER BY o.created_at DESC", customerID)
}

// ListAll returns every order, newest first. Used by the kitchen
// board.
func (r *OrderRepo) ListAll(ctx context.Context) ([]*model.Order, error) {
	return r.list(ctx, " ORDER BY o.created_at DESC")
}

// UpdateStatus atomically rewrites the status of one order. When two
// updates race, the database serializes them and the last write wins;
// there is no optimistic-concurrency check here. Returns the fresh
// view after the write.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (*model.Order, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status=?, updated_at=NOW() WHERE id=?", status, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the id is unknown or the status already matched;
		// GetByID disambiguates.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) list(ctx context.Context, suffix string, args ...any) ([]*model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, orderSelect+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*model.Order, 0)
	byID := make(map[uint64]*model.Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		o.Items = make([]*model.OrderItem, 0)
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]any, 0, len(orders))
	placeholders := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		placeholders = append(placeholders, "?")
	}
	items, err := r.itemsFor(ctx, "WHERE oi.order_id IN ("+strings.Join(placeholders, ",")+")", ids...)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return orders, nil
}

func (r *OrderRepo) itemsFor(ctx context.Context, where string, args ...any) ([]*model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx, orderItemSelect+" "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.OrderItem, 0)
	for rows.Next() {
		var (
			it      model.OrderItem
			miName  sql.NullString
			miDesc  sql.NullString
			miPrice sql.NullFloat64
			miCat   sql.NullString
			miImage sql.NullString
			miAvail sql.NullBool
			miCode  sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Quantity, &it.Price,
			&miName, &miDesc, &miPrice, &miCat, &miImage, &miAvail, &miCode); err != nil {
			return nil, err
		}
		if miName.Valid {
			it.MenuItem = &model.MenuItem{
				ID:          it.MenuItemID,
				Name:        miName.String,
				Description: miDesc.String,
				Price:       miPrice.Float64,
				Category:    miCat.String,
				Image:       miImage.String,
				Available:   miAvail.Bool,
				KitchenCode: miCode.String,
			}
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o        model.Order
		address  sql.NullString
		uName    sql.NullString
		uEmail   sql.NullString
		uRole    sql.NullString
		uCode    sql.NullString
		uCreated sql.NullTime
		uUpdated sql.NullTime
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.Status, &o.Total,
		&o.CustomerInfo.Name, &o.CustomerInfo.Phone, &address,
		&o.CreatedAt, &o.UpdatedAt,
		&uName, &uEmail, &uRole, &uCode, &uCreated, &uUpdated)
	if err != nil {
		return nil, err
	}
	o.CustomerInfo.Address = address.String
	if uName.Valid {
		o.Customer = &model.User{
			ID:          o.CustomerID,
			Name:        uName.String,
			Email:       uEmail.String,
			Role:        uRole.String,
			KitchenCode: uCode.String,
			CreatedAt:   uCreated.Time,
			UpdatedAt:   uUpdated.Time,
		}
	}
	return &o, nil
}
