package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/food-ordering/internal/model"
)

// MenuRepo provides CRUD over menu_items. Items are soft-disabled via
// the available flag rather than deleted, so order lines keep valid
// references forever.
type MenuRepo struct{ DB *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{DB: db} }

const menuColumns = "id, name, description, price, category, image, available, kitchen_code, created_at, updated_at"

// ListAvailable returns every orderable item, sorted for the menu
// view.
func (r *MenuRepo) ListAvailable(ctx context.Context) ([]*model.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE available=TRUE ORDER BY category, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

// GetByID fetches a single item regardless of availability.
func (r *MenuRepo) GetByID(ctx context.Context, id uint64) (*model.MenuItem, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE id=? LIMIT 1", id)
	it, err := scanMenuItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrMenuItemNotFound
	}
	return it, err
}

// Create inserts a new item and returns the stored record.
func (r *MenuRepo) Create(ctx context.Context, it *model.MenuItem) (*model.MenuItem, error) {
	var image, code any
	if it.Image != "" {
		image = it.Image
	}
	if it.KitchenCode != "" {
		code = it.KitchenCode
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO menu_items (name, description, price, category, image, available, kitchen_code) VALUES (?,?,?,?,?,?,?)",
		it.Name, it.Description, it.Price, it.Category, image, it.Available, code)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update rewrites the mutable columns of an item. The id must exist.
func (r *MenuRepo) Update(ctx context.Context, it *model.MenuItem) (*model.MenuItem, error) {
	var image any
	if it.Image != "" {
		image = it.Image
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE menu_items SET name=?, description=?, price=?, category=?, image=?, available=? WHERE id=?",
		it.Name, it.Description, it.Price, it.Category, image, it.Available, it.ID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero rows can also mean a no-op update; confirm existence.
		if _, err := r.GetByID(ctx, it.ID); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, it.ID)
}

// PopularItems returns the most-ordered available items, optionally
// restricted to one kitchen's menu.
func (r *MenuRepo) PopularItems(ctx context.Context, limit int, kitchenCode string) ([]*model.MenuItem, error) {
	query := `SELECT mi.id, mi.name, mi.description, mi.price, mi.category, mi.image, mi.available,
			mi.kitchen_code, mi.created_at, mi.updated_at
		FROM menu_items mi
		JOIN order_items oi ON oi.menu_item_id = mi.id
		WHERE mi.available=TRUE`
	args := []any{}
	if kitchenCode != "" {
		query += " AND mi.kitchen_code = ?"
		args = append(args, kitchenCode)
	}
	query += " GROUP BY mi.id ORDER BY COUNT(oi.id) DESC, mi.name LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

type rowScanner interface{ Scan(dest ...any) error }

func scanMenuItem(row rowScanner) (*model.MenuItem, error) {
	var (
		it          model.MenuItem
		image, code sql.NullString
	)
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category,
		&image, &it.Available, &code, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.Image = image.String
	it.KitchenCode = code.String
	return &it, nil
}

func scanMenuItems(rows *sql.Rows) ([]*model.MenuItem, error) {
	items := make([]*model.MenuItem, 0)
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
