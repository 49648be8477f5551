package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/food-ordering/internal/model"
)

var testTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func orderColumns() []string {
	return []string{
		"o.id", "o.customer_id", "o.status", "o.total",
		"o.customer_name", "o.customer_phone", "o.customer_address",
		"o.created_at", "o.updated_at",
		"u.name", "u.email", "u.role", "u.kitchen_code", "u.created_at", "u.updated_at",
	}
}

func itemColumns() []string {
	return []string{
		"oi.id", "oi.order_id", "oi.menu_item_id", "oi.quantity", "oi.price",
		"mi.name", "mi.description", "mi.price", "mi.category", "mi.image", "mi.available", "mi.kitchen_code",
	}
}

func sampleOrderRow(id uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows(orderColumns()).AddRow(
		id, 7, status, 25.00,
		"John Customer", "555-0101", "123 Main St",
		testTime, testTime,
		"John Customer", "customer@example.com", "customer", nil, testTime, testTime,
	)
}

func TestOrderRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewOrderRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(uint64(7), model.StatusPending, 25.00, "John Customer", "555-0101", "123 Main St").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(5), uint64(1), 2, 10.00, int64(5), uint64(2), 1, 5.00).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	// Create re-reads the committed order.
	mock.ExpectQuery("FROM orders o").WithArgs(uint64(5)).
		WillReturnRows(sampleOrderRow(5, "pending"))
	mock.ExpectQuery("FROM order_items oi").WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(itemColumns()).
			AddRow(11, 5, 1, 2, 10.00, "Margherita Pizza", "Classic", 10.00, "Pizza", "", true, "MAIN_KITCHEN").
			AddRow(12, 5, 2, 1, 5.00, "Tiramisu", "Dessert", 5.00, "Desserts", "", true, "MAIN_KITCHEN"))

	order, err := repo.Create(context.Background(), &model.Order{
		CustomerID: 7,
		Status:     model.StatusPending,
		Total:      25.00,
		CustomerInfo: model.CustomerInfo{
			Name: "John Customer", Phone: "555-0101", Address: "123 Main St",
		},
		Items: []*model.OrderItem{
			{MenuItemID: 1, Quantity: 2, Price: 10.00},
			{MenuItemID: 2, Quantity: 1, Price: 5.00},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if order.ID != 5 {
		t.Errorf("expected id 5, got %d", order.ID)
	}
	if len(order.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(order.Items))
	}
	if order.Items[0].MenuItem == nil || order.Items[0].MenuItem.Name != "Margherita Pizza" {
		t.Errorf("expected joined menu item on first line, got %+v", order.Items[0].MenuItem)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestOrderRepoCreateRollsBackOnItemFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewOrderRepo(db)

	boom := errors.New("duplicate entry")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(boom)
	mock.ExpectRollback()

	_, err = repo.Create(context.Background(), &model.Order{
		CustomerID:   7,
		Status:       model.StatusPending,
		Total:        10.00,
		CustomerInfo: model.CustomerInfo{Name: "John", Phone: "555-0101"},
		Items:        []*model.OrderItem{{MenuItemID: 1, Quantity: 1, Price: 10.00}},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected item insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestOrderRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewOrderRepo(db)

	mock.ExpectQuery("FROM orders o").WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(orderColumns()))

	_, err = repo.GetByID(context.Background(), 42)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepoUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewOrderRepo(db)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(model.StatusConfirmed, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM orders o").WithArgs(uint64(5)).
		WillReturnRows(sampleOrderRow(5, "confirmed"))
	mock.ExpectQuery("FROM order_items oi").WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(itemColumns()))

	order, err := repo.UpdateStatus(context.Background(), 5, model.StatusConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if order.Status != model.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", order.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestOrderRepoUpdateStatusUnknownOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewOrderRepo(db)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(model.StatusConfirmed, uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM orders o").WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(orderColumns()))

	_, err = repo.UpdateStatus(context.Background(), 42, model.StatusConfirmed)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepoListByCustomerBatchesItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewOrderRepo(db)

	rows := sqlmock.NewRows(orderColumns()).
		AddRow(9, 7, "delivered", 25.00, "John", "555-0101", nil, testTime, testTime,
			"John", "customer@example.com", "customer", nil, testTime, testTime).
		AddRow(5, 7, "pending", 10.00, "John", "555-0101", nil, testTime, testTime,
			"John", "customer@example.com", "customer", nil, testTime, testTime)
	mock.ExpectQuery("FROM orders o").WithArgs(uint64(7)).WillReturnRows(rows)

	// One IN query fetches the lines for every listed order.
	mock.ExpectQuery("oi.order_id IN").WithArgs(uint64(9), uint64(5)).
		WillReturnRows(sqlmock.NewRows(itemColumns()).
			AddRow(21, 9, 1, 2, 10.00, "Margherita Pizza", "", 10.00, "Pizza", "", true, "MAIN_KITCHEN").
			AddRow(22, 5, 2, 1, 5.00, "Tiramisu", "", 5.00, "Desserts", "", true, "MAIN_KITCHEN"))

	orders, err := repo.ListByCustomer(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByCustomer failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != 9 || orders[1].ID != 5 {
		t.Errorf("expected order ids [9 5], got [%d %d]", orders[0].ID, orders[1].ID)
	}
	if len(orders[0].Items) != 1 || orders[0].Items[0].OrderID != 9 {
		t.Errorf("items not grouped onto the right order: %+v", orders[0].Items)
	}
	if len(orders[1].Items) != 1 || orders[1].Items[0].OrderID != 5 {
		t.Errorf("items not grouped onto the right order: %+v", orders[1].Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
