package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mnavarro-dev/pedidos-service/internal/model"
	"github.com/mnavarro-dev/pedidos-service/internal/order"
)

// stateTimestampColumns maps each state to its dedicated timestamp
// column. Pending and cancelled intentionally have none.
var stateTimestampColumns = map[model.OrderState]string{
	model.StatePaid:      "paid_at",
	model.StatePreparing: "preparing_at",
	model.StateShipped:   "shipped_at",
	model.StateDelivered: "delivered_at",
}

type MySQLRepository struct {
	DB *sqlx.DB
}

func NewMySQLRepository(db *sqlx.DB) *MySQLRepository {
	return &MySQLRepository{DB: db}
}

func (r *MySQLRepository) InsertOrder(ctx context.Context, tx *sqlx.Tx, o *model.Order) (int64, error) {
	query := `
        INSERT INTO orders (
            order_number, user_id, subtotal, shipping_cost, discount, tax, total,
            state, payment_method, payment_reference, delivery_mode, pickup_location_id,
            receiver_name, delivery_address, delivery_commune, delivery_city,
            delivery_region, contact_phone, delivery_instructions, created_at
        ) VALUES (
            :order_number, :user_id, :subtotal, :shipping_cost, :discount, :tax, :total,
            :state, :payment_method, :payment_reference, :delivery_mode, :pickup_location_id,
            :receiver_name, :delivery_address, :delivery_commune, :delivery_city,
            :delivery_region, :contact_phone, :delivery_instructions, :created_at
        )
    `

	res, err := tx.NamedExecContext(ctx, query, o)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return 0, errors.Wrapf(order.ErrDuplicateNumber, "number %s", o.OrderNumber)
		}
		return 0, errors.Wrapf(err, "insert order %s", o.OrderNumber)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "order insert id")
	}
	return id, nil
}

func (r *MySQLRepository) InsertItems(ctx context.Context, tx *sqlx.Tx, orderID int64, items []model.OrderItem) error {
	query := `
        INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, subtotal)
        VALUES (:order_id, :product_id, :product_name, :quantity, :unit_price, :subtotal)
    `

	for i := range items {
		items[i].OrderID = orderID
		if _, err := tx.NamedExecContext(ctx, query, items[i]); err != nil {
			return errors.Wrapf(err, "insert item product %d for order %d", items[i].ProductID, orderID)
		}
	}
	return nil
}

func (r *MySQLRepository) InsertHistory(ctx context.Context, tx *sqlx.Tx, entry *model.StatusHistoryEntry) error {
	query := `
        INSERT INTO order_status_history (order_id, previous_state, new_state, comment, created_at)
        VALUES (:order_id, :previous_state, :new_state, :comment, :created_at)
    `

	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		return errors.Wrapf(err, "insert history for order %d", entry.OrderID)
	}
	return nil
}

func (r *MySQLRepository) CountCreatedOn(ctx context.Context, tx *sqlx.Tx, day time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM orders WHERE DATE(created_at) = DATE(?)`

	if err := tx.GetContext(ctx, &count, query, day); err != nil {
		return 0, errors.Wrap(err, "count orders created today")
	}
	return count, nil
}

func (r *MySQLRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Order, error) {
	var o model.Order
	query := `SELECT id, order_number, state FROM orders WHERE id = ? FOR UPDATE`

	if err := tx.GetContext(ctx, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "lock order %d", id)
	}
	return &o, nil
}

func (r *MySQLRepository) UpdateState(ctx context.Context, tx *sqlx.Tx, id int64, state model.OrderState, at time.Time) error {
	query := `UPDATE orders SET state = ? WHERE id = ?`
	args := []interface{}{state, id}

	if column, ok := stateTimestampColumns[state]; ok {
		query = fmt.Sprintf(`UPDATE orders SET state = ?, %s = ? WHERE id = ?`, column)
		args = []interface{}{state, at, id}
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "update order %d to state %s", id, state)
	}
	return nil
}

func (r *MySQLRepository) ItemsByOrder(ctx context.Context, tx *sqlx.Tx, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	query := `SELECT * FROM order_items WHERE order_id = ?`

	if err := tx.SelectContext(ctx, &items, query, orderID); err != nil {
		return nil, errors.Wrapf(err, "items for order %d", orderID)
	}
	return items, nil
}

func (r *MySQLRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var o model.Order
	if err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get order %d", id)
	}

	if err := r.attachDetails(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MySQLRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	var o model.Order
	if err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE order_number = ?`, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get order %s", number)
	}

	if err := r.attachDetails(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MySQLRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	var list []model.Order
	query := `SELECT * FROM orders WHERE user_id = ? ORDER BY created_at DESC`

	if err := r.DB.SelectContext(ctx, &list, query, userID); err != nil {
		return nil, errors.Wrapf(err, "orders for user %d", userID)
	}

	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *MySQLRepository) ListByState(ctx context.Context, state model.OrderState) ([]model.Order, error) {
	var list []model.Order
	query := `SELECT * FROM orders WHERE state = ? ORDER BY created_at DESC`

	if err := r.DB.SelectContext(ctx, &list, query, state); err != nil {
		return nil, errors.Wrapf(err, "orders in state %s", state)
	}

	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *MySQLRepository) attachDetails(ctx context.Context, o *model.Order) error {
	itemsQuery := `SELECT * FROM order_items WHERE order_id = ?`
	if err := r.DB.SelectContext(ctx, &o.Items, itemsQuery, o.ID); err != nil {
		return errors.Wrapf(err, "items for order %d", o.ID)
	}

	historyQuery := `SELECT * FROM order_status_history WHERE order_id = ? ORDER BY created_at, id`
	if err := r.DB.SelectContext(ctx, &o.History, historyQuery, o.ID); err != nil {
		return errors.Wrapf(err, "history for order %d", o.ID)
	}
	return nil
}

func (r *MySQLRepository) attachItems(ctx context.Context, list []model.Order) error {
	for i := range list {
		query := `SELECT * FROM order_items WHERE order_id = ?`
		if err := r.DB.SelectContext(ctx, &list[i].Items, query, list[i].ID); err != nil {
			return errors.Wrapf(err, "items for order %d", list[i].ID)
		}
	}
	return nil
}
