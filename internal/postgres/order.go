package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vietart/artmarket/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

var _ domain.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a new PostgreSQL-backed order store.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `id, order_number, user_id,
	ship_full_name, ship_phone, ship_street, ship_ward, ship_district, ship_city,
	payment_method, payment_status, order_status,
	subtotal, shipping_fee, total_amount, currency, notes,
	payment_intent_id, tracking_number, shipped_at, delivered_at, created_at, updated_at`

// PlaceOrder commits the whole order in one transaction: a conditional stock
// decrement per line, the order number allocation and the order insert. A
// decrement that matches zero rows aborts everything, so a concurrent buyer
// can never oversell and no partial decrement is ever visible.
func (s *OrderStore) PlaceOrder(ctx context.Context, params domain.PlaceOrderParams) (*domain.Order, error) {
	var order *domain.Order
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, line := range params.Items {
			tag, err := tx.Exec(ctx, `
				UPDATE products SET stock = stock - $2, updated_at = now()
				WHERE id = $1 AND stock >= $2`,
				pgUUID(line.ProductID), line.Quantity)
			if err != nil {
				return domain.Internal(err, "order.place", "failed to decrement stock")
			}
			if tag.RowsAffected() == 0 {
				var available int32
				err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`,
					pgUUID(line.ProductID)).Scan(&available)
				if errors.Is(err, pgx.ErrNoRows) {
					return domain.ErrProductNotFound
				}
				if err != nil {
					return domain.Internal(err, "order.place", "failed to read stock")
				}
				return domain.InsufficientStock("order.place", line.ProductTitle, available)
			}
		}

		number, err := nextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO orders (
				order_number, user_id,
				ship_full_name, ship_phone, ship_street, ship_ward, ship_district, ship_city,
				payment_method, payment_status, order_status,
				subtotal, shipping_fee, total_amount, currency, notes, payment_intent_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			RETURNING `+orderColumns,
			number, pgUUID(params.UserID),
			params.ShippingAddress.FullName, params.ShippingAddress.Phone,
			params.ShippingAddress.Street, params.ShippingAddress.Ward,
			params.ShippingAddress.District, params.ShippingAddress.City,
			string(params.PaymentMethod), string(domain.PaymentPending), string(domain.OrderPending),
			params.Subtotal, params.ShippingFee, params.TotalAmount,
			params.Currency, params.Notes, params.PaymentIntentID,
		)
		order, err = scanOrder(row)
		if err != nil {
			return domain.Internal(err, "order.place", "failed to insert order")
		}

		for _, line := range params.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (
					order_id, product_id, product_title, product_image, artist_name,
					quantity, price, total_price
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				pgUUID(order.ID), pgUUID(line.ProductID),
				line.ProductTitle, line.ProductImage, line.ArtistName,
				line.Quantity, line.Price, line.TotalPrice)
			if err != nil {
				return domain.Internal(err, "order.place", "failed to insert order item")
			}
		}
		order.Items = params.Items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// nextOrderNumber atomically increments the order sequence and formats the
// human-readable number, e.g. ART000042.
func nextOrderNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	var value int64
	err := tx.QueryRow(ctx, `
		INSERT INTO sequences (name, value) VALUES ('order_number', 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`).Scan(&value)
	if err != nil {
		return "", domain.Internal(err, "order.place", "failed to allocate order number")
	}
	return fmt.Sprintf("%s%06d", domain.OrderNumberPrefix, value), nil
}

// Get retrieves an order with its lines.
func (s *OrderStore) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, pgUUID(id))

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to get order")
	}

	if err := s.loadOrderItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// List returns orders matching params, newest first, with the total count.
func (s *OrderStore) List(ctx context.Context, params domain.OrderListParams) ([]domain.Order, int64, error) {
	where := "WHERE true"
	args := []any{}
	if params.UserID != nil {
		args = append(args, pgUUID(*params.UserID))
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where += fmt.Sprintf(" AND order_status = $%d", len(args))
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.Internal(err, "order.list", "failed to count orders")
	}

	args = append(args, params.Limit, (params.Page-1)*params.Limit)
	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.Internal(err, "order.list", "failed to list orders")
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, domain.Internal(err, "order.list", "failed to scan order")
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.Internal(err, "order.list", "failed to read orders")
	}

	for i := range orders {
		if err := s.loadOrderItems(ctx, &orders[i]); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

// UpdateStatus persists a fulfillment status change. Shipping stamps
// shipped_at, delivery stamps delivered_at and settles cash-on-delivery
// payments.
func (s *OrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, params domain.UpdateOrderStatusParams) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE orders SET
			order_status    = $2,
			tracking_number = COALESCE(NULLIF($3, ''), tracking_number),
			shipped_at      = CASE WHEN $2 = 'shipped' THEN now() ELSE shipped_at END,
			delivered_at    = CASE WHEN $2 = 'delivered' THEN now() ELSE delivered_at END,
			payment_status  = CASE WHEN $2 = 'delivered' AND payment_method = 'cod'
			                       THEN 'paid' ELSE payment_status END,
			updated_at      = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		pgUUID(id), string(params.Status), params.TrackingNumber)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.update_status", "failed to update order status")
	}

	if err := s.loadOrderItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// SetPaymentStatusByIntent updates the payment status of the order carrying
// the given payment intent.
func (s *OrderStore) SetPaymentStatusByIntent(ctx context.Context, paymentIntentID string, status domain.PaymentStatus) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE orders SET payment_status = $2, updated_at = now()
		WHERE payment_intent_id = $1
		RETURNING `+orderColumns,
		paymentIntentID, string(status))

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.set_payment_status", "failed to update payment status")
	}

	if err := s.loadOrderItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o           domain.Order
		id          pgtype.UUID
		userID      pgtype.UUID
		shippedAt   pgtype.Timestamptz
		deliveredAt pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &o.OrderNumber, &userID,
		&o.ShippingAddress.FullName, &o.ShippingAddress.Phone,
		&o.ShippingAddress.Street, &o.ShippingAddress.Ward,
		&o.ShippingAddress.District, &o.ShippingAddress.City,
		&o.PaymentMethod, &o.PaymentStatus, &o.OrderStatus,
		&o.Subtotal, &o.ShippingFee, &o.TotalAmount, &o.Currency, &o.Notes,
		&o.PaymentIntentID, &o.TrackingNumber, &shippedAt, &deliveredAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.ID = fromPGUUID(id)
	o.UserID = fromPGUUID(userID)
	o.ShippedAt = fromPGTimePtr(shippedAt)
	o.DeliveredAt = fromPGTimePtr(deliveredAt)
	o.CreatedAt = fromPGTime(createdAt)
	o.UpdatedAt = fromPGTime(updatedAt)
	return &o, nil
}

func (s *OrderStore) loadOrderItems(ctx context.Context, order *domain.Order) error {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, product_title, product_image, artist_name, quantity, price, total_price
		FROM order_items WHERE order_id = $1 ORDER BY id`,
		pgUUID(order.ID))
	if err != nil {
		return domain.Internal(err, "order.load_items", "failed to load order items")
	}
	defer rows.Close()

	items := []domain.OrderLine{}
	for rows.Next() {
		var (
			line      domain.OrderLine
			productID pgtype.UUID
		)
		if err := rows.Scan(&productID, &line.ProductTitle, &line.ProductImage,
			&line.ArtistName, &line.Quantity, &line.Price, &line.TotalPrice); err != nil {
			return domain.Internal(err, "order.load_items", "failed to scan order item")
		}
		line.ProductID = fromPGUUID(productID)
		items = append(items, line)
	}
	if err := rows.Err(); err != nil {
		return domain.Internal(err, "order.load_items", "failed to read order items")
	}
	order.Items = items
	return nil
}
