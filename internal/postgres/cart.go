package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vietart/artmarket/internal/domain"
)

// CartStore implements domain.CartStore using PostgreSQL. Every mutation
// commits the line write and the totals recomputation in one transaction.
type CartStore struct {
	pool *pgxpool.Pool
}

var _ domain.CartStore = (*CartStore)(nil)

// NewCartStore creates a new PostgreSQL-backed cart store.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// GetOrCreate returns the user's cart, persisting an empty one on first access.
func (s *CartStore) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	var cart *domain.Cart
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		cart, err = ensureCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		return loadCartItems(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// Get returns the user's cart with its lines.
func (s *CartStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart, err := getCartByUser(ctx, s.pool, userID)
	if err != nil {
		return nil, err
	}
	if err := loadCartItems(ctx, s.pool, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// MergeLine atomically increments (or inserts) a line, validating the merged
// quantity against live stock and the per-line cap inside the transaction.
// On validation failure the transaction rolls back and nothing is written.
func (s *CartStore) MergeLine(ctx context.Context, params domain.MergeLineParams) (*domain.Cart, error) {
	var cart *domain.Cart
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		c, err := ensureCart(ctx, tx, params.UserID)
		if err != nil {
			return err
		}

		var merged int32
		err = tx.QueryRow(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (cart_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			RETURNING quantity`,
			pgUUID(c.ID), pgUUID(params.ProductID), params.Quantity, params.Price,
		).Scan(&merged)
		if err != nil {
			return mergeLineError(err)
		}

		if merged > params.Stock {
			return domain.InsufficientStock("cart.merge_line", params.Title, params.Stock)
		}

		if err := recomputeCartTotals(ctx, tx, c.ID); err != nil {
			return err
		}

		cart = c
		return loadCart(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// SetLineQuantity replaces a line's quantity.
func (s *CartStore) SetLineQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*domain.Cart, error) {
	var cart *domain.Cart
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		c, err := getCartByUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE cart_items SET quantity = $3
			WHERE cart_id = $1 AND product_id = $2`,
			pgUUID(c.ID), pgUUID(productID), quantity)
		if err != nil {
			return domain.Internal(err, "cart.set_quantity", "failed to update cart line")
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrCartItemNotFound
		}

		if err := recomputeCartTotals(ctx, tx, c.ID); err != nil {
			return err
		}

		cart = c
		return loadCart(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveLine deletes a line from the cart.
func (s *CartStore) RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*domain.Cart, error) {
	var cart *domain.Cart
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		c, err := getCartByUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
			pgUUID(c.ID), pgUUID(productID))
		if err != nil {
			return domain.Internal(err, "cart.remove_line", "failed to remove cart line")
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrCartItemNotFound
		}

		if err := recomputeCartTotals(ctx, tx, c.ID); err != nil {
			return err
		}

		cart = c
		return loadCart(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart, creating it first when absent. Clearing an already
// empty cart succeeds.
func (s *CartStore) Clear(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	var cart *domain.Cart
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		c, err := ensureCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, pgUUID(c.ID)); err != nil {
			return domain.Internal(err, "cart.clear", "failed to clear cart")
		}

		if err := recomputeCartTotals(ctx, tx, c.ID); err != nil {
			return err
		}

		cart = c
		return loadCart(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// mergeLineError maps a failed line upsert. The per-line quantity cap is a
// CHECK constraint on cart_items, so a merge past the cap surfaces as
// SQLSTATE 23514 from the upsert itself, never as a scanned quantity.
func mergeLineError(err error) error {
	if isCheckViolation(err) {
		return domain.ErrInvalidQuantity
	}
	return domain.Internal(err, "cart.merge_line", "failed to merge cart line")
}

// ensureCart returns the user's cart, inserting an empty one when absent.
func ensureCart(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Cart, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, total_items, total_price, created_at, updated_at`,
		pgUUID(userID))

	cart, err := scanCart(row)
	if err != nil {
		return nil, domain.Internal(err, "cart.ensure", "failed to get or create cart")
	}
	return cart, nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getCartByUser(ctx context.Context, q rowQuerier, userID uuid.UUID) (*domain.Cart, error) {
	row := q.QueryRow(ctx, `
		SELECT id, user_id, total_items, total_price, created_at, updated_at
		FROM carts WHERE user_id = $1`,
		pgUUID(userID))

	cart, err := scanCart(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, domain.Internal(err, "cart.get", "failed to get cart")
	}
	return cart, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var (
		c         domain.Cart
		id        pgtype.UUID
		userID    pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &c.TotalItems, &c.TotalPrice, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.ID = fromPGUUID(id)
	c.UserID = fromPGUUID(userID)
	c.CreatedAt = fromPGTime(createdAt)
	c.UpdatedAt = fromPGTime(updatedAt)
	return &c, nil
}

// loadCart refreshes the cart row (totals may have changed) and its lines.
func loadCart(ctx context.Context, q rowQuerier, cart *domain.Cart) error {
	row := q.QueryRow(ctx, `
		SELECT id, user_id, total_items, total_price, created_at, updated_at
		FROM carts WHERE id = $1`,
		pgUUID(cart.ID))

	refreshed, err := scanCart(row)
	if err != nil {
		return domain.Internal(err, "cart.load", "failed to reload cart")
	}
	*cart = *refreshed
	return loadCartItems(ctx, q, cart)
}

func loadCartItems(ctx context.Context, q rowQuerier, cart *domain.Cart) error {
	rows, err := q.Query(ctx, `
		SELECT product_id, quantity, price, added_at
		FROM cart_items WHERE cart_id = $1 ORDER BY added_at`,
		pgUUID(cart.ID))
	if err != nil {
		return domain.Internal(err, "cart.load", "failed to load cart items")
	}
	defer rows.Close()

	items := []domain.CartLine{}
	for rows.Next() {
		var (
			line      domain.CartLine
			productID pgtype.UUID
			addedAt   pgtype.Timestamptz
		)
		if err := rows.Scan(&productID, &line.Quantity, &line.Price, &addedAt); err != nil {
			return domain.Internal(err, "cart.load", "failed to scan cart item")
		}
		line.ProductID = fromPGUUID(productID)
		line.AddedAt = fromPGTime(addedAt)
		items = append(items, line)
	}
	if err := rows.Err(); err != nil {
		return domain.Internal(err, "cart.load", "failed to read cart items")
	}
	cart.Items = items
	return nil
}

// recomputeCartTotals derives total_items and total_price from the lines.
// Totals are never incrementally patched.
func recomputeCartTotals(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE carts SET
			total_items = COALESCE(s.items, 0),
			total_price = COALESCE(s.price, 0),
			updated_at  = now()
		FROM (
			SELECT sum(quantity) AS items, sum(quantity::bigint * price) AS price
			FROM cart_items WHERE cart_id = $1
		) s
		WHERE id = $1`,
		pgUUID(cartID))
	if err != nil {
		return domain.Internal(err, "cart.totals", "failed to recompute cart totals")
	}
	return nil
}
