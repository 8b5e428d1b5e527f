package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cornucopia-shop/cornucopia-backend/internal/models"
	"github.com/cornucopia-shop/cornucopia-backend/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrInvalidOwner means a cart write was attempted without exactly one of
// user id / session id. The carts table carries the same CHECK constraint,
// but the invariant must not depend on the storage backend alone.
var ErrInvalidOwner = errors.New("cart owner must be exactly one of user id or session id")

type CartRepository interface {
	GetCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	GetOrCreateCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	ClearCart(ctx context.Context, owner models.CartOwner) (bool, error)
	MergeCarts(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Cart, bool, error)
	AddItem(ctx context.Context, cartID uuid.UUID, productID string, quantity int, priceSnapshot *string) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, owner models.CartOwner, itemID uuid.UUID, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, owner models.CartOwner, itemID uuid.UUID) (bool, error)
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const cartColumns = `id, user_id, session_id, created_at, updated_at`

func scanCart(row *sql.Row) (*models.Cart, error) {

	cart := &models.Cart{}

	var userID uuid.NullUUID

	var sessionID sql.NullString

	err := row.Scan(&cart.ID, &userID, &sessionID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		cart.UserID = &userID.UUID
	}

	if sessionID.Valid {
		cart.SessionID = &sessionID.String
	}

	return cart, nil
}

func loadItems(ctx context.Context, q querier, cart *models.Cart) error {

	query := `
		SELECT id, cart_id, product_id, quantity, price_snapshot, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at`

	rows, err := q.QueryContext(ctx, query, cart.ID)
	if err != nil {
		return fmt.Errorf("failed to load cart items: %w", err)
	}

	defer rows.Close()

	cart.Items = []models.CartItem{}

	for rows.Next() {

		var item models.CartItem

		var snapshot sql.NullString

		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &snapshot, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan cart item: %w", err)
		}

		if snapshot.Valid {
			item.PriceSnapshot = &snapshot.String
		}

		cart.Items = append(cart.Items, item)
	}

	return rows.Err()
}

func (r *cartRepository) getCartByOwner(ctx context.Context, q querier, owner models.CartOwner, forUpdate bool) (*models.Cart, error) {

	query := `SELECT ` + cartColumns + ` FROM carts WHERE `

	var arg any

	switch {
	case owner.UserID != nil:
		query += `user_id = $1`
		arg = *owner.UserID
	case owner.SessionID != nil:
		query += `session_id = $1`
		arg = *owner.SessionID
	default:
		return nil, ErrInvalidOwner
	}

	if forUpdate {
		query += ` FOR UPDATE`
	}

	return scanCart(q.QueryRowContext(ctx, query, arg))
}

func (r *cartRepository) GetCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	cart, err := r.getCartByOwner(dbCtx, r.DB, owner, false)
	if err != nil {
		return nil, err
	}

	if err := loadItems(dbCtx, r.DB, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// GetOrCreateCart looks up the owner's cart and lazily creates one when it
// does not exist. A unique violation on insert means a concurrent request
// created it first; that is resolved by re-reading, not surfaced as an error.
func (r *cartRepository) GetOrCreateCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {

	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}

	cart, err := r.GetCart(ctx, owner)
	if err == nil {
		return cart, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO carts (user_id, session_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING ` + cartColumns

	cart, err = scanCart(r.DB.QueryRowContext(dbCtx, query, uuidOrNil(owner.UserID), stringOrNil(owner.SessionID)))

	if err != nil {

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return r.GetCart(ctx, owner)
		}

		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	cart.Items = []models.CartItem{}

	return cart, nil
}

func (r *cartRepository) ClearCart(ctx context.Context, owner models.CartOwner) (bool, error) {

	if !owner.Valid() {
		return false, ErrInvalidOwner
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	cart, err := r.getCartByOwner(dbCtx, tx, owner, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	if _, err := tx.ExecContext(dbCtx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return false, fmt.Errorf("failed to clear cart: %w", err)
	}

	if _, err := tx.ExecContext(dbCtx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cart.ID); err != nil {
		return false, fmt.Errorf("failed to touch cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// MergeCarts folds the anonymous cart identified by sessionID into the
// user's cart inside a single transaction. Both cart rows are locked up
// front so concurrent merges for the same pair cannot double-count. The
// second return value reports whether an anonymous cart was actually merged.
func (r *cartRepository) MergeCarts(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Cart, bool, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	userCart, err := r.getCartByOwner(dbCtx, tx, models.UserOwner(userID), true)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	anonCart, err := r.getCartByOwner(dbCtx, tx, models.SessionOwner(sessionID), true)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	merged := false

	switch {
	case anonCart == nil:
		// Nothing to merge; fall through and return the user's cart.

	case userCart == nil:
		// Re-key the anonymous cart wholesale. Lines keep their ids.
		query := `UPDATE carts SET user_id = $1, session_id = NULL, updated_at = NOW() WHERE id = $2`
		if _, err := tx.ExecContext(dbCtx, query, userID, anonCart.ID); err != nil {
			return nil, false, fmt.Errorf("failed to re-key anonymous cart: %w", err)
		}

		merged = true

	default:
		if err := r.mergeItems(dbCtx, tx, userCart.ID, anonCart.ID); err != nil {
			return nil, false, err
		}

		merged = true
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit merge: %w", err)
	}

	cart, err := r.GetOrCreateCart(ctx, models.UserOwner(userID))
	if err != nil {
		return nil, false, err
	}

	return cart, merged, nil
}

func (r *cartRepository) mergeItems(ctx context.Context, tx *sql.Tx, userCartID, anonCartID uuid.UUID) error {

	type anonItem struct {
		id        uuid.UUID
		productID string
		quantity  int
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, product_id, quantity FROM cart_items WHERE cart_id = $1`, anonCartID)
	if err != nil {
		return fmt.Errorf("failed to load anonymous cart items: %w", err)
	}

	var items []anonItem

	for rows.Next() {

		var item anonItem

		if err := rows.Scan(&item.id, &item.productID, &item.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan anonymous cart item: %w", err)
		}

		items = append(items, item)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read anonymous cart items: %w", err)
	}

	for _, item := range items {

		// Matching line in the user cart: aggregate quantities. The user
		// cart's price snapshot is kept as is.
		result, err := tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = quantity + $1, updated_at = NOW() WHERE cart_id = $2 AND product_id = $3`,
			item.quantity, userCartID, item.productID)
		if err != nil {
			return fmt.Errorf("failed to aggregate cart line: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}

		if affected == 0 {
			// No matching line: move the anonymous line across.
			if _, err := tx.ExecContext(ctx,
				`UPDATE cart_items SET cart_id = $1, updated_at = NOW() WHERE id = $2`,
				userCartID, item.id); err != nil {
				return fmt.Errorf("failed to move cart line: %w", err)
			}
		}
	}

	// Aggregated lines are still attached to the anonymous cart; drop them
	// with the cart itself.
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, anonCartID); err != nil {
		return fmt.Errorf("failed to delete anonymous cart items: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, anonCartID); err != nil {
		return fmt.Errorf("failed to delete anonymous cart: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, userCartID); err != nil {
		return fmt.Errorf("failed to touch user cart: %w", err)
	}

	return nil
}

// AddItem upserts a line on (cart_id, product_id): an existing line has the
// quantity added on and the price snapshot overwritten only when a new one
// is supplied.
func (r *cartRepository) AddItem(ctx context.Context, cartID uuid.UUID, productID string, quantity int, priceSnapshot *string) (*models.CartItem, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, price_snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity,
			price_snapshot = COALESCE(EXCLUDED.price_snapshot, cart_items.price_snapshot),
			updated_at = NOW()
		RETURNING id, cart_id, product_id, quantity, price_snapshot, created_at, updated_at`

	item := &models.CartItem{}

	var snapshot sql.NullString

	err := r.DB.QueryRowContext(dbCtx, query, cartID, productID, quantity, stringOrNil(priceSnapshot)).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &snapshot, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	if snapshot.Valid {
		item.PriceSnapshot = &snapshot.String
	}

	return item, nil
}

// UpdateItemQuantity sets a line's quantity, deleting it when quantity is
// zero or below. Deleting an absent line is a no-op; updating an absent line
// returns sql.ErrNoRows. Every statement is scoped by the owner key so a
// line id alone never grants access.
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, owner models.CartOwner, itemID uuid.UUID, quantity int) (*models.CartItem, error) {

	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if quantity <= 0 {

		query := `
			DELETE FROM cart_items ci
			USING carts c
			WHERE ci.id = $1 AND ci.cart_id = c.id AND (c.user_id = $2 OR c.session_id = $3)`

		if _, err := r.DB.ExecContext(dbCtx, query, itemID, uuidOrNil(owner.UserID), stringOrNil(owner.SessionID)); err != nil {
			return nil, fmt.Errorf("failed to delete cart item: %w", err)
		}

		return nil, nil
	}

	query := `
		UPDATE cart_items ci
		SET quantity = $1, updated_at = NOW()
		FROM carts c
		WHERE ci.id = $2 AND ci.cart_id = c.id AND (c.user_id = $3 OR c.session_id = $4)
		RETURNING ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.price_snapshot, ci.created_at, ci.updated_at`

	item := &models.CartItem{}

	var snapshot sql.NullString

	err := r.DB.QueryRowContext(dbCtx, query, quantity, itemID, uuidOrNil(owner.UserID), stringOrNil(owner.SessionID)).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &snapshot, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return nil, err
	}

	if snapshot.Valid {
		item.PriceSnapshot = &snapshot.String
	}

	return item, nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, owner models.CartOwner, itemID uuid.UUID) (bool, error) {

	if !owner.Valid() {
		return false, ErrInvalidOwner
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.id = $1 AND ci.cart_id = c.id AND (c.user_id = $2 OR c.session_id = $3)`

	result, err := r.DB.ExecContext(dbCtx, query, itemID, uuidOrNil(owner.UserID), stringOrNil(owner.SessionID))
	if err != nil {
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}

	return *id
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}
