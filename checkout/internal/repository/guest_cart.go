package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

type GuestCartLine struct {
	Attributes  []byte
	ID          uuid.UUID
	CartID      uuid.UUID
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	Name        string
	UnitPrice   pgtype.Numeric
	Quantity    int32
}

type InsertLineParams struct {
	Attributes  map[string]string
	Name        string
	ID          uuid.UUID
	CartID      uuid.UUID
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	UnitPrice   decimal.Decimal
	Quantity    int32
}

// EnsureCart returns the cart id for a session, creating the cart row on
// first use.
func (q *Queries) EnsureCart(c context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	var cartID uuid.UUID
	err := q.pool.QueryRow(
		c,
		`INSERT INTO guest_carts (id, session_id)
		 VALUES ($1, $2)
		 ON CONFLICT (session_id) DO UPDATE SET updated_at = now()
		 RETURNING id`,
		uuid.New(),
		sessionID,
	).Scan(&cartID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed ensuring guest cart with error=%w", err)
	}
	return cartID, nil
}

func (q *Queries) FindLines(c context.Context, sessionID uuid.UUID) ([]GuestCartLine, error) {
	rows, err := q.pool.Query(
		c,
		`SELECT i.id, i.cart_id, i.product_id, i.variation_id, i.name, i.unit_price, i.quantity, i.attributes
		 FROM guest_cart_items i
		 JOIN guest_carts g ON g.id = i.cart_id
		 WHERE g.session_id = $1
		 ORDER BY i.created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding guest cart lines with error=%w", err)
	}
	defer rows.Close()

	lines := []GuestCartLine{}
	for rows.Next() {
		line := GuestCartLine{}
		err = rows.Scan(
			&line.ID,
			&line.CartID,
			&line.ProductID,
			&line.VariationID,
			&line.Name,
			&line.UnitPrice,
			&line.Quantity,
			&line.Attributes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed scanning guest cart line with error=%w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (q *Queries) FindLineByID(
	c context.Context,
	sessionID uuid.UUID,
	lineID uuid.UUID,
) (GuestCartLine, error) {
	line := GuestCartLine{}
	err := q.pool.QueryRow(
		c,
		`SELECT i.id, i.cart_id, i.product_id, i.variation_id, i.name, i.unit_price, i.quantity, i.attributes
		 FROM guest_cart_items i
		 JOIN guest_carts g ON g.id = i.cart_id
		 WHERE g.session_id = $1 AND i.id = $2`,
		sessionID,
		lineID,
	).Scan(
		&line.ID,
		&line.CartID,
		&line.ProductID,
		&line.VariationID,
		&line.Name,
		&line.UnitPrice,
		&line.Quantity,
		&line.Attributes,
	)
	if err != nil {
		return GuestCartLine{}, err
	}
	return line, nil
}

// FindLineByKey matches a line on the merge key: product, variation and
// chosen attributes.
func (q *Queries) FindLineByKey(
	c context.Context,
	sessionID uuid.UUID,
	productID uuid.UUID,
	variationID *uuid.UUID,
	attributes map[string]string,
) (GuestCartLine, error) {
	attrs, err := json.Marshal(attributes)
	if err != nil {
		return GuestCartLine{}, fmt.Errorf("failed marshaling attributes with error=%w", err)
	}
	line := GuestCartLine{}
	err = q.pool.QueryRow(
		c,
		`SELECT i.id, i.cart_id, i.product_id, i.variation_id, i.name, i.unit_price, i.quantity, i.attributes
		 FROM guest_cart_items i
		 JOIN guest_carts g ON g.id = i.cart_id
		 WHERE g.session_id = $1
		   AND i.product_id = $2
		   AND i.variation_id IS NOT DISTINCT FROM $3
		   AND i.attributes = $4::jsonb`,
		sessionID,
		productID,
		variationID,
		attrs,
	).Scan(
		&line.ID,
		&line.CartID,
		&line.ProductID,
		&line.VariationID,
		&line.Name,
		&line.UnitPrice,
		&line.Quantity,
		&line.Attributes,
	)
	if err != nil {
		return GuestCartLine{}, err
	}
	return line, nil
}

func (q *Queries) InsertLine(c context.Context, param InsertLineParams) error {
	attrs, err := json.Marshal(param.Attributes)
	if err != nil {
		return fmt.Errorf("failed marshaling attributes with error=%w", err)
	}
	price := pgtype.Numeric{
		Exp:              param.UnitPrice.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              param.UnitPrice.Coefficient(),
		Valid:            true,
	}
	_, err = q.pool.Exec(
		c,
		`INSERT INTO guest_cart_items (id, cart_id, product_id, variation_id, name, unit_price, quantity, attributes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		param.ID,
		param.CartID,
		param.ProductID,
		param.VariationID,
		param.Name,
		price,
		param.Quantity,
		attrs,
	)
	if err != nil {
		return fmt.Errorf("failed inserting guest cart line with error=%w", err)
	}
	return nil
}

func (q *Queries) UpdateLineQuantity(
	c context.Context,
	sessionID uuid.UUID,
	lineID uuid.UUID,
	quantity int32,
) error {
	tag, err := q.pool.Exec(
		c,
		`UPDATE guest_cart_items i
		 SET quantity = $3, updated_at = now()
		 FROM guest_carts g
		 WHERE g.id = i.cart_id AND g.session_id = $1 AND i.id = $2`,
		sessionID,
		lineID,
		quantity,
	)
	if err != nil {
		return fmt.Errorf("failed updating guest cart line quantity with error=%w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteLine only touches lines owned by the session; a line id from
// another session deletes nothing.
func (q *Queries) DeleteLine(
	c context.Context,
	sessionID uuid.UUID,
	lineID uuid.UUID,
) (int64, error) {
	tag, err := q.pool.Exec(
		c,
		`DELETE FROM guest_cart_items i
		 USING guest_carts g
		 WHERE g.id = i.cart_id AND g.session_id = $1 AND i.id = $2`,
		sessionID,
		lineID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed deleting guest cart line with error=%w", err)
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) DeleteAllLines(c context.Context, sessionID uuid.UUID) error {
	_, err := q.pool.Exec(
		c,
		`DELETE FROM guest_cart_items i
		 USING guest_carts g
		 WHERE g.id = i.cart_id AND g.session_id = $1`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed clearing guest cart with error=%w", err)
	}
	return nil
}
