package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresOrderRepository implements the OrderRepository interface using PostgreSQL.
type postgresOrderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL-backed order repository.
func NewPostgresOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &postgresOrderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "postgres-order").Logger(),
	}
}

// Create inserts the order, replacing any document with the same id.
// created_at comes from the column default.
func (r *postgresOrderRepository) Create(ctx context.Context, order *model.OrderRecord) error {
	doc, err := jsonDocument(order)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (id, document, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document, status = EXCLUDED.status
		RETURNING created_at
	`

	var createdAt time.Time
	err = r.pool.QueryRow(ctx, query, order.ID, doc, string(order.Status)).Scan(&createdAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.CreatedAt = createdAt.UTC()

	r.logger.Debug().
		Str("order_id", order.ID).
		Msg("order created successfully")

	return nil
}

// UpdateStatus sets the status column and mirrors it, with the payment
// reference, into the document.
func (r *postgresOrderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, paymentRef string) error {
	query := `
		UPDATE orders
		SET status = $2,
			document = CASE
				WHEN $3 = '' THEN document || jsonb_build_object('status', $2::text)
				ELSE document || jsonb_build_object('status', $2::text, 'paystackRef', $3::text)
			END
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, string(status), paymentRef)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	r.logger.Debug().
		Str("order_id", id).
		Str("status", string(status)).
		Msg("order status updated")

	return nil
}

// List returns all orders sorted by created_at descending.
func (r *postgresOrderRepository) List(ctx context.Context) ([]model.OrderRecord, error) {
	query := `
		SELECT document, created_at
		FROM orders
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.OrderRecord, 0)
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, err
		}
		orders = append(orders, rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// GetByID retrieves an order by its ID.
func (r *postgresOrderRepository) GetByID(ctx context.Context, id string) (*model.OrderRecord, error) {
	query := `
		SELECT document, created_at
		FROM orders
		WHERE id = $1
	`

	rec, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id).Msg("order not found")
			return nil, ErrOrderNotFound
		}
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to query order")
		return nil, err
	}

	return &rec, nil
}

func (r *postgresOrderRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (model.OrderRecord, error) {
	var (
		raw       []byte
		createdAt time.Time
	)
	if err := row.Scan(&raw, &createdAt); err != nil {
		return model.OrderRecord{}, fmt.Errorf("failed to scan order: %w", err)
	}

	var doc orderDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.OrderRecord{}, fmt.Errorf("failed to decode order document: %w", err)
	}
	doc.CreatedAt = &createdAt

	return doc.toRecord(), nil
}
