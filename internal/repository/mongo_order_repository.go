package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrdersCollection is the collection holding order documents.
const OrdersCollection = "orders"

// mongoOrderRepository implements the OrderRepository interface using MongoDB.
type mongoOrderRepository struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

// NewMongoOrderRepository creates a new MongoDB-backed order repository.
func NewMongoOrderRepository(db *mongo.Database, logger zerolog.Logger) OrderRepository {
	return &mongoOrderRepository{
		collection: db.Collection(OrdersCollection),
		logger:     logger.With().Str("repository", "mongo-order").Logger(),
	}
}

// Create upserts the order document keyed by its id. createdAt is set by the
// server with $currentDate.
func (r *mongoOrderRepository) Create(ctx context.Context, order *model.OrderRecord) error {
	doc := toDocument(order)

	fields := bson.M{
		"customer": doc.Customer,
		"items":    doc.Items,
		"total":    doc.Total,
		"status":   doc.Status,
	}
	if doc.PaystackRef != "" {
		fields["paystackRef"] = doc.PaystackRef
	}

	update := bson.M{
		"$set":         fields,
		"$currentDate": bson.M{"createdAt": true},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": order.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	var stored orderDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": order.ID},
		options.FindOne().SetProjection(bson.M{"createdAt": 1})).Decode(&stored)
	if err == nil && stored.CreatedAt != nil {
		order.CreatedAt = stored.CreatedAt.UTC()
	}

	r.logger.Debug().
		Str("order_id", order.ID).
		Msg("order created successfully")

	return nil
}

// UpdateStatus sets the order status and, when given, the payment reference.
func (r *mongoOrderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, paymentRef string) error {
	fields := bson.M{"status": string(status)}
	if paymentRef != "" {
		fields["paystackRef"] = paymentRef
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}

	r.logger.Debug().
		Str("order_id", id).
		Str("status", string(status)).
		Msg("order status updated")

	return nil
}

// List returns all orders sorted by createdAt descending.
func (r *mongoOrderRepository) List(ctx context.Context) ([]model.OrderRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]model.OrderRecord, 0)
	for cursor.Next(ctx) {
		var doc orderDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Error().Err(err).Msg("failed to decode order document")
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		orders = append(orders, doc.toRecord())
	}

	if err := cursor.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating orders")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// GetByID retrieves an order by its ID.
func (r *mongoOrderRepository) GetByID(ctx context.Context, id string) (*model.OrderRecord, error) {
	var doc orderDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	rec := doc.toRecord()
	return &rec, nil
}

func (r *mongoOrderRepository) Ping(ctx context.Context) error {
	if err := r.collection.Database().Client().Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}

// CreateIndexes creates the indexes used by the admin listing.
func (r *mongoOrderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// EnsureIndexes creates the order indexes when repo is MongoDB-backed.
func EnsureIndexes(ctx context.Context, repo OrderRepository) error {
	if m, ok := repo.(*mongoOrderRepository); ok {
		return m.CreateIndexes(ctx)
	}
	return nil
}
