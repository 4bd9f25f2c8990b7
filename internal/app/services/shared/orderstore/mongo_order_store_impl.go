package orderstore

import (
	"context"
	"fmt"
	"qris-payment-service/internal/app/contracts"
	"qris-payment-service/internal/app/models"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/exceptions"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaymentOrderMongoRepository struct {
	Collection *mongo.Collection
}

func NewPaymentOrderMongoRepository(db *mongo.Client, dbName string) *PaymentOrderMongoRepository {
	return &PaymentOrderMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionPaymentOrders),
	}
}

// EnsureIndexes creates the pending expiry index and the TTL index that
// removes terminal orders once their retention has elapsed.
func (r *PaymentOrderMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("status_expires_at"),
		},
		{
			Keys:    bson.D{{Key: "purge_at", Value: 1}},
			Options: options.Index().SetName("purge_at_ttl").SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(fmt.Errorf("create payment order indexes: %w", err))
	}
	return nil
}

func (r *PaymentOrderMongoRepository) FindByMerchantOrderID(ctx context.Context, merchantOrderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.Collection.FindOne(ctx, bson.M{"_id": merchantOrderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &order, nil
}

func (r *PaymentOrderMongoRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	_, err := r.Collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return exceptions.ErrOrderAlreadyExists(fmt.Errorf("%w: %v", ErrDuplicateOrder, err), order.MerchantOrderID)
		}
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (r *PaymentOrderMongoRepository) CompareAndSetStatus(ctx context.Context, merchantOrderID string, update models.StatusUpdate) (*models.PaymentOrder, bool, error) {
	current, err := r.FindByMerchantOrderID(ctx, merchantOrderID)
	if err != nil || current == nil {
		return nil, false, err
	}
	if current.Status != update.From {
		return current, false, nil
	}

	next := update.Apply(*current)
	filter := bson.M{"_id": merchantOrderID, "status": update.From}
	result, err := r.Collection.ReplaceOne(ctx, filter, next)
	if err != nil {
		return nil, false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	if result.MatchedCount == 0 {
		latest, err := r.FindByMerchantOrderID(ctx, merchantOrderID)
		return latest, false, err
	}
	return &next, true, nil
}

func (r *PaymentOrderMongoRepository) FindExpirable(ctx context.Context, now time.Time, limit int) ([]models.PaymentOrder, error) {
	filter := bson.M{
		"status":     models.PaymentStatusPending,
		"expires_at": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "expires_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var orders []models.PaymentOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return orders, nil
}

var _ contracts.PaymentOrderRepository = (*PaymentOrderMongoRepository)(nil)
