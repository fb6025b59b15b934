package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/procure-match/reconciliation-service/internal/domain"
	"github.com/procure-match/reconciliation-service/pkg/logging"
	"github.com/procure-match/reconciliation-service/pkg/metrics"
	pkgmongo "github.com/procure-match/reconciliation-service/pkg/mongodb"
)

const (
	purchaseOrdersCollection = "purchase_orders"
	invoicesCollection       = "invoices"
	goodsReceiptsCollection  = "goods_receipts"
	decisionsCollection      = "reconciliation_decisions"
)

// PurchaseOrderRepository implements domain.PurchaseOrderRepository
type PurchaseOrderRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewPurchaseOrderRepository creates a new PurchaseOrderRepository
func NewPurchaseOrderRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *PurchaseOrderRepository {
	collection := db.Collection(purchaseOrdersCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "po_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "vendor.name", Value: 1}},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &PurchaseOrderRepository{
		collection: pkgmongo.NewInstrumentedCollection(collection, m, logger),
	}
}

// FindAll retrieves every purchase order, ascending by po_number
func (r *PurchaseOrderRepository) FindAll(ctx context.Context) ([]domain.PurchaseOrderRecord, error) {
	opts := options.Find().SetSort(pkgmongo.SortAscending("po_number"))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []domain.PurchaseOrderRecord
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByNumber retrieves one purchase order by po_number, nil when absent
func (r *PurchaseOrderRepository) FindByNumber(ctx context.Context, poNumber string) (*domain.PurchaseOrderRecord, error) {
	var order domain.PurchaseOrderRecord
	filter := bson.M{"po_number": poNumber}

	err := r.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// InvoiceRepository implements domain.InvoiceRepository
type InvoiceRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *InvoiceRepository {
	collection := db.Collection(invoicesCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "invoice_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "reference_po", Value: 1}},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &InvoiceRepository{
		collection: pkgmongo.NewInstrumentedCollection(collection, m, logger),
	}
}

// FindAll retrieves every invoice, ascending by invoice_number
func (r *InvoiceRepository) FindAll(ctx context.Context) ([]domain.InvoiceRecord, error) {
	opts := options.Find().SetSort(pkgmongo.SortAscending("invoice_number"))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invoices []domain.InvoiceRecord
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindByReference retrieves invoices whose reference_po equals the given
// PO number exactly
func (r *InvoiceRepository) FindByReference(ctx context.Context, poNumber string) ([]domain.InvoiceRecord, error) {
	filter := bson.M{"reference_po": poNumber}
	opts := options.Find().SetSort(pkgmongo.SortAscending("invoice_number"))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invoices []domain.InvoiceRecord
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// GoodsReceiptRepository implements domain.GoodsReceiptRepository
type GoodsReceiptRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewGoodsReceiptRepository creates a new GoodsReceiptRepository
func NewGoodsReceiptRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *GoodsReceiptRepository {
	collection := db.Collection(goodsReceiptsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "grn_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "reference_po", Value: 1}},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &GoodsReceiptRepository{
		collection: pkgmongo.NewInstrumentedCollection(collection, m, logger),
	}
}

// FindAll retrieves every goods receipt, ascending by grn_number
func (r *GoodsReceiptRepository) FindAll(ctx context.Context) ([]domain.GoodsReceiptRecord, error) {
	opts := options.Find().SetSort(pkgmongo.SortAscending("grn_number"))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var receipts []domain.GoodsReceiptRecord
	if err := cursor.All(ctx, &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

// FindByReference retrieves goods receipts whose reference_po equals the
// given PO number exactly
func (r *GoodsReceiptRepository) FindByReference(ctx context.Context, poNumber string) ([]domain.GoodsReceiptRecord, error) {
	filter := bson.M{"reference_po": poNumber}
	opts := options.Find().SetSort(pkgmongo.SortAscending("grn_number"))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var receipts []domain.GoodsReceiptRecord
	if err := cursor.All(ctx, &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

// DecisionRepository implements domain.DecisionRepository
type DecisionRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewDecisionRepository creates a new DecisionRepository
func NewDecisionRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *DecisionRepository {
	collection := db.Collection(decisionsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "po_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &DecisionRepository{
		collection: pkgmongo.NewInstrumentedCollection(collection, m, logger),
	}
}

// Get retrieves the decision for a PO number, nil when absent
func (r *DecisionRepository) Get(ctx context.Context, poNumber string) (*domain.DecisionRecord, error) {
	var record domain.DecisionRecord
	filter := bson.M{"po_number": poNumber}

	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Upsert writes the decision for a PO number, inserting or fully
// replacing the prior record
func (r *DecisionRepository) Upsert(ctx context.Context, record domain.DecisionRecord) (*domain.UpsertResult, error) {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"po_number": record.PONumber}
	update := bson.M{"$set": record}

	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return nil, err
	}

	upserted := &domain.UpsertResult{
		Matched:  result.MatchedCount,
		Modified: result.ModifiedCount,
	}
	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		upserted.UpsertedID = oid.Hex()
	}
	return upserted, nil
}
