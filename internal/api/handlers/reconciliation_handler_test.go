package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procure-match/reconciliation-service/internal/application"
	"github.com/procure-match/reconciliation-service/internal/domain"
	"github.com/procure-match/reconciliation-service/pkg/logging"
)

type fakePORepo struct {
	findAllFn      func(context.Context) ([]domain.PurchaseOrderRecord, error)
	findByNumberFn func(context.Context, string) (*domain.PurchaseOrderRecord, error)
}

func (f *fakePORepo) FindAll(ctx context.Context) ([]domain.PurchaseOrderRecord, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakePORepo) FindByNumber(ctx context.Context, poNumber string) (*domain.PurchaseOrderRecord, error) {
	if f.findByNumberFn != nil {
		return f.findByNumberFn(ctx, poNumber)
	}
	return nil, nil
}

type fakeInvoiceRepo struct {
	findAllFn         func(context.Context) ([]domain.InvoiceRecord, error)
	findByReferenceFn func(context.Context, string) ([]domain.InvoiceRecord, error)
}

func (f *fakeInvoiceRepo) FindAll(ctx context.Context) ([]domain.InvoiceRecord, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) FindByReference(ctx context.Context, poNumber string) ([]domain.InvoiceRecord, error) {
	if f.findByReferenceFn != nil {
		return f.findByReferenceFn(ctx, poNumber)
	}
	return nil, nil
}

type fakeGRNRepo struct {
	findAllFn         func(context.Context) ([]domain.GoodsReceiptRecord, error)
	findByReferenceFn func(context.Context, string) ([]domain.GoodsReceiptRecord, error)
}

func (f *fakeGRNRepo) FindAll(ctx context.Context) ([]domain.GoodsReceiptRecord, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeGRNRepo) FindByReference(ctx context.Context, poNumber string) ([]domain.GoodsReceiptRecord, error) {
	if f.findByReferenceFn != nil {
		return f.findByReferenceFn(ctx, poNumber)
	}
	return nil, nil
}

type fakeDecisionRepo struct {
	getFn    func(context.Context, string) (*domain.DecisionRecord, error)
	upsertFn func(context.Context, domain.DecisionRecord) (*domain.UpsertResult, error)
	upserts  []domain.DecisionRecord
}

func (f *fakeDecisionRepo) Get(ctx context.Context, poNumber string) (*domain.DecisionRecord, error) {
	if f.getFn != nil {
		return f.getFn(ctx, poNumber)
	}
	return nil, nil
}

func (f *fakeDecisionRepo) Upsert(ctx context.Context, record domain.DecisionRecord) (*domain.UpsertResult, error) {
	f.upserts = append(f.upserts, record)
	if f.upsertFn != nil {
		return f.upsertFn(ctx, record)
	}
	return &domain.UpsertResult{Matched: 0, Modified: 0, UpsertedID: "65f000000000000000000001"}, nil
}

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("reconciliation-handler-test")
	cfg.Output = io.Discard
	return logging.New(cfg)
}

func total(v float64) *float64 {
	return &v
}

func makeRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newService(poRepo domain.PurchaseOrderRepository, invoiceRepo domain.InvoiceRepository, grnRepo domain.GoodsReceiptRepository, decisionRepo domain.DecisionRepository) *application.ReconciliationService {
	return application.NewReconciliationService(poRepo, invoiceRepo, grnRepo, decisionRepo, nil, nil, testLogger(), "reviewer")
}

func newReconciliationRouter(service *application.ReconciliationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewReconciliationHandler(service, testLogger())
	router.GET("/api/reconciliation", handler.GetReconciliation)
	router.POST("/api/reconciliation/decision", handler.RecordDecision)
	return router
}

func TestGetReconciliation(t *testing.T) {
	poRepo := &fakePORepo{
		findAllFn: func(context.Context) ([]domain.PurchaseOrderRecord, error) {
			return []domain.PurchaseOrderRecord{
				{PONumber: "PO-1001", Vendor: domain.Party{Name: "Acme"}, GrandTotal: total(1000)},
			}, nil
		},
	}
	invoiceRepo := &fakeInvoiceRepo{
		findByReferenceFn: func(_ context.Context, _ string) ([]domain.InvoiceRecord, error) {
			return []domain.InvoiceRecord{
				{InvoiceNumber: "INV-1", ReferencePO: "PO-1001", GrandTotal: total(1000)},
			}, nil
		},
	}
	grnRepo := &fakeGRNRepo{
		findByReferenceFn: func(_ context.Context, _ string) ([]domain.GoodsReceiptRecord, error) {
			return []domain.GoodsReceiptRecord{
				{GRNNumber: "GRN-1", ReferencePO: "PO-1001"},
			}, nil
		},
	}
	router := newReconciliationRouter(newService(poRepo, invoiceRepo, grnRepo, &fakeDecisionRepo{}))

	rec := makeRequest(router, http.MethodGet, "/api/reconciliation", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)

	po, ok := results[0]["purchase_order"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "PO-1001", po["po_number"])
	assert.Equal(t, "matched", results[0]["status"])
	assert.Empty(t, results[0]["issues"])
}

func TestGetReconciliationEmptyStores(t *testing.T) {
	router := newReconciliationRouter(newService(&fakePORepo{}, &fakeInvoiceRepo{}, &fakeGRNRepo{}, &fakeDecisionRepo{}))

	rec := makeRequest(router, http.MethodGet, "/api/reconciliation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestGetReconciliationStoreError(t *testing.T) {
	poRepo := &fakePORepo{
		findAllFn: func(context.Context) ([]domain.PurchaseOrderRecord, error) {
			return nil, assert.AnError
		},
	}
	router := newReconciliationRouter(newService(poRepo, &fakeInvoiceRepo{}, &fakeGRNRepo{}, &fakeDecisionRepo{}))

	rec := makeRequest(router, http.MethodGet, "/api/reconciliation", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecordDecision(t *testing.T) {
	decisionRepo := &fakeDecisionRepo{}
	router := newReconciliationRouter(newService(&fakePORepo{}, &fakeInvoiceRepo{}, &fakeGRNRepo{}, decisionRepo))

	rec := makeRequest(router, http.MethodPost, "/api/reconciliation/decision", map[string]interface{}{
		"po_number": "PO-1001",
		"decision":  "approved",
		"comment":   "looks good",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var ack map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, true, ack["success"])
	assert.Equal(t, "PO-1001", ack["po_number"])
	assert.Equal(t, "approved", ack["decision"])
	assert.Equal(t, "65f000000000000000000001", ack["upserted_id"])

	require.Len(t, decisionRepo.upserts, 1)
	assert.Equal(t, "looks good", decisionRepo.upserts[0].Comment)
}

func TestRecordDecisionInvalidValue(t *testing.T) {
	decisionRepo := &fakeDecisionRepo{}
	router := newReconciliationRouter(newService(&fakePORepo{}, &fakeInvoiceRepo{}, &fakeGRNRepo{}, decisionRepo))

	rec := makeRequest(router, http.MethodPost, "/api/reconciliation/decision", map[string]interface{}{
		"po_number": "PO-1001",
		"decision":  "maybe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, decisionRepo.upserts)
}

func TestRecordDecisionMissingFields(t *testing.T) {
	decisionRepo := &fakeDecisionRepo{}
	router := newReconciliationRouter(newService(&fakePORepo{}, &fakeInvoiceRepo{}, &fakeGRNRepo{}, decisionRepo))

	rec := makeRequest(router, http.MethodPost, "/api/reconciliation/decision", map[string]interface{}{
		"po_number": "PO-1001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, decisionRepo.upserts)
}

func TestRecordDecisionStoreError(t *testing.T) {
	decisionRepo := &fakeDecisionRepo{
		upsertFn: func(context.Context, domain.DecisionRecord) (*domain.UpsertResult, error) {
			return nil, assert.AnError
		},
	}
	router := newReconciliationRouter(newService(&fakePORepo{}, &fakeInvoiceRepo{}, &fakeGRNRepo{}, decisionRepo))

	rec := makeRequest(router, http.MethodPost, "/api/reconciliation/decision", map[string]interface{}{
		"po_number": "PO-1001",
		"decision":  "rejected",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
