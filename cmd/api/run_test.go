package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/procure-match/reconciliation-service/internal/application"
	"github.com/procure-match/reconciliation-service/internal/domain"
	"github.com/procure-match/reconciliation-service/pkg/kafka"
	"github.com/procure-match/reconciliation-service/pkg/logging"
	"github.com/procure-match/reconciliation-service/pkg/metrics"
	"github.com/procure-match/reconciliation-service/pkg/mongodb"
	"github.com/procure-match/reconciliation-service/pkg/tracing"
)

type fakeMongo struct{}

func (f *fakeMongo) Database() *mongo.Database         { return nil }
func (f *fakeMongo) Close(context.Context) error       { return nil }
func (f *fakeMongo) HealthCheck(context.Context) error { return nil }

type fakeKafkaProducer struct {
	closed bool
}

func (f *fakeKafkaProducer) Close() error {
	f.closed = true
	return nil
}

type fakePublisher struct{}

func (f *fakePublisher) PublishDecisionRecorded(context.Context, application.DecisionRecordedEvent) error {
	return nil
}

type fakePORepo struct{}

func (f *fakePORepo) FindAll(context.Context) ([]domain.PurchaseOrderRecord, error) { return nil, nil }
func (f *fakePORepo) FindByNumber(context.Context, string) (*domain.PurchaseOrderRecord, error) {
	return nil, nil
}

type fakeInvoiceRepo struct{}

func (f *fakeInvoiceRepo) FindAll(context.Context) ([]domain.InvoiceRecord, error) { return nil, nil }
func (f *fakeInvoiceRepo) FindByReference(context.Context, string) ([]domain.InvoiceRecord, error) {
	return nil, nil
}

type fakeGRNRepo struct{}

func (f *fakeGRNRepo) FindAll(context.Context) ([]domain.GoodsReceiptRecord, error) { return nil, nil }
func (f *fakeGRNRepo) FindByReference(context.Context, string) ([]domain.GoodsReceiptRecord, error) {
	return nil, nil
}

type fakeDecisionRepo struct{}

func (f *fakeDecisionRepo) Get(context.Context, string) (*domain.DecisionRecord, error) {
	return nil, nil
}
func (f *fakeDecisionRepo) Upsert(context.Context, domain.DecisionRecord) (*domain.UpsertResult, error) {
	return &domain.UpsertResult{}, nil
}

type seams struct {
	mongo        func(context.Context, *mongodb.Config, *metrics.Metrics, *logging.Logger) (instrumentedMongoClient, error)
	producer     func(*kafka.Config) kafkaProducer
	publisher    func(kafkaProducer, *metrics.Metrics, *logging.Logger) application.DecisionEventPublisher
	poRepo       func(*mongo.Database, *metrics.Metrics, *logging.Logger) domain.PurchaseOrderRepository
	invoiceRepo  func(*mongo.Database, *metrics.Metrics, *logging.Logger) domain.InvoiceRepository
	grnRepo      func(*mongo.Database, *metrics.Metrics, *logging.Logger) domain.GoodsReceiptRepository
	decisionRepo func(*mongo.Database, *metrics.Metrics, *logging.Logger) domain.DecisionRepository
	tracing      func(context.Context, *tracing.Config) (*tracing.TracerProvider, error)
	httpServer   func(*http.Server) error
}

func saveSeams() seams {
	return seams{
		mongo:        newInstrumentedMongoClient,
		producer:     newKafkaProducer,
		publisher:    newDecisionPublisher,
		poRepo:       newPurchaseOrderRepository,
		invoiceRepo:  newInvoiceRepository,
		grnRepo:      newGoodsReceiptRepository,
		decisionRepo: newDecisionRepository,
		tracing:      initTracing,
		httpServer:   startHTTPServer,
	}
}

func restoreSeams(s seams) {
	newInstrumentedMongoClient = s.mongo
	newKafkaProducer = s.producer
	newDecisionPublisher = s.publisher
	newPurchaseOrderRepository = s.poRepo
	newInvoiceRepository = s.invoiceRepo
	newGoodsReceiptRepository = s.grnRepo
	newDecisionRepository = s.decisionRepo
	initTracing = s.tracing
	startHTTPServer = s.httpServer
}

func installFakeSeams(producer *fakeKafkaProducer) {
	newInstrumentedMongoClient = func(context.Context, *mongodb.Config, *metrics.Metrics, *logging.Logger) (instrumentedMongoClient, error) {
		return &fakeMongo{}, nil
	}
	newKafkaProducer = func(*kafka.Config) kafkaProducer { return producer }
	newDecisionPublisher = func(kafkaProducer, *metrics.Metrics, *logging.Logger) application.DecisionEventPublisher {
		return &fakePublisher{}
	}
	newPurchaseOrderRepository = func(*mongo.Database, *metrics.Metrics, *logging.Logger) domain.PurchaseOrderRepository {
		return &fakePORepo{}
	}
	newInvoiceRepository = func(*mongo.Database, *metrics.Metrics, *logging.Logger) domain.InvoiceRepository {
		return &fakeInvoiceRepo{}
	}
	newGoodsReceiptRepository = func(*mongo.Database, *metrics.Metrics, *logging.Logger) domain.GoodsReceiptRepository {
		return &fakeGRNRepo{}
	}
	newDecisionRepository = func(*mongo.Database, *metrics.Metrics, *logging.Logger) domain.DecisionRepository {
		return &fakeDecisionRepo{}
	}
	initTracing = func(context.Context, *tracing.Config) (*tracing.TracerProvider, error) {
		return &tracing.TracerProvider{}, nil
	}
	startHTTPServer = func(*http.Server) error { return http.ErrServerClosed }
}

func TestRunSuccess(t *testing.T) {
	saved := saveSeams()
	defer restoreSeams(saved)

	producer := &fakeKafkaProducer{}
	installFakeSeams(producer)

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	require.NoError(t, err)
	assert.True(t, producer.closed)
}

func TestRunTracingError(t *testing.T) {
	saved := saveSeams()
	defer restoreSeams(saved)

	installFakeSeams(&fakeKafkaProducer{})
	initTracing = func(context.Context, *tracing.Config) (*tracing.TracerProvider, error) {
		return nil, errors.New("trace init failed")
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	// Tracing failures are logged, not fatal
	err := run(context.Background(), signalCh)
	require.NoError(t, err)
}

func TestRunMongoError(t *testing.T) {
	saved := saveSeams()
	defer restoreSeams(saved)

	installFakeSeams(&fakeKafkaProducer{})
	newInstrumentedMongoClient = func(context.Context, *mongodb.Config, *metrics.Metrics, *logging.Logger) (instrumentedMongoClient, error) {
		return nil, errors.New("mongo error")
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	assert.Error(t, err)
}

func TestRunServerErrorLogged(t *testing.T) {
	saved := saveSeams()
	defer restoreSeams(saved)

	installFakeSeams(&fakeKafkaProducer{})

	serverCalled := make(chan struct{})
	startHTTPServer = func(*http.Server) error {
		close(serverCalled)
		return errors.New("server failed")
	}

	signalCh := make(chan os.Signal, 1)
	go func() {
		<-serverCalled
		signalCh <- os.Interrupt
	}()

	err := run(context.Background(), signalCh)
	assert.NoError(t, err)
}
