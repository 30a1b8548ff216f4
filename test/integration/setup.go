package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/handler"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testAPIKey = "test-api-key"

// SetupPostgres starts a PostgreSQL container, applies the migrations and
// returns an order repository over it.
func SetupPostgres(t *testing.T) repository.OrderRepository {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := repository.RunMigrations(connStr); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	return repository.NewPostgresOrderRepository(pool, zerolog.Nop())
}

// SetupMongo starts a MongoDB container and returns an indexed order repository over it.
func SetupMongo(t *testing.T) repository.OrderRepository {
	t.Helper()

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongodb container: %v", err)
	}
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := repository.ConnectMongoDB(ctx, uri, "storefront_test", repository.DefaultMongoConfig())
	if err != nil {
		t.Fatalf("failed to connect to mongodb: %v", err)
	}
	t.Cleanup(func() { _ = db.Client().Disconnect(context.Background()) })

	repo := repository.NewMongoOrderRepository(db, zerolog.Nop())
	if err := repository.EnsureIndexes(ctx, repo); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}
	return repo
}

// WithListCache wraps repo with a Redis listing cache backed by miniredis.
func WithListCache(t *testing.T, repo repository.OrderRepository) repository.OrderRepository {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return repository.NewCachedOrderRepository(repo, cache.NewRedisCache(client, time.Minute), zerolog.Nop())
}

// FakePaystack is an in-process stand-in for the Paystack transaction API.
type FakePaystack struct {
	Server *httptest.Server

	mu       sync.Mutex
	amounts  map[string]int64
	outcomes map[string]string
}

// NewFakePaystack starts the fake API. Transactions verify as success unless
// SetOutcome says otherwise.
func NewFakePaystack(t *testing.T) *FakePaystack {
	t.Helper()

	f := &FakePaystack{
		amounts:  make(map[string]int64),
		outcomes: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /transaction/initialize", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email     string `json:"email"`
			Amount    int64  `json:"amount"`
			Reference string `json:"reference"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.amounts[req.Reference] = req.Amount
		f.mu.Unlock()

		writeEnvelope(w, map[string]any{
			"authorization_url": f.Server.URL + "/checkout/" + req.Reference,
			"access_code":       "ac_" + req.Reference,
			"reference":         req.Reference,
		})
	})
	mux.HandleFunc("GET /transaction/verify/{reference}", func(w http.ResponseWriter, r *http.Request) {
		ref := r.PathValue("reference")

		f.mu.Lock()
		amount, ok := f.amounts[ref]
		status := f.outcomes[ref]
		f.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
			return
		}
		if status == "" {
			status = payment.StatusSuccess
		}

		writeEnvelope(w, map[string]any{
			"reference": ref,
			"status":    status,
			"amount":    amount,
			"paid_at":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// SetOutcome fixes the verification status of reference.
func (f *FakePaystack) SetOutcome(reference, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[reference] = status
}

// Amount returns the minor-unit amount initialized for reference.
func (f *FakePaystack) Amount(reference string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amounts[reference]
}

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  true,
		"message": "ok",
		"data":    data,
	})
}

// NewTestServer assembles the API the way the serve command does, over orders
// and the fake Paystack.
func NewTestServer(t *testing.T, orders repository.OrderRepository, paystack *FakePaystack) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()

	gateway, err := payment.NewPaystack(payment.PaystackConfig{
		SecretKey: "sk_test_integration",
		BaseURL:   paystack.Server.URL,
		Timeout:   5 * time.Second,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create paystack client: %v", err)
	}

	validator := checkout.NewValidator()
	sessions := session.NewRegistry(func(c *cart.Store, l zerolog.Logger) *checkout.Orchestrator {
		return checkout.New(c, orders, gateway, validator, l)
	}, time.Hour, logger)

	products := service.NewProductService(catalog.Default(), logger)

	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(products, logger),
		Cart:     handler.NewCartHandler(service.NewCartService(products, logger), logger),
		Checkout: handler.NewCheckoutHandler("pk_test", logger),
		Admin:    handler.NewAdminHandler(service.NewOrderService(orders, logger), logger),
		Health:   handler.NewHealthHandler(map[string]handler.Pinger{"orders": orders}, logger).Check,
	}, sessions, router.Options{APIKey: testAPIKey}, logger)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
