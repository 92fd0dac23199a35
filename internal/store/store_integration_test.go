package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	perrors "github.com/supplychain/orchestrator/internal/errors"
)

const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"

// ProductStoreSuite is a test suite for the ProductStore implementation.
type ProductStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       ProductStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container.
func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "supply_chain_db"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. Create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Apply database migrations
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../deploy/migrations")
	sourceURL := "file://" + migrationsPath
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for integration tests")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for ProductStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest truncates the products table so every test starts from a clean slate.
func (s *ProductStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

func TestProductStoreSuite(t *testing.T) {
	if os.Getenv(skipIntegrationTests) != "" {
		t.Skip("Skipping integration tests")
	}
	suite.Run(t, new(ProductStoreSuite))
}

func (s *ProductStoreSuite) mustCreate(params CreateParams) *Product {
	product, err := s.store.Create(s.ctx, params)
	require.NoError(s.T(), err)
	return product
}

func strPtr(v string) *string   { return &v }
func f64Ptr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool      { return &v }

func (s *ProductStoreSuite) TestCreateAndFindByID() {
	// given
	created := s.mustCreate(CreateParams{
		SKU:         "TEST-PRODUCT-123",
		Name:        "New Test Product",
		Description: strPtr("Description for new test product"),
		Price:       129.99,
		Weight:      f64Ptr(1.5),
		Dimensions:  strPtr(`{"length": 15, "width": 10, "height": 5}`),
		IsActive:    true,
	})

	// then: generated fields are populated, updated_at stays unset until the first update
	assert.Positive(s.T(), created.ID)
	assert.False(s.T(), created.CreatedAt.IsZero())
	assert.Nil(s.T(), created.UpdatedAt)

	// when
	found, err := s.store.FindByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, found.ID)
	assert.Equal(s.T(), "TEST-PRODUCT-123", found.SKU)
	assert.Equal(s.T(), "New Test Product", found.Name)
	assert.Equal(s.T(), 129.99, found.Price)
	assert.True(s.T(), found.IsActive)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, 999999)
	assert.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestCreate_DuplicateSKU() {
	// given
	s.mustCreate(CreateParams{SKU: "TEST-PRODUCT-123", Name: "New Test Product", Price: 129.99, IsActive: true})

	// when: second create with the same SKU, different name
	_, err := s.store.Create(s.ctx, CreateParams{SKU: "TEST-PRODUCT-123", Name: "Different Name", Price: 9.99, IsActive: true})

	// then: conflict, and exactly one row with that SKU remains
	assert.ErrorIs(s.T(), err, perrors.ErrSKUAlreadyExists)
	var count int
	require.NoError(s.T(), s.dbPool.QueryRow(s.ctx, "SELECT COUNT(*) FROM products WHERE sku = $1", "TEST-PRODUCT-123").Scan(&count))
	assert.Equal(s.T(), 1, count)
}

func (s *ProductStoreSuite) TestCreate_DuplicateSKUOfSoftDeletedProduct() {
	// given: SKU uniqueness is global, soft-deleted rows included
	created := s.mustCreate(CreateParams{SKU: "TEST-PRODUCT-123", Name: "New Test Product", Price: 129.99, IsActive: true})
	require.NoError(s.T(), s.store.SoftDelete(s.ctx, created.ID))

	// when
	_, err := s.store.Create(s.ctx, CreateParams{SKU: "TEST-PRODUCT-123", Name: "Reborn", Price: 1.99, IsActive: true})

	// then
	assert.ErrorIs(s.T(), err, perrors.ErrSKUAlreadyExists)
}

func (s *ProductStoreSuite) TestCreate_RejectsNonPositivePrice() {
	// The CHECK constraint is the defense-in-depth guard behind input validation.
	_, err := s.store.Create(s.ctx, CreateParams{SKU: "FREEBIE-001", Name: "Free Stuff", Price: 0, IsActive: true})
	assert.Error(s.T(), err)
}

func (s *ProductStoreSuite) TestExistsBySKU() {
	s.mustCreate(CreateParams{SKU: "E-PHONE-001", Name: "Smartphone XS", Price: 799.99, IsActive: true})

	exists, err := s.store.ExistsBySKU(s.ctx, "E-PHONE-001")
	require.NoError(s.T(), err)
	assert.True(s.T(), exists)

	exists, err = s.store.ExistsBySKU(s.ctx, "NO-SUCH-SKU")
	require.NoError(s.T(), err)
	assert.False(s.T(), exists)
}

func (s *ProductStoreSuite) TestFindAll_Filters() {
	// given
	phone := s.mustCreate(CreateParams{SKU: "E-PHONE-001", Name: "Smartphone XS", Price: 799.99, IsActive: true})
	laptop := s.mustCreate(CreateParams{SKU: "E-LAPTOP-001", Name: "UltraBook Pro", Price: 1299.99, IsActive: true})
	retired := s.mustCreate(CreateParams{SKU: "E-HEAD-001", Name: "Old Headphones", Price: 49.99, IsActive: false})

	// when: active filter defaulting behavior is the caller's concern; nil filter returns everything
	all, err := s.store.FindAll(s.ctx, ListFilter{}, 0, 100)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 3)

	// when: is_active=true hides the soft-deleted/inactive row
	active, err := s.store.FindAll(s.ctx, ListFilter{IsActive: boolPtr(true)}, 0, 100)
	require.NoError(s.T(), err)
	require.Len(s.T(), active, 2)
	assert.Equal(s.T(), phone.ID, active[0].ID)
	assert.Equal(s.T(), laptop.ID, active[1].ID)

	// when: is_active=false returns only inactive rows
	inactive, err := s.store.FindAll(s.ctx, ListFilter{IsActive: boolPtr(false)}, 0, 100)
	require.NoError(s.T(), err)
	require.Len(s.T(), inactive, 1)
	assert.Equal(s.T(), retired.ID, inactive[0].ID)

	// when: name filter is a case-insensitive substring match
	byName, err := s.store.FindAll(s.ctx, ListFilter{Name: strPtr("ultrabook")}, 0, 100)
	require.NoError(s.T(), err)
	require.Len(s.T(), byName, 1)
	assert.Equal(s.T(), "E-LAPTOP-001", byName[0].SKU)

	// when: category filter is accepted but inert
	byCategory, err := s.store.FindAll(s.ctx, ListFilter{CategoryID: func() *int64 { v := int64(7); return &v }()}, 0, 100)
	require.NoError(s.T(), err)
	assert.Len(s.T(), byCategory, 3)
}

func (s *ProductStoreSuite) TestFindAll_Pagination() {
	for _, sku := range []string{"PAGE-001", "PAGE-002", "PAGE-003"} {
		s.mustCreate(CreateParams{SKU: sku, Name: "Paged " + sku, Price: 10, IsActive: true})
	}

	// when: rows come back in ID order, offset/limit slice the sequence
	page, err := s.store.FindAll(s.ctx, ListFilter{}, 1, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 1)
	assert.Equal(s.T(), "PAGE-002", page[0].SKU)
}

func (s *ProductStoreSuite) TestUpdate_PartialPatch() {
	// given
	created := s.mustCreate(CreateParams{
		SKU:         "TEST-PRODUCT-123",
		Name:        "New Test Product",
		Description: strPtr("original description"),
		Price:       129.99,
		Weight:      f64Ptr(1.5),
		IsActive:    true,
	})

	// when: patch only name, description and price
	updated, err := s.store.Update(s.ctx, created.ID, UpdatePatch{
		Name:        strPtr("Renamed Product"),
		Description: strPtr("updated description"),
		Price:       f64Ptr(149.99),
	})

	// then: exactly those fields changed, SKU and ID untouched, updated_at stamped
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, updated.ID)
	assert.Equal(s.T(), "TEST-PRODUCT-123", updated.SKU)
	assert.Equal(s.T(), "Renamed Product", updated.Name)
	require.NotNil(s.T(), updated.Description)
	assert.Equal(s.T(), "updated description", *updated.Description)
	assert.Equal(s.T(), 149.99, updated.Price)
	require.NotNil(s.T(), updated.Weight)
	assert.Equal(s.T(), 1.5, *updated.Weight)
	assert.True(s.T(), updated.IsActive)
	require.NotNil(s.T(), updated.UpdatedAt)

	// and a subsequent read reflects the new values
	found, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Renamed Product", found.Name)
}

func (s *ProductStoreSuite) TestUpdate_NotFound() {
	_, err := s.store.Update(s.ctx, 999999, UpdatePatch{Name: strPtr("Ghost")})
	assert.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestSoftDelete() {
	// given
	created := s.mustCreate(CreateParams{SKU: "TEST-PRODUCT-123", Name: "New Test Product", Price: 129.99, IsActive: true})

	// when
	require.NoError(s.T(), s.store.SoftDelete(s.ctx, created.ID))

	// then: the record stays retrievable by ID with is_active false
	found, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), found.IsActive)

	// and soft-deleting again succeeds without error
	require.NoError(s.T(), s.store.SoftDelete(s.ctx, created.ID))
	found, err = s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), found.IsActive)
}

func (s *ProductStoreSuite) TestSoftDelete_NotFound() {
	assert.ErrorIs(s.T(), s.store.SoftDelete(s.ctx, 999999), perrors.ErrProductNotFound)
}
