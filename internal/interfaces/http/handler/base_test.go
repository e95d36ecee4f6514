package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	depreciationapp "github.com/propledger/backend/internal/application/depreciation"
	propertyapp "github.com/propledger/backend/internal/application/property"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/infrastructure/logger"
	"github.com/propledger/backend/internal/infrastructure/persistence"
	"github.com/propledger/backend/internal/infrastructure/persistence/models"
	"github.com/propledger/backend/internal/interfaces/http/dto"
	"github.com/propledger/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// envelope is the decoded API response with data left raw
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

// ledgerFixture serves the ledger handlers over a migrated in-memory SQLite
// database. Requests are authenticated as ownerID unless the owner header
// says otherwise.
type ledgerFixture struct {
	t       *testing.T
	db      *gorm.DB
	engine  *gin.Engine
	ownerID uuid.UUID
}

const testOwnerHeader = "X-Test-Owner"

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(persistence.AllModels()...))

	log := zaptest.NewLogger(t)
	properties := persistence.NewGormPropertyRepository(db)
	sales := persistence.NewGormPropertySaleRepository(db)
	schedules := persistence.NewGormDepreciationScheduleRepository(db)
	capitalWorks := persistence.NewGormCapitalWorkRepository(db)
	calc := depreciation.NewScheduleCalculator()

	lifecycle := depreciationapp.NewLifecycleService(
		schedules,
		persistence.NewGormDepreciationAssetRepository(db),
		persistence.NewGormDepreciationClaimRepository(db),
		capitalWorks,
		properties,
		calc,
		log,
	)
	projections := depreciationapp.NewProjectionService(schedules, capitalWorks, properties, sales, calc, log)
	cgt := propertyapp.NewCGTService(properties, persistence.NewGormTransactionRepository(db), sales, log)

	f := &ledgerFixture{t: t, db: db, engine: gin.New(), ownerID: uuid.New()}
	f.engine.Use(func(c *gin.Context) {
		c.Set(logger.GinRequestIDKey, "req-test")
		switch owner := c.GetHeader(testOwnerHeader); owner {
		case "none":
		case "":
			c.Set(logger.GinOwnerIDKey, f.ownerID.String())
		default:
			c.Set(logger.GinOwnerIDKey, owner)
		}
		c.Next()
	})

	dep := NewDepreciationHandler(lifecycle, projections)
	cgtHandler := NewCGTHandler(cgt)

	api := f.engine.Group("/api/v1")
	api.GET("/properties/:id/depreciation", dep.ListSchedules)
	api.POST("/properties/:id/depreciation/schedules", dep.CreateSchedule)
	api.POST("/properties/:id/depreciation/schedules/import", dep.ImportSchedule)
	api.GET("/properties/:id/depreciation/projection", dep.GetProjection)
	api.POST("/properties/:id/capital-works", dep.AddCapitalWorks)
	api.POST("/depreciation/validate", dep.Validate)
	api.GET("/depreciation/preview", dep.Preview)
	api.POST("/depreciation/schedules/:id/assets", dep.AddAsset)
	api.POST("/depreciation/schedules/:id/claims", dep.ClaimFY)
	api.DELETE("/depreciation/schedules/:id/claims/:fy", dep.UnclaimFY)
	api.PUT("/depreciation/assets/:id", dep.UpdateAsset)
	api.DELETE("/depreciation/assets/:id", dep.DeleteAsset)
	api.POST("/depreciation/assets/:id/move-to-pool", dep.MoveToPool)
	api.GET("/properties/:id/cgt/cost-base", cgtHandler.GetCostBase)
	api.POST("/properties/:id/cgt/sale", cgtHandler.RecordSale)
	api.GET("/properties/:id/cgt/sale", cgtHandler.GetSale)
	api.GET("/portfolio/summary", cgtHandler.GetPortfolioSummary)
	return f
}

func (f *ledgerFixture) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// seedProperty inserts an active property for the fixture owner
func (f *ledgerFixture) seedProperty(price string, purchased time.Time) *property.Property {
	f.t.Helper()
	p := &property.Property{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(f.ownerID),
		Address:            "4/18 Lygon St, Carlton VIC",
		PurchasePrice:      decimal.RequireFromString(price),
		PurchaseDate:       purchased,
		Status:             property.StatusActive,
	}
	require.NoError(f.t, f.db.Create(models.PropertyModelFromDomain(p)).Error)
	return p
}

func (f *ledgerFixture) seedTransaction(p *property.Property, category property.TransactionCategory, amount string) {
	f.t.Helper()
	tx := &property.Transaction{
		ID:         uuid.New(),
		OwnerID:    p.OwnerID,
		PropertyID: p.ID,
		Category:   category,
		Amount:     decimal.RequireFromString(amount),
		Date:       p.PurchaseDate,
	}
	require.NoError(f.t, f.db.Create(models.TransactionModelFromDomain(tx)).Error)
}

// createSchedule creates a schedule with a single prime cost oven and
// returns it
func (f *ledgerFixture) createSchedule(p *property.Property) depreciationapp.ScheduleResponse {
	f.t.Helper()
	w := f.do(http.MethodPost, fmt.Sprintf("/api/v1/properties/%s/depreciation/schedules", p.ID), map[string]any{
		"effective_date": "2023-08-01",
		"assets": []map[string]any{{
			"asset_name":     "Oven",
			"category":       "plant_equipment",
			"original_cost":  "2000",
			"effective_life": "10",
			"method":         "prime_cost",
		}},
	})
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	var schedule depreciationapp.ScheduleResponse
	decodeData(f.t, w, &schedule)
	require.Len(f.t, schedule.Assets, 1)
	return schedule
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", property.ErrPropertyNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped domain error", fmt.Errorf("load: %w", depreciation.ErrPoolThresholdExceeded), http.StatusUnprocessableEntity, "POOL_THRESHOLD_EXCEEDED"},
		{"invalid input family", depreciation.ErrInvalidMethod, http.StatusBadRequest, "INVALID_METHOD"},
		{"property sold", property.ErrPropertySold, http.StatusUnprocessableEntity, "PROPERTY_SOLD"},
		{"unexpected error", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(logger.GinRequestIDKey, "req-1")

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.Equal(t, "req-1", env.Error.RequestID)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, env.Error.Message, "connection reset")
			}
		})
	}
}

func TestBaseHandler_HandleErrorWithData(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h := &BaseHandler{}
	h.HandleErrorWithData(c, depreciationapp.ErrCandidatesRejected, map[string]int{"valid": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_CANDIDATES", env.Error.Code)
	assert.JSONEq(t, `{"valid":1}`, string(env.Data))
}

func TestBaseHandler_RequiresOwner(t *testing.T) {
	f := newLedgerFixture(t)

	w := f.do(http.MethodGet, "/api/v1/portfolio/summary", nil, testOwnerHeader, "none")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decode(t, w).Error.Code)
}

func TestBaseHandler_InvalidPathID(t *testing.T) {
	f := newLedgerFixture(t)

	w := f.do(http.MethodGet, "/api/v1/properties/not-a-uuid/cgt/cost-base", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, dto.ErrCodeInvalidInput, env.Error.Code)
	assert.Equal(t, "Invalid id format", env.Error.Message)
}
