package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/auth"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/application/ledger"
	"github.com/jhoicas/stockledger-api/internal/application/usecase"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/stockledger-api/internal/interfaces/http"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: API completa sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC)

type apiEnv struct {
	app     *fiber.App
	metrics *metrics.Metrics
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	warehouses := memory.NewWarehouseRepo(store)
	invRepo := memory.NewInventoryRepo(store)
	clock := func() time.Time { return fixedNow }

	engine := inventory.NewStockMovementUseCase(memory.NewTxRunner(store), invRepo, warehouses, logger.Nop(),
		inventory.WithClock(clock))
	reports := inventory.NewReportUseCase(invRepo, warehouses, ledger.NewService(memory.NewStockLogRepo(store), products))
	reports.SetClock(clock)

	m := metrics.New("test")
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:    usecase.NewWarehouseUseCase(warehouses),
		ProductUC:      usecase.NewProductUseCase(products, nil),
		StockMovement:  engine,
		Reports:        reports,
		AuthUC:         auth.NewAuthUseCase(memory.NewUserRepo(store), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		Auth:           testAuthConfig,
		Cookie:         apphttp.SessionCookie{TTL: time.Hour},
		Logger:         logger.Nop(),
		HTTPRecorder:   m,
		MetricsHandler: m.Handler(),
	})
	return &apiEnv{app: app, metrics: m}
}

// call envía body como JSON (si no es nil) y decodifica la respuesta en out (si no es nil).
func (e *apiEnv) call(t *testing.T, method, path, role string, body, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *apiEnv) createWarehouse(t *testing.T, name string) string {
	t.Helper()
	var out dto.WarehouseResponse
	status := e.call(t, http.MethodPost, "/api/warehouses", entity.RoleAdmin,
		dto.CreateWarehouseRequest{Name: name, Location: "Centro"}, &out)
	require.Equal(t, http.StatusCreated, status)
	return out.ID
}

func (e *apiEnv) createProduct(t *testing.T, name, price string) string {
	t.Helper()
	var out dto.ProductResponse
	status := e.call(t, http.MethodPost, "/api/products", entity.RoleAdmin,
		dto.CreateProductRequest{Name: name, Price: decimal.RequireFromString(price)}, &out)
	require.Equal(t, http.StatusCreated, status)
	return out.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_EscenarioReposicionTrasladoYVentaRechazada(t *testing.T) {
	api := newAPI(t)
	whA := api.createWarehouse(t, "Norte")
	whB := api.createWarehouse(t, "Sur")
	prod := api.createProduct(t, "Tornillo", "2.50")
	role := entity.RoleWarehouse

	var rec dto.InventoryResponse
	status := api.call(t, http.MethodPost, "/api/inventory", role,
		dto.CreateInventoryRequest{ProductID: prod, WarehouseID: whA, Quantity: 100}, &rec)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 100, rec.Quantity)
	assert.Equal(t, entity.DefaultMinStockLevel, rec.MinStockLevel)

	status = api.call(t, http.MethodPost, "/api/inventory/restock", role,
		dto.StockMovementRequest{ProductID: prod, WarehouseID: whA, Quantity: 20}, &rec)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 120, rec.Quantity)

	var tr dto.TransferResponse
	status = api.call(t, http.MethodPost, "/api/inventory/transfer", role,
		dto.TransferRequest{ProductID: prod, SourceWarehouseID: whA, DestinationWarehouseID: whB, Quantity: 50}, &tr)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, tr.TransferID)
	assert.Equal(t, 70, tr.Source.Quantity)
	assert.Equal(t, 50, tr.Destination.Quantity)

	var errResp dto.ErrorResponse
	status = api.call(t, http.MethodPost, "/api/inventory/deplete", role,
		dto.StockMovementRequest{ProductID: prod, WarehouseID: whB, Quantity: 60}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)

	status = api.call(t, http.MethodGet, "/api/inventory/"+prod+"/"+whB, role, nil, &rec)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 50, rec.Quantity, "la venta rechazada no modifica el stock")

	var page dto.StockLogPageResponse
	status = api.call(t, http.MethodGet, "/api/stock-logs?page=1&page_size=10", role, nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, page.TotalCount)
	require.Len(t, page.Items, 4)
	for _, it := range page.Items {
		assert.Equal(t, it.QuantityBefore+it.QuantityChange, it.QuantityAfter)
		require.NotNil(t, it.ProductName)
		assert.Equal(t, "Tornillo", *it.ProductName)
	}

	var transfers dto.StockLogPageResponse
	status = api.call(t, http.MethodGet, "/api/stock-logs?change_type=TransferOut&product_id="+prod, role, nil, &transfers)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, transfers.Items, 1)
	assert.Equal(t, -50, transfers.Items[0].QuantityChange)
	require.NotNil(t, transfers.Items[0].TransferID)
	assert.Equal(t, tr.TransferID, *transfers.Items[0].TransferID)
}

func TestAPI_VentasDeHoy(t *testing.T) {
	api := newAPI(t)
	wh := api.createWarehouse(t, "Norte")
	prod := api.createProduct(t, "Tuerca", "2.50")
	role := entity.RoleAdmin

	require.Equal(t, http.StatusCreated, api.call(t, http.MethodPost, "/api/inventory", role,
		dto.CreateInventoryRequest{ProductID: prod, WarehouseID: wh, Quantity: 10}, nil))
	require.Equal(t, http.StatusOK, api.call(t, http.MethodPost, "/api/inventory/deplete", role,
		dto.StockMovementRequest{ProductID: prod, WarehouseID: wh, Quantity: 4}, nil))

	var sales dto.SalesTodayResponse
	status := api.call(t, http.MethodGet, "/api/stock-logs/sales/today", role, nil, &sales)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2025-06-02", sales.Date)
	assert.Equal(t, 4, sales.UnitsSold)
	assert.True(t, decimal.RequireFromString("10").Equal(sales.TotalSalesValue), "4 × 2.50")
	assert.Empty(t, sales.MissingProductIDs)
}

func TestAPI_StockBajo(t *testing.T) {
	api := newAPI(t)
	wh := api.createWarehouse(t, "Norte")
	low := api.createProduct(t, "Arandela", "1")
	ok := api.createProduct(t, "Clavo", "1")
	role := entity.RoleWarehouse

	require.Equal(t, http.StatusCreated, api.call(t, http.MethodPost, "/api/inventory", role,
		dto.CreateInventoryRequest{ProductID: low, WarehouseID: wh, Quantity: 3}, nil))
	require.Equal(t, http.StatusCreated, api.call(t, http.MethodPost, "/api/inventory", role,
		dto.CreateInventoryRequest{ProductID: ok, WarehouseID: wh, Quantity: 30}, nil))

	var items []dto.InventoryResponse
	status := api.call(t, http.MethodGet, "/api/inventory/low-stock?warehouse_id="+wh, role, nil, &items)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 1)
	assert.Equal(t, low, items[0].ProductID)
	assert.True(t, items[0].IsLowStock)

	var list dto.InventoryListResponse
	status = api.call(t, http.MethodGet, "/api/inventory?limit=1", role, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 2, list.Page.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ValidacionDeEntrada(t *testing.T) {
	api := newAPI(t)
	wh := api.createWarehouse(t, "Norte")
	prod := api.createProduct(t, "Tornillo", "1")
	role := entity.RoleWarehouse

	var errResp dto.ErrorResponse
	status := api.call(t, http.MethodPost, "/api/inventory/restock", role,
		dto.StockMovementRequest{ProductID: prod, WarehouseID: wh, Quantity: 0}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errResp.Code)
	assert.Contains(t, errResp.Details, "quantity")

	status = api.call(t, http.MethodPost, "/api/inventory/transfer", role,
		dto.TransferRequest{ProductID: prod, SourceWarehouseID: wh, DestinationWarehouseID: wh, Quantity: 1}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	status = api.call(t, http.MethodPost, "/api/products", role,
		dto.CreateProductRequest{Name: "Gratis", Price: decimal.Zero}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	status = api.call(t, http.MethodGet, "/api/stock-logs?page=0", role, nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	status = api.call(t, http.MethodGet, "/api/stock-logs?change_type=Robo", role, nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	status = api.call(t, http.MethodGet, "/api/stock-logs?from=ayer", role, nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_PaginacionDelLedger(t *testing.T) {
	api := newAPI(t)
	role := entity.RoleWarehouse

	for _, q := range []string{"page=abc", "page_size=x", "page=1.5"} {
		var errResp dto.ErrorResponse
		status := api.call(t, http.MethodGet, "/api/stock-logs?"+q, role, nil, &errResp)
		assert.Equal(t, http.StatusBadRequest, status, q)
		assert.Equal(t, "VALIDATION", errResp.Code, q)
	}

	var page dto.StockLogPageResponse
	status := api.call(t, http.MethodGet, "/api/stock-logs?page=3&page_size=4611686018427387904", role, nil, &page)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, dto.MaxPageSize, page.PageSize)
	assert.Equal(t, 3, page.Page)
	assert.Empty(t, page.Items)

	status = api.call(t, http.MethodGet, "/api/stock-logs", role, nil, &page)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
}

func TestAPI_RecursosInexistentesYConflictos(t *testing.T) {
	api := newAPI(t)
	wh := api.createWarehouse(t, "Norte")
	prod := api.createProduct(t, "Tornillo", "1")
	missing := "00000000-0000-0000-0000-00000000dead"
	role := entity.RoleAdmin

	var errResp dto.ErrorResponse
	status := api.call(t, http.MethodPost, "/api/inventory/restock", role,
		dto.StockMovementRequest{ProductID: prod, WarehouseID: wh, Quantity: 5}, &errResp)
	assert.Equal(t, http.StatusNotFound, status, "sin asignación inicial no hay registro")

	status = api.call(t, http.MethodPost, "/api/inventory", role,
		dto.CreateInventoryRequest{ProductID: missing, WarehouseID: wh, Quantity: 5}, &errResp)
	assert.Equal(t, http.StatusNotFound, status)

	require.Equal(t, http.StatusCreated, api.call(t, http.MethodPost, "/api/inventory", role,
		dto.CreateInventoryRequest{ProductID: prod, WarehouseID: wh, Quantity: 5}, nil))
	status = api.call(t, http.MethodPost, "/api/inventory", role,
		dto.CreateInventoryRequest{ProductID: prod, WarehouseID: wh, Quantity: 5}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", errResp.Code)

	status = api.call(t, http.MethodDelete, "/api/warehouses/"+wh, role, nil, &errResp)
	assert.Equal(t, http.StatusConflict, status, "la bodega tiene inventario")

	status = api.call(t, http.MethodGet, "/api/products/"+missing, role, nil, &errResp)
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth, roles y superficie operativa
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_StockLogsRequierenRolDeBodega(t *testing.T) {
	api := newAPI(t)
	status := api.call(t, http.MethodGet, "/api/stock-logs", entity.RoleCustomer, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = api.call(t, http.MethodGet, "/api/stock-logs", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = api.call(t, http.MethodGet, "/api/inventory", entity.RoleCustomer, nil, nil)
	assert.Equal(t, http.StatusOK, status, "el inventario solo requiere sesión")
}

func TestAPI_RegistroLoginCookieYLogout(t *testing.T) {
	api := newAPI(t)
	creds := dto.RegisterRequest{Username: "operario", Password: "password123"}

	var user dto.UserResponse
	require.Equal(t, http.StatusCreated, api.call(t, http.MethodPost, "/api/auth/register", "", creds, &user))
	assert.Equal(t, entity.RoleWarehouse, user.Role)
	assert.Equal(t, http.StatusConflict, api.call(t, http.MethodPost, "/api/auth/register", "", creds, nil))

	raw, _ := json.Marshal(dto.LoginRequest{Username: creds.Username, Password: creds.Password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == testCookieName {
			session = ck
		}
	}
	require.NotNil(t, session, "login debe dejar la cookie de sesión")
	assert.True(t, session.HttpOnly)

	// La cookie sola autentica.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: session.Value})
	resp, err = api.app.Test(req, -1)
	require.NoError(t, err)
	var me map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	resp.Body.Close()
	assert.Equal(t, "operario", me["username"])

	var name map[string]string
	require.Equal(t, http.StatusOK, api.call(t, http.MethodGet, "/api/users/"+user.ID+"/username", entity.RoleAdmin, nil, &name))
	assert.Equal(t, "operario", name["username"])

	bad := dto.LoginRequest{Username: creds.Username, Password: "incorrecta"}
	assert.Equal(t, http.StatusUnauthorized, api.call(t, http.MethodPost, "/api/auth/login", "", bad, nil))

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	resp, err = api.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, ck := range resp.Cookies() {
		if ck.Name == testCookieName {
			assert.Empty(t, ck.Value, "logout vacía la cookie")
		}
	}
}

func TestAPI_HealthYMetrics(t *testing.T) {
	api := newAPI(t)
	assert.Equal(t, http.StatusOK, api.call(t, http.MethodGet, "/health", "", nil, nil))
	api.call(t, http.MethodGet, "/api/products", entity.RoleAdmin, nil, nil)

	resp, err := api.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "test_http_requests_total")
}
