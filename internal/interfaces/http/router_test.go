package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/infrastructure/memory"
	"github.com/jhoicas/taller-stock/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/taller-stock/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/taller-stock/pkg/jwt"
	"github.com/jhoicas/taller-stock/pkg/logger"
)

const (
	otherBranchID = "00000000-0000-0000-0000-0000000000b2"
	locMain       = "loc-main"
	locOther      = "loc-other"
	partFilter    = "part-filter"
)

// newAPI arma la API completa sobre el almacenamiento en memoria con dos sucursales.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	store.AddBranch(entity.Branch{ID: testBranchID, Code: "PRI", Name: "Principal"})
	store.AddBranch(entity.Branch{ID: otherBranchID, Code: "NOR", Name: "Norte"})
	store.AddLocation(entity.Location{ID: locMain, BranchID: testBranchID, Name: "Estante A"})
	store.AddLocation(entity.Location{ID: locOther, BranchID: otherBranchID, Name: "Bodega"})
	store.AddPart(entity.Part{ID: partFilter, SKU: "FLT-001", Name: "Filtro de aceite", UnitMeasure: "UND"})
	store.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Repuestos SAS"})
	store.AddJob(testBranchID, "job-1")

	repos, master := store.Repos(), store.MasterData()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Adjustments:    stock.NewAdjustmentUseCase(store, repos, master, nil),
		PurchaseOrders: stock.NewPurchaseOrderUseCase(store, repos, master, nil),
		Transfers:      stock.NewTransferUseCase(store, repos, master, nil, pdf.NewManifestGenerator()),
		Consumption:    stock.NewConsumptionUseCase(store, repos, master, nil),
		Queries:        stock.NewQueryUseCase(store, repos),
		JWTSecret:      testJWTSecret,
		ServiceName:    "taller-stock-test",
		Log:            logger.Nop(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func adjust(t *testing.T, app *fiber.App, auth string, delta int64) *http.Response {
	t.Helper()
	return call(t, app, http.MethodPost, "/api/stock/adjustments", auth, dto.AdjustStockRequest{
		LocationID:    locMain,
		PartID:        partFilter,
		QuantityDelta: decimal.NewFromInt(delta),
		Reason:        "conteo físico",
	})
}

func TestHealth(t *testing.T) {
	resp := call(t, newAPI(t), http.MethodGet, "/health", "", nil)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestAPI_RequiereToken(t *testing.T) {
	resp := call(t, newAPI(t), http.MethodGet, "/api/stock", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdjust_ActualizaSaldoYLibro(t *testing.T) {
	app := newAPI(t)
	auth := tokenForRole(t, apphttp.RoleBodeguero)

	resp := adjust(t, app, auth, 10)
	adj := decode[dto.AdjustmentResponse](t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, adj.LedgerEntryID)

	resp = call(t, app, http.MethodGet, "/api/stock?part_id="+partFilter, auth, nil)
	list := decode[dto.StockListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(list.Items[0].QuantityOnHand))

	resp = call(t, app, http.MethodGet, "/api/stock/ledger?movement_type=ADJUSTMENT_PLUS", auth, nil)
	ledger := decode[dto.LedgerListResponse](t, resp)
	require.Len(t, ledger.Items, 1)
	assert.Equal(t, adj.LedgerEntryID, ledger.Items[0].ID)

	resp = call(t, app, http.MethodGet, "/api/stock/reconciliation", auth, nil)
	rec := decode[dto.ReconciliationResponse](t, resp)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 1, rec.KeysChecked)
}

func TestAdjust_MapeoDeErrores(t *testing.T) {
	app := newAPI(t)
	auth := tokenForRole(t, apphttp.RoleAdmin)

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"delta cero", dto.AdjustStockRequest{LocationID: locMain, PartID: partFilter, Reason: "x"}, http.StatusBadRequest, "VALIDATION"},
		{"ubicación de otra sucursal", dto.AdjustStockRequest{LocationID: locOther, PartID: partFilter, QuantityDelta: decimal.NewFromInt(1), Reason: "x"}, http.StatusNotFound, "NOT_FOUND"},
		{"saldo negativo", dto.AdjustStockRequest{LocationID: locMain, PartID: partFilter, QuantityDelta: decimal.NewFromInt(-1), Reason: "x"}, http.StatusConflict, "INSUFFICIENT_STOCK"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, app, http.MethodPost, "/api/stock/adjustments", auth, tc.body)
			body := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, body.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/stock/adjustments", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body.Code)
}

func TestAdjust_TecnicoNoPuedeAjustar(t *testing.T) {
	resp := adjust(t, newAPI(t), tokenForRole(t, apphttp.RoleTecnico), 1)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdjust_IdempotencyKey(t *testing.T) {
	app := newAPI(t)
	auth := tokenForRole(t, apphttp.RoleAdmin)
	body := dto.AdjustStockRequest{LocationID: locMain, PartID: partFilter, QuantityDelta: decimal.NewFromInt(4), Reason: "ingreso"}

	first := decode[dto.AdjustmentResponse](t, call(t, app, http.MethodPost, "/api/stock/adjustments", auth, body, "Idempotency-Key", "k-1"))
	second := decode[dto.AdjustmentResponse](t, call(t, app, http.MethodPost, "/api/stock/adjustments", auth, body, "Idempotency-Key", "k-1"))
	assert.Equal(t, first.ID, second.ID)

	list := decode[dto.StockListResponse](t, call(t, app, http.MethodGet, "/api/stock", auth, nil))
	require.Len(t, list.Items, 1)
	assert.True(t, decimal.NewFromInt(4).Equal(list.Items[0].QuantityOnHand))
}

func TestPurchaseOrder_FlujoCompleto(t *testing.T) {
	app := newAPI(t)
	auth := tokenForRole(t, apphttp.RoleBodeguero)

	resp := call(t, app, http.MethodPost, "/api/purchase-orders", auth, dto.CreatePurchaseOrderRequest{
		SupplierID: "sup-1",
		Items:      []dto.PurchaseOrderItemRequest{{PartID: partFilter, Qty: decimal.NewFromInt(5), UnitCost: decimal.NewFromInt(1000)}},
	})
	po := decode[dto.PurchaseOrderResponse](t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "DRAFT", po.Status)
	assert.Equal(t, "PO-000001", po.OrderNumber)

	// Recibir en DRAFT no está permitido
	receive := dto.ReceivePurchaseOrderRequest{
		LocationID: locMain,
		Items:      []dto.ReceiveItemRequest{{PartID: partFilter, ReceiveQty: decimal.NewFromInt(5)}},
	}
	resp = call(t, app, http.MethodPost, "/api/purchase-orders/"+po.ID+"/receive", auth, receive)
	assert.Equal(t, "INVALID_TRANSITION", decode[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodPost, "/api/purchase-orders/"+po.ID+"/submit", auth, nil)
	assert.Equal(t, "ORDERED", decode[dto.PurchaseOrderResponse](t, resp).Status)

	over := dto.ReceivePurchaseOrderRequest{
		LocationID: locMain,
		Items:      []dto.ReceiveItemRequest{{PartID: partFilter, ReceiveQty: decimal.NewFromInt(6)}},
	}
	resp = call(t, app, http.MethodPost, "/api/purchase-orders/"+po.ID+"/receive", auth, over)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "OVER_RECEIVE", decode[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodPost, "/api/purchase-orders/"+po.ID+"/receive", auth, receive)
	done := decode[dto.PurchaseOrderResponse](t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RECEIVED", done.Status)

	resp = call(t, app, http.MethodGet, "/api/purchase-orders?status=RECEIVED", auth, nil)
	list := decode[dto.PurchaseOrderListResponse](t, resp)
	assert.Equal(t, 1, list.Page.Total)

	resp = call(t, app, http.MethodGet, "/api/purchase-orders/no-existe", auth, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestTransfer_EntreSucursales(t *testing.T) {
	app := newAPI(t)
	origin := tokenForRole(t, apphttp.RoleBodeguero)
	dest := tokenFor(t, pkgjwt.Identity{UserID: "user-norte", BranchID: otherBranchID, Role: apphttp.RoleBodeguero})

	resp := adjust(t, app, origin, 8)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/transfers", origin, dto.CreateTransferRequest{
		FromLocationID: locMain,
		ToBranchID:     otherBranchID,
		ToLocationID:   locOther,
		Items:          []dto.TransferItemRequest{{PartID: partFilter, Qty: decimal.NewFromInt(3)}},
	})
	tr := decode[dto.TransferResponse](t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Despachar en DRAFT no está permitido
	resp = call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/ship", origin, nil)
	assert.Equal(t, "INVALID_TRANSITION", decode[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/request", origin, nil)
	assert.Equal(t, "REQUESTED", decode[dto.TransferResponse](t, resp).Status)

	// El destino no puede despachar
	resp = call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/ship", dest, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/ship", origin, nil)
	assert.Equal(t, "SHIPPED", decode[dto.TransferResponse](t, resp).Status)

	resp = call(t, app, http.MethodGet, "/api/transfers/in-transit", dest, nil)
	transit := decode[struct {
		Total int                 `json:"total"`
		Items []dto.InTransitLine `json:"items"`
	}](t, resp)
	require.Equal(t, 1, transit.Total)
	assert.True(t, decimal.NewFromInt(3).Equal(transit.Items[0].Qty))

	resp = call(t, app, http.MethodGet, "/api/transfers/"+tr.ID+"/manifest", origin, nil)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp = call(t, app, http.MethodPost, "/api/transfers/"+tr.ID+"/receive", dest, nil)
	assert.Equal(t, "RECEIVED", decode[dto.TransferResponse](t, resp).Status)

	resp = call(t, app, http.MethodGet, "/api/stock", dest, nil)
	list := decode[dto.StockListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.True(t, decimal.NewFromInt(3).Equal(list.Items[0].QuantityOnHand))

	resp = call(t, app, http.MethodGet, "/api/transfers?direction=incoming", dest, nil)
	assert.Equal(t, 1, decode[dto.TransferListResponse](t, resp).Page.Total)
}

func TestJobs_ConsumoYListado(t *testing.T) {
	app := newAPI(t)
	resp := adjust(t, app, tokenForRole(t, apphttp.RoleAdmin), 2)
	resp.Body.Close()

	tech := tokenForRole(t, apphttp.RoleTecnico)
	consume := dto.ConsumePartRequest{LocationID: locMain, PartID: partFilter, Qty: decimal.NewFromInt(2)}
	resp = call(t, app, http.MethodPost, "/api/jobs/job-1/parts", tech, consume)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/jobs/job-1/parts", tech, consume)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodPost, "/api/jobs/job-x/parts", tech, consume)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/jobs/job-1/parts", tech, nil)
	usages := decode[[]dto.PartUsageResponse](t, resp)
	require.Len(t, usages, 1)
	assert.Equal(t, testUserID, usages[0].UsedBy)
}
