package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"perrada/internal/imagehost"
	"perrada/internal/metrics"
	"perrada/internal/models"
	"perrada/internal/orders"
	"perrada/internal/store"
	"perrada/internal/store/mock_store"
)

type orderFixture struct {
	router   *gin.Engine
	repo     *mock_store.MockOrderRepository
	settings *mock_store.MockSettingsRepository
	board    *orders.Board
	svc      *orders.Service
}

func newOrderFixture(t *testing.T, loaded []models.Order) orderFixture {
	ctrl := gomock.NewController(t)
	f := orderFixture{
		repo:     mock_store.NewMockOrderRepository(ctrl),
		settings: mock_store.NewMockSettingsRepository(ctrl),
		board:    orders.NewBoard(),
	}
	if loaded != nil {
		f.board.Load(loaded)
	}
	hub := orders.NewHub()
	f.svc = orders.NewService(f.repo, f.board, hub, false)

	d := OrderDeps{Service: f.svc, Orders: f.repo, Settings: f.settings, Hub: hub, Location: time.UTC}
	r := newTestRouter()
	r.GET("/admin/api/orders", ListOrders(d))
	r.GET("/admin/api/orders/board", GetBoard(d))
	r.POST("/admin/api/orders/:id/advance", AdvanceOrder(d))
	r.POST("/admin/api/orders/:id/forward", ForwardOrder(d))
	r.POST("/admin/api/orders/:id/back", BackOrder(d))
	r.GET("/admin/api/orders/:id/ticket", GetTicket(d))
	r.GET("/admin/api/dashboard", GetDashboard(d))
	f.router = r
	return f
}

func placedOrder(status models.OrderStatus, at time.Time) models.Order {
	return models.Order{
		ID:              primitive.NewObjectID(),
		CustomerName:    "Ana",
		CustomerPhone:   "3001234567",
		CustomerAddress: "Calle 10",
		Items:           []models.OrderItem{{ProductID: primitive.NewObjectID(), ProductName: "Perro Sencillo", Quantity: 2, UnitPrice: 8000}},
		TotalAmount:     16000,
		PaymentMethod:   models.PaymentCash,
		Status:          status,
		OrderDate:       at,
	}
}

func TestListOrdersCurrentShiftWithoutShift(t *testing.T) {
	f := newOrderFixture(t, []models.Order{placedOrder(models.StatusPendingPayment, time.Now())})
	f.settings.EXPECT().Get(gomock.Any()).Return(models.ShopSettings{IsOpen: false}, nil)

	w := do(f.router, http.MethodGet, "/admin/api/orders", "")

	require.Equal(t, http.StatusOK, w.Code)
	var result orders.FilterResult
	decode(t, w, &result)
	assert.Equal(t, orders.FilterCurrentShift, result.Mode)
	assert.True(t, result.NoActiveShift)
	assert.Empty(t, result.Orders)
}

func TestListOrdersRemembersFilterInCookie(t *testing.T) {
	old := placedOrder(models.StatusCompleted, time.Now().AddDate(0, 0, -30))
	recent := placedOrder(models.StatusPendingPayment, time.Now())
	f := newOrderFixture(t, []models.Order{old, recent})
	f.settings.EXPECT().Get(gomock.Any()).Return(openShop(), nil).Times(2)

	w := do(f.router, http.MethodGet, "/admin/api/orders?filter=all", "")

	require.Equal(t, http.StatusOK, w.Code)
	var result orders.FilterResult
	decode(t, w, &result)
	assert.Equal(t, 2, result.Count)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, orders.FilterCookie, cookies[0].Name)
	assert.Equal(t, "all", cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/orders", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	decode(t, w, &result)
	assert.Equal(t, orders.FilterAll, result.Mode)
	assert.Equal(t, 2, result.Count)
}

func TestListOrdersRejectsUnknownFilter(t *testing.T) {
	f := newOrderFixture(t, nil)

	w := do(f.router, http.MethodGet, "/admin/api/orders?filter=yesterday", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrdersReadsDatabaseBeforeBoardLoads(t *testing.T) {
	f := newOrderFixture(t, nil)
	f.settings.EXPECT().Get(gomock.Any()).Return(openShop(), nil)
	f.repo.EXPECT().List(gomock.Any(), gomock.Not(gomock.Nil())).
		Return([]models.Order{placedOrder(models.StatusPendingPayment, time.Now())}, nil)

	w := do(f.router, http.MethodGet, "/admin/api/orders?filter=today", "")

	require.Equal(t, http.StatusOK, w.Code)
	var result orders.FilterResult
	decode(t, w, &result)
	assert.Equal(t, 1, result.Count)
}

func TestGetBoardGroupsColumns(t *testing.T) {
	f := newOrderFixture(t, []models.Order{
		placedOrder(models.StatusPendingPayment, time.Now()),
		placedOrder(models.StatusPreparing, time.Now()),
		placedOrder(models.StatusCancelled, time.Now()),
	})
	f.settings.EXPECT().Get(gomock.Any()).Return(openShop(), nil)

	w := do(f.router, http.MethodGet, "/admin/api/orders/board", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Columns []struct {
			Status models.OrderStatus `json:"status"`
			Count  int                `json:"count"`
		} `json:"columns"`
		Cancelled []orders.BoardOrder `json:"cancelled"`
		Count     int                 `json:"count"`
	}
	decode(t, w, &body)
	require.Len(t, body.Columns, 4)
	assert.Equal(t, 1, body.Columns[0].Count)
	assert.Equal(t, 1, body.Columns[1].Count)
	assert.Len(t, body.Cancelled, 1)
	assert.Equal(t, 3, body.Count)
}

func TestAdvanceOrder(t *testing.T) {
	o := placedOrder(models.StatusPendingPayment, time.Now())
	f := newOrderFixture(t, []models.Order{o})

	w := do(f.router, http.MethodPost, "/admin/api/orders/"+o.ID.Hex()+"/advance", `{"status":"EN_PREPARACION"}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	got, ok := f.board.Get(o.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusPreparing, got.Status)
}

func TestAdvanceOrderRejectsSkippedStatus(t *testing.T) {
	o := placedOrder(models.StatusPendingPayment, time.Now())
	f := newOrderFixture(t, []models.Order{o})

	w := do(f.router, http.MethodPost, "/admin/api/orders/"+o.ID.Hex()+"/advance", `{"status":"COMPLETADO"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdvanceOrderInvalidStatus(t *testing.T) {
	o := placedOrder(models.StatusPendingPayment, time.Now())
	f := newOrderFixture(t, []models.Order{o})

	w := do(f.router, http.MethodPost, "/admin/api/orders/"+o.ID.Hex()+"/advance", `{"status":"VOLANDO"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForwardAndBack(t *testing.T) {
	o := placedOrder(models.StatusReadyDelivery, time.Now())
	f := newOrderFixture(t, []models.Order{o})

	w := do(f.router, http.MethodPost, "/admin/api/orders/"+o.ID.Hex()+"/forward", "")
	require.Equal(t, http.StatusAccepted, w.Code)

	w = do(f.router, http.MethodPost, "/admin/api/orders/"+o.ID.Hex()+"/forward", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(f.router, http.MethodPost, "/admin/api/orders/"+o.ID.Hex()+"/back", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	got, _ := f.board.Get(o.ID)
	assert.Equal(t, models.StatusReadyDelivery, got.Status)
}

func TestAdvanceUnknownOrder(t *testing.T) {
	f := newOrderFixture(t, []models.Order{})
	id := primitive.NewObjectID()
	f.repo.EXPECT().Get(gomock.Any(), id).Return(models.Order{}, store.ErrNotFound)

	w := do(f.router, http.MethodPost, "/admin/api/orders/"+id.Hex()+"/forward", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTicket(t *testing.T) {
	o := placedOrder(models.StatusPreparing, time.Date(2024, time.October, 17, 19, 30, 0, 0, time.UTC))
	f := newOrderFixture(t, []models.Order{o})

	w := do(f.router, http.MethodGet, "/admin/api/orders/"+o.ID.Hex()+"/ticket", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, w.Body.String(), "#"+o.ShortID())
	assert.Contains(t, w.Body.String(), "Perro Sencillo")
}

func TestGetDashboard(t *testing.T) {
	f := newOrderFixture(t, []models.Order{
		placedOrder(models.StatusCompleted, time.Now()),
		placedOrder(models.StatusCompleted, time.Now()),
		placedOrder(models.StatusPendingPayment, time.Now()),
	})
	f.settings.EXPECT().Get(gomock.Any()).Return(openShop(), nil)

	w := do(f.router, http.MethodGet, "/admin/api/dashboard", "")

	require.Equal(t, http.StatusOK, w.Code)
	var dashboard metrics.Dashboard
	decode(t, w, &dashboard)
	assert.Equal(t, 1, dashboard.ActiveOrders)
	assert.Equal(t, 2, dashboard.CompletedOrders)
	assert.Equal(t, int64(32000), dashboard.TotalRevenue)
	assert.Len(t, dashboard.RecentSales, 7)
}

func multipartImage(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadImageToLocalDisk(t *testing.T) {
	root := t.TempDir()
	r := newTestRouter()
	r.POST("/admin/api/uploads", UploadImage(imagehost.NewLocal(root)))

	body, contentType := multipartImage(t, "perro.PNG", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/admin/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	decode(t, w, &resp)
	require.True(t, strings.HasPrefix(resp.ImageURL, "/public/uploads/products/"))
	assert.True(t, strings.HasSuffix(resp.ImageURL, ".png"))

	stored, err := os.ReadFile(filepath.Join(root, strings.TrimPrefix(resp.ImageURL, "/public/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(stored))
}

func TestUploadImageRejectsType(t *testing.T) {
	r := newTestRouter()
	r.POST("/admin/api/uploads", UploadImage(imagehost.NewLocal(t.TempDir())))

	body, contentType := multipartImage(t, "menu.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/admin/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadSignatureNotConfigured(t *testing.T) {
	r := newTestRouter()
	r.GET("/admin/api/uploads/signature", UploadSignature(nil))

	w := do(r, http.MethodGet, "/admin/api/uploads/signature", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type stubGenerator struct {
	uri string
	err error
}

func (s stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return s.uri, s.err
}

func TestGenerateImage(t *testing.T) {
	r := newTestRouter()
	r.POST("/ok", GenerateImage(stubGenerator{uri: "data:image/png;base64,AAAA"}))
	r.POST("/fail", GenerateImage(stubGenerator{err: errors.New("quota")}))
	r.POST("/off", GenerateImage(nil))

	w := do(r, http.MethodPost, "/ok", `{"productName":"Perro Especial"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"imageUrl":"data:image/png;base64,AAAA"}`, w.Body.String())

	assert.Equal(t, http.StatusBadGateway, do(r, http.MethodPost, "/fail", `{"productName":"Perro"}`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodPost, "/off", `{"productName":"Perro"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/ok", `{"productName":"   "}`).Code)
}
