package router

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daviipontes/Dev-Web/pkg/account"
	"github.com/Daviipontes/Dev-Web/pkg/ai"
	"github.com/Daviipontes/Dev-Web/pkg/cart"
	"github.com/Daviipontes/Dev-Web/pkg/catalog"
	"github.com/Daviipontes/Dev-Web/pkg/checkout"
	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/models"
	"github.com/Daviipontes/Dev-Web/pkg/store"
)

type testServer struct {
	engine  *gin.Engine
	store   *store.Store
	backend *store.MemoryBackend
	uploads string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	backend := store.NewMemoryBackend()
	db := store.New(backend)
	require.NoError(t, db.Init(ctx))

	cfg := &global.Config{
		Env:         "test",
		SessionKey:  bytes.Repeat([]byte("k"), 32),
		CORSOrigins: []string{"http://localhost:3000"},
	}
	catalogService := catalog.NewService(db, nil)
	carts := cart.NewService(cart.NewMemoryState(), catalogService)
	uploads := t.TempDir()

	h := &Handler{
		Store:      db,
		Catalog:    catalogService,
		Carts:      carts,
		Checkout:   checkout.NewService(db, carts),
		Accounts:   account.NewService(db),
		Reports:    ai.NewClient("", "", ""),
		Sessions:   NewSessionStore(cfg),
		UploadsDir: uploads,
	}
	engine := InitEngine(cfg)
	gin.SetMode(gin.TestMode)
	InitializeRoutes(engine, h)

	return &testServer{engine: engine, store: db, backend: backend, uploads: uploads}
}

type request struct {
	method  string
	path    string
	body    any
	session string
	cookies []*http.Cookie
	form    map[string]string
	files   map[string]string
}

func (ts *testServer) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var (
		body        = &bytes.Buffer{}
		contentType string
	)
	switch {
	case r.form != nil || r.files != nil:
		w := multipart.NewWriter(body)
		for k, v := range r.form {
			require.NoError(t, w.WriteField(k, v))
		}
		for field, name := range r.files {
			part, err := w.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = part.Write([]byte("fake file"))
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())
		contentType = w.FormDataContentType()
	case r.body != nil:
		require.NoError(t, json.NewEncoder(body).Encode(r.body))
		contentType = "application/json"
	}

	req := httptest.NewRequest(r.method, r.path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.session != "" {
		req.Header.Set(SessionHeader, r.session)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool                     `json:"success"`
	Data    json.RawMessage          `json:"data"`
	Message string                   `json:"message"`
	Errors  []global.ValidationError `json:"errors"`
}

// cookiesOf keeps the last Set-Cookie per name, like a browser would.
func cookiesOf(rec *httptest.ResponseRecorder) []*http.Cookie {
	byName := map[string]*http.Cookie{}
	var order []string
	for _, c := range rec.Result().Cookies() {
		if _, seen := byName[c.Name]; !seen {
			order = append(order, c.Name)
		}
		byName[c.Name] = c
	}
	out := make([]*http.Cookie, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (ts *testServer) signupAndLogin(t *testing.T, email, role string) []*http.Cookie {
	t.Helper()
	rec := ts.do(t, request{method: http.MethodPost, path: "/api/signup", body: map[string]string{
		"email": email, "password": "secret123", "name": "Test", "role": role,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, request{method: http.MethodPost, path: "/api/login", body: map[string]string{
		"email": email, "password": "secret123",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return cookiesOf(rec)
}

func (ts *testServer) createProduct(t *testing.T, cookies []*http.Cookie, name, price string) models.Product {
	t.Helper()
	rec := ts.do(t, request{method: http.MethodPost, path: "/api/products", cookies: cookies, form: map[string]string{
		"name": name, "brand": "Fender", "price": price, "rating": "4", "categories": "Guitars",
		"description": "line one\nline two",
	}, files: map[string]string{"images": "front.PNG"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data struct {
		Product models.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	return data.Product
}

func TestHealthAndSessionHeader(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, request{method: http.MethodGet, path: "/api/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(SessionHeader))
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/health", session: "mine"})
	assert.Equal(t, "mine", rec.Header().Get(SessionHeader))
}

func TestProductLifecycle(t *testing.T) {
	ts := newTestServer(t)
	seller := ts.signupAndLogin(t, "seller@musicall.com", "seller")
	rival := ts.signupAndLogin(t, "rival@musicall.com", "seller")

	product := ts.createProduct(t, seller, "Stratocaster", "1999.90")
	assert.Equal(t, "seller@musicall.com", product.Seller)
	assert.Equal(t, []string{"line one", "line two"}, product.Description)
	require.Len(t, product.Images, 1)
	assert.True(t, strings.HasPrefix(product.Images[0], "uploads/"))
	assert.True(t, strings.HasSuffix(product.Images[0], ".png"))
	_, err := os.Stat(filepath.Join(ts.uploads, filepath.Base(product.Images[0])))
	assert.NoError(t, err)

	rec := ts.do(t, request{method: http.MethodGet, path: "/api/products?query=strat"})
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Product
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	assert.Len(t, list, 1)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/products/999"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decode(t, rec).Success)

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/products/abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, request{method: http.MethodPut, path: "/api/products/1", cookies: seller, form: map[string]string{"price": "1500"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, request{method: http.MethodDelete, path: "/api/products/1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, request{method: http.MethodDelete, path: "/api/products/1", cookies: rival})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, request{method: http.MethodDelete, path: "/api/products/1", cookies: seller})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, request{method: http.MethodDelete, path: "/api/products/1", cookies: seller})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductWithoutOwnerRemovesUploads(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, request{method: http.MethodPost, path: "/api/products", form: map[string]string{
		"name": "Orphan", "price": "10",
	}, files: map[string]string{"images": "a.jpg"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "userEmail", env.Errors[0].Field)

	entries, err := os.ReadDir(ts.uploads)
	require.NoError(t, err)
	assert.Empty(t, entries)

	products, err := store.Load[models.Product](context.Background(), ts.store, store.Products)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCartAndCheckout(t *testing.T) {
	ts := newTestServer(t)
	seller := ts.signupAndLogin(t, "seller@musicall.com", "seller")
	guitar := ts.createProduct(t, seller, "Guitar", "10")
	pick := ts.createProduct(t, seller, "Pick", "5")

	const sid = "cart-session"
	rec := ts.do(t, request{method: http.MethodPut, path: "/api/cart", session: sid, body: map[string]int{"id": guitar.ID, "quantity": 2}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, request{method: http.MethodPost, path: "/api/cart/buy-now", session: sid, body: map[string]int{"id": pick.ID, "quantity": 1}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, request{method: http.MethodPost, path: "/api/cart/buy-now", session: sid, body: map[string]int{"id": pick.ID, "quantity": 2}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, request{method: http.MethodPost, path: "/api/cart/buy-now", session: sid, body: map[string]int{"id": pick.ID, "quantity": math.MaxInt}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, request{method: http.MethodPut, path: "/api/cart", session: sid, body: map[string]int{"id": pick.ID, "quantity": models.MaxCartQuantity + 1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, request{method: http.MethodPut, path: "/api/cart", session: sid, body: map[string]int{"id": 999, "quantity": 1}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, request{method: http.MethodPut, path: "/api/cart", session: sid, body: map[string]int{"id": guitar.ID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, request{method: http.MethodDelete, path: "/api/cart/999", session: sid})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/cart", session: sid})
	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.Cart
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &summary))
	assert.Len(t, summary.Items, 2)
	assert.Equal(t, 35.0, summary.Subtotal)

	// Another session sees its own empty cart.
	rec = ts.do(t, request{method: http.MethodGet, path: "/api/cart", session: "other"})
	var other models.Cart
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &other))
	assert.Empty(t, other.Items)

	rec = ts.do(t, request{method: http.MethodPost, path: "/api/checkout", session: sid, body: map[string]string{"first_name": "Ana"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, request{method: http.MethodPost, path: "/api/checkout", session: sid, form: map[string]string{
		"first_name": "Ana", "last_name": "Silva", "address": "Rua A", "country": "Brasil",
		"state": "SP", "city": "Campinas", "zip_code": "13000", "email": "ana@example.com",
	}, files: map[string]string{"pix_receipt": "receipt.pdf"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var placed struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &placed))
	assert.Equal(t, 35.0, placed.Order.Total)
	assert.Empty(t, placed.Order.UserEmail)
	assert.Equal(t, "ana@example.com", placed.Order.Email)
	assert.True(t, strings.HasSuffix(placed.Order.PixReceipt, ".pdf"))

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/cart", session: sid})
	var after models.Cart
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &after))
	assert.Empty(t, after.Items)

	rec = ts.do(t, request{method: http.MethodPost, path: "/api/checkout", session: sid, body: map[string]string{
		"first_name": "Ana", "last_name": "Silva", "address": "Rua A", "country": "Brasil",
		"state": "SP", "city": "Campinas", "zip_code": "13000", "email": "ana@example.com",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearCart(t *testing.T) {
	ts := newTestServer(t)
	seller := ts.signupAndLogin(t, "seller@musicall.com", "seller")
	guitar := ts.createProduct(t, seller, "Guitar", "10")

	rec := ts.do(t, request{method: http.MethodPut, path: "/api/cart", session: "s", body: map[string]int{"id": guitar.ID, "quantity": 1}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, request{method: http.MethodDelete, path: "/api/cart", session: "s"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/cart", session: "s"})
	var summary models.Cart
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &summary))
	assert.Empty(t, summary.Items)
}

func TestAccountEndpoints(t *testing.T) {
	ts := newTestServer(t)
	cookies := ts.signupAndLogin(t, "buyer@musicall.com", "")

	rec := ts.do(t, request{method: http.MethodPost, path: "/api/signup", body: map[string]string{
		"email": "buyer@musicall.com", "password": "secret123", "name": "Again",
	}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, request{method: http.MethodPost, path: "/api/login", body: map[string]string{
		"email": "buyer@musicall.com", "password": "wrong-pass",
	}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/profile-details"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/profile-details", cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	var profile models.PublicUser
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &profile))
	assert.Equal(t, models.RoleBuyer, profile.Role)

	rec = ts.do(t, request{method: http.MethodPut, path: "/api/profile", cookies: cookies, body: models.Profile{Phone: "1999"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &profile))
	assert.Equal(t, "1999", profile.Profile.Phone)

	rec = ts.do(t, request{method: http.MethodPut, path: "/api/profile/shipping-address", cookies: cookies, body: models.ShippingAddress{City: "Campinas"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &profile))
	assert.Equal(t, "Campinas", profile.ShippingAddress.City)

	rec = ts.do(t, request{method: http.MethodPut, path: "/api/profile/password", cookies: cookies, body: map[string]string{
		"current_password": "secret123", "new_password": "changed123", "confirm_password": "changed123",
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/recent-purchases", cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &orders))
	assert.Empty(t, orders)

	rec = ts.do(t, request{method: http.MethodPost, path: "/api/logout", cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, request{method: http.MethodGet, path: "/api/profile-details", cookies: cookiesOf(rec)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	buyer := ts.signupAndLogin(t, "buyer@musicall.com", "")

	rec := ts.do(t, request{method: http.MethodGet, path: "/api/admin/orders", cookies: buyer})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err := account.NewService(ts.store).CreateAdmin(context.Background(), "admin@musicall.com", "secret123", "Admin")
	require.NoError(t, err)
	rec = ts.do(t, request{method: http.MethodPost, path: "/api/login", body: map[string]string{
		"email": "admin@musicall.com", "password": "secret123",
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	admin := cookiesOf(rec)

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/admin/orders", cookies: admin})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/admin/reports/sales", cookies: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	var report ai.AIReportResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &report))
	assert.False(t, report.AIEnabled)
	assert.Equal(t, 0, report.Data.RawData.OrderCount)
}

func TestLocations(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, request{method: http.MethodGet, path: "/api/locations"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec).Message)

	doc := `[{"country":"Brasil","states":[{"name":"SP","cities":["Campinas"]}]}]`
	require.NoError(t, ts.backend.Save(context.Background(), store.Locations, []byte(doc)))

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/locations"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, doc, string(decode(t, rec).Data))
}

func TestRecentPurchasesExcludeGuestOrders(t *testing.T) {
	ts := newTestServer(t)
	seller := ts.signupAndLogin(t, "seller@musicall.com", "seller")
	buyer := ts.signupAndLogin(t, "buyer@musicall.com", "")
	guitar := ts.createProduct(t, seller, "Guitar", "10")

	form := map[string]string{
		"first_name": "Ana", "last_name": "Silva", "address": "Rua A", "country": "Brasil",
		"state": "SP", "city": "Campinas", "zip_code": "13000", "email": "buyer@musicall.com",
	}

	// A guest typing someone else's email.
	rec := ts.do(t, request{method: http.MethodPut, path: "/api/cart", session: "guest", body: map[string]int{"id": guitar.ID, "quantity": 1}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, request{method: http.MethodPost, path: "/api/checkout", session: "guest", body: form})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/recent-purchases", cookies: buyer})
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &orders))
	assert.Empty(t, orders)

	rec = ts.do(t, request{method: http.MethodPut, path: "/api/cart", cookies: buyer, body: map[string]int{"id": guitar.ID, "quantity": 2}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, request{method: http.MethodPost, path: "/api/checkout", cookies: buyer, body: form})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/recent-purchases", cookies: buyer})
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "buyer@musicall.com", orders[0].UserEmail)
	assert.Equal(t, 20.0, orders[0].Total)

	rec = ts.do(t, request{method: http.MethodGet, path: "/api/profile-details", cookies: buyer})
	var profile models.PublicUser
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &profile))
	assert.Equal(t, []int{2}, profile.Orders)
}
