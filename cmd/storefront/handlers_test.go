package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/auth"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/events"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/lock"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/memstore"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/order"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

//
// ===== test server wired on the in-memory store =====
//

const adminEmail = "admin@vestir.shop"

func newTestRouter(t *testing.T) (*gin.Engine, *events.Recorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := memstore.New()
	log := logger.NewNop()
	locks := lock.NewLocal()
	rec := &events.Recorder{}
	tokens := auth.NewJWT("test-secret", time.Hour)
	a := &app{
		log:      log,
		tokens:   tokens,
		products: db.Products(),
		carts:    cart.NewService(db.Carts(), db.Products(), locks, log),
		orders:   order.NewService(db.Orders(), db.Carts(), db.Products(), db.Users(), locks, rec, log),
		users:    user.NewService(db.Users(), tokens, []string{adminEmail}, log),
	}
	return newRouter(a), rec
}

func call(t *testing.T, r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r http.Handler, name, email string) string {
	t.Helper()
	w := call(t, r, http.MethodPost, "/api/auth/register", "",
		`{"name":"`+name+`","email":"`+email+`","password":"secret1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got.Token == "" {
		t.Fatalf("invalid register response: %s", w.Body.String())
	}
	return got.Token
}

func createProduct(t *testing.T, r http.Handler, adminTok, name string, price float64) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"name": name, "category": "Men", "price": price, "stock": 10, "image": "https://cdn/x.jpg",
	})
	w := call(t, r, http.MethodPost, "/api/products", adminTok, string(body))
	if w.Code != http.StatusCreated {
		t.Fatalf("create product status=%d body=%s", w.Code, w.Body.String())
	}
	var p struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	return p.ID
}

type cartResp struct {
	Items []struct {
		Product  *struct{ ID string } `json:"product"`
		Quantity int                  `json:"quantity"`
		Size     *string              `json:"size"`
	} `json:"items"`
	Total float64 `json:"total"`
}

type orderResp struct {
	ID       string `json:"id"`
	Products []struct {
		ProductID string  `json:"productId"`
		Quantity  int     `json:"quantity"`
		Price     float64 `json:"price"`
	} `json:"products"`
	TotalPrice float64 `json:"totalPrice"`
	Status     string  `json:"status"`
}

//
// ===== tests =====
//

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	w := call(t, r, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/api/cart", "/api/products", "/api/orders/user"} {
		w := call(t, r, http.MethodGet, path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r, "Ana", "ana@example.com")

	// duplicate email ⇒ 409
	{
		w := call(t, r, http.MethodPost, "/api/auth/register", "", `{"name":"Ana","email":"ana@example.com","password":"secret1"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d body=%s", w.Code, w.Body.String())
		}
	}
	// short password ⇒ 400
	{
		w := call(t, r, http.MethodPost, "/api/auth/register", "", `{"name":"Bo","email":"bo@example.com","password":"123"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	}
	// wrong password ⇒ 401, unknown email ⇒ 404
	{
		w := call(t, r, http.MethodPost, "/api/auth/login", "", `{"email":"ana@example.com","password":"nope!!"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		w = call(t, r, http.MethodPost, "/api/auth/login", "", `{"email":"ghost@example.com","password":"secret1"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	}
	// good credentials ⇒ 200 + profile works with the new token
	{
		w := call(t, r, http.MethodPost, "/api/auth/login", "", `{"email":"ana@example.com","password":"secret1"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		var got struct {
			Token string `json:"token"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &got)
		w = call(t, r, http.MethodGet, "/api/users/profile", got.Token, "")
		if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"role":"user"`)) {
			t.Fatalf("profile status=%d body=%s", w.Code, w.Body.String())
		}
		if bytes.Contains(w.Body.Bytes(), []byte("secret1")) || bytes.Contains(w.Body.Bytes(), []byte("password")) {
			t.Fatalf("profile leaks credentials: %s", w.Body.String())
		}
	}
}

func TestProductAdminOnly(t *testing.T) {
	r, _ := newTestRouter(t)
	userTok := register(t, r, "Ana", "ana@example.com")
	w := call(t, r, http.MethodPost, "/api/products", userTok,
		`{"name":"Tee","category":"Men","price":10,"stock":1,"image":"x.jpg"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestProductValidationAndListing(t *testing.T) {
	r, _ := newTestRouter(t)
	adminTok := register(t, r, "Admin", adminEmail)

	// invalid category ⇒ 400
	{
		w := call(t, r, http.MethodPost, "/api/products", adminTok,
			`{"name":"Tee","category":"Pets","price":10,"stock":1,"image":"x.jpg"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	}

	createProduct(t, r, adminTok, "Black Tee", 20)
	createProduct(t, r, adminTok, "White Tee", 15)
	createProduct(t, r, adminTok, "Wool Coat", 120)

	w := call(t, r, http.MethodGet, "/api/products?search=tee&sort=price_asc&limit=1&page=2", adminTok, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var page struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if page.Total != 2 || page.TotalPages != 2 || len(page.Products) != 1 || page.Products[0].Name != "Black Tee" {
		t.Fatalf("unexpected page: %+v", page)
	}

	w = call(t, r, http.MethodGet, "/api/products?minPrice=abc", adminTok, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad minPrice, got %d", w.Code)
	}
}

func TestCartRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)
	adminTok := register(t, r, "Admin", adminEmail)
	tok := register(t, r, "Ana", "ana@example.com")
	pid := createProduct(t, r, adminTok, "Tee", 10)
	item := `{"productId":"` + pid + `","quantity":%d,"size":"M","color":"Black"}`

	for _, q := range []string{"2", "3"} {
		w := call(t, r, http.MethodPost, "/api/cart/add", tok, fmtItem(item, q))
		if w.Code != http.StatusOK {
			t.Fatalf("add status=%d body=%s", w.Code, w.Body.String())
		}
	}
	var v cartResp
	w := call(t, r, http.MethodGet, "/api/cart", tok, "")
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if len(v.Items) != 1 || v.Items[0].Quantity != 5 || v.Total != 50 {
		t.Fatalf("after adds: %s", w.Body.String())
	}

	w = call(t, r, http.MethodPut, "/api/cart/update", tok, fmtItem(item, "1"))
	v = cartResp{}
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if w.Code != http.StatusOK || v.Items[0].Quantity != 1 {
		t.Fatalf("after update: %d %s", w.Code, w.Body.String())
	}

	// a different size is a different key ⇒ update is 404
	w = call(t, r, http.MethodPut, "/api/cart/update", tok, `{"productId":"`+pid+`","quantity":4,"size":"L","color":"Black"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = call(t, r, http.MethodDelete, "/api/cart/remove", tok, fmtItem(item, "0"))
	v = cartResp{}
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if w.Code != http.StatusOK || len(v.Items) != 0 || v.Total != 0 {
		t.Fatalf("after remove: %d %s", w.Code, w.Body.String())
	}
}

func TestCartWithoutCart(t *testing.T) {
	r, _ := newTestRouter(t)
	tok := register(t, r, "Ana", "ana@example.com")

	w := call(t, r, http.MethodGet, "/api/cart", tok, "")
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"items":[]`)) {
		t.Fatalf("view without cart: %d %s", w.Code, w.Body.String())
	}
	w = call(t, r, http.MethodDelete, "/api/cart/clear", tok, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("clear without cart: expected 404, got %d", w.Code)
	}
}

func TestCheckoutFlow(t *testing.T) {
	r, rec := newTestRouter(t)
	adminTok := register(t, r, "Admin", adminEmail)
	tok := register(t, r, "Ana", "ana@example.com")
	other := register(t, r, "Bo", "bo@example.com")
	pid := createProduct(t, r, adminTok, "Tee", 12.5)

	// empty cart ⇒ 400
	{
		w := call(t, r, http.MethodPost, "/api/orders/place", tok, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty cart, got %d", w.Code)
		}
	}

	w := call(t, r, http.MethodPost, "/api/cart/add", tok, `{"productId":"`+pid+`","quantity":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add status=%d body=%s", w.Code, w.Body.String())
	}

	w = call(t, r, http.MethodPost, "/api/orders/place", tok, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("place status=%d body=%s", w.Code, w.Body.String())
	}
	var o orderResp
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if o.Status != "Pending" || o.TotalPrice != 25 || len(o.Products) != 1 || o.Products[0].Price != 12.5 {
		t.Fatalf("unexpected order: %s", w.Body.String())
	}
	if n := len(rec.Events()); n != 1 {
		t.Fatalf("expected one event, got %d", n)
	}

	// cart is empty after checkout
	w = call(t, r, http.MethodGet, "/api/cart", tok, "")
	if !bytes.Contains(w.Body.Bytes(), []byte(`"items":[]`)) {
		t.Fatalf("cart not cleared: %s", w.Body.String())
	}

	// price change does not touch the order
	call(t, r, http.MethodPut, "/api/products/"+pid, adminTok, `{"price":99}`)
	w = call(t, r, http.MethodGet, "/api/orders/user", tok, "")
	var mine []orderResp
	_ = json.Unmarshal(w.Body.Bytes(), &mine)
	if len(mine) != 1 || mine[0].TotalPrice != 25 {
		t.Fatalf("order changed with price: %s", w.Body.String())
	}

	// only admins set status; invalid status ⇒ 400
	if w := call(t, r, http.MethodPut, "/api/orders/"+o.ID, tok, `{"status":"Shipped"}`); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w := call(t, r, http.MethodPut, "/api/orders/"+o.ID, adminTok, `{"status":"Lost"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := call(t, r, http.MethodPut, "/api/orders/"+o.ID, adminTok, `{"status":"Delivered"}`); w.Code != http.StatusOK {
		t.Fatalf("status update: %d %s", w.Code, w.Body.String())
	}
	if w := call(t, r, http.MethodGet, "/api/orders", adminTok, ""); w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"Delivered"`)) {
		t.Fatalf("admin list: %d %s", w.Code, w.Body.String())
	} else {
		var all []struct {
			ID   string `json:"id"`
			User *struct {
				Name  string `json:"name"`
				Email string `json:"email"`
			} `json:"user"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &all)
		if len(all) != 1 || all[0].User == nil || all[0].User.Name != "Ana" || all[0].User.Email != "ana@example.com" {
			t.Fatalf("admin list without customer: %s", w.Body.String())
		}
	}

	// another account cannot delete it; the owner can
	if w := call(t, r, http.MethodDelete, "/api/orders/"+o.ID, other, ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign delete, got %d", w.Code)
	}
	if w := call(t, r, http.MethodDelete, "/api/orders/"+o.ID, tok, ""); w.Code != http.StatusOK {
		t.Fatalf("owner delete: %d %s", w.Code, w.Body.String())
	}
}

func TestAdminUsers(t *testing.T) {
	r, _ := newTestRouter(t)
	adminTok := register(t, r, "Admin", adminEmail)
	register(t, r, "Ana", "ana@example.com")

	w := call(t, r, http.MethodGet, "/api/users", adminTok, "")
	var users []struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &users)
	if w.Code != http.StatusOK || len(users) != 2 {
		t.Fatalf("list users: %d %s", w.Code, w.Body.String())
	}
	var anaID string
	for _, u := range users {
		if u.Email == "ana@example.com" {
			anaID = u.ID
		}
	}
	if w := call(t, r, http.MethodDelete, "/api/users/"+anaID, adminTok, ""); w.Code != http.StatusOK {
		t.Fatalf("delete user: %d", w.Code)
	}
	if w := call(t, r, http.MethodDelete, "/api/users/"+anaID, adminTok, ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func fmtItem(tmpl, qty string) string {
	return string(bytes.Replace([]byte(tmpl), []byte("%d"), []byte(qty), 1))
}
