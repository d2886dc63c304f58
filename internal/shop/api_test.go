package shop_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/session"
	"MiniShop/internal/shop"
	"MiniShop/internal/user"
)

func newShopTS(t *testing.T) *httptest.Server {
	t.Helper()

	cat := catalog.NewStore()
	s := &shop.Server{
		Log:      zap.NewNop(),
		Users:    user.NewFileStore(filepath.Join(t.TempDir(), "users.json"), zap.NewNop()),
		Sessions: session.NewRegistry(session.Options{}),
		Catalog:  cat,
		Carts:    cart.NewRegistry(cat),
	}

	h := shop.NewHandler(s, shop.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "minishop",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func sessionHeaders(token string) map[string]string {
	return map[string]string{"X-Session-Id": token}
}

func signupAndLogin(t *testing.T, c *http.Client, baseURL, username, password string) string {
	t.Helper()

	resp, raw := doJSON(t, c, http.MethodPost, baseURL+"/api/signup", map[string]any{
		"username": username,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup status=%d body=%s", resp.StatusCode, string(raw))
	}

	resp, raw = doJSON(t, c, http.MethodPost, baseURL+"/api/login", map[string]any{
		"username": username,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d body=%s", resp.StatusCode, string(raw))
	}

	var lr struct {
		Success   bool   `json:"success"`
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(raw, &lr); err != nil {
		t.Fatalf("decode login: %v body=%s", err, string(raw))
	}
	if !lr.Success || lr.SessionID == "" {
		t.Fatalf("bad login response: %s", string(raw))
	}
	return lr.SessionID
}

func TestAPI_HappyPath(t *testing.T) {
	ts := newShopTS(t)
	c := &http.Client{}

	sid := signupAndLogin(t, c, ts.URL, "alice", "pw1")

	var products []catalog.Product
	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/products", nil, sessionHeaders(sid))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("products status=%d body=%s", resp.StatusCode, string(raw))
		}
		if err := json.Unmarshal(raw, &products); err != nil {
			t.Fatalf("decode products: %v body=%s", err, string(raw))
		}
		if len(products) != 3 {
			t.Fatalf("products len=%d", len(products))
		}
		if products[1].Name != "Shoes" || products[1].Stock != 6 {
			t.Fatalf("shoes=%+v", products[1])
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/cart/add", map[string]any{
			"productId": 2,
		}, sessionHeaders(sid))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("cart add status=%d body=%s", resp.StatusCode, string(raw))
		}

		var cr struct {
			Cart []cart.Line `json:"cart"`
		}
		if err := json.Unmarshal(raw, &cr); err != nil {
			t.Fatalf("decode cart: %v body=%s", err, string(raw))
		}
		if len(cr.Cart) != 1 {
			t.Fatalf("cart len=%d", len(cr.Cart))
		}
		line := cr.Cart[0]
		if line.ID != 2 || line.Name != "Shoes" || line.Qty != 1 {
			t.Fatalf("line=%+v", line)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/products", nil, sessionHeaders(sid))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("products status=%d", resp.StatusCode)
		}
		if err := json.Unmarshal(raw, &products); err != nil {
			t.Fatalf("decode products: %v", err)
		}
		if products[1].Stock != 5 {
			t.Fatalf("shoes stock=%d, want 5 after add", products[1].Stock)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/checkout", nil, sessionHeaders(sid))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("checkout status=%d body=%s", resp.StatusCode, string(raw))
		}
		var mr struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &mr); err != nil {
			t.Fatalf("decode checkout: %v", err)
		}
		if !mr.Success || mr.Message == "" {
			t.Fatalf("checkout response: %s", string(raw))
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/cart", nil, sessionHeaders(sid))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("cart status=%d", resp.StatusCode)
		}
		var lines []cart.Line
		if err := json.Unmarshal(raw, &lines); err != nil {
			t.Fatalf("decode cart: %v body=%s", err, string(raw))
		}
		if len(lines) != 0 {
			t.Fatalf("cart not empty after checkout: %+v", lines)
		}
	}

	// checkout must not restock
	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/products", nil, sessionHeaders(sid))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("products status=%d", resp.StatusCode)
		}
		if err := json.Unmarshal(raw, &products); err != nil {
			t.Fatalf("decode products: %v", err)
		}
		if products[1].Stock != 5 {
			t.Fatalf("shoes stock=%d, want 5 after checkout", products[1].Stock)
		}
	}
}

func TestAPI_StoreRoutesRequireSession(t *testing.T) {
	ts := newShopTS(t)
	c := &http.Client{}

	routes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/products", nil},
		{http.MethodPost, "/api/cart/add", map[string]any{"productId": 1}},
		{http.MethodGet, "/api/cart", nil},
		{http.MethodPost, "/api/checkout", nil},
	}

	for _, rt := range routes {
		resp, raw := doJSON(t, c, rt.method, ts.URL+rt.path, rt.body, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s without token: status=%d body=%s", rt.method, rt.path, resp.StatusCode, string(raw))
		}

		resp, raw = doJSON(t, c, rt.method, ts.URL+rt.path, rt.body, sessionHeaders("s_bogus"))
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s with bogus token: status=%d body=%s", rt.method, rt.path, resp.StatusCode, string(raw))
		}
	}
}

func TestAPI_LogoutInvalidatesToken(t *testing.T) {
	ts := newShopTS(t)
	c := &http.Client{}

	sid := signupAndLogin(t, c, ts.URL, "alice", "pw1")

	resp, _ := doJSON(t, c, http.MethodPost, ts.URL+"/api/logout", nil, sessionHeaders(sid))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status=%d", resp.StatusCode)
	}

	resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/products", nil, sessionHeaders(sid))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("products after logout: status=%d body=%s", resp.StatusCode, string(raw))
	}

	// logout never fails, token or not
	resp, _ = doJSON(t, c, http.MethodPost, ts.URL+"/api/logout", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tokenless logout status=%d", resp.StatusCode)
	}
}

func TestAPI_SignupValidationAndDuplicates(t *testing.T) {
	ts := newShopTS(t)
	c := &http.Client{}

	resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/signup", map[string]any{
		"username": "alice",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing password: status=%d body=%s", resp.StatusCode, string(raw))
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/signup", map[string]any{
		"username": "",
		"password": "pw1",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty username: status=%d body=%s", resp.StatusCode, string(raw))
	}

	resp, _ = doJSON(t, c, http.MethodPost, ts.URL+"/api/signup", map[string]any{
		"username": "alice",
		"password": "pw1",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup status=%d", resp.StatusCode)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/signup", map[string]any{
		"username": "alice",
		"password": "other",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate signup: status=%d body=%s", resp.StatusCode, string(raw))
	}

	// the original account still works
	sid := loginExisting(t, c, ts.URL, "alice", "pw1")
	if sid == "" {
		t.Fatalf("login after duplicate signup failed")
	}
}

func loginExisting(t *testing.T, c *http.Client, baseURL, username, password string) string {
	t.Helper()

	resp, raw := doJSON(t, c, http.MethodPost, baseURL+"/api/login", map[string]any{
		"username": username,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d body=%s", resp.StatusCode, string(raw))
	}

	var lr struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(raw, &lr); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return lr.SessionID
}

func TestAPI_LoginRejectsBadCredentials(t *testing.T) {
	ts := newShopTS(t)
	c := &http.Client{}

	signupAndLogin(t, c, ts.URL, "alice", "pw1")

	resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/login", map[string]any{
		"username": "alice",
		"password": "wrong",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: status=%d body=%s", resp.StatusCode, string(raw))
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/login", map[string]any{
		"username": "nobody",
		"password": "pw1",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown user: status=%d body=%s", resp.StatusCode, string(raw))
	}
}

func TestAPI_CartAddMergesAndExhaustsStock(t *testing.T) {
	ts := newShopTS(t)
	c := &http.Client{}

	sid := signupAndLogin(t, c, ts.URL, "alice", "pw1")

	var lastCart []cart.Line
	for i := 0; i < 6; i++ {
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/cart/add", map[string]any{
			"productId": 2,
		}, sessionHeaders(sid))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add %d: status=%d body=%s", i, resp.StatusCode, string(raw))
		}
		var cr struct {
			Cart []cart.Line `json:"cart"`
		}
		if err := json.Unmarshal(raw, &cr); err != nil {
			t.Fatalf("decode: %v", err)
		}
		lastCart = cr.Cart
	}

	if len(lastCart) != 1 || lastCart[0].Qty != 6 {
		t.Fatalf("cart=%+v, want single line qty=6", lastCart)
	}

	resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/cart/add", map[string]any{
		"productId": 2,
	}, sessionHeaders(sid))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("add beyond stock: status=%d body=%s", resp.StatusCode, string(raw))
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/cart/add", map[string]any{
		"productId": 99,
	}, sessionHeaders(sid))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown product: status=%d body=%s", resp.StatusCode, string(raw))
	}
}

func TestAPI_HealthAndFrontend(t *testing.T) {
	ts := newShopTS(t)
	c := &http.Client{}

	resp, err := c.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(raw) != "OK" {
		t.Fatalf("health status=%d body=%q", resp.StatusCode, string(raw))
	}

	resp, err = c.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("index status=%d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("index content-type=%q", ct)
	}
	if !strings.Contains(string(raw), "Mini E-Commerce Store") {
		t.Fatalf("index page missing storefront markup")
	}
}
