package shop

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/session"
	"MiniShop/internal/user"
	"MiniShop/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Log      *zap.Logger
	Users    user.Store
	Sessions *session.Registry
	Catalog  *catalog.Store
	Carts    *cart.Registry
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if req.Username == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "Missing username or password", nil)
		return
	}

	if err := s.Users.Create(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, user.ErrUserExists) {
			kit.WriteError(w, r, http.StatusBadRequest, "User already exists", nil)
			return
		}
		s.Log.Error("signup failed", zap.Error(err), zap.String("username", req.Username))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteMessage(w, "Signup successful!")
}

type loginResp struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	u, err := s.Users.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			kit.WriteError(w, r, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		s.Log.Error("login failed", zap.Error(err), zap.String("username", req.Username))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	token := s.Sessions.Create(u.Username)
	kit.WriteJSON(w, http.StatusOK, loginResp{Success: true, SessionID: token})
}

// Logout never fails: an absent or unknown token is simply ignored.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := r.Header.Get(sessionHeader); token != "" {
		s.Sessions.Destroy(token)
	}
	kit.WriteMessage(w, "")
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.List())
}

type cartAddReq struct {
	ProductID int `json:"productId"`
}

type cartResp struct {
	Cart []cart.Line `json:"cart"`
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusForbidden, "Not logged in", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req cartAddReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	lines, err := s.Carts.AddItem(username, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrOutOfStock) {
			kit.WriteError(w, r, http.StatusBadRequest, "Product not available", nil)
			return
		}
		s.Log.Error("cart add failed", zap.Error(err),
			zap.String("username", username), zap.Int("product_id", req.ProductID))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, cartResp{Cart: lines})
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusForbidden, "Not logged in", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Carts.Get(username))
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusForbidden, "Not logged in", nil)
		return
	}
	s.Carts.Checkout(username)
	kit.WriteMessage(w, "Order placed successfully!")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsReq, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req credentialsReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return credentialsReq{}, false
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)
	return req, true
}
