package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const fakeSecret = "fake-backend-secret"

// FakeBackend is an in-memory stand-in for the GNF Invest REST API. It
// enforces the same preconditions the real server does: bearer tokens are
// verified, only Pending transactions can be decided, and activations move
// one way.
type FakeBackend struct {
	server *httptest.Server

	mu           sync.Mutex
	users        map[string]*fakeUser // by id
	admins       map[string]string    // username -> password
	activations  map[string]*fakeActivation
	transactions []*fakeTransaction
	withdrawals  []*fakeWithdrawal
	wallets      []*fakeWallet
	calls        map[string]int
	failures     map[string]fakeFailure
	gates        map[string]chan struct{}
}

type fakeUser struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	password  string
}

type fakeActivation struct {
	ID        string          `json:"_id"`
	User      string          `json:"user"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	ROI       decimal.Decimal `json:"roi"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

type fakeTransaction struct {
	ID             string
	UserID         string
	Type           string
	Status         string
	Amount         decimal.Decimal
	ActivationID   string
	WithdrawalID   string
	CryptoCurrency string
	WalletAddress  string
	CreatedAt      time.Time
}

type fakeWithdrawal struct {
	ID             string          `json:"_id"`
	UserID         string          `json:"-"`
	Amount         decimal.Decimal `json:"amount"`
	CryptoCurrency string          `json:"cryptoCurrency"`
	WalletAddress  string          `json:"walletAddress"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type fakeWallet struct {
	ID              string `json:"_id"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Network         string `json:"network"`
	ContractAddress string `json:"contractAddress"`
	WalletAddress   string `json:"walletAddress"`
	IsActive        bool   `json:"isActive"`
	IconURL         string `json:"iconUrl"`
}

type fakeFailure struct {
	status  int
	message string
}

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	roleKey   ctxKey = "role"
)

// NewFakeBackend starts the fake on a local port; it is shut down when the
// test ends. Route keys used by FailNext, Gate and Calls are "METHOD pattern",
// e.g. "POST /plans/confirm-payment/{id}".
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{
		users:       make(map[string]*fakeUser),
		admins:      map[string]string{"admin": "Admin#2024"},
		activations: make(map[string]*fakeActivation),
		calls:       make(map[string]int),
		failures:    make(map[string]fakeFailure),
		gates:       make(map[string]chan struct{}),
	}
	fb.server = httptest.NewServer(fb.router())
	t.Cleanup(fb.server.Close)
	return fb
}

// URL is the API base URL.
func (fb *FakeBackend) URL() string { return fb.server.URL + "/api" }

func (fb *FakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", fb.route(fb.handleLogin))
		r.Post("/auth/signup", fb.route(fb.handleSignup))
		r.Post("/admin/login", fb.route(fb.handleAdminLogin))

		r.Group(func(r chi.Router) {
			r.Use(fb.authenticate)
			r.Get("/auth/me", fb.route(fb.handleMe))
			r.Put("/users/profile", fb.route(fb.handleUpdateProfile))
			r.Put("/users/password", fb.route(fb.handleChangePassword))
			r.Get("/plans", fb.route(fb.handleListActivations))
			r.Post("/plans", fb.route(fb.handleCreateActivation))
			r.Post("/plans/confirm-payment/{id}", fb.route(fb.handleConfirmPayment))
			r.Get("/wallets", fb.route(fb.handleListWallets))
			r.Get("/transactions", fb.route(fb.handleListTransactions))
			r.Get("/withdrawals", fb.route(fb.handleListWithdrawals))
			r.Post("/withdrawals", fb.route(fb.handleCreateWithdrawal))
		})

		r.Group(func(r chi.Router) {
			r.Use(fb.authenticate, fb.requireAdmin)
			r.Post("/wallets", fb.route(fb.handleCreateWallet))
			r.Put("/wallets/{id}", fb.route(fb.handleUpdateWallet))
			r.Delete("/wallets/{id}", fb.route(fb.handleDeleteWallet))
			r.Get("/admin/transactions", fb.route(fb.handleAdminTransactions))
			r.Put("/admin/transactions/{id}", fb.route(fb.handleDecide))
		})
	})
	return r
}

// route counts the call, waits on a gate if one is set, and serves an
// injected failure instead of h when one is queued.
func (fb *FakeBackend) route(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(chi.RouteContext(r.Context()).RoutePattern(), "/api")

		fb.mu.Lock()
		fb.calls[key]++
		gate := fb.gates[key]
		fail, failing := fb.failures[key]
		delete(fb.failures, key)
		fb.mu.Unlock()

		if gate != nil {
			<-gate
		}
		if failing {
			writeMessage(w, fail.status, fail.message)
			return
		}
		h(w, r)
	}
}

func (fb *FakeBackend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return []byte(fakeSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Token is not valid")
			return
		}
		id, _ := claims["id"].(string)
		role, _ := claims["role"].(string)
		ctx := contextWith(r, id, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (fb *FakeBackend) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(roleKey).(string); role != "admin" {
			writeMessage(w, http.StatusForbidden, "Access denied. Admin only.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Token issues a valid token for the given subject and role.
func (fb *FakeBackend) Token(id, role string, ttl time.Duration) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
	}).SignedString([]byte(fakeSecret))
	if err != nil {
		panic(fmt.Sprintf("signing fake token: %v", err))
	}
	return tok
}

// AddUser registers an investor and returns their id.
func (fb *FakeBackend) AddUser(username, email, password string) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	u := &fakeUser{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		CreatedAt: time.Now().UTC(),
		password:  password,
	}
	fb.users[u.ID] = u
	return u.ID
}

// AddWallet stores a payment wallet and returns its id.
func (fb *FakeBackend) AddWallet(symbol, address string, active bool) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	w := &fakeWallet{
		ID:            uuid.NewString(),
		Name:          symbol,
		Symbol:        symbol,
		Network:       "mainnet",
		WalletAddress: address,
		IsActive:      active,
	}
	fb.wallets = append(fb.wallets, w)
	return w.ID
}

// SetWalletActive flips isActive on every wallet with symbol.
func (fb *FakeBackend) SetWalletActive(symbol string, active bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, w := range fb.wallets {
		if strings.EqualFold(w.Symbol, symbol) {
			w.IsActive = active
		}
	}
}

// FailNext makes the next call to route answer status with {message}.
func (fb *FakeBackend) FailNext(route string, status int, message string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures[route] = fakeFailure{status: status, message: message}
}

// Gate holds calls to route until the returned func is called.
func (fb *FakeBackend) Gate(route string) (release func()) {
	ch := make(chan struct{})
	fb.mu.Lock()
	fb.gates[route] = ch
	fb.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			fb.mu.Lock()
			delete(fb.gates, route)
			fb.mu.Unlock()
			close(ch)
		})
	}
}

// Calls reports how many requests reached route.
func (fb *FakeBackend) Calls(route string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.calls[route]
}

// ActivationStatus returns the stored status of an activation.
func (fb *FakeBackend) ActivationStatus(id string) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if a, ok := fb.activations[id]; ok {
		return a.Status
	}
	return ""
}

// TransactionFor returns the id of the transaction created for an activation.
func (fb *FakeBackend) TransactionFor(activationID string) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, tx := range fb.transactions {
		if tx.ActivationID == activationID {
			return tx.ID
		}
	}
	return ""
}

func (fb *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EmailOrUsername string `json:"emailOrUsername"`
		Password        string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, u := range fb.users {
		if (u.Username == body.EmailOrUsername || u.Email == body.EmailOrUsername) && u.password == body.Password {
			writeJSON(w, http.StatusOK, map[string]any{"token": fb.Token(u.ID, "user", time.Hour), "user": u})
			return
		}
	}
	writeMessage(w, http.StatusBadRequest, "Invalid credentials")
}

func (fb *FakeBackend) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Password  string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	for _, u := range fb.users {
		if u.Username == body.Username || u.Email == body.Email {
			fb.mu.Unlock()
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
	}
	u := &fakeUser{
		ID:        uuid.NewString(),
		Username:  body.Username,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		CreatedAt: time.Now().UTC(),
		password:  body.Password,
	}
	fb.users[u.ID] = u
	fb.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"token": fb.Token(u.ID, "user", time.Hour), "user": u})
}

func (fb *FakeBackend) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	pw, ok := fb.admins[body.Username]
	fb.mu.Unlock()
	if !ok || pw != body.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": fb.Token("admin-"+body.Username, "admin", time.Hour)})
}

func (fb *FakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	u, ok := fb.users[userID(r)]
	fb.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (fb *FakeBackend) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	u, ok := fb.users[userID(r)]
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	for _, other := range fb.users {
		if other.ID != u.ID && body.Username != "" && other.Username == body.Username {
			writeMessage(w, http.StatusBadRequest, "Username already taken")
			return
		}
	}
	if body.Username != "" {
		u.Username = body.Username
	}
	if body.Email != "" {
		u.Email = body.Email
	}
	if body.FirstName != "" {
		u.FirstName = body.FirstName
	}
	if body.LastName != "" {
		u.LastName = body.LastName
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Profile updated successfully", "user": u})
}

func (fb *FakeBackend) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decode(w, r, &body) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	u, ok := fb.users[userID(r)]
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if u.password != body.CurrentPassword {
		writeMessage(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	u.password = body.NewPassword
	writeMessage(w, http.StatusOK, "Password updated successfully")
}

func (fb *FakeBackend) handleListActivations(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []*fakeActivation{}
	for _, a := range fb.activations {
		if a.User == userID(r) {
			out = append(out, a)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) handleCreateActivation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type   string          `json:"type"`
		Amount decimal.Decimal `json:"amount"`
		ROI    decimal.Decimal `json:"roi"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Type == "" || !body.Amount.IsPositive() {
		writeMessage(w, http.StatusBadRequest, "Invalid plan details")
		return
	}
	a := &fakeActivation{
		ID:        uuid.NewString(),
		User:      userID(r),
		Type:      body.Type,
		Amount:    body.Amount,
		ROI:       body.ROI,
		Status:    "AwaitingPayment",
		CreatedAt: time.Now().UTC(),
	}
	fb.mu.Lock()
	fb.activations[a.ID] = a
	fb.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Plan created", "plan": a})
}

func (fb *FakeBackend) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	a, ok := fb.activations[id]
	if !ok || a.User != userID(r) {
		writeMessage(w, http.StatusNotFound, "Plan not found")
		return
	}
	if a.Status != "AwaitingPayment" {
		writeMessage(w, http.StatusBadRequest, "Payment already confirmed")
		return
	}
	a.Status = "Pending"
	fb.transactions = append(fb.transactions, &fakeTransaction{
		ID:           uuid.NewString(),
		UserID:       a.User,
		Type:         "Plan Activation",
		Status:       "Pending",
		Amount:       a.Amount,
		ActivationID: a.ID,
		CreatedAt:    time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Payment confirmed, awaiting admin approval"})
}

func (fb *FakeBackend) handleListWallets(w http.ResponseWriter, _ *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	writeJSON(w, http.StatusOK, fb.wallets)
}

func (fb *FakeBackend) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var body fakeWallet
	if !decode(w, r, &body) {
		return
	}
	body.ID = uuid.NewString()
	fb.mu.Lock()
	fb.wallets = append(fb.wallets, &body)
	fb.mu.Unlock()
	writeJSON(w, http.StatusCreated, body)
}

func (fb *FakeBackend) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	var body fakeWallet
	if !decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i, existing := range fb.wallets {
		if existing.ID == id {
			body.ID = id
			fb.wallets[i] = &body
			writeJSON(w, http.StatusOK, body)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Wallet not found")
}

func (fb *FakeBackend) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i, existing := range fb.wallets {
		if existing.ID == id {
			fb.wallets = append(fb.wallets[:i], fb.wallets[i+1:]...)
			writeMessage(w, http.StatusOK, "Wallet deleted")
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Wallet not found")
}

func (fb *FakeBackend) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []map[string]any{}
	for _, tx := range fb.transactions {
		if tx.UserID == userID(r) {
			out = append(out, fb.transactionJSON(tx))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) handleListWithdrawals(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []*fakeWithdrawal{}
	for _, wd := range fb.withdrawals {
		if wd.UserID == userID(r) {
			out = append(out, wd)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) handleCreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount         decimal.Decimal `json:"amount"`
		CryptoCurrency string          `json:"cryptoCurrency"`
		WalletAddress  string          `json:"walletAddress"`
	}
	if !decode(w, r, &body) {
		return
	}
	wd := &fakeWithdrawal{
		ID:             uuid.NewString(),
		UserID:         userID(r),
		Amount:         body.Amount,
		CryptoCurrency: body.CryptoCurrency,
		WalletAddress:  body.WalletAddress,
		Status:         "Pending",
		CreatedAt:      time.Now().UTC(),
	}
	fb.mu.Lock()
	fb.withdrawals = append(fb.withdrawals, wd)
	fb.transactions = append(fb.transactions, &fakeTransaction{
		ID:             uuid.NewString(),
		UserID:         wd.UserID,
		Type:           "Withdrawal",
		Status:         "Pending",
		Amount:         wd.Amount,
		WithdrawalID:   wd.ID,
		CryptoCurrency: wd.CryptoCurrency,
		WalletAddress:  wd.WalletAddress,
		CreatedAt:      wd.CreatedAt,
	})
	fb.mu.Unlock()
	writeJSON(w, http.StatusCreated, wd)
}

var statusTabs = map[string]string{"pending": "Pending", "completed": "Completed", "rejected": "Failed"}
var typeTabs = map[string]string{"plans": "Plan Activation", "withdrawals": "Withdrawal"}

func (fb *FakeBackend) handleAdminTransactions(w http.ResponseWriter, r *http.Request) {
	status := statusTabs[r.URL.Query().Get("status")]
	txType := typeTabs[r.URL.Query().Get("type")]
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []map[string]any{}
	for _, tx := range fb.transactions {
		if (status == "" || tx.Status == status) && (txType == "" || tx.Type == txType) {
			out = append(out, fb.transactionJSON(tx))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) handleDecide(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status          string `json:"status"`
		TransactionType string `json:"transactionType"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Status != "Completed" && body.Status != "Failed" {
		writeMessage(w, http.StatusBadRequest, "Invalid status")
		return
	}
	id := chi.URLParam(r, "id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, tx := range fb.transactions {
		if tx.ID != id {
			continue
		}
		if tx.Status != "Pending" {
			writeMessage(w, http.StatusBadRequest, "Transaction already processed")
			return
		}
		tx.Status = body.Status
		if a, ok := fb.activations[tx.ActivationID]; ok {
			a.Status = body.Status
			if body.Status == "Completed" {
				a.Status = "Active"
			}
		}
		for _, wd := range fb.withdrawals {
			if wd.ID == tx.WithdrawalID {
				wd.Status = body.Status
			}
		}
		writeMessage(w, http.StatusOK, "Transaction updated")
		return
	}
	writeMessage(w, http.StatusNotFound, "Transaction not found")
}

// transactionJSON renders a row with populated user and plan refs. Callers
// hold fb.mu.
func (fb *FakeBackend) transactionJSON(tx *fakeTransaction) map[string]any {
	out := map[string]any{
		"_id":       tx.ID,
		"type":      tx.Type,
		"status":    tx.Status,
		"amount":    tx.Amount,
		"createdAt": tx.CreatedAt,
	}
	if u, ok := fb.users[tx.UserID]; ok {
		out["user"] = map[string]any{"_id": u.ID, "username": u.Username, "email": u.Email}
	} else {
		out["user"] = tx.UserID
	}
	if a, ok := fb.activations[tx.ActivationID]; ok {
		out["plan"] = map[string]any{"_id": a.ID, "type": a.Type}
	}
	if tx.CryptoCurrency != "" {
		out["cryptoCurrency"] = tx.CryptoCurrency
		out["walletAddress"] = tx.WalletAddress
	}
	return out
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func contextWith(r *http.Request, id, role string) context.Context {
	ctx := context.WithValue(r.Context(), userIDKey, id)
	return context.WithValue(ctx, roleKey, role)
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
