// Package apitest runs an in-memory stand-in for the list API so client code
// can be exercised end to end without the real backend.
package apitest

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/Makepad-fr/listify/internal/model"
)

// Route names, usable with Hits and SetDelay.
const (
	RouteRegister    = "register"
	RouteLogin       = "login"
	RouteMe          = "me"
	RouteLists       = "lists"
	RouteListCreate  = "list-create"
	RouteListGet     = "list-get"
	RouteListUpdate  = "list-update"
	RouteListDelete  = "list-delete"
	RouteItems       = "items-for-list"
	RouteItemCreate  = "item-create"
	RouteItemGet     = "item-get"
	RouteItemUpdate  = "item-update"
	RouteItemToggle  = "item-toggle"
	RouteItemDelete  = "item-delete"
	RouteShareCreate = "share-create"
	RouteShareRevoke = "share-revoke"
	RouteShared      = "shared"
)

var signingKey = []byte("apitest-signing-key")

type account struct {
	user     model.User
	password string
}

type ctxKey struct{}

// Server is an httptest.Server backed by maps.
type Server struct {
	*httptest.Server

	ShareBaseURL string

	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*account
	tokens   map[string]int64
	lists    map[int64]*model.List
	items    map[int64]*model.Item
	hits     map[string]int
	delays   map[string]func(*http.Request) time.Duration
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		ShareBaseURL: "https://listify.test",
		accounts:     map[int64]*account{},
		tokens:       map[string]int64{},
		lists:        map[int64]*model.List{},
		items:        map[int64]*model.Item{},
		hits:         map[string]int{},
		delays:       map[string]func(*http.Request) time.Duration{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.track)

	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost).Name(RouteRegister)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost).Name(RouteLogin)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.authenticate)
	authed.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet).Name(RouteMe)

	authed.HandleFunc("/lists", s.handleLists).Methods(http.MethodGet).Name(RouteLists)
	authed.HandleFunc("/lists", s.handleCreateList).Methods(http.MethodPost).Name(RouteListCreate)
	authed.HandleFunc("/lists/{id:[0-9]+}", s.handleGetList).Methods(http.MethodGet).Name(RouteListGet)
	authed.HandleFunc("/lists/{id:[0-9]+}", s.handleUpdateList).Methods(http.MethodPut).Name(RouteListUpdate)
	authed.HandleFunc("/lists/{id:[0-9]+}", s.handleDeleteList).Methods(http.MethodDelete).Name(RouteListDelete)

	authed.HandleFunc("/items/list/{id:[0-9]+}", s.handleItems).Methods(http.MethodGet).Name(RouteItems)
	authed.HandleFunc("/items", s.handleCreateItem).Methods(http.MethodPost).Name(RouteItemCreate)
	authed.HandleFunc("/items/{id:[0-9]+}", s.handleGetItem).Methods(http.MethodGet).Name(RouteItemGet)
	authed.HandleFunc("/items/{id:[0-9]+}", s.handleUpdateItem).Methods(http.MethodPut).Name(RouteItemUpdate)
	authed.HandleFunc("/items/{id:[0-9]+}/toggle", s.handleToggleItem).Methods(http.MethodPatch).Name(RouteItemToggle)
	authed.HandleFunc("/items/{id:[0-9]+}", s.handleDeleteItem).Methods(http.MethodDelete).Name(RouteItemDelete)

	authed.HandleFunc("/share/{id:[0-9]+}/share", s.handleCreateShare).Methods(http.MethodPost).Name(RouteShareCreate)
	authed.HandleFunc("/share/{id:[0-9]+}/share", s.handleRevokeShare).Methods(http.MethodDelete).Name(RouteShareRevoke)
	authed.HandleFunc("/share/shared/{token}", s.handleShared).Methods(http.MethodGet).Name(RouteShared)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Not Found")
	})
	return r
}

// ---------------------------------------------------
// Test controls
// ---------------------------------------------------

// Hits reports how many requests reached the named route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits counts every routed request.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

// SetDelay holds responses of a route for the returned duration.
func (s *Server) SetDelay(route string, fn func(*http.Request) time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[route] = fn
}

// AddUser creates an account directly.
func (s *Server) AddUser(name, email, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password)
}

// TokenFor signs a bearer credential for an existing user.
func (s *Server) TokenFor(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

// RevokeTokens invalidates every issued credential.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]int64{}
}

// ListsOf returns the stored lists of a user.
func (s *Server) ListsOf(userID int64) []model.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listsOfLocked(userID)
}

// ItemsOf returns the stored items of a list.
func (s *Server) ItemsOf(listID int64) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsOfLocked(listID)
}

// ---------------------------------------------------
// Middleware
// ---------------------------------------------------

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if cur := mux.CurrentRoute(r); cur != nil {
			name = cur.GetName()
		}
		s.mu.Lock()
		s.hits[name]++
		delay := s.delays[name]
		s.mu.Unlock()

		if delay != nil {
			select {
			case <-time.After(delay(r)):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		tok := strings.TrimSpace(raw[7:])
		s.mu.Lock()
		uid, ok := s.tokens[tok]
		s.mu.Unlock()
		if !ok {
			respondError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, uid)))
	})
}

func userID(r *http.Request) int64 {
	uid, _ := r.Context().Value(ctxKey{}).(int64)
	return uid
}

// ---------------------------------------------------
// Auth
// ---------------------------------------------------

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in model.Registration
	if !decode(w, r, &in) {
		return
	}
	if in.Email == "" || in.Password == "" || in.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "name, email and password are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, in.Email) {
			respondError(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	u := s.addUserLocked(in.Name, in.Email, in.Password)
	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in model.Credentials
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.accounts {
		if strings.EqualFold(a.user.Email, in.Email) && a.password == in.Password {
			respondJSON(w, http.StatusOK, model.AuthToken{AccessToken: s.issueLocked(id), TokenType: "bearer"})
			return
		}
	}
	respondError(w, http.StatusUnauthorized, "Incorrect email or password")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID(r)]
	if !ok {
		respondError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	respondJSON(w, http.StatusOK, a.user)
}

// ---------------------------------------------------
// Lists
// ---------------------------------------------------

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	respondJSON(w, http.StatusOK, s.listsOfLocked(userID(r)))
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var in model.ListInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := model.NewTimestamp(time.Now().UTC())
	l := &model.List{
		ID:          s.nextID,
		Title:       in.Title,
		Description: in.Description,
		UserID:      userID(r),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.lists[l.ID] = l
	respondJSON(w, http.StatusCreated, l)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ownedLocked(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, l)
}

// handleUpdateList changes only the fields present in the body.
func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title       *string         `json:"title"`
		Description json.RawMessage `json:"description"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ownedLocked(w, r)
	if !ok {
		return
	}
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.Description != nil {
		var d *string
		if err := json.Unmarshal(in.Description, &d); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid description")
			return
		}
		l.Description = d
	}
	l.UpdatedAt = model.NewTimestamp(time.Now().UTC())
	respondJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ownedLocked(w, r)
	if !ok {
		return
	}
	for id, it := range s.items {
		if it.ListID == l.ID {
			delete(s.items, id)
		}
	}
	delete(s.lists, l.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------
// Items
// ---------------------------------------------------

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.reachableLocked(w, r, pathID(r))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.itemsOfLocked(l.ID))
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	listID, err := strconv.ParseInt(r.URL.Query().Get("list_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "list_id query parameter is required")
		return
	}
	var in model.ItemInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reachableLocked(w, r, listID); !ok {
		return
	}
	s.nextID++
	now := model.NewTimestamp(time.Now().UTC())
	it := &model.Item{ID: s.nextID, Name: in.Name, Checked: in.Checked, ListID: listID, CreatedAt: now, UpdatedAt: now}
	s.items[it.ID] = it
	respondJSON(w, http.StatusCreated, it)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.itemLocked(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, it)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var in model.ItemInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.itemLocked(w, r)
	if !ok {
		return
	}
	it.Name = in.Name
	it.Checked = in.Checked
	it.UpdatedAt = model.NewTimestamp(time.Now().UTC())
	respondJSON(w, http.StatusOK, it)
}

func (s *Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.itemLocked(w, r)
	if !ok {
		return
	}
	it.Checked = !it.Checked
	it.UpdatedAt = model.NewTimestamp(time.Now().UTC())
	respondJSON(w, http.StatusOK, it)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.itemLocked(w, r)
	if !ok {
		return
	}
	delete(s.items, it.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------
// Share
// ---------------------------------------------------

func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ownedLocked(w, r)
	if !ok {
		return
	}
	if !l.Shared() {
		*l = l.WithShare(randomToken())
	}
	respondJSON(w, http.StatusOK, model.ShareLink{
		ShareToken: l.Token(),
		ShareURL:   s.ShareBaseURL + "/shared/" + l.Token(),
	})
}

func (s *Server) handleRevokeShare(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ownedLocked(w, r)
	if !ok {
		return
	}
	*l = l.WithShare("")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShared(w http.ResponseWriter, r *http.Request) {
	tok := mux.Vars(r)["token"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lists {
		if l.Shared() && l.Token() == tok {
			respondJSON(w, http.StatusOK, l)
			return
		}
	}
	respondError(w, http.StatusNotFound, "Shared list not found or link expired")
}

// ---------------------------------------------------
// Helpers (caller holds s.mu)
// ---------------------------------------------------

func (s *Server) addUserLocked(name, email, password string) model.User {
	s.nextID++
	u := model.User{ID: s.nextID, Name: name, Email: email, CreatedAt: model.NewTimestamp(time.Now().UTC())}
	s.accounts[u.ID] = &account{user: u, password: password}
	return u
}

func (s *Server) issueLocked(uid int64) string {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(uid, 10),
		"exp": time.Now().Add(time.Hour).Unix(),
		"jti": randomToken(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	s.tokens[tok] = uid
	return tok
}

func (s *Server) listsOfLocked(uid int64) []model.List {
	out := []model.List{}
	for id := int64(1); id <= s.nextID; id++ {
		if l, ok := s.lists[id]; ok && l.UserID == uid {
			out = append(out, *l)
		}
	}
	return out
}

func (s *Server) itemsOfLocked(listID int64) []model.Item {
	out := []model.Item{}
	for id := int64(1); id <= s.nextID; id++ {
		if it, ok := s.items[id]; ok && it.ListID == listID {
			out = append(out, *it)
		}
	}
	return out
}

func (s *Server) ownedLocked(w http.ResponseWriter, r *http.Request) (*model.List, bool) {
	id := pathID(r)
	l, ok := s.lists[id]
	if !ok || l.UserID != userID(r) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("List %d not found", id))
		return nil, false
	}
	return l, true
}

// A list's items are reachable by its owner and, while shared, by anyone
// holding a session.
func (s *Server) reachableLocked(w http.ResponseWriter, r *http.Request, listID int64) (*model.List, bool) {
	l, ok := s.lists[listID]
	if !ok || (l.UserID != userID(r) && !l.Shared()) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("List %d not found", listID))
		return nil, false
	}
	return l, true
}

func (s *Server) itemLocked(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id := pathID(r)
	it, ok := s.items[id]
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Item %d not found", id))
		return nil, false
	}
	if _, ok := s.reachableLocked(w, r, it.ListID); !ok {
		return nil, false
	}
	return it, true
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid JSON: %v", err))
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

func randomToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
