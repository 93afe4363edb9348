package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/adapter/memory"
	"github.com/YelzhanWeb/fooddelivery/internal/app/auth"
	"github.com/YelzhanWeb/fooddelivery/internal/app/catalog"
	"github.com/YelzhanWeb/fooddelivery/internal/app/order"
	"github.com/YelzhanWeb/fooddelivery/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	store     *memory.Store
	cache     *memory.Cache
	publisher *memory.Publisher
	handler   http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{
		store:     memory.NewStore(),
		cache:     memory.NewCache(),
		publisher: &memory.Publisher{},
	}
	log := logger.Nop()

	authSvc := auth.NewService(f.store.Users(), log, "test-secret", time.Hour)
	require.NoError(t, authSvc.EnsureAdmin(context.Background(), "admin", "admin-pass", ""))

	f.handler = NewRouter(Services{
		Orders:  order.NewService(f.store.Orders(), f.store.Restaurants(), f.cache, f.publisher, log),
		Catalog: catalog.NewService(f.store.Restaurants(), f.cache, log, time.Minute),
		Auth:    authSvc,
	}, log)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) login(t *testing.T, username, password string) string {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(t, rec, &token)
	assert.Equal(t, "bearer", token.TokenType)
	return token.AccessToken
}

func (f *apiFixture) register(t *testing.T, username string) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/v1/auth/users", "", map[string]string{
		"username": username,
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return f.login(t, username, "secret-pass")
}

// seed creates an active restaurant with one menu item priced 9.99.
func (f *apiFixture) seed(t *testing.T, admin string) (restaurantID, itemID uuid.UUID) {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/v1/admin/restaurants/", admin, map[string]any{
		"name":    "Burger Barn",
		"address": "42 Market Street",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var restaurant domain.Restaurant
	decode(t, rec, &restaurant)

	rec = f.do(t, http.MethodPost, "/api/v1/admin/menu-items/", admin, map[string]any{
		"restaurant_id": restaurant.ID,
		"name":          "Cheeseburger",
		"price":         "9.99",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item domain.MenuItem
	decode(t, rec, &item)

	return restaurant.ID, item.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func orderBody(restaurantID uuid.UUID, items ...map[string]any) map[string]any {
	return map[string]any{
		"restaurant_id":    restaurantID,
		"delivery_address": "1 Elm Road",
		"items":            items,
	}
}

func line(itemID uuid.UUID, quantity int) map[string]any {
	return map[string]any{"item_id": itemID, "quantity": quantity}
}

func TestAPI_OrderFlow(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.login(t, "admin", "admin-pass")
	restaurantID, itemID := f.seed(t, admin)

	rec := f.do(t, http.MethodGet, "/api/v1/restaurants/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var restaurants []domain.Restaurant
	decode(t, rec, &restaurants)
	require.Len(t, restaurants, 1)
	assert.True(t, restaurants[0].IsActive)

	rec = f.do(t, http.MethodGet, "/api/v1/restaurants/"+restaurantID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.cache.Has("restaurant:"+restaurantID.String()))

	user := f.register(t, "alice")

	rec = f.do(t, http.MethodPost, "/api/v1/orders/", user, orderBody(restaurantID, line(itemID, 2)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var raw map[string]any
	decode(t, rec, &raw)
	assert.Equal(t, "19.98", raw["total_amount"])
	assert.Equal(t, "pending_confirmation", raw["status"])
	assert.Equal(t, map[string]any{"id": restaurantID.String(), "name": "Burger Barn"}, raw["restaurant"])
	orderID := raw["order_id"].(string)

	assert.False(t, f.cache.Has("restaurant:"+restaurantID.String()))
	require.Len(t, f.publisher.Events(), 1)
	assert.Equal(t, "order.created", f.publisher.Events()[0].Type)

	rec = f.do(t, http.MethodGet, "/api/v1/orders", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []domain.Order
	decode(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, orderID, mine[0].ID.String())

	rec = f.do(t, http.MethodGet, "/api/v1/orders/"+orderID, user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	other := f.register(t, "bob")
	rec = f.do(t, http.MethodGet, "/api/v1/orders/"+orderID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/v1/admin/orders/"+orderID, admin, map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated domain.Order
	decode(t, rec, &updated)
	assert.Equal(t, domain.StatusDelivered, updated.Status)

	rec = f.do(t, http.MethodPost, "/api/v1/admin/orders/"+orderID+"/cancel", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &updated)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
}

func TestAPI_LoginAcceptsJSON(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "admin-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_UnauthorizedIsUniform(t *testing.T) {
	f := newAPIFixture(t)

	headers := []string{"", "Bearer", "Bearer not-a-jwt", "Basic YWRtaW46YWRtaW4="}

	var bodies []string
	for _, h := range headers {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/", nil)
		if h != "" {
			req.Header.Set("Authorization", h)
		}
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, h)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"), h)
		bodies = append(bodies, rec.Body.String())
	}
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
}

func TestAPI_AdminRoutesRejectUsers(t *testing.T) {
	f := newAPIFixture(t)
	user := f.register(t, "alice")

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/admin/orders/"},
		{http.MethodGet, "/api/v1/admin/users/"},
		{http.MethodGet, "/api/v1/admin/order-statuses/"},
		{http.MethodPost, "/api/v1/admin/restaurants/"},
		{http.MethodDelete, "/api/v1/admin/menu-items/" + uuid.NewString()},
	}
	for _, p := range paths {
		rec := f.do(t, p.method, p.path, user, map[string]any{})
		assert.Equal(t, http.StatusForbidden, rec.Code, p.path)
	}
}

func TestAPI_RegisterRejectsAdminRole(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/users", "", map[string]string{
		"username": "mallory",
		"password": "secret-pass",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.register(t, "alice")
	rec = f.do(t, http.MethodPost, "/api/v1/auth/users", "", map[string]string{
		"username": "alice",
		"password": "secret-pass",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_CreateOrderUnavailableItems(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.login(t, "admin", "admin-pass")
	restaurantID, itemID := f.seed(t, admin)
	user := f.register(t, "alice")

	rec := f.do(t, http.MethodPatch, "/api/v1/admin/menu-items/"+itemID.String(), admin, map[string]any{"is_available": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	missing := uuid.New()
	rec = f.do(t, http.MethodPost, "/api/v1/orders/", user, orderBody(restaurantID, line(itemID, 1), line(missing, 1)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.ElementsMatch(t, []uuid.UUID{itemID, missing}, resp.ItemIDs)

	_, orders := f.store.Counts()
	assert.Zero(t, orders)
}

func TestAPI_CreateOrderValidation(t *testing.T) {
	f := newAPIFixture(t)
	user := f.register(t, "alice")

	rec := f.do(t, http.MethodPost, "/api/v1/orders/", user, map[string]any{
		"restaurant_id":    uuid.New(),
		"delivery_address": "abc",
		"items":            []map[string]any{line(uuid.New(), 0)},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decode(t, rec, &resp)
	fields := make([]string, 0, len(resp.Errors))
	for _, fe := range resp.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"delivery_address", "items[0].quantity"}, fields)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+user)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/orders/", user, orderBody(uuid.New(), line(uuid.New(), 1)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CreateOrderTotalTooLarge(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.login(t, "admin", "admin-pass")
	restaurantID, itemID := f.seed(t, admin)
	user := f.register(t, "alice")

	rec := f.do(t, http.MethodPost, "/api/v1/orders/", user, orderBody(restaurantID, line(itemID, 100000000)))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var resp ErrorResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "total_amount", resp.Errors[0].Field)
}

func TestAPI_CreateOrderSideEffectFailure(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.login(t, "admin", "admin-pass")
	restaurantID, itemID := f.seed(t, admin)
	user := f.register(t, "alice")

	f.publisher.Err = errors.New("broker down")

	rec := f.do(t, http.MethodPost, "/api/v1/orders/", user, orderBody(restaurantID, line(itemID, 1)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	decode(t, rec, &resp)
	require.NotNil(t, resp.OrderID)
	assert.NotContains(t, rec.Body.String(), "broker down")

	rec = f.do(t, http.MethodGet, "/api/v1/orders/"+resp.OrderID.String(), user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_AdminCatalog(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.login(t, "admin", "admin-pass")
	restaurantID, itemID := f.seed(t, admin)

	rec := f.do(t, http.MethodPatch, "/api/v1/admin/menu-items/"+itemID.String(), admin, map[string]any{"price": "-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/v1/admin/menu-items/"+itemID.String(), admin, map[string]any{"is_available": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/restaurants/"+restaurantID.String()+"/menu", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var menu []domain.MenuItem
	decode(t, rec, &menu)
	assert.Empty(t, menu)

	rec = f.do(t, http.MethodGet, "/api/v1/admin/restaurants/"+restaurantID.String()+"/menu/", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &menu)
	assert.Len(t, menu, 1)

	rec = f.do(t, http.MethodGet, "/api/v1/admin/order-statuses/", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var statuses []string
	decode(t, rec, &statuses)
	assert.Contains(t, statuses, "ready_for_pickup")

	rec = f.do(t, http.MethodDelete, "/api/v1/admin/restaurants/"+restaurantID.String(), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/restaurants/"+restaurantID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/restaurants/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_PaginationBounds(t *testing.T) {
	f := newAPIFixture(t)

	for _, q := range []string{"skip=-1", "limit=0", "limit=abc", "limit=1001"} {
		rec := f.do(t, http.MethodGet, "/api/v1/restaurants/?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	rec := f.do(t, http.MethodGet, "/api/v1/restaurants/?skip=0&limit=5", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_RequestIDEchoed(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
