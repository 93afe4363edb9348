package http

import (
	"net/http"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
)

const apiPrefix = "/api/v1"

type Services struct {
	Orders  interfaces.OrderService
	Catalog interfaces.CatalogService
	Auth    interfaces.AuthService
}

type routes struct {
	mux *http.ServeMux
}

// handle registers pattern both with and without a trailing slash, so
// "/orders" and "/orders/" reach the same handler without a redirect.
func (rt routes) handle(method, path string, h http.HandlerFunc) {
	rt.mux.HandleFunc(method+" "+apiPrefix+path, h)
	rt.mux.HandleFunc(method+" "+apiPrefix+path+"/{$}", h)
}

// NewRouter builds the full API handler with logging and panic recovery applied.
func NewRouter(svc Services, log logger.Logger) http.Handler {
	authn := NewAuthenticator(svc.Auth, log)
	auth := NewAuthHandler(svc.Auth, log)
	restaurants := NewRestaurantHandler(svc.Catalog, log)
	orders := NewOrderHandler(svc.Orders, log)

	rt := routes{mux: http.NewServeMux()}

	rt.handle(http.MethodPost, "/auth/login", auth.Login)
	rt.handle(http.MethodPost, "/auth/users", auth.Register)

	rt.handle(http.MethodGet, "/restaurants", restaurants.ListRestaurants)
	rt.handle(http.MethodGet, "/restaurants/{id}", restaurants.GetRestaurant)
	rt.handle(http.MethodGet, "/restaurants/{id}/menu", restaurants.GetMenu)

	rt.handle(http.MethodPost, "/orders", authn.RequireUser(orders.CreateOrder))
	rt.handle(http.MethodGet, "/orders", authn.RequireUser(orders.ListOrders))
	rt.handle(http.MethodGet, "/orders/{id}", authn.RequireUser(orders.GetOrder))

	rt.handle(http.MethodGet, "/admin/orders", authn.RequireAdmin(orders.AdminListOrders))
	rt.handle(http.MethodGet, "/admin/orders/{id}", authn.RequireAdmin(orders.AdminGetOrder))
	rt.handle(http.MethodPatch, "/admin/orders/{id}", authn.RequireAdmin(orders.AdminUpdateStatus))
	rt.handle(http.MethodPost, "/admin/orders/{id}/cancel", authn.RequireAdmin(orders.AdminCancelOrder))
	rt.handle(http.MethodGet, "/admin/order-statuses", authn.RequireAdmin(orders.ListStatuses))

	rt.handle(http.MethodGet, "/admin/restaurants", authn.RequireAdmin(restaurants.AdminListRestaurants))
	rt.handle(http.MethodPost, "/admin/restaurants", authn.RequireAdmin(restaurants.CreateRestaurant))
	rt.handle(http.MethodDelete, "/admin/restaurants/{id}", authn.RequireAdmin(restaurants.DeleteRestaurant))
	rt.handle(http.MethodGet, "/admin/restaurants/{id}/menu", authn.RequireAdmin(restaurants.AdminGetMenu))

	rt.handle(http.MethodPost, "/admin/menu-items", authn.RequireAdmin(restaurants.CreateMenuItem))
	rt.handle(http.MethodPatch, "/admin/menu-items/{id}", authn.RequireAdmin(restaurants.UpdateMenuItem))
	rt.handle(http.MethodDelete, "/admin/menu-items/{id}", authn.RequireAdmin(restaurants.DeleteMenuItem))

	rt.handle(http.MethodGet, "/admin/users", authn.RequireAdmin(auth.ListUsers))

	rt.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var handler http.Handler = rt.mux
	handler = RecoveryMiddleware(log)(handler)
	handler = LoggingMiddleware(log)(handler)
	return handler
}
