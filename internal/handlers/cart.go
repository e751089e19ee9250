package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diewo77/go-bookstore/httpx"
	"github.com/diewo77/go-bookstore/internal/models"
	"github.com/diewo77/go-bookstore/internal/recommend"
	"github.com/diewo77/go-bookstore/internal/services"
)

// CartHandler serves the cart, checkout, order history and recommendations
// of the current customer.
type CartHandler struct {
	carts       *services.CartService
	recommender *recommend.Engine
}

func NewCartHandler(carts *services.CartService, recommender *recommend.Engine) *CartHandler {
	return &CartHandler{carts: carts, recommender: recommender}
}

// noCustomer renders page with empty data and an error notice instead of
// redirecting, so staff-only accounts still see the page.
func noCustomer(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, "no_customer", MsgNoCustomer)
		return
	}
	data["Flash"] = httpx.Flash{Level: httpx.FlashError, Message: MsgNoCustomer}
	render(w, r, page, data)
}

func (h *CartHandler) Cart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.View(r.Context(), currentUser(r))
	if errors.Is(err, services.ErrNoCustomer) {
		noCustomer(w, r, "cart.html", map[string]any{"Cart": &services.CartView{}})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, cart)
		return
	}
	render(w, r, "cart.html", map[string]any{"Cart": cart})
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	item, err := h.carts.AddItem(r.Context(), currentUser(r), chi.URLParam(r, "bookID"))
	switch {
	case errors.Is(err, services.ErrBookNotFound):
		notFound(w, r, "Book not found")
		return
	case errors.Is(err, services.ErrNoCustomer):
		flashRedirect(w, r, httpx.FlashError, MsgNoCustomer, "/")
		return
	case err != nil:
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, item)
		return
	}
	flashRedirect(w, r, httpx.FlashSuccess, fmt.Sprintf("%s added to cart!", item.Book.Title), "/cart/")
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	err := h.carts.RemoveItem(r.Context(), currentUser(r), chi.URLParam(r, "itemID"))
	switch {
	case errors.Is(err, services.ErrCartItemNotFound):
		notFound(w, r, "Cart item not found")
	case errors.Is(err, services.ErrNotOwner):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusForbidden, "forbidden", MsgUnauthorized)
			return
		}
		flashRedirect(w, r, httpx.FlashError, MsgUnauthorized, "/cart/")
	case err != nil:
		serverError(w, r, err)
	case httpx.WantsJSON(r):
		w.WriteHeader(http.StatusNoContent)
	default:
		flashRedirect(w, r, httpx.FlashSuccess, "Item removed from cart!", "/cart/")
	}
}

// Checkout previews subtotal, shipping and total before placing the order.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	co, err := h.carts.Checkout(r.Context(), currentUser(r))
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		flashRedirect(w, r, httpx.FlashError, MsgEmptyCart, "/cart/")
		return
	case errors.Is(err, services.ErrNoCustomer):
		flashRedirect(w, r, httpx.FlashError, MsgNoCustomer, "/")
		return
	case err != nil:
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, co)
		return
	}
	render(w, r, "checkout.html", map[string]any{"Checkout": co})
}

// PlaceOrder turns the cart into an order. The hidden checkout token makes a
// resubmitted form return the order already placed.
func (h *CartHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		flashRedirect(w, r, httpx.FlashError, "Invalid request", "/cart/")
		return
	}
	order, err := h.carts.PlaceOrder(r.Context(), currentUser(r), r.FormValue("token"))
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		flashRedirect(w, r, httpx.FlashError, MsgEmptyCart, "/cart/")
		return
	case errors.Is(err, services.ErrNoCustomer):
		flashRedirect(w, r, httpx.FlashError, MsgNoCustomer, "/")
		return
	case errors.Is(err, services.ErrNotOwner):
		flashRedirect(w, r, httpx.FlashError, MsgUnauthorized, "/cart/")
		return
	case err != nil:
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, order)
		return
	}
	flashRedirect(w, r, httpx.FlashSuccess, fmt.Sprintf("Order #%s placed successfully!", shortID(order.ID)), "/history/")
}

func (h *CartHandler) History(w http.ResponseWriter, r *http.Request) {
	orders, err := h.carts.History(r.Context(), currentUser(r))
	if errors.Is(err, services.ErrNoCustomer) {
		noCustomer(w, r, "history.html", map[string]any{"Orders": []models.Order{}})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, orders)
		return
	}
	render(w, r, "history.html", map[string]any{"Orders": orders})
}

func (h *CartHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	err := h.carts.RequireCustomer(r.Context(), uid)
	if errors.Is(err, services.ErrNoCustomer) {
		noCustomer(w, r, "recommendations.html", map[string]any{"Books": []models.Book{}})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	res, err := h.recommender.Explain(r.Context(), uid)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, res)
		return
	}
	render(w, r, "recommendations.html", map[string]any{"Books": res.Books, "Tier": res.Tier})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
