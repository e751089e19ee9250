package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/diewo77/go-bookstore/httpx"
	"github.com/diewo77/go-bookstore/internal/models"
	"github.com/diewo77/go-bookstore/internal/services"
	"github.com/diewo77/go-bookstore/validation"
)

// recentImportsShown is how many import slips the import page lists.
const recentImportsShown = 10

// StaffHandler serves the back office. Routes are guarded by the staff
// and permission middleware, so handlers assume an authorized user.
type StaffHandler struct {
	inventory *services.InventoryService
}

func NewStaffHandler(inventory *services.InventoryService) *StaffHandler {
	return &StaffHandler{inventory: inventory}
}

func (h *StaffHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.inventory.Dashboard(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, stats)
		return
	}
	render(w, r, "staff/dashboard.html", map[string]any{"Stats": stats})
}

// parseNewBook reads the add-book form. Unparseable numbers are reported
// as violations next to the ones found by validation.
func parseNewBook(r *http.Request) (services.NewBook, validation.Violations) {
	v := validation.Violations{}
	in := services.NewBook{
		Title:       r.FormValue("title"),
		AuthorID:    r.FormValue("author_id"),
		PublisherID: r.FormValue("publisher_id"),
		Category:    r.FormValue("category"),
	}
	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			v["price"] = "invalid"
		}
		in.Price = price
	}
	if raw := strings.TrimSpace(r.FormValue("instock")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v["instock"] = "invalid"
		}
		in.Instock = n
	}
	return in, v
}

func (h *StaffHandler) addBookForm(w http.ResponseWriter, r *http.Request, status int, form services.NewBook, errs validation.Violations) {
	refs, err := h.inventory.References(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	renderStatus(w, r, status, "staff/add_book.html", map[string]any{"Form": form, "Refs": refs, "Errors": errs})
}

func (h *StaffHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.addBookForm(w, r, http.StatusOK, services.NewBook{}, nil)
		return
	}

	in, parseErrs := parseNewBook(r)
	if !parseErrs.Empty() {
		h.addBookFailed(w, r, http.StatusUnprocessableEntity, in, parseErrs)
		return
	}
	book, err := h.inventory.AddBook(r.Context(), in)
	var v validation.Violations
	switch {
	case errors.As(err, &v):
		h.addBookFailed(w, r, http.StatusUnprocessableEntity, in, v)
		return
	case errors.Is(err, services.ErrUnknownReference):
		h.addBookFailed(w, r, http.StatusBadRequest, in, validation.Violations{"reference": err.Error()})
		return
	case err != nil:
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, book)
		return
	}
	flashRedirect(w, r, httpx.FlashSuccess, fmt.Sprintf("Book %q added successfully!", book.Title), "/staff/inventory/")
}

func (h *StaffHandler) addBookFailed(w http.ResponseWriter, r *http.Request, status int, in services.NewBook, v validation.Violations) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, status, "validation_failed", v)
		return
	}
	h.addBookForm(w, r, status, in, v)
}

func (h *StaffHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	books, err := h.inventory.Inventory(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, books)
		return
	}
	render(w, r, "staff/inventory.html", map[string]any{"Books": books})
}

func (h *StaffHandler) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.inventory.Orders(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, orders)
		return
	}
	render(w, r, "staff/orders.html", map[string]any{"Orders": orders})
}

// UpdateOrderStatus moves an order along its lifecycle.
func (h *StaffHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	next := models.OrderStatus(r.FormValue("status"))
	if !next.Valid() {
		fail(w, r, http.StatusBadRequest, "invalid_status", fmt.Sprintf("Unknown status %q", next))
		return
	}
	order, err := h.inventory.UpdateOrderStatus(r.Context(), chi.URLParam(r, "orderID"), next, r.FormValue("tracking_number"))
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		notFound(w, r, "Order not found")
		return
	case errors.Is(err, services.ErrInvalidStatus):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusConflict, "invalid_transition", err.Error())
			return
		}
		flashRedirect(w, r, httpx.FlashError, "Cannot change status: "+err.Error(), "/staff/orders/")
		return
	case err != nil:
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, order)
		return
	}
	flashRedirect(w, r, httpx.FlashSuccess, fmt.Sprintf("Order #%s is now %s", shortID(order.ID), next), "/staff/orders/")
}

// parseImport pairs the repeated book_id, quantity and price fields of the
// import form into lines.
func parseImport(r *http.Request) ([]services.ImportLine, validation.Violations) {
	v := validation.Violations{}
	if err := r.ParseForm(); err != nil {
		v["_"] = "invalid_form"
		return nil, v
	}
	ids, qtys, prices := r.Form["book_id"], r.Form["quantity"], r.Form["price"]
	lines := make([]services.ImportLine, 0, len(ids))
	for i, id := range ids {
		line := services.ImportLine{BookID: id, Price: decimal.Zero}
		if i < len(qtys) && strings.TrimSpace(qtys[i]) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(qtys[i]))
			if err != nil {
				v["quantity"] = "invalid"
				continue
			}
			line.Quantity = n
		}
		if i < len(prices) && strings.TrimSpace(prices[i]) != "" {
			p, err := decimal.NewFromString(strings.TrimSpace(prices[i]))
			if err != nil {
				v["price"] = "invalid"
				continue
			}
			line.Price = p
		}
		lines = append(lines, line)
	}
	return lines, v
}

func (h *StaffHandler) importPage(w http.ResponseWriter, r *http.Request, status int, errs validation.Violations) {
	ctx := r.Context()
	suppliers, err := h.inventory.Suppliers(ctx)
	if err != nil {
		serverError(w, r, err)
		return
	}
	books, err := h.inventory.Inventory(ctx)
	if err != nil {
		serverError(w, r, err)
		return
	}
	slips, err := h.inventory.RecentImports(ctx, recentImportsShown)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) && errs.Empty() {
		httpx.JSON(w, status, slips)
		return
	}
	renderStatus(w, r, status, "staff/import.html", map[string]any{
		"Suppliers": suppliers,
		"Books":     books,
		"Slips":     slips,
		"Errors":    errs,
	})
}

// Import lists recent import slips (GET) or records a new one (POST).
func (h *StaffHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.importPage(w, r, http.StatusOK, nil)
		return
	}

	lines, v := parseImport(r)
	if !v.Empty() {
		h.importFailed(w, r, http.StatusUnprocessableEntity, v)
		return
	}
	slip, err := h.inventory.ImportStock(r.Context(), currentUser(r), r.FormValue("supplier_id"), lines)
	switch {
	case errors.As(err, &v):
		h.importFailed(w, r, http.StatusUnprocessableEntity, v)
		return
	case errors.Is(err, services.ErrUnknownReference):
		h.importFailed(w, r, http.StatusBadRequest, validation.Violations{"reference": err.Error()})
		return
	case err != nil:
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, slip)
		return
	}
	flashRedirect(w, r, httpx.FlashSuccess, fmt.Sprintf("Stock imported: %d line(s), total %s", len(slip.Details), slip.Total.StringFixed(2)), "/staff/import/")
}

func (h *StaffHandler) importFailed(w http.ResponseWriter, r *http.Request, status int, v validation.Violations) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, status, "validation_failed", v)
		return
	}
	h.importPage(w, r, status, v)
}
