package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/diewo77/go-bookstore/httpx"
	"github.com/diewo77/go-bookstore/internal/services"
	"github.com/diewo77/go-bookstore/validation"
)

type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List shows every book.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.List(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, books)
		return
	}
	render(w, r, "books.html", map[string]any{"Books": books})
}

// Search shows books matching ?q= on title, author or category.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	books, err := h.catalog.Search(r.Context(), q)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"query": q, "books": books})
		return
	}
	render(w, r, "books.html", map[string]any{
		"Books":     books,
		"Query":     q,
		"Searching": true,
	})
}

func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	book, err := h.catalog.Detail(r.Context(), chi.URLParam(r, "bookID"))
	if errors.Is(err, services.ErrBookNotFound) {
		notFound(w, r, "Book not found")
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	ratings, err := h.catalog.Ratings(r.Context(), book.ID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"book": book, "ratings": ratings})
		return
	}
	render(w, r, "book_detail.html", map[string]any{"Book": book, "Ratings": ratings})
}

// Rate records the current customer's score for a book.
func (h *CatalogHandler) Rate(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	back := "/" + bookID + "/"
	score, _ := strconv.Atoi(r.FormValue("score"))

	_, err := h.catalog.Rate(r.Context(), currentUser(r), bookID, score, r.FormValue("comment"))
	var v validation.Violations
	switch {
	case errors.Is(err, services.ErrBookNotFound):
		notFound(w, r, "Book not found")
	case errors.Is(err, services.ErrNoCustomer):
		flashRedirect(w, r, httpx.FlashError, MsgNoCustomer, back)
	case errors.As(err, &v):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
			return
		}
		flashRedirect(w, r, httpx.FlashError, "Score must be between 1 and 5", back)
	case err != nil:
		serverError(w, r, err)
	default:
		flashRedirect(w, r, httpx.FlashSuccess, "Thanks for your rating!", back)
	}
}
