package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/auth"
	"github.com/diewo77/go-bookstore/internal/config"
	"github.com/diewo77/go-bookstore/internal/db"
	"github.com/diewo77/go-bookstore/internal/db/dbtest"
	"github.com/diewo77/go-bookstore/internal/models"
	"github.com/diewo77/go-bookstore/internal/policy"
	"github.com/diewo77/go-bookstore/internal/server"
)

type testApp struct {
	t   *testing.T
	db  *gorm.DB
	app *server.App
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gdb := dbtest.New(t)
	require.NoError(t, db.Seed(gdb))

	cfg := &config.Config{
		Shop: config.ShopConfig{
			ShippingFee:     "5.00",
			RecommendLimit:  4,
			LoginRateLimit:  10,
			LoginRateWindow: time.Minute,
		},
	}
	app := server.NewApp(gdb, cfg, policy.NewRouterConfig(gdb, cfg), server.WithStaticDir("../../static"))
	return &testApp{t: t, db: gdb, app: app}
}

// session returns a signed session cookie for the named user.
func (a *testApp) session(username string) *http.Cookie {
	a.t.Helper()
	var u models.User
	require.NoError(a.t, a.db.Where("username = ?", username).First(&u).Error)
	return a.sessionFor(u.ID)
}

func (a *testApp) sessionFor(userID string) *http.Cookie {
	a.t.Helper()
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, userID)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	a.t.Fatal("no session cookie")
	return nil
}

func (a *testApp) bookID(title string) string {
	a.t.Helper()
	var b models.Book
	require.NoError(a.t, a.db.Where("title = ?", title).First(&b).Error)
	return b.ID
}

// staffUser creates a staff member holding role and returns its session.
func (a *testApp) staffUser(username, role string) (string, *http.Cookie) {
	a.t.Helper()
	u := &models.User{Username: username, Password: "x", IsStaff: true}
	require.NoError(a.t, a.db.Create(u).Error)
	require.NoError(a.t, a.db.Create(&models.Staff{UserID: u.ID, Role: role}).Error)
	return u.ID, a.sessionFor(u.ID)
}

type request struct {
	method  string
	path    string
	form    url.Values
	cookie  *http.Cookie
	json    bool
	headers map[string]string
}

func (a *testApp) do(req request) *httptest.ResponseRecorder {
	a.t.Helper()
	if req.method == "" {
		req.method = http.MethodGet
	}
	var r *http.Request
	if req.form != nil {
		r = httptest.NewRequest(req.method, req.path, strings.NewReader(req.form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(req.method, req.path, nil)
	}
	if req.cookie != nil {
		r.AddCookie(req.cookie)
	}
	if req.json {
		r.Header.Set("Accept", "application/json")
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.app.ServeHTTP(rec, r)
	return rec
}

// flash decodes the flash cookie set by rec, "" when none.
func flash(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != "flash" || c.Value == "" {
			continue
		}
		raw, err := url.QueryUnescape(c.Value)
		require.NoError(t, err)
		_, msg, _ := strings.Cut(raw, "|")
		return msg
	}
	return ""
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestOpsEndpoints(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(request{path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	rec = a.do(request{path: "/healthz"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	rec = a.do(request{path: "/metrics"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bookstore_http_requests_total")

	rec = a.do(request{path: "/static/app.css"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(request{path: "/health", headers: map[string]string{"X-Request-Id": "req-42"}})
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))

	rec = a.do(request{path: "/health"})
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestCatalogPages(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(request{path: "/"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dune")
	assert.Contains(t, rec.Body.String(), "Cosmos")

	var books []models.Book
	rec = a.do(request{path: "/", json: true})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &books)
	assert.Len(t, books, 8)

	for _, path := range []string{"/search?q=sagan", "/search/?q=sagan"} {
		rec = a.do(request{path: path})
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Cosmos", path)
		assert.NotContains(t, rec.Body.String(), "Dune", path)
	}

	var found struct {
		Query string        `json:"query"`
		Books []models.Book `json:"books"`
	}
	rec = a.do(request{path: "/search?q=herbert", json: true})
	decode(t, rec, &found)
	assert.Equal(t, "herbert", found.Query)
	require.Len(t, found.Books, 1)
	assert.Equal(t, "Dune", found.Books[0].Title)

	rec = a.do(request{path: "/" + a.bookID("Dune") + "/"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Frank Herbert")

	rec = a.do(request{path: "/no-such-book/"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(request{path: "/no-such-book/", json: true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestLogin(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(request{path: "/login/"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: "/login/", form: url.Values{
		"username": {db.SeedCustomerUsername}, "password": {"wrong"},
	}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = a.do(request{method: http.MethodPost, path: "/login/", json: true, form: url.Values{
		"username": {db.SeedCustomerUsername}, "password": {"wrong"},
	}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: "/login/", form: url.Values{
		"username": {db.SeedCustomerUsername}, "password": {db.SeedCustomerPassword},
	}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "Login successful!", flash(t, rec))

	var sess *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			sess = c
		}
	}
	require.NotNil(t, sess)
	rec = a.do(request{path: "/profile/", cookie: sess})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	gdb := dbtest.New(t)
	require.NoError(t, db.Seed(gdb))
	cfg := &config.Config{Shop: config.ShopConfig{
		ShippingFee: "5.00", RecommendLimit: 4, LoginRateLimit: 2, LoginRateWindow: time.Minute,
	}}
	a := &testApp{t: t, db: gdb, app: server.NewApp(gdb, cfg, policy.NewRouterConfig(gdb, cfg))}

	form := url.Values{"username": {"nobody"}, "password": {"x"}}
	for i := 0; i < 2; i++ {
		rec := a.do(request{method: http.MethodPost, path: "/login/", form: form, json: true})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := a.do(request{method: http.MethodPost, path: "/login/", form: form, json: true})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestCustomerRoutesRequireLogin(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(request{path: "/cart/"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login/", rec.Header().Get("Location"))

	rec = a.do(request{path: "/cart/", json: true})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	stale := a.sessionFor("deleted-user")
	rec = a.do(request{path: "/history/", cookie: stale})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestShoppingFlow(t *testing.T) {
	a := newTestApp(t)
	sess := a.session(db.SeedCustomerUsername)
	dune := a.bookID("Dune")

	rec := a.do(request{path: "/checkout/", cookie: sess})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Your cart is empty", flash(t, rec))

	for i := 0; i < 2; i++ {
		rec = a.do(request{method: http.MethodPost, path: "/add-to-cart/" + dune + "/", cookie: sess})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/cart/", rec.Header().Get("Location"))
		assert.Equal(t, "Dune added to cart!", flash(t, rec))
	}

	rec = a.do(request{path: "/cart/", cookie: sess})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "$36.00")

	var co struct {
		Subtotal    decimal.Decimal `json:"subtotal"`
		ShippingFee decimal.Decimal `json:"shipping_fee"`
		Total       decimal.Decimal `json:"total"`
		Token       string          `json:"token"`
	}
	rec = a.do(request{path: "/checkout/", cookie: sess, json: true})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &co)
	assert.True(t, co.Subtotal.Equal(decimal.RequireFromString("36")), co.Subtotal.String())
	assert.True(t, co.ShippingFee.Equal(decimal.RequireFromString("5")))
	assert.True(t, co.Total.Equal(decimal.RequireFromString("41")))
	require.NotEmpty(t, co.Token)

	rec = a.do(request{path: "/checkout/", cookie: sess})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "$41.00")

	rec = a.do(request{path: "/place-order/", cookie: sess})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Invalid request", flash(t, rec))

	form := url.Values{"token": {co.Token}}
	rec = a.do(request{method: http.MethodPost, path: "/place-order/", form: form, cookie: sess})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/history/", rec.Header().Get("Location"))
	assert.Contains(t, flash(t, rec), "placed successfully!")

	// resubmitting the same form returns the order already placed
	rec = a.do(request{method: http.MethodPost, path: "/place-order/", form: form, cookie: sess})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/history/", rec.Header().Get("Location"))

	var orders, items, payments int64
	require.NoError(t, a.db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, a.db.Model(&models.OrderItem{}).Count(&items).Error)
	require.NoError(t, a.db.Model(&models.Payment{}).Count(&payments).Error)
	assert.EqualValues(t, 1, orders)
	assert.EqualValues(t, 1, items)
	assert.EqualValues(t, 1, payments)

	rec = a.do(request{path: "/cart/", cookie: sess, json: true})
	var cart struct {
		Items []json.RawMessage `json:"items"`
	}
	decode(t, rec, &cart)
	assert.Empty(t, cart.Items)

	rec = a.do(request{path: "/history/", cookie: sess})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dune")
	assert.Contains(t, rec.Body.String(), "$36.00")
}

func TestAddToCartUnknownBook(t *testing.T) {
	a := newTestApp(t)
	rec := a.do(request{method: http.MethodPost, path: "/add-to-cart/missing/", cookie: a.session(db.SeedCustomerUsername)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveFromCart(t *testing.T) {
	a := newTestApp(t)
	reader := a.session(db.SeedCustomerUsername)

	other := &models.User{Username: "other", Password: "x"}
	require.NoError(t, a.db.Create(other).Error)
	require.NoError(t, a.db.Create(&models.Customer{UserID: other.ID}).Error)
	otherSess := a.sessionFor(other.ID)

	var item models.CartItem
	rec := a.do(request{method: http.MethodPost, path: "/add-to-cart/" + a.bookID("Cosmos") + "/", cookie: otherSess, json: true})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &item)
	require.NotEmpty(t, item.ID)

	rec = a.do(request{method: http.MethodPost, path: "/remove-from-cart/" + item.ID + "/", cookie: reader})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Unauthorized access", flash(t, rec))

	rec = a.do(request{method: http.MethodPost, path: "/remove-from-cart/" + item.ID + "/", cookie: reader, json: true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: "/remove-from-cart/missing/", cookie: reader})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: "/remove-from-cart/" + item.ID + "/", cookie: otherSess, json: true})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var n int64
	require.NoError(t, a.db.Model(&models.CartItem{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestStaffOnlyAccountHasNoCart(t *testing.T) {
	a := newTestApp(t)
	manager := a.session(db.SeedManagerUsername)

	rec := a.do(request{path: "/cart/", cookie: manager})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Customer profile not found")

	rec = a.do(request{path: "/cart/", cookie: manager, json: true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: "/add-to-cart/" + a.bookID("Dune") + "/", cookie: manager})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRateBook(t *testing.T) {
	a := newTestApp(t)
	sess := a.session(db.SeedCustomerUsername)
	cosmos := a.bookID("Cosmos")
	back := "/" + cosmos + "/"

	rec := a.do(request{method: http.MethodPost, path: back + "rate/", cookie: sess, form: url.Values{"score": {"4"}}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, back, rec.Header().Get("Location"))
	assert.Equal(t, "Thanks for your rating!", flash(t, rec))

	rec = a.do(request{method: http.MethodPost, path: back + "rate/", cookie: sess, form: url.Values{"score": {"9"}}})
	assert.Equal(t, "Score must be between 1 and 5", flash(t, rec))

	rec = a.do(request{method: http.MethodPost, path: back + "rate/", cookie: sess, json: true, form: url.Values{"score": {"0"}}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var book models.Book
	require.NoError(t, a.db.First(&book, "id = ?", cosmos).Error)
	assert.True(t, book.Rate.Equal(decimal.NewFromInt(4)), book.Rate.String())
}

func TestRecommendationsColdStart(t *testing.T) {
	a := newTestApp(t)
	sess := a.session(db.SeedCustomerUsername)

	var res struct {
		Tier  string        `json:"tier"`
		Books []models.Book `json:"books"`
	}
	rec := a.do(request{path: "/recommendations/", cookie: sess, json: true})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &res)
	assert.Equal(t, "cold_start", res.Tier)
	assert.LessOrEqual(t, len(res.Books), 4)

	rec = a.do(request{path: "/recommendations/", cookie: sess})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(request{path: "/recommendations/", cookie: a.session(db.SeedManagerUsername), json: true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegister(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(request{path: "/register/"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: "/register/", form: url.Values{
		"username": {"newreader"}, "password": {"secret1"}, "password_confirm": {"secret1"},
	}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login/", rec.Header().Get("Location"))

	// registration is disabled in this configuration: nothing persisted
	var n int64
	require.NoError(t, a.db.Model(&models.User{}).Where("username = ?", "newreader").Count(&n).Error)
	assert.Zero(t, n)

	rec = a.do(request{method: http.MethodPost, path: "/register/", form: url.Values{
		"username": {"ab"}, "password": {"secret1"}, "password_confirm": {"other"},
	}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLogout(t *testing.T) {
	a := newTestApp(t)
	rec := a.do(request{method: http.MethodPost, path: "/logout/", cookie: a.session(db.SeedCustomerUsername)})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Logged out successfully!", flash(t, rec))
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			assert.Empty(t, c.Value)
		}
	}
}

func TestStaffGuards(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(request{path: "/staff/", cookie: a.session(db.SeedCustomerUsername)})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	manager := a.session(db.SeedManagerUsername)
	rec = a.do(request{path: "/staff/", cookie: manager})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Back office")
	assert.Contains(t, rec.Body.String(), "/staff/roles/")

	_, clerk := a.staffUser("clerk1", models.RoleClerk)
	rec = a.do(request{path: "/staff/", cookie: clerk})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "/staff/roles/")

	rec = a.do(request{path: "/staff/add-book/", cookie: clerk})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/staff/", rec.Header().Get("Location"))

	rec = a.do(request{path: "/staff/inventory/", cookie: clerk})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStaffAddBook(t *testing.T) {
	a := newTestApp(t)
	manager := a.session(db.SeedManagerUsername)

	rec := a.do(request{path: "/staff/add-book/", cookie: manager})
	require.Equal(t, http.StatusOK, rec.Code)

	var author models.Author
	require.NoError(t, a.db.Where("name = ?", "Frank Herbert").First(&author).Error)
	var publisher models.Publisher
	require.NoError(t, a.db.Where("name = ?", "Ace Books").First(&publisher).Error)

	rec = a.do(request{method: http.MethodPost, path: "/staff/add-book/", cookie: manager, form: url.Values{
		"title": {"Neuromancer"}, "price": {"11.50"}, "instock": {"3"},
		"author_id": {author.ID}, "publisher_id": {publisher.ID}, "category": {"fiction"},
	}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/staff/inventory/", rec.Header().Get("Location"))
	assert.Equal(t, `Book "Neuromancer" added successfully!`, flash(t, rec))

	rec = a.do(request{method: http.MethodPost, path: "/staff/add-book/", cookie: manager, form: url.Values{
		"title": {""}, "price": {"abc"}, "instock": {"1"},
	}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var n int64
	require.NoError(t, a.db.Model(&models.Book{}).Count(&n).Error)
	assert.EqualValues(t, 9, n)
}

func TestStaffOrderStatus(t *testing.T) {
	a := newTestApp(t)
	reader := a.session(db.SeedCustomerUsername)
	manager := a.session(db.SeedManagerUsername)

	a.do(request{method: http.MethodPost, path: "/add-to-cart/" + a.bookID("Dune") + "/", cookie: reader})
	var order models.Order
	rec := a.do(request{method: http.MethodPost, path: "/place-order/", cookie: reader, json: true, form: url.Values{}})
	require.Equal(t, http.StatusCreated, rec.Code)
	decode(t, rec, &order)

	statusPath := "/staff/orders/" + order.ID + "/status/"
	rec = a.do(request{method: http.MethodPost, path: statusPath, cookie: manager, form: url.Values{"status": {"lost"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: statusPath, cookie: manager, json: true, form: url.Values{"status": {"delivered"}}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: statusPath, cookie: manager, form: url.Values{"status": {"processing"}}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, flash(t, rec), "is now processing")

	rec = a.do(request{path: "/staff/orders/", cookie: manager})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "processing")

	rec = a.do(request{method: http.MethodPost, path: "/staff/orders/missing/status/", cookie: manager, form: url.Values{"status": {"processing"}}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaffImport(t *testing.T) {
	a := newTestApp(t)
	manager := a.session(db.SeedManagerUsername)

	var supplier models.Supplier
	require.NoError(t, a.db.First(&supplier).Error)
	dune := a.bookID("Dune")

	rec := a.do(request{path: "/staff/import/", cookie: manager})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), supplier.Name)

	rec = a.do(request{method: http.MethodPost, path: "/staff/import/", cookie: manager, form: url.Values{
		"supplier_id": {supplier.ID}, "book_id": {dune}, "quantity": {"4"}, "price": {"9.00"},
	}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/staff/import/", rec.Header().Get("Location"))

	var book models.Book
	require.NoError(t, a.db.First(&book, "id = ?", dune).Error)
	assert.Equal(t, 24, book.Instock)
}

func TestStaffRoleAssignment(t *testing.T) {
	a := newTestApp(t)
	manager := a.session(db.SeedManagerUsername)
	clerkID, clerk := a.staffUser("clerk1", models.RoleClerk)

	// primes the cached profile of the clerk
	rec := a.do(request{path: "/staff/add-book/", cookie: clerk})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = a.do(request{path: "/staff/roles/", cookie: manager})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clerk1")

	rec = a.do(request{path: "/staff/roles/", cookie: clerk})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: "/staff/roles/" + clerkID + "/", cookie: manager, form: url.Values{"role": {"auditor"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: "/staff/roles/not-staff/", cookie: manager, form: url.Values{"role": {models.RoleManager}}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(request{method: http.MethodPost, path: "/staff/roles/" + clerkID + "/", cookie: manager, form: url.Values{"role": {models.RoleManager}}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Role updated", flash(t, rec))

	rec = a.do(request{path: "/staff/add-book/", cookie: clerk})
	assert.Equal(t, http.StatusOK, rec.Code)
}
