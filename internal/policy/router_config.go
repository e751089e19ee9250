package policy

import (
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/internal/config"
	"github.com/diewo77/go-bookstore/internal/handlers"
	"github.com/diewo77/go-bookstore/internal/recommend"
	"github.com/diewo77/go-bookstore/internal/services"
)

// profileCacheTTL bounds how long a staff role change can take to apply
// when it is not made through the roles page.
const profileCacheTTL = 5 * time.Minute

// RouterConfig holds the configured handlers and authorization for the
// application router.
type RouterConfig struct {
	// AuthGate guards the back office with staff profiles.
	AuthGate *AuthGate

	CatalogHandler   *handlers.CatalogHandler
	AccountHandler   *handlers.AccountHandler
	CartHandler      *handlers.CartHandler
	StaffHandler     *handlers.StaffHandler
	StaffRoleHandler *handlers.StaffRoleHandler

	Accounts *services.AccountService
}

// NewRouterConfig wires the authorization gates, ownership policies,
// services and handlers over db.
func NewRouterConfig(db *gorm.DB, cfg *config.Config) *RouterConfig {
	authGate := NewAuthGate(db, profileCacheTTL)

	catalog := services.NewCatalogService(db)
	accounts := services.NewAccountService(db, cfg.App.RegistrationEnabled)
	carts := services.NewCartService(db, NewCustomerGate(), cfg.Shop.Fee())
	inventory := services.NewInventoryService(db)
	engine := recommend.NewEngine(recommend.NewGormSource(db), cfg.Shop.RecommendLimit)

	return &RouterConfig{
		AuthGate:         authGate,
		CatalogHandler:   handlers.NewCatalogHandler(catalog),
		AccountHandler:   handlers.NewAccountHandler(accounts),
		CartHandler:      handlers.NewCartHandler(carts, engine),
		StaffHandler:     handlers.NewStaffHandler(inventory),
		StaffRoleHandler: handlers.NewStaffRoleHandler(db, authGate.CacheResolver),
		Accounts:         accounts,
	}
}
