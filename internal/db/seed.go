package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/internal/models"
)

// Demo accounts created by Seed.
const (
	SeedManagerUsername  = "manager"
	SeedManagerPassword  = "manager123"
	SeedCustomerUsername = "reader"
	SeedCustomerPassword = "reader123"
)

// Seed loads permissions, staff profiles, a small catalog and the demo
// accounts. It is idempotent.
func Seed(gdb *gorm.DB) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := SeedProfiles(tx); err != nil {
			return err
		}
		if err := seedCatalog(tx); err != nil {
			return err
		}
		return seedAccounts(tx)
	})
}

// SeedPermissions creates the resource:action permissions checked by the
// staff routes.
func SeedPermissions(gdb *gorm.DB) error {
	permissions := []struct {
		ResourceType string
		Action       string
		Description  string
	}{
		{"*", "*", "Full back-office access"},
		{"book", "*", "All book actions"},
		{"book", "view", "View book details"},
		{"book", "create", "Add books"},
		{"book", "update", "Edit books"},
		{"inventory", "list", "List inventory"},
		{"order", "*", "All order actions"},
		{"order", "list", "List orders"},
		{"order", "update", "Change order status"},
		{"import", "*", "All stock import actions"},
		{"import", "list", "List import slips"},
		{"import", "create", "Record stock imports"},
	}
	for _, p := range permissions {
		perm := models.Permission{ResourceType: p.ResourceType, Action: p.Action, Description: p.Description}
		if err := gdb.Where("resource_type = ? AND action = ?", p.ResourceType, p.Action).
			FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", perm.Code(), err)
		}
	}
	return nil
}

// SeedProfiles creates the manager and clerk profiles. Staff.Role names
// the profile.
func SeedProfiles(gdb *gorm.DB) error {
	if err := SeedPermissions(gdb); err != nil {
		return err
	}
	profiles := []struct {
		Name        string
		Description string
		Permissions []string
	}{
		{models.RoleManager, "Store manager with every permission", []string{"*:*"}},
		{models.RoleClerk, "Handles orders and stock", []string{
			"book:view", "inventory:list", "order:*", "import:*",
		}},
	}

	for _, p := range profiles {
		var profile models.Profile
		err := gdb.Where("name = ?", p.Name).First(&profile).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		profile = models.Profile{Name: p.Name, Description: p.Description}
		for _, code := range p.Permissions {
			var perm models.Permission
			res, act, _ := strings.Cut(code, ":")
			if err := gdb.Where("resource_type = ? AND action = ?", res, act).First(&perm).Error; err != nil {
				return fmt.Errorf("profile %s: permission %s: %w", p.Name, code, err)
			}
			profile.Permissions = append(profile.Permissions, perm)
		}
		if err := gdb.Create(&profile).Error; err != nil {
			return fmt.Errorf("seed profile %s: %w", p.Name, err)
		}
	}
	return nil
}

type seedBook struct {
	Title     string
	Author    string
	Publisher string
	Category  string
	Price     string
	Instock   int
}

var seedBooks = []seedBook{
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "Ace Books", "fiction", "14.99", 12},
	{"A Wizard of Earthsea", "Ursula K. Le Guin", "Parnassus Press", "fantasy", "11.50", 8},
	{"Dune", "Frank Herbert", "Chilton Books", "fiction", "18.00", 20},
	{"The Hobbit", "J. R. R. Tolkien", "Allen & Unwin", "fantasy", "12.75", 15},
	{"A Brief History of Time", "Stephen Hawking", "Bantam Books", "science", "16.20", 6},
	{"Cosmos", "Carl Sagan", "Random House", "science", "15.00", 9},
	{"The Pragmatic Programmer", "Andrew Hunt", "Addison-Wesley", "technology", "39.95", 5},
	{"Structure and Interpretation of Computer Programs", "Harold Abelson", "MIT Press", "technology", "45.00", 3},
}

var seedCategories = map[string]string{
	"fiction":    "Novels and short stories",
	"fantasy":    "Myths, magic and other worlds",
	"science":    "Popular science",
	"technology": "Programming and computing",
}

func seedCatalog(tx *gorm.DB) error {
	for typ, desc := range seedCategories {
		c := models.Category{Type: typ, Description: desc}
		if err := tx.Where("type = ?", typ).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", typ, err)
		}
	}

	for _, sb := range seedBooks {
		var count int64
		if err := tx.Model(&models.Book{}).Where("title = ?", sb.Title).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		author := models.Author{Name: sb.Author}
		if err := tx.Where("name = ?", sb.Author).FirstOrCreate(&author).Error; err != nil {
			return fmt.Errorf("seed author %s: %w", sb.Author, err)
		}
		publisher := models.Publisher{Name: sb.Publisher}
		if err := tx.Where("name = ?", sb.Publisher).FirstOrCreate(&publisher).Error; err != nil {
			return fmt.Errorf("seed publisher %s: %w", sb.Publisher, err)
		}
		category := sb.Category
		book := models.Book{
			Title:        sb.Title,
			Price:        decimal.RequireFromString(sb.Price),
			Instock:      sb.Instock,
			AuthorID:     &author.ID,
			PublisherID:  &publisher.ID,
			CategoryType: &category,
		}
		if err := tx.Create(&book).Error; err != nil {
			return fmt.Errorf("seed book %s: %w", sb.Title, err)
		}
	}

	supplier := models.Supplier{Name: "Northwind Books", Address: "1 Harbour Rd", Email: "orders@northwind.example"}
	return tx.Where("name = ?", supplier.Name).FirstOrCreate(&supplier).Error
}

func seedAccounts(tx *gorm.DB) error {
	manager, err := seedUser(tx, SeedManagerUsername, SeedManagerPassword, "Store Manager", true)
	if err != nil {
		return err
	}
	staff := models.Staff{UserID: manager.ID, Role: models.RoleManager}
	if err := tx.Where("user_id = ?", manager.ID).FirstOrCreate(&staff).Error; err != nil {
		return fmt.Errorf("seed staff: %w", err)
	}

	reader, err := seedUser(tx, SeedCustomerUsername, SeedCustomerPassword, "Demo Reader", false)
	if err != nil {
		return err
	}
	var count int64
	if err := tx.Model(&models.Customer{}).Where("user_id = ?", reader.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	addr := models.Address{Num: "12", Street: "Library Lane", City: "Springfield", UserID: reader.ID}
	if err := tx.Create(&addr).Error; err != nil {
		return fmt.Errorf("seed address: %w", err)
	}
	email := "reader@example.com"
	customer := models.Customer{UserID: reader.ID, Email: &email, Tel: "555-0100", AddressID: &addr.ID}
	if err := tx.Create(&customer).Error; err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}
	return nil
}

func seedUser(tx *gorm.DB, username, password, fullname string, isStaff bool) (*models.User, error) {
	var user models.User
	err := tx.Where("username = ?", username).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user = models.User{Username: username, Password: string(hash), Fullname: fullname, IsStaff: isStaff}
	if err := tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("seed user %s: %w", username, err)
	}
	return &user, nil
}
