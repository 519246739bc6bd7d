package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Item         ItemRepository
	Sale         SaleRepository
	Customer     CustomerRepository
	Installation InstallationRepository
	Audit        AuditRepository
	Import       ImportRepository
	Report       ReportRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Item:         NewItemRepository(db),
		Sale:         NewSaleRepository(db),
		Customer:     NewCustomerRepository(db),
		Installation: NewInstallationRepository(db),
		Audit:        NewAuditRepository(db),
		Import:       NewImportRepository(db),
		Report:       NewReportRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// AllRows returns a query without pagination, used by exports and reports
func AllRows() *ListQuery {
	q := NewListQuery()
	q.PerPage = 0
	return q
}

// paginate applies ordering and paging. Sort columns are restricted to the allowed map
// (request name -> column) so user input never reaches ORDER BY directly.
func paginate(db *gorm.DB, query *ListQuery, allowed map[string]string, defaultOrder string) *gorm.DB {
	order := defaultOrder
	if col, ok := allowed[query.SortBy]; ok {
		order = col
		if strings.EqualFold(query.SortDir, "desc") {
			order += " DESC"
		}
	}
	db = db.Order(order)

	if query.PerPage > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		db = db.Offset((page - 1) * query.PerPage).Limit(query.PerPage)
	}
	return db
}

// likePattern builds a case-insensitive LIKE argument that works on both drivers
func likePattern(term string) string {
	return fmt.Sprintf("%%%s%%", strings.ToLower(strings.TrimSpace(term)))
}
