package booking

import (
	"context"

	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// CatalogPageSize is the fixed page size of the type-selection step.
const CatalogPageSize = 6

// fallbackServices is the hard-coded catalog used only when the backend's
// category list comes back empty. It is never merged with backend data.
var fallbackServices = []domain.ServiceType{
	{Code: "ROGITO", Name: "Rogito", DurationMin: 90},
	{Code: "PROCURA", Name: "Procura", DurationMin: 30},
	{Code: "TESTAMENTO", Name: "Testamento", DurationMin: 60},
	{Code: "MUTUO", Name: "Atto di Mutuo", DurationMin: 60},
	{Code: "DONAZIONE", Name: "Donazione", DurationMin: 60},
	{Code: "SOCIETA", Name: "Costituzione Società", DurationMin: 120},
	{Code: "AUTENTICA", Name: "Autentica Firme", DurationMin: 30},
}

// Catalog is the paged service-type list shown on the wizard's first step.
// The page index does not reset automatically when the underlying list
// changes.
type Catalog struct {
	types []domain.ServiceType
	page  int
}

// LoadCatalog fetches the act categories from the backend, substituting the
// fallback list when the backend returns none.
func LoadCatalog(ctx context.Context, b backend.Client) (*Catalog, error) {
	types, err := b.ListServiceTypes(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		types = append([]domain.ServiceType(nil), fallbackServices...)
	}
	return &Catalog{types: types}, nil
}

// NewCatalog builds a catalog from an already-loaded list (tests, polls).
func NewCatalog(types []domain.ServiceType) *Catalog {
	if len(types) == 0 {
		types = append([]domain.ServiceType(nil), fallbackServices...)
	}
	return &Catalog{types: types}
}

// All returns the full list.
func (c *Catalog) All() []domain.ServiceType { return c.types }

// Page returns the current page's service types.
func (c *Catalog) Page() []domain.ServiceType {
	start := c.page * CatalogPageSize
	if start >= len(c.types) {
		return nil
	}
	end := start + CatalogPageSize
	if end > len(c.types) {
		end = len(c.types)
	}
	return c.types[start:end]
}

// PageIndex returns the zero-based current page.
func (c *Catalog) PageIndex() int { return c.page }

// PageCount returns the number of pages.
func (c *Catalog) PageCount() int {
	if len(c.types) == 0 {
		return 1
	}
	return (len(c.types) + CatalogPageSize - 1) / CatalogPageSize
}

// NextPage advances to the next page if one exists.
func (c *Catalog) NextPage() {
	if c.page < c.PageCount()-1 {
		c.page++
	}
}

// PrevPage moves to the previous page if one exists.
func (c *Catalog) PrevPage() {
	if c.page > 0 {
		c.page--
	}
}

// FindByCode returns the service type with the given code.
func (c *Catalog) FindByCode(code string) (domain.ServiceType, bool) {
	for _, t := range c.types {
		if t.Code == code {
			return t, true
		}
	}
	return domain.ServiceType{}, false
}
