package store

import (
	"fmt"
	"sync"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
)

// Catalog kinds.
const (
	CatalogData = "data"
	CatalogSMS  = "sms"
)

// CatalogStore holds the mutable product tables: data and SMS bundles
// grouped by subcategory. Airtime is amount-based and has no table.
// Read by the conversation engine, mutated only by admin commands.
type CatalogStore struct {
	mu   sync.RWMutex
	data map[string][]*models.Package
	sms  map[string][]*models.Package
}

// NewCatalogStore returns a catalog seeded with the default bundles.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		data: map[string][]*models.Package{
			"hourly": {
				{ID: 1, Name: "1GB", Price: 19, Validity: "1 hour"},
				{ID: 2, Name: "1.5GB", Price: 49, Validity: "3 hours"},
			},
			"daily": {
				{ID: 1, Name: "1.25GB", Price: 55, Validity: "Till midnight"},
				{ID: 2, Name: "1GB", Price: 99, Validity: "24 hours"},
				{ID: 3, Name: "250MB", Price: 20, Validity: "24 hours"},
			},
			"weekly": {
				{ID: 1, Name: "6GB", Price: 700, Validity: "7 days"},
				{ID: 2, Name: "2.5GB", Price: 300, Validity: "7 days"},
				{ID: 3, Name: "350MB", Price: 50, Validity: "7 days"},
			},
			"monthly": {
				{ID: 1, Name: "1.2GB", Price: 250, Validity: "30 days"},
				{ID: 2, Name: "500MB", Price: 100, Validity: "30 days"},
			},
		},
		sms: map[string][]*models.Package{
			"daily": {
				{ID: 1, Name: "200 SMS", Price: 10, Validity: "Daily"},
			},
			"weekly": {
				{ID: 1, Name: "1000 SMS", Price: 29, Validity: "Weekly"},
			},
			"monthly": {
				{ID: 1, Name: "2000 SMS", Price: 99, Validity: "Monthly"},
			},
		},
	}
}

// NewEmptyCatalogStore returns a catalog with the standard subcategories
// but no packages.
func NewEmptyCatalogStore() *CatalogStore {
	return &CatalogStore{
		data: map[string][]*models.Package{
			"hourly": {}, "daily": {}, "weekly": {}, "monthly": {},
		},
		sms: map[string][]*models.Package{
			"daily": {}, "weekly": {}, "monthly": {},
		},
	}
}

func (s *CatalogStore) table(kind string) map[string][]*models.Package {
	if kind == CatalogSMS {
		return s.sms
	}
	return s.data
}

// List returns the packages in a subcategory, or an error for an
// unknown subcategory.
func (s *CatalogStore) List(kind, subcat string) ([]*models.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pkgs, ok := s.table(kind)[subcat]
	if !ok {
		return nil, fmt.Errorf("invalid %s subcategory: %s", kind, subcat)
	}
	out := make([]*models.Package, len(pkgs))
	copy(out, pkgs)
	return out, nil
}

// Find returns the package with the given id in a subcategory.
func (s *CatalogStore) Find(kind, subcat string, id int) (*models.Package, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.table(kind)[subcat] {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Add appends a package to a subcategory, assigning the next sequential
// id within that subcategory (last id + 1, or 1 when empty).
func (s *CatalogStore) Add(kind, subcat, name string, price float64, validity string) (*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.table(kind)
	pkgs, ok := table[subcat]
	if !ok {
		return nil, fmt.Errorf("invalid %s subcategory: %s", kind, subcat)
	}
	id := 1
	if len(pkgs) > 0 {
		id = pkgs[len(pkgs)-1].ID + 1
	}
	p := &models.Package{ID: id, Name: name, Price: price, Validity: validity}
	table[subcat] = append(pkgs, p)
	return p, nil
}

// Remove deletes the package with the given id from a subcategory.
func (s *CatalogStore) Remove(kind, subcat string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.table(kind)
	pkgs, ok := table[subcat]
	if !ok {
		return fmt.Errorf("invalid %s subcategory: %s", kind, subcat)
	}
	for i, p := range pkgs {
		if p.ID == id {
			table[subcat] = append(pkgs[:i], pkgs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no %s package with id %d in %s", kind, id, subcat)
}

// EditPrice updates the price of the package with the given id.
func (s *CatalogStore) EditPrice(kind, subcat string, id int, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkgs, ok := s.table(kind)[subcat]
	if !ok {
		return fmt.Errorf("invalid %s subcategory: %s", kind, subcat)
	}
	for _, p := range pkgs {
		if p.ID == id {
			p.Price = price
			return nil
		}
	}
	return fmt.Errorf("no %s package with id %d in %s", kind, id, subcat)
}
