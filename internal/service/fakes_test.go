package service

import (
	"fmt"
	"sync"

	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stderr"})
}

// fakeCatalog is shared in-memory state for the fake repositories. The
// fake order repository mirrors the real one's transaction semantics:
// stock decrements are conditional and all-or-nothing.
type fakeCatalog struct {
	mu         sync.Mutex
	categories map[int64]*models.Category
	brands     map[int64]*models.Brand
	flavors    map[int64]*models.Flavor
	nextID     int64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: make(map[int64]*models.Category),
		brands:     make(map[int64]*models.Brand),
		flavors:    make(map[int64]*models.Flavor),
	}
}

func (c *fakeCatalog) id() int64 {
	c.nextID++
	return c.nextID
}

func (c *fakeCatalog) addFlavor(f models.Flavor) *models.Flavor {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f.ID == 0 {
		f.ID = c.id()
	}
	stored := f
	c.flavors[stored.ID] = &stored
	return &stored
}

type fakeCategoryRepo struct {
	catalog *fakeCatalog
}

func (r *fakeCategoryRepo) GetAll() ([]*models.Category, error) {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	out := make([]*models.Category, 0, len(r.catalog.categories))
	for _, c := range r.catalog.categories {
		cc := *c
		out = append(out, &cc)
	}
	return out, nil
}

func (r *fakeCategoryRepo) GetByID(id int64) (*models.Category, error) {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	c, ok := r.catalog.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	cc := *c
	return &cc, nil
}

func (r *fakeCategoryRepo) GetBySlug(slug string) (*models.Category, error) {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	for _, c := range r.catalog.categories {
		if c.Slug == slug {
			cc := *c
			return &cc, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", slug, models.ErrNotFound)
}

func (r *fakeCategoryRepo) Add(category *models.Category) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	for _, c := range r.catalog.categories {
		if c.Slug == category.Slug {
			return fmt.Errorf("category with slug %q already exists", category.Slug)
		}
	}
	category.ID = r.catalog.id()
	stored := *category
	r.catalog.categories[stored.ID] = &stored
	return nil
}

func (r *fakeCategoryRepo) Delete(id int64) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	if _, ok := r.catalog.categories[id]; !ok {
		return fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	delete(r.catalog.categories, id)
	return nil
}

type fakeBrandRepo struct {
	catalog *fakeCatalog
}

func (r *fakeBrandRepo) GetByCategoryID(categoryID int64) ([]*models.Brand, error) {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	var out []*models.Brand
	for _, b := range r.catalog.brands {
		if b.CategoryID == categoryID {
			bb := *b
			out = append(out, &bb)
		}
	}
	return out, nil
}

func (r *fakeBrandRepo) GetByID(id int64) (*models.Brand, error) {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	b, ok := r.catalog.brands[id]
	if !ok {
		return nil, fmt.Errorf("brand %d: %w", id, models.ErrNotFound)
	}
	bb := *b
	return &bb, nil
}

func (r *fakeBrandRepo) Add(brand *models.Brand) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	brand.ID = r.catalog.id()
	stored := *brand
	r.catalog.brands[stored.ID] = &stored
	return nil
}

func (r *fakeBrandRepo) UpdatePoster(id int64, poster string) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	b, ok := r.catalog.brands[id]
	if !ok {
		return fmt.Errorf("brand %d: %w", id, models.ErrNotFound)
	}
	b.Poster = poster
	return nil
}

func (r *fakeBrandRepo) Delete(id int64) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	if _, ok := r.catalog.brands[id]; !ok {
		return fmt.Errorf("brand %d: %w", id, models.ErrNotFound)
	}
	delete(r.catalog.brands, id)
	return nil
}

type fakeFlavorRepo struct {
	catalog *fakeCatalog

	mu       sync.Mutex
	getCalls int
}

func (r *fakeFlavorRepo) countGet() {
	r.mu.Lock()
	r.getCalls++
	r.mu.Unlock()
}

func (r *fakeFlavorRepo) GetByBrandID(brandID int64, inStockOnly bool) ([]*models.Flavor, error) {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	var out []*models.Flavor
	for _, f := range r.catalog.flavors {
		if f.BrandID != brandID {
			continue
		}
		if inStockOnly && (f.Stock <= 0 || !f.IsActive) {
			continue
		}
		ff := *f
		out = append(out, &ff)
	}
	return out, nil
}

func (r *fakeFlavorRepo) GetByID(id int64) (*models.Flavor, error) {
	r.countGet()
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	f, ok := r.catalog.flavors[id]
	if !ok {
		return nil, fmt.Errorf("flavor %d: %w", id, models.ErrNotFound)
	}
	ff := *f
	return &ff, nil
}

func (r *fakeFlavorRepo) GetLowStock(threshold int) ([]*models.Flavor, error) {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	var out []*models.Flavor
	for _, f := range r.catalog.flavors {
		if f.Stock <= threshold {
			ff := *f
			out = append(out, &ff)
		}
	}
	return out, nil
}

func (r *fakeFlavorRepo) Add(flavor *models.Flavor) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	flavor.ID = r.catalog.id()
	stored := *flavor
	r.catalog.flavors[stored.ID] = &stored
	return nil
}

func (r *fakeFlavorRepo) Update(id int64, flavor *models.Flavor) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	if _, ok := r.catalog.flavors[id]; !ok {
		return fmt.Errorf("flavor %d: %w", id, models.ErrNotFound)
	}
	stored := *flavor
	stored.ID = id
	r.catalog.flavors[id] = &stored
	return nil
}

func (r *fakeFlavorRepo) Delete(id int64) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	if _, ok := r.catalog.flavors[id]; !ok {
		return fmt.Errorf("flavor %d: %w", id, models.ErrNotFound)
	}
	delete(r.catalog.flavors, id)
	return nil
}

type fakeOrderRepo struct {
	catalog *fakeCatalog
	orders  map[int64]*models.Order

	// insertErr makes Create fail after the decrements, the way a failed
	// order insert would inside the real transaction.
	insertErr error
}

func newFakeOrderRepo(catalog *fakeCatalog) *fakeOrderRepo {
	return &fakeOrderRepo{catalog: catalog, orders: make(map[int64]*models.Order)}
}

// Create applies the same all-or-nothing conditional decrement the real
// repository runs inside its transaction.
func (r *fakeOrderRepo) Create(order *models.Order) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()

	for _, item := range order.Items {
		f, ok := r.catalog.flavors[item.FlavorID]
		if !ok {
			return &models.UnknownSKUError{FlavorID: item.FlavorID}
		}
		if f.Stock < item.Quantity {
			return &models.InsufficientStockError{
				FlavorID:  f.ID,
				Name:      f.Name,
				Requested: item.Quantity,
				Available: f.Stock,
			}
		}
	}

	for _, item := range order.Items {
		r.catalog.flavors[item.FlavorID].Stock -= item.Quantity
	}

	// A failure past this point rolls the decrements back, mirroring the
	// real transaction.
	if r.insertErr != nil {
		for _, item := range order.Items {
			r.catalog.flavors[item.FlavorID].Stock += item.Quantity
		}
		return r.insertErr
	}

	order.ID = r.catalog.id()
	for i := range order.Items {
		order.Items[i].ID = r.catalog.id()
		order.Items[i].OrderID = order.ID
	}

	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	r.orders[stored.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) GetAll() ([]*models.Order, error) {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	out := make([]*models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		oo := *o
		oo.Items = append([]models.OrderItem(nil), o.Items...)
		out = append(out, &oo)
	}
	return out, nil
}

func (r *fakeOrderRepo) GetByID(id int64) (*models.Order, error) {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	oo := *o
	oo.Items = append([]models.OrderItem(nil), o.Items...)
	return &oo, nil
}

func (r *fakeOrderRepo) UpdateStatus(id int64, status models.OrderStatus) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	o.Status = status
	return nil
}

func (r *fakeOrderRepo) Delete(id int64) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	for _, item := range o.Items {
		if f, ok := r.catalog.flavors[item.FlavorID]; ok {
			f.Stock += item.Quantity
		}
	}
	delete(r.orders, id)
	return nil
}
