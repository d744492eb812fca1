package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
)

// In-memory repositories used by the service tests. They mirror the Firestore
// repositories' error contract (db.ErrNotFound, db.ErrAlreadyExists, db.ErrInsufficientStock).

// pageAfter drops everything up to and including the item whose ID is startAfter,
// failing like the Firestore cursor lookup when no item has that ID.
func pageAfter[T any](items []*T, id func(*T) string, startAfter string) ([]*T, error) {
	if startAfter == "" {
		return items, nil
	}
	for i, item := range items {
		if id(item) == startAfter {
			return items[i+1:], nil
		}
	}
	return nil, fmt.Errorf("startAfter '%s': %w", startAfter, db.ErrInvalidCursor)
}

type memSlugRegistry struct {
	mu    sync.Mutex
	claim map[string]bool
}

func newMemSlugRegistry() *memSlugRegistry {
	return &memSlugRegistry{claim: map[string]bool{}}
}

func (r *memSlugRegistry) Claim(_ context.Context, scope, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := scope + ":" + slug
	if r.claim[key] {
		return db.ErrAlreadyExists
	}
	r.claim[key] = true
	return nil
}

func (r *memSlugRegistry) Release(_ context.Context, scope, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claim, scope+":"+slug)
	return nil
}

func (r *memSlugRegistry) held(scope, slug string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claim[scope+":"+slug]
}

type memTaxonRepo struct {
	mu   sync.RWMutex
	seq  int
	data map[models.TaxonKind]map[string]models.Taxon
}

func newMemTaxonRepo() *memTaxonRepo {
	return &memTaxonRepo{data: map[models.TaxonKind]map[string]models.Taxon{}}
}

func (r *memTaxonRepo) Create(_ context.Context, kind models.TaxonKind, t *models.Taxon) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	t.ID = fmt.Sprintf("%s-%d", kind, r.seq)
	t.Kind = kind
	if r.data[kind] == nil {
		r.data[kind] = map[string]models.Taxon{}
	}
	r.data[kind][t.ID] = *t
	return t.ID, nil
}

func (r *memTaxonRepo) GetByID(_ context.Context, kind models.TaxonKind, id string) (*models.Taxon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.data[kind][id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &t, nil
}

func (r *memTaxonRepo) GetByURL(_ context.Context, kind models.TaxonKind, url string) (*models.Taxon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.data[kind] {
		if t.URL == url {
			t := t
			return &t, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *memTaxonRepo) List(_ context.Context, kind models.TaxonKind, filter db.TaxonFilter) ([]*models.Taxon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Taxon, 0)
	for _, t := range r.data[kind] {
		if filter.CategoryID != "" && t.CategoryID != filter.CategoryID {
			continue
		}
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return pageAfter(out, func(t *models.Taxon) string { return t.ID }, filter.StartAfter)
}

func (r *memTaxonRepo) Update(_ context.Context, kind models.TaxonKind, t *models.Taxon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[kind][t.ID]; !ok {
		return db.ErrNotFound
	}
	r.data[kind][t.ID] = *t
	return nil
}

type memSubRepo struct {
	mu   sync.RWMutex
	seq  int
	data map[string]models.Subcategory // key categoryID/id
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{data: map[string]models.Subcategory{}}
}

func (r *memSubRepo) Create(_ context.Context, categoryID string, s *models.Subcategory) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = fmt.Sprintf("sub-%d", r.seq)
	s.CategoryID = categoryID
	r.data[categoryID+"/"+s.ID] = *s
	return s.ID, nil
}

func (r *memSubRepo) GetByID(_ context.Context, categoryID, id string) (*models.Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.data[categoryID+"/"+id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &s, nil
}

func (r *memSubRepo) List(_ context.Context, categoryID string) ([]*models.Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Subcategory, 0)
	for k, s := range r.data {
		if strings.HasPrefix(k, categoryID+"/") {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memSubRepo) Update(_ context.Context, categoryID string, s *models.Subcategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[categoryID+"/"+s.ID] = *s
	return nil
}

type memProductRepo struct {
	mu   sync.RWMutex
	data map[string]models.Product
	// getByIDsCalls records the IDs passed to each GetByIDs call.
	getByIDsCalls [][]string
	// beforeUpdate runs at the start of Update, outside the lock.
	beforeUpdate func()
}

func newMemProductRepo(products ...models.Product) *memProductRepo {
	r := &memProductRepo{data: map[string]models.Product{}}
	for _, p := range products {
		p.ID = p.UniqueID
		r.data[p.UniqueID] = p
	}
	return r
}

func (r *memProductRepo) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[p.UniqueID]; ok {
		return db.ErrAlreadyExists
	}
	p.ID = p.UniqueID
	r.data[p.UniqueID] = *p
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (r *memProductRepo) GetByURL(_ context.Context, url string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.data {
		if p.URL == url {
			p := p
			return &p, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *memProductRepo) GetByIDs(_ context.Context, ids []string) ([]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByIDsCalls = append(r.getByIDsCalls, append([]string(nil), ids...))
	out := make([]*models.Product, 0, len(ids))
	// Reverse order on purpose: callers must not rely on repository ordering.
	for i := len(ids) - 1; i >= 0; i-- {
		if p, ok := r.data[ids[i]]; ok {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *memProductRepo) List(_ context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Product, 0)
	for _, p := range r.data {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	out, err := pageAfter(out, func(p *models.Product) string { return p.ID }, filter.StartAfter)
	if err != nil {
		return nil, err
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Update applies fields the way a Firestore field update does: paths not named are left alone.
func (r *memProductRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return db.ErrNotFound
	}
	for path, v := range fields {
		switch path {
		case "name":
			p.Name = v.(string)
		case "description":
			p.Description = v.(string)
		case "price":
			p.Price = v.(float64)
		case "stockQuantity":
			p.StockQuantity = v.(int)
		case "categoryID":
			p.CategoryID = v.(string)
		case "subcategoryID":
			p.SubcategoryID = v.(string)
		case "brandID":
			p.BrandID = v.(string)
		case "typeID":
			p.TypeID = v.(string)
		case "images":
			p.Images = v.([]string)
		case "url":
			p.URL = v.(string)
		case "updatedAt":
			p.UpdatedAt = v.(time.Time)
		default:
			return fmt.Errorf("unexpected product field %q", path)
		}
	}
	r.data[id] = p
	return nil
}

func (r *memProductRepo) stock(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data[id].StockQuantity
}

type memCartRepo struct {
	mu    sync.RWMutex
	lists map[string][]models.CartItem // key userID/list, insertion ordered
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{lists: map[string][]models.CartItem{}}
}

func cartKey(userID string, list db.CartList) string { return userID + "/" + string(list) }

func (r *memCartRepo) Get(_ context.Context, userID string, list db.CartList, uniqueID string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.lists[cartKey(userID, list)] {
		if it.UniqueID == uniqueID {
			it := it
			return &it, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *memCartRepo) List(_ context.Context, userID string, list db.CartList) ([]*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.CartItem, 0)
	for _, it := range r.lists[cartKey(userID, list)] {
		it := it
		out = append(out, &it)
	}
	return out, nil
}

func (r *memCartRepo) Put(_ context.Context, userID string, list db.CartList, item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := cartKey(userID, list)
	for i, it := range r.lists[key] {
		if it.UniqueID == item.UniqueID {
			r.lists[key][i] = *item
			return nil
		}
	}
	r.lists[key] = append(r.lists[key], *item)
	return nil
}

func (r *memCartRepo) Delete(_ context.Context, userID string, list db.CartList, uniqueID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := cartKey(userID, list)
	for i, it := range r.lists[key] {
		if it.UniqueID == uniqueID {
			r.lists[key] = append(r.lists[key][:i], r.lists[key][i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (r *memCartRepo) Clear(_ context.Context, userID string, list db.CartList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lists, cartKey(userID, list))
	return nil
}

type memAddressRepo struct {
	mu    sync.RWMutex
	seq   int
	order []string
	data  map[string]models.Address
}

func newMemAddressRepo() *memAddressRepo {
	return &memAddressRepo{data: map[string]models.Address{}}
}

func (r *memAddressRepo) Create(_ context.Context, a *models.Address) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	a.ID = fmt.Sprintf("addr-%d", r.seq)
	r.data[a.ID] = *a
	r.order = append(r.order, a.ID)
	return a.ID, nil
}

func (r *memAddressRepo) GetByID(_ context.Context, id string) (*models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &a, nil
}

func (r *memAddressRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Address, 0)
	for _, id := range r.order {
		a, ok := r.data[id]
		if ok && a.OwnerID == ownerID {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r *memAddressRepo) Update(_ context.Context, a *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[a.ID] = *a
	return nil
}

func (r *memAddressRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

func (r *memAddressRepo) SetDefault(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, a := range r.data {
		if a.OwnerID == ownerID {
			a.IsDefault = k == id
			r.data[k] = a
		}
	}
	return nil
}

// memOrderRepo applies stock changes to a memProductRepo the way the Firestore
// transactions do.
type memOrderRepo struct {
	mu       sync.Mutex
	seq      int
	data     map[string]models.Order
	products *memProductRepo
}

func newMemOrderRepo(products *memProductRepo) *memOrderRepo {
	return &memOrderRepo{data: map[string]models.Order{}, products: products}
}

func (r *memOrderRepo) adjustStock(items []models.OrderLine, sign int) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	for _, line := range items {
		p := r.products.data[line.UniqueID]
		p.StockQuantity += sign * line.Qty
		r.products.data[line.UniqueID] = p
	}
}

func (r *memOrderRepo) Place(_ context.Context, o *models.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products.mu.RLock()
	for _, line := range o.Items {
		p, ok := r.products.data[line.UniqueID]
		if !ok {
			r.products.mu.RUnlock()
			return "", db.ErrNotFound
		}
		if p.StockQuantity < line.Qty {
			r.products.mu.RUnlock()
			return "", fmt.Errorf("product '%s': %w", line.UniqueID, db.ErrInsufficientStock)
		}
	}
	r.products.mu.RUnlock()
	r.adjustStock(o.Items, -1)

	r.seq++
	o.ID = fmt.Sprintf("ord-%d", r.seq)
	r.data[o.ID] = *o
	return o.ID, nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &o, nil
}

func (r *memOrderRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Order, 0)
	for _, o := range r.data {
		if o.OwnerID == ownerID {
			o := o
			out = append(out, &o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) List(_ context.Context, filter db.OrderFilter) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Order, 0)
	for _, o := range r.data {
		if filter.Status != "" && o.OrderStatus != filter.Status {
			continue
		}
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return pageAfter(out, func(o *models.Order) string { return o.ID }, filter.StartAfter)
}

func (r *memOrderRepo) Transition(_ context.Context, id string, mutate func(*models.Order) error) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	previous := o.OrderStatus
	if err := mutate(&o); err != nil {
		return nil, err
	}
	if o.OrderStatus == models.OrderCancelled && previous != models.OrderCancelled {
		r.adjustStock(o.Items, 1)
	}
	r.data[id] = o
	return &o, nil
}

type memUserRepo struct {
	mu   sync.RWMutex
	data map[string]models.User
}

func newMemUserRepo(users ...models.User) *memUserRepo {
	r := &memUserRepo{data: map[string]models.User{}}
	for _, u := range users {
		r.data[u.ID] = u
	}
	return r
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[u.ID] = *u
	return nil
}

type memRoleRepo struct {
	mu   sync.RWMutex
	data map[string]models.Role
}

func newMemRoleRepo(roles ...models.Role) *memRoleRepo {
	r := &memRoleRepo{data: map[string]models.Role{}}
	for _, role := range roles {
		r.data[role.ID] = role
	}
	return r
}

func (r *memRoleRepo) GetByID(_ context.Context, id string) (*models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &role, nil
}

func (r *memRoleRepo) CreateIfMissing(_ context.Context, role *models.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[role.ID]; ok {
		return false, nil
	}
	r.data[role.ID] = *role
	return true, nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (r *memAuditRepo) Create(_ context.Context, e models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *memAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

// memCache is a cache.Cache backed by a map.
type memCache struct {
	mu   sync.Mutex
	data map[string]string
	gets int
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.data[key], nil
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = fmt.Sprint(value)
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
