package service

import (
	"context"
	"sort"

	"github.com/shopsphere/shopsphere-backend/internal/models"
	"github.com/shopsphere/shopsphere-backend/internal/repository"
)

type mockUserRepo struct {
	users map[string]*models.User
	// conflictsToInject makes the next N UpdateCart calls lose the CAS,
	// simulating a concurrent writer.
	conflictsToInject int
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		if u.Cart == nil {
			u.Cart = models.Cart{}
		}
		m.users[u.Email] = u
	}
	return m
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	clone.Cart = append(models.Cart{}, u.Cart...)
	return &clone, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	clone := *user
	m.users[user.Email] = &clone
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	stored, ok := m.users[user.Email]
	if !ok {
		return repository.ErrNotFound
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.IsAdmin = user.IsAdmin
	return nil
}

func (m *mockUserRepo) UpdateCart(ctx context.Context, email string, cart models.Cart, expectedVersion int64) (int64, error) {
	stored, ok := m.users[email]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if m.conflictsToInject > 0 {
		m.conflictsToInject--
		stored.CartVersion++
		return 0, repository.ErrVersionConflict
	}
	if stored.CartVersion != expectedVersion {
		return 0, repository.ErrVersionConflict
	}
	stored.Cart = append(models.Cart{}, cart...)
	stored.CartVersion++
	return stored.CartVersion, nil
}

type mockCatalogRepo struct {
	products map[string]models.CatalogItem
	services map[string]models.CatalogItem
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		products: make(map[string]models.CatalogItem),
		services: make(map[string]models.CatalogItem),
	}
}

func (m *mockCatalogRepo) addProduct(item models.CatalogItem) { m.products[item.ID] = item }
func (m *mockCatalogRepo) addService(item models.CatalogItem) { m.services[item.ID] = item }

func (m *mockCatalogRepo) table(kind models.ItemType) map[string]models.CatalogItem {
	if kind == models.ItemTypeService {
		return m.services
	}
	return m.products
}

func (m *mockCatalogRepo) GetByIDs(ctx context.Context, kind models.ItemType, ids []string) ([]models.CatalogItem, error) {
	table := m.table(kind)
	out := make([]models.CatalogItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := table[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) GetByID(ctx context.Context, kind models.ItemType, id string) (*models.CatalogItem, error) {
	if item, ok := m.table(kind)[id]; ok {
		return &item, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockCatalogRepo) List(ctx context.Context, kind models.ItemType, limit, offset int) ([]models.CatalogItem, error) {
	table := m.table(kind)
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.CatalogItem, 0)
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, table[id])
	}
	return out, nil
}

func (m *mockCatalogRepo) Create(ctx context.Context, kind models.ItemType, req *models.CreateCatalogItemRequest) (*models.CatalogItem, error) {
	item := models.CatalogItem{
		ID:          "33333333-3333-3333-3333-333333333333",
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
	}
	m.table(kind)[item.ID] = item
	return &item, nil
}

func (m *mockCatalogRepo) Update(ctx context.Context, kind models.ItemType, item *models.CatalogItem) error {
	table := m.table(kind)
	if _, ok := table[item.ID]; !ok {
		return repository.ErrNotFound
	}
	table[item.ID] = *item
	return nil
}

func (m *mockCatalogRepo) Delete(ctx context.Context, kind models.ItemType, id string) error {
	table := m.table(kind)
	if _, ok := table[id]; !ok {
		return repository.ErrNotFound
	}
	delete(table, id)
	return nil
}

// mockOrderRepo mirrors the transactional contract of the real repository:
// creating an order clears the owner's cart under the same CAS rules.
type mockOrderRepo struct {
	users  *mockUserRepo
	orders map[string]*models.Order
	seq    []string
}

func newMockOrderRepo(users *mockUserRepo) *mockOrderRepo {
	return &mockOrderRepo{users: users, orders: make(map[string]*models.Order)}
}

func (m *mockOrderRepo) CreateWithItems(ctx context.Context, order *models.Order, cartVersion int64) error {
	stored, ok := m.users.users[order.UserEmail]
	if !ok {
		return repository.ErrNotFound
	}
	if m.users.conflictsToInject > 0 {
		m.users.conflictsToInject--
		stored.CartVersion++
		return repository.ErrVersionConflict
	}
	if stored.CartVersion != cartVersion {
		return repository.ErrVersionConflict
	}
	stored.Cart = models.Cart{}
	stored.CartVersion++

	clone := *order
	m.orders[order.ID] = &clone
	m.seq = append(m.seq, order.ID)
	return nil
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if order.Status != models.OrderStatusPending {
		return repository.ErrNotPending
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, email string, limit, offset int) ([]models.Order, int, error) {
	out := make([]models.Order, 0)
	total := 0
	for _, id := range m.seq {
		order := m.orders[id]
		if order.UserEmail != email {
			continue
		}
		total++
		if total > offset && len(out) < limit {
			out = append(out, *order)
		}
	}
	return out, total, nil
}

func (m *mockOrderRepo) List(ctx context.Context, limit, offset int) ([]models.Order, int, error) {
	out := make([]models.Order, 0)
	for i, id := range m.seq {
		if i < offset {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, *m.orders[id])
	}
	return out, len(m.seq), nil
}

type mockIdentityProvider struct {
	accounts map[string]string // email -> uid
	deleted  []string
}

func newMockIdentityProvider() *mockIdentityProvider {
	return &mockIdentityProvider{accounts: make(map[string]string)}
}

func (m *mockIdentityProvider) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	uid := "uid-" + email
	m.accounts[email] = uid
	return uid, nil
}

func (m *mockIdentityProvider) LookupUID(ctx context.Context, email string) (string, error) {
	return m.accounts[email], nil
}

func (m *mockIdentityProvider) DeleteAccount(ctx context.Context, uid string) error {
	m.deleted = append(m.deleted, uid)
	return nil
}

func (m *mockIdentityProvider) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	return nil
}
