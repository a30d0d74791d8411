// Package memory is an in-process implementation of the store interfaces,
// used by tests and local runs without MongoDB.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"eshop/models"
	"eshop/store"

	"github.com/google/uuid"
)

var (
	_ store.Products   = (*Store)(nil)
	_ store.Categories = (*Store)(nil)
	_ store.CartLines  = (*Store)(nil)
	_ store.Users      = (*Store)(nil)
)

type pairKey struct {
	userID    string
	productID int64
}

// Store keeps everything in maps guarded by one mutex.
type Store struct {
	mu sync.Mutex

	nextProductID  int64
	nextCategoryID int64
	nextLineID     int64

	products   map[int64]models.Product
	categories map[int64]models.Category
	lines      map[int64]models.CartLine
	pairs      map[pairKey]int64
	users      map[string]models.User
}

// New returns an empty store
func New() *Store {
	return &Store{
		products:   make(map[int64]models.Product),
		categories: make(map[int64]models.Category),
		lines:      make(map[int64]models.CartLine),
		pairs:      make(map[pairKey]int64),
		users:      make(map[string]models.User),
	}
}

// FindProduct retrieves a single product by ID
func (s *Store) FindProduct(_ context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

// FindProductsByIDs returns the products that exist among ids
func (s *Store) FindProductsByIDs(_ context.Context, ids []int64) (map[int64]*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := make(map[int64]*models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			found[id] = &p
		}
	}
	return found, nil
}

// ListProducts returns products matching filter, newest first
func (s *Store) ListProducts(_ context.Context, filter store.ProductFilter) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	products := []models.Product{}
	for _, p := range s.products {
		if filter.CategoryID > 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID > products[j].ID
	})
	if filter.Limit > 0 && int64(len(products)) > filter.Limit {
		products = products[:filter.Limit]
	}
	return products, nil
}

// InsertProduct assigns p.ID and stores the product
func (s *Store) InsertProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	p.ID = s.nextProductID
	s.products[p.ID] = *p
	return nil
}

// UpdateProduct overwrites an existing product, keeping its creation time
func (s *Store) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.products[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	updated := *p
	updated.CreatedAt = existing.CreatedAt
	s.products[p.ID] = updated
	return nil
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// CountProductsInCategory reports how many products reference a category
func (s *Store) CountProductsInCategory(_ context.Context, categoryID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// FindCategory retrieves a category by ID
func (s *Store) FindCategory(_ context.Context, id int64) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

// ListCategories returns every category sorted by name
func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	categories := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// InsertCategory assigns c.ID and stores the category, rejecting duplicate names
func (s *Store) InsertCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return store.ErrDuplicate
		}
	}
	s.nextCategoryID++
	c.ID = s.nextCategoryID
	s.categories[c.ID] = *c
	return nil
}

// DeleteCategory removes a category
func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// FindLine retrieves a line by id, only if userID owns it
func (s *Store) FindLine(_ context.Context, userID string, lineID int64) (*models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.lines[lineID]
	if !ok || line.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &line, nil
}

// FindLineByProduct retrieves the user's line for a product
func (s *Store) FindLineByProduct(_ context.Context, userID string, productID int64) (*models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.pairs[pairKey{userID, productID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	line := s.lines[id]
	return &line, nil
}

// ListLines returns the user's lines in the order they were added
func (s *Store) ListLines(_ context.Context, userID string) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := []models.CartLine{}
	for _, line := range s.lines {
		if line.UserID == userID {
			lines = append(lines, line)
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].AddedAt.Equal(lines[j].AddedAt) {
			return lines[i].AddedAt.Before(lines[j].AddedAt)
		}
		return lines[i].ID < lines[j].ID
	})
	return lines, nil
}

// SumQuantities adds up the quantities of every line the user owns
func (s *Store) SumQuantities(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		if line.UserID == userID {
			total += line.Quantity
		}
	}
	return total, nil
}

// InsertLine assigns line.ID and stores it, or returns ErrDuplicate for a taken pair
func (s *Store) InsertLine(_ context.Context, line *models.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{line.UserID, line.ProductID}
	if _, taken := s.pairs[key]; taken {
		return store.ErrDuplicate
	}
	s.nextLineID++
	line.ID = s.nextLineID
	s.lines[line.ID] = *line
	s.pairs[key] = line.ID
	return nil
}

// SetLineQuantity is a compare-and-set on the stored quantity
func (s *Store) SetLineQuantity(_ context.Context, userID string, lineID int64, from, to int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.lines[lineID]
	if !ok || line.UserID != userID || line.Quantity != from {
		return store.ErrConflict
	}
	line.Quantity = to
	line.UpdatedAt = &at
	s.lines[lineID] = line
	return nil
}

// DeleteLine removes a line the user owns
func (s *Store) DeleteLine(_ context.Context, userID string, lineID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.lines[lineID]
	if !ok || line.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.lines, lineID)
	delete(s.pairs, pairKey{line.UserID, line.ProductID})
	return nil
}

// FindUserByID retrieves an account by ID
func (s *Store) FindUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

// FindUserByEmail retrieves an account by its email address
func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

// InsertUser assigns u.ID and stores the account, rejecting a taken email
func (s *Store) InsertUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	s.users[u.ID] = *u
	return nil
}

// UpdateUserProfile changes the name and phone number of an account
func (s *Store) UpdateUserProfile(_ context.Context, id string, profile store.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.FirstName = profile.FirstName
	u.LastName = profile.LastName
	u.Phone = profile.Phone
	s.users[id] = u
	return nil
}
