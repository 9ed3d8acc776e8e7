// Package stub implements an in-memory development backend that serves
// the storefront REST contract, so the client can be exercised end-to-end
// without the real API.
package stub

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrUserExists      = errors.New("username or email already registered")
	ErrProductExists   = errors.New("product name already exists")
	ErrProductNotFound = errors.New("product not found")
)

// InsufficientStockError reports a purchase exceeding the available stock.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock, only %d available", e.Available)
}

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

// Product is a catalog entry.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Store holds users and products in memory.
type Store struct {
	mu sync.RWMutex

	users      map[string]User
	nextUserID int64

	products      map[int64]Product
	nextProductID int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:         make(map[string]User),
		nextUserID:    1,
		products:      make(map[int64]Product),
		nextProductID: 1,
	}
}

// CreateUser registers an account. Usernames and emails are unique.
func (s *Store) CreateUser(username, email, passwordHash, role string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return nil, ErrUserExists
		}
	}
	user := User{
		ID:           s.nextUserID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	s.nextUserID++
	s.users[username] = user
	return &user, nil
}

// FindUser retrieves an account by username.
func (s *Store) FindUser(username string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, false
	}
	return &u, true
}

// CreateProduct adds a product. Product names are unique.
func (s *Store) CreateProduct(name, description string, price float64, quantity int) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.Name == name {
			return nil, ErrProductExists
		}
	}
	product := Product{
		ID:          s.nextProductID,
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
	}
	s.nextProductID++
	s.products[product.ID] = product
	return &product, nil
}

// FindProduct retrieves a product by ID.
func (s *Store) FindProduct(id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// List returns products whose name or description contains the search
// term, case-insensitive, ordered by ID. An empty term matches everything.
func (s *Store) List(search string) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(search)
	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Purchase removes one unit of stock and returns the updated product.
func (s *Store) Purchase(id int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	if p.Quantity < 1 {
		return nil, &InsufficientStockError{Available: p.Quantity}
	}
	p.Quantity--
	s.products[id] = p
	return &p, nil
}

// Restock adds stock and returns the updated product.
func (s *Store) Restock(id int64, quantity int) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p.Quantity += quantity
	s.products[id] = p
	return &p, nil
}
