// Package catalog holds the fixed, ordered set of books the browser works over.
//
// A Store is built once at startup and never mutated afterwards, so it is safe
// for concurrent readers without locking.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

//go:embed books.yaml
var embeddedBooks []byte

// Store is the immutable catalog.
type Store struct {
	books      []domain.Book
	byID       map[int]int
	categories []domain.Category
}

type catalogFile struct {
	Books []domain.Book `yaml:"books"`
}

// New builds a catalog from books, preserving their order.
// Every book must pass presence checks and ids must be unique.
func New(books []domain.Book) (*Store, error) {
	v := validation.New()

	s := &Store{
		books: make([]domain.Book, len(books)),
		byID:  make(map[int]int, len(books)),
	}
	copy(s.books, books)

	seen := make(map[domain.Category]struct{})
	for i, b := range s.books {
		if err := v.Validate(b); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if b.Category == domain.CategoryAll {
			return nil, errors.Validationf("catalog entry %d: category %q is reserved", i, b.Category)
		}
		if _, dup := s.byID[b.ID]; dup {
			return nil, errors.Validationf("catalog entry %d: duplicate book id %d", i, b.ID)
		}
		s.byID[b.ID] = i

		if _, ok := seen[b.Category]; !ok {
			seen[b.Category] = struct{}{}
			s.categories = append(s.categories, b.Category)
		}
	}

	return s, nil
}

// Load reads a catalog from a YAML file. An empty path loads the built-in catalog.
func Load(path string) (*Store, error) {
	data := embeddedBooks
	if path != "" {
		raw, err := os.ReadFile(path) //#nosec G304 -- catalog path is operator configuration
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = raw
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Store, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "decode catalog")
	}
	return New(f.Books)
}

// All returns every book in catalog order. The slice is a copy.
func (s *Store) All() []domain.Book {
	out := make([]domain.Book, len(s.books))
	copy(out, s.books)
	return out
}

// Get looks a book up by id.
func (s *Store) Get(id int) (domain.Book, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Book{}, false
	}
	return s.books[i], true
}

// Categories returns the distinct categories in first-appearance order.
func (s *Store) Categories() []domain.Category {
	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// HasCategory reports whether c is a filterable value: a catalog category or "all".
func (s *Store) HasCategory(c domain.Category) bool {
	if c == domain.CategoryAll || c == "" {
		return true
	}
	for _, have := range s.categories {
		if have == c {
			return true
		}
	}
	return false
}

// Len is the number of books.
func (s *Store) Len() int {
	return len(s.books)
}
