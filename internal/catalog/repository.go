// Package catalog is the read-side product collaborator: an embedded SQLite
// table of manga, box sets, action figures and katanas, plus the snapshot
// builders that freeze a product into a cart line at add-time. The cart and
// orders never re-read the catalog once an item is snapshotted.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

type Repository struct {
	db  *sql.DB
	sfg singleflight.Group // Prevents stampedes on hot product reads
}

// Open connects to the catalog database. Use ":memory:" in tests.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}
	return db, nil
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

const productColumns = `id, kind, title, author, description, price, original_price,
	image, genre, rating, volumes, status, featured, is_new`

// GetProduct returns the catalog row for id, used only to populate a cart
// line or buy-now slot at add-time.
func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	v, err, _ := r.sfg.Do(id, func() (interface{}, error) {
		query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
		p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("query product %s: %w", id, err)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY title`
	return r.queryProducts(ctx, query)
}

func (r *Repository) ListProductsByKind(ctx context.Context, kind domain.Kind) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE kind = ? ORDER BY title`
	return r.queryProducts(ctx, query, string(kind))
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p         domain.Product
		kind      string
		genreJSON string
	)
	err := row.Scan(
		&p.ID,
		&kind,
		&p.Title,
		&p.Author,
		&p.Description,
		&p.Price,
		&p.OriginalPrice,
		&p.Image,
		&genreJSON,
		&p.Rating,
		&p.Volumes,
		&p.Status,
		&p.Featured,
		&p.New,
	)
	if err != nil {
		return nil, err
	}
	p.Kind = domain.Kind(kind)
	if err := json.Unmarshal([]byte(genreJSON), &p.Genre); err != nil {
		return nil, fmt.Errorf("unmarshal genre for %s: %w", p.ID, err)
	}
	return &p, nil
}
