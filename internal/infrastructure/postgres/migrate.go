package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate aplica en orden los scripts de migrations/. Todos son idempotentes (IF NOT EXISTS).
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		script, err := migrationFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(script)); err != nil {
			return nil, fmt.Errorf("aplicar %s: %w", name, err)
		}
	}
	return names, nil
}

// CatalogSeed datos mínimos de catálogo para desarrollo.
type CatalogSeed struct {
	Warehouses []string
	Products   []ProductSeed
}

// ProductSeed producto a sembrar.
type ProductSeed struct {
	Name string
	SKU  string
}

// Seed inserta bodegas (si no hay ninguna) y productos (por SKU) sin duplicar.
func Seed(ctx context.Context, pool *pgxpool.Pool, seed CatalogSeed) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM warehouses`).Scan(&count); err != nil {
		return fmt.Errorf("contar bodegas: %w", err)
	}
	if count == 0 {
		for _, name := range seed.Warehouses {
			if _, err := pool.Exec(ctx, `INSERT INTO warehouses (name) VALUES ($1)`, name); err != nil {
				return fmt.Errorf("insertar bodega %s: %w", name, err)
			}
		}
	}
	for _, p := range seed.Products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (name, sku) VALUES ($1, $2)
			ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`,
			p.Name, p.SKU)
		if err != nil {
			return fmt.Errorf("insertar producto %s: %w", p.SKU, err)
		}
	}
	return nil
}
