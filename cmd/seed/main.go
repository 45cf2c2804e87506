// seed aplica las migraciones y siembra el catálogo de desarrollo (bodegas y productos).
//
// Uso: go run ./cmd/seed [productos.csv]
// El CSV opcional trae "nombre,sku" por línea; se acepta en UTF-8 o ISO-8859-1 (exportes de Excel).
// Sin CSV se siembran los productos de demostración.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/replenishment-api/internal/infrastructure/postgres"
	"github.com/jhoicas/replenishment-api/pkg/config"
	"github.com/jhoicas/replenishment-api/pkg/logger"
)

var demoCatalog = postgres.CatalogSeed{
	Warehouses: []string{"Central Warehouse", "East Warehouse"},
	Products: []postgres.ProductSeed{
		{Name: "Icy Mint", SKU: "ICYMINT"},
		{Name: "Berry Blast", SKU: "BERRYB"},
		{Name: "Tropical Punch", SKU: "TROP"},
		{Name: "Icy Watermelon", SKU: "ICYWATERMELON"},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	seed := demoCatalog
	if len(os.Args) > 1 {
		products, err := readProductsCSV(os.Args[1])
		if err != nil {
			log.Fatal().Err(err).Str("file", os.Args[1]).Msg("leer CSV de productos")
		}
		seed.Products = products
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")

	if err := postgres.Seed(ctx, pool, seed); err != nil {
		log.Fatal().Err(err).Msg("sembrar catálogo")
	}
	log.Info().
		Int("warehouses", len(seed.Warehouses)).
		Int("products", len(seed.Products)).
		Msg("catálogo sembrado")
}

// readProductsCSV lee "nombre,sku". Si el archivo no es UTF-8 válido se decodifica como ISO-8859-1.
// Una primera fila "name,sku" o "nombre,sku" se trata como encabezado.
func readProductsCSV(path string) ([]postgres.ProductSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsear CSV: %w", err)
	}

	out := make([]postgres.ProductSeed, 0, len(records))
	seen := make(map[string]bool)
	for i, rec := range records {
		name, sku := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if i == 0 && strings.EqualFold(sku, "sku") {
			continue
		}
		if name == "" || sku == "" {
			return nil, fmt.Errorf("fila %d: nombre y sku son requeridos", i+1)
		}
		if seen[sku] {
			return nil, fmt.Errorf("fila %d: sku %s repetido", i+1, sku)
		}
		seen[sku] = true
		out = append(out, postgres.ProductSeed{Name: name, SKU: sku})
	}
	return out, nil
}
