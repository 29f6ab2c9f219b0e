// seed_catalog genera un script SQL para poblar el catálogo de productos y sus umbrales de stock
// a partir de la exportación CSV del sistema de ventas (separador ';', UTF-8 o ISO-8859-1).
//
// Columnas: sku;nombre;minimo;ideal;maximo. La primera fila es el encabezado; los umbrales son opcionales.
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.csv] [ruta/salida.sql]
// Por defecto lee catalogo.csv del directorio actual y escribe seeds/catalog.sql en la raíz del módulo.
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
)

type catalogRow struct {
	sku     string
	name    string
	minimum decimal.Decimal
	ideal   decimal.Decimal
	maximum decimal.Decimal
}

func main() {
	csvPath := "catalogo.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "seeds", "catalog.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseCatalog(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSeed(out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d productos\n", outPath, len(rows))
}

// parseCatalog decodifica el CSV. Si el contenido no es UTF-8 válido se asume ISO-8859-1.
func parseCatalog(raw []byte) ([]catalogRow, error) {
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	r := csv.NewReader(src)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	seen := make(map[string]int)
	var rows []catalogRow
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 2 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos sku y nombre", line)
		}
		row := catalogRow{sku: strings.ToUpper(strings.TrimSpace(rec[0])), name: strings.TrimSpace(rec[1])}
		if row.sku == "" || row.name == "" {
			continue
		}
		if prev, ok := seen[row.sku]; ok {
			return nil, fmt.Errorf("línea %d: sku %s repetido (línea %d)", line, row.sku, prev)
		}
		seen[row.sku] = line
		thresholds := []*decimal.Decimal{&row.minimum, &row.ideal, &row.maximum}
		for j, dst := range thresholds {
			if len(rec) <= j+2 || strings.TrimSpace(rec[j+2]) == "" {
				continue
			}
			// Las exportaciones usan coma decimal.
			v, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[j+2]), ",", "."))
			if err != nil || v.IsNegative() {
				return nil, fmt.Errorf("línea %d: umbral inválido %q", line, rec[j+2])
			}
			*dst = inventory.RoundQty(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeSeed(w io.Writer, rows []catalogRow) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de productos y umbrales de stock\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")
	if len(rows) == 0 {
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("-- 1. Productos\n")
	b.WriteString("INSERT INTO products (sku, name) VALUES\n")
	for i, r := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', '%s')%s\n", escapeSQL(r.sku), escapeSQL(r.name), sep)
	}
	b.WriteString("ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, updated_at = now();\n\n")

	// 2. Umbrales con subquery al producto; el saldo no se toca.
	b.WriteString("-- 2. Umbrales\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "INSERT INTO stock_balances (product_id, minimum_qty, ideal_qty, maximum_qty)\n")
		fmt.Fprintf(&b, "SELECT id, %s, %s, %s FROM products WHERE sku = '%s'\n",
			r.minimum.StringFixed(inventory.QuantityPlaces), r.ideal.StringFixed(inventory.QuantityPlaces),
			r.maximum.StringFixed(inventory.QuantityPlaces), escapeSQL(r.sku))
		b.WriteString("ON CONFLICT (product_id) DO UPDATE SET minimum_qty = EXCLUDED.minimum_qty, ideal_qty = EXCLUDED.ideal_qty, maximum_qty = EXCLUDED.maximum_qty;\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
