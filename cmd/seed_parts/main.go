// seed_parts genera el script SQL que carga el catálogo de repuestos en la tabla parts
// a partir de un CSV exportado del sistema anterior (separador ';', codificación Latin-1).
//
// Uso: go run ./cmd/seed_parts [ruta/repuestos.csv] > parts.sql
// Columnas: sku;nombre;unidad. La primera fila es el encabezado.
// El id de cada repuesto se deriva del SKU, así que volver a correr el script no duplica filas.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// partNamespace espacio de nombres para los UUID v5 derivados del SKU.
var partNamespace = uuid.MustParse("6f1c2a4e-8d3b-4f5a-9c7e-2b1d0a9e8f70")

type partRow struct {
	ID   string
	SKU  string
	Name string
	Unit string
}

func main() {
	csvPath := "repuestos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := readParts(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	if err := writeSQL(os.Stdout, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generados %d repuestos desde %s\n", len(rows), csvPath)
}

// readParts lee el CSV ya decodificado a UTF-8. Un SKU repetido conserva la última fila.
func readParts(r io.Reader) ([]partRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	bySKU := make(map[string]partRow)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			continue
		}
		sku := strings.ToUpper(strings.TrimSpace(rec[0]))
		name := strings.TrimSpace(rec[1])
		if sku == "" || name == "" {
			continue
		}
		unit := "UND"
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			unit = strings.ToUpper(strings.TrimSpace(rec[2]))
		}
		bySKU[sku] = partRow{
			ID:   uuid.NewSHA1(partNamespace, []byte(sku)).String(),
			SKU:  sku,
			Name: name,
			Unit: unit,
		}
	}
	rows := make([]partRow, 0, len(bySKU))
	for _, p := range bySKU {
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SKU < rows[j].SKU })
	return rows, nil
}

func writeSQL(w io.Writer, rows []partRow) error {
	if len(rows) == 0 {
		_, err := io.WriteString(w, "-- Sin repuestos\n")
		return err
	}
	var b strings.Builder
	b.WriteString("-- Catálogo de repuestos\n")
	b.WriteString("INSERT INTO parts (id, sku, name, unit_measure) VALUES\n")
	for i, p := range rows {
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s')", p.ID, escapeSQL(p.SKU), escapeSQL(p.Name), escapeSQL(p.Unit))
		if i < len(rows)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, unit_measure = EXCLUDED.unit_measure;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
