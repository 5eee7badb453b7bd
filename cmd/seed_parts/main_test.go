package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestReadParts_Latin1(t *testing.T) {
	utf8 := "sku;nombre;unidad\nflt-01; Filtro de aceite ;und\nPAS-02;Pastillas 'cerámicas';\n;sin sku;UND\nflt-01;Filtro de aceite sintético;UND\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(utf8)
	require.NoError(t, err)

	rows, err := readParts(transform.NewReader(strings.NewReader(latin1), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "FLT-01", rows[0].SKU)
	assert.Equal(t, "Filtro de aceite sintético", rows[0].Name)
	assert.Equal(t, "UND", rows[0].Unit)
	assert.Equal(t, "Pastillas 'cerámicas'", rows[1].Name)
	assert.Equal(t, "UND", rows[1].Unit, "unidad vacía toma UND")
}

func TestReadParts_IDEstablePorSKU(t *testing.T) {
	a, err := readParts(strings.NewReader("sku;nombre\nX1;Uno\n"))
	require.NoError(t, err)
	b, err := readParts(strings.NewReader("sku;nombre\nx1;Otro nombre\n"))
	require.NoError(t, err)
	assert.Equal(t, a[0].ID, b[0].ID)
}

func TestWriteSQL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, []partRow{
		{ID: "id-1", SKU: "A", Name: "O'Brien", Unit: "UND"},
		{ID: "id-2", SKU: "B", Name: "Bujía", Unit: "UND"},
	}))
	out := buf.String()
	assert.Contains(t, out, "('id-1', 'A', 'O''Brien', 'UND'),\n")
	assert.Contains(t, out, "('id-2', 'B', 'Bujía', 'UND')\nON CONFLICT (sku)")

	buf.Reset()
	require.NoError(t, writeSQL(&buf, nil))
	assert.Equal(t, "-- Sin repuestos\n", buf.String())
}
