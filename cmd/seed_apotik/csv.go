package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Apotik-api/internal/application/dto"
)

// newReader lee CSV separado por ';' exportado desde hojas de cálculo en ISO-8859-1.
func newReader(r io.Reader, latin1 bool) *csv.Reader {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr
}

// readRows devuelve las filas con la cabecera normalizada a minúsculas como claves.
func readRows(cr *csv.Reader) ([]map[string]string, error) {
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cabecera: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		empty := true
		for i, h := range header {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
				if row[h] != "" {
					empty = false
				}
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// parseApotik columnas: kode;nama;alamat;kota;telepon.
func parseApotik(row map[string]string) dto.CreateApotikRequest {
	return dto.CreateApotikRequest{
		Code:    row["kode"],
		Name:    row["nama"],
		Address: row["alamat"],
		City:    row["kota"],
		Phone:   row["telepon"],
	}
}

// parseProduct columnas: kode;nama;kategori;satuan;harga_beli;harga_jual;stok_awal.
// Los precios admiten coma decimal ("1250,50").
func parseProduct(row map[string]string) (dto.CreateProductRequest, error) {
	in := dto.CreateProductRequest{
		Code:     row["kode"],
		Name:     row["nama"],
		Category: row["kategori"],
		BaseUnit: row["satuan"],
	}
	var err error
	if in.PurchasePrice, err = parseMoney(row["harga_beli"]); err != nil {
		return in, fmt.Errorf("%s harga_beli: %w", in.Code, err)
	}
	if in.SalePrice, err = parseMoney(row["harga_jual"]); err != nil {
		return in, fmt.Errorf("%s harga_jual: %w", in.Code, err)
	}
	if s := row["stok_awal"]; s != "" {
		if in.StokAwal, err = strconv.ParseInt(s, 10, 64); err != nil {
			return in, fmt.Errorf("%s stok_awal: %w", in.Code, err)
		}
	}
	return in, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
