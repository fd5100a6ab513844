package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/money"
	productrepo "storefront/internal/repository/product"
)

// CSVImporter reads product CSV exports and upserts them into every writer.
//
// Columns: id,name,slug,description,price,promoPrice,stock,categoryId,images.
// Prices are major units, images are ';' separated. A row with no id but with
// images continues the previous product.
type CSVImporter struct {
	reader  *csv.Reader
	writers []productrepo.Writer
}

func NewCSVImporter(r io.Reader, writers ...productrepo.Writer) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:  csvr,
		writers: writers,
	}
}

type csvRow struct {
	line       int
	ID         string
	Name       string
	Slug       string
	Desc       string
	Price      string
	PromoPrice string
	Stock      string
	CategoryID string
	ImageURLs  []string
}

// Run parses CSV rows and upserts products grouped by id.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	if len(i.writers) == 0 {
		return 0, errors.New("no product writers configured")
	}
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["id"]; !ok {
		return 0, errors.New("missing required column \"id\"")
	}

	var (
		current  *csvRow
		imported int
	)

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		row.line = line

		if row.ID != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (images) belong to the current product.
		if current != nil && len(row.ImageURLs) > 0 {
			current.ImageURLs = append(current.ImageURLs, row.ImageURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	p, err := row.product()
	if err != nil {
		return fmt.Errorf("line %d: %w", row.line, err)
	}
	for _, w := range i.writers {
		if _, err := w.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %q: %w", row.ID, err)
		}
	}
	return nil
}

func (r *csvRow) product() (domain.Product, error) {
	if r.Price == "" {
		return domain.Product{}, fmt.Errorf("product %q: price required", r.ID)
	}
	price, err := money.ParseMajor(r.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %q: %w", r.ID, err)
	}
	p := domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Desc,
		CategoryID:  r.CategoryID,
		Images:      r.ImageURLs,
		Price:       price,
		IsActive:    true,
	}
	if r.PromoPrice != "" {
		promo, err := money.ParseMajor(r.PromoPrice)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %q promo: %w", r.ID, err)
		}
		p.PromoPrice.Decimal = promo
		p.PromoPrice.Valid = true
	}
	if r.Stock != "" {
		stock, err := strconv.Atoi(r.Stock)
		if err != nil || stock < 0 {
			return domain.Product{}, fmt.Errorf("product %q: invalid stock %q", r.ID, r.Stock)
		}
		p.Stock = stock
	}
	return p, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		ID:         pick(record, index, "id"),
		Name:       pick(record, index, "name"),
		Slug:       pick(record, index, "slug"),
		Desc:       pick(record, index, "description"),
		Price:      pick(record, index, "price"),
		PromoPrice: pick(record, index, "promoPrice"),
		Stock:      pick(record, index, "stock"),
		CategoryID: pick(record, index, "categoryId"),
		ImageURLs:  splitImages(pick(record, index, "images")),
	}
	if row.ID == "" && len(row.ImageURLs) == 0 {
		return nil
	}
	return row
}

func splitImages(raw string) []string {
	if raw == "" {
		return nil
	}
	var urls []string
	for _, u := range strings.Split(raw, ";") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
