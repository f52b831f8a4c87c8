// Package importer turns product spreadsheets into catalog upserts.
package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/tealeg/xlsx"
)

// Sheet is the parsed first worksheet. Skipped lists rows that could not become products.
type Sheet struct {
	Products []dto.UpsertProductInput
	Skipped  []string
}

func ReadFile(path string) (*Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	return Read(f)
}

func ReadBinary(data []byte) (*Sheet, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	return Read(f)
}

// Read maps the header row of the first sheet to column names and converts every data row.
func Read(f *xlsx.File) (*Sheet, error) {
	if len(f.Sheets) == 0 || len(f.Sheets[0].Rows) < 2 {
		return nil, fmt.Errorf("spreadsheet is empty or missing header row")
	}
	rows := f.Sheets[0].Rows

	columns := map[string]int{}
	for i, cell := range rows[0].Cells {
		name := strings.TrimSpace(cell.String())
		if name != "" {
			columns[name] = i
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("spreadsheet has no %q column", "name")
	}

	sheet := &Sheet{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		get := func(col string) string {
			idx, ok := columns[col]
			if !ok || idx >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[idx].String())
		}

		if isBlank(row) {
			continue
		}

		p, err := toInput(get)
		if err != nil {
			sheet.Skipped = append(sheet.Skipped, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		sheet.Products = append(sheet.Products, p)
	}
	return sheet, nil
}

func toInput(get func(string) string) (dto.UpsertProductInput, error) {
	name := get("name")
	if name == "" {
		name = "Unnamed Product"
	}

	images := imagesFrom(get("id"), name, splitList(get("imageUrls")))
	if len(images) == 0 {
		return dto.UpsertProductInput{}, fmt.Errorf("%s has no image URLs", name)
	}

	price, _ := strconv.ParseFloat(get("price"), 64)
	ratings, _ := strconv.ParseFloat(get("ratings"), 64)

	var compareAt *float64
	if v, err := strconv.ParseFloat(get("compareAtPrice"), 64); err == nil {
		compareAt = &v
	}

	category := get("category")
	if category == "" {
		category = "Uncategorized"
	}

	return dto.UpsertProductInput{
		ID:               get("id"),
		Slug:             get("slug"),
		Name:             name,
		Description:      get("description"),
		ShortDescription: get("shortDescription"),
		Price:            price,
		CompareAtPrice:   compareAt,
		Category:         category,
		Tags:             splitList(get("tags")),
		Colors:           splitList(get("colors")),
		Style:            get("style"),
		Material:         get("material"),
		Dimensions:       get("dimensions"),
		Coverage:         get("coverage"),
		Images:           images,
		Featured:         parseFlag(get("featured")),
		Bestseller:       parseFlag(get("bestseller")),
		Ratings:          ratings,
	}, nil
}

func imagesFrom(id, name string, urls []string) []model.ProductImage {
	images := make([]model.ProductImage, 0, len(urls))
	prefix := id
	if prefix == "" {
		prefix = strings.ToLower(strings.Join(strings.Fields(name), "-"))
	}
	for i, u := range urls {
		images = append(images, model.ProductImage{
			ID:   fmt.Sprintf("img-%s-%d", prefix, i),
			URL:  u,
			Alt:  fmt.Sprintf("%s image %d", name, i+1),
			Main: i == 0,
		})
	}
	return images
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFlag(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func isBlank(row *xlsx.Row) bool {
	for _, c := range row.Cells {
		if strings.TrimSpace(c.String()) != "" {
			return false
		}
	}
	return true
}
