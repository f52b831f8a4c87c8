package importer

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func buildSheet(t *testing.T, rows [][]string) *xlsx.File {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Products")
	require.NoError(t, err)
	for _, values := range rows {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
	return f
}

var header = []string{"id", "name", "price", "compareAtPrice", "category", "tags", "colors", "imageUrls", "featured", "bestseller"}

func TestReadBinary(t *testing.T) {
	f := buildSheet(t, [][]string{
		header,
		{"s-1", "Slate Hexagon", "18.5", "21", "Floor Tile", "floor, outdoor", "gray", "https://cdn.example.com/a.jpg,https://cdn.example.com/b.jpg", "TRUE", "no"},
		{"", "", "", "", "", "", "", "https://cdn.example.com/c.jpg", "", ""},
		{"s-3", "Imageless", "5", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "", "", "", ""},
	})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	sheet, err := ReadBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, sheet.Products, 2)

	first := sheet.Products[0]
	assert.Equal(t, "s-1", first.ID)
	assert.Equal(t, "Slate Hexagon", first.Name)
	assert.Equal(t, 18.5, first.Price)
	require.NotNil(t, first.CompareAtPrice)
	assert.Equal(t, 21.0, *first.CompareAtPrice)
	assert.Equal(t, []string{"floor", "outdoor"}, first.Tags)
	assert.Equal(t, []string{"gray"}, first.Colors)
	assert.True(t, first.Featured)
	assert.False(t, first.Bestseller)
	require.Len(t, first.Images, 2)
	assert.True(t, first.Images[0].Main)
	assert.False(t, first.Images[1].Main)
	assert.Equal(t, "img-s-1-0", first.Images[0].ID)

	defaults := sheet.Products[1]
	assert.Equal(t, "Unnamed Product", defaults.Name)
	assert.Equal(t, "Uncategorized", defaults.Category)
	assert.Nil(t, defaults.CompareAtPrice)
	assert.Equal(t, []string{}, defaults.Tags)

	require.Len(t, sheet.Skipped, 1)
	assert.Contains(t, sheet.Skipped[0], "row 4")
	assert.Contains(t, sheet.Skipped[0], "Imageless")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.xlsx")
	f := buildSheet(t, [][]string{
		{"name", "imageUrls"},
		{"Zellige Square", "https://cdn.example.com/z.jpg"},
	})
	require.NoError(t, f.Save(path))

	sheet, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, sheet.Products, 1)
	assert.Equal(t, "img-zellige-square-0", sheet.Products[0].Images[0].ID)
}

func TestRead_Invalid(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		_, err := Read(buildSheet(t, [][]string{header}))
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("no name column", func(t *testing.T) {
		_, err := Read(buildSheet(t, [][]string{{"title"}, {"Slate"}}))
		assert.ErrorContains(t, err, `"name"`)
	})

	t.Run("not a spreadsheet", func(t *testing.T) {
		_, err := ReadBinary([]byte("name,price\nSlate,3\n"))
		assert.Error(t, err)
	})
}
