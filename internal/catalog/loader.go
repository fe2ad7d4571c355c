package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

//go:embed foods.csv
var defaultFoodsCSV []byte

// Columns is the tabular layout of a food table. Every value except Food is per 100g.
var Columns = []string{"Food", "Kcal", "Protein", "Fat", "Carbs", "Fiber", "Iron", "Cost"}

// Default returns the built-in catalog of common staples.
func Default() (*Catalog, error) {
	items, err := ParseCSV(bytes.NewReader(defaultFoodsCSV))
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in food table: %w", err)
	}
	return New(items)
}

// ParseCSV reads foods from a CSV file whose header names the Columns.
func ParseCSV(r io.Reader) ([]FoodItem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}
	return fromRecords(records[0], records[1:])
}

// ParseHTMLTable reads foods from the first <table> of an HTML document.
// The header row may use <th> or <td> cells.
func ParseHTMLTable(r io.Reader) ([]FoodItem, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table found in document")
	}

	var records [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(cell.Text()))
		})
		if len(row) > 0 {
			records = append(records, row)
		}
	})
	if len(records) == 0 {
		return nil, fmt.Errorf("table has no rows")
	}
	return fromRecords(records[0], records[1:])
}

func fromRecords(header []string, rows [][]string) ([]FoodItem, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range Columns {
		if _, ok := pos[strings.ToLower(col)]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	items := make([]FoodItem, 0, len(rows))
	for n, row := range rows {
		line := n + 2 // header is line 1
		get := func(col string) (string, error) {
			i := pos[strings.ToLower(col)]
			if i >= len(row) {
				return "", fmt.Errorf("line %d: missing value for %s", line, col)
			}
			return strings.TrimSpace(row[i]), nil
		}
		num := func(col string) (float64, error) {
			s, err := get(col)
			if err != nil {
				return 0, err
			}
			if s == "" {
				return 0, nil
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, fmt.Errorf("line %d: invalid %s value %q: %w", line, col, s, err)
			}
			return v, nil
		}

		name, err := get("Food")
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}

		item := FoodItem{Name: name}
		targets := []*float64{&item.Calories, &item.Protein, &item.Fat, &item.Carbs, &item.Fiber, &item.Iron, &item.Cost}
		for i, col := range Columns[1:] {
			v, err := num(col)
			if err != nil {
				return nil, err
			}
			*targets[i] = v
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
	}
	return items, nil
}
