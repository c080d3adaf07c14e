package services

import (
	"bytes"
	"context"
	"strings"

	"github.com/tealeg/xlsx"

	"nyumba/internal/apperr"
	"nyumba/internal/query"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{
	"ID", "Name", "Description", "Price", "OriginalPrice", "OnSale", "CategoryID",
	"Material", "Color", "Width", "Height", "Depth", "StockQuantity", "InStock",
	"Featured", "Images", "CreatedAt", "UpdatedAt",
}

// ExportProducts renders every product matching the listing filters as an
// xlsx workbook with a single "Products" sheet.
func (s *CatalogService) ExportProducts(ctx context.Context, p query.Params) ([]byte, error) {
	prods, err := s.Prods.All(ctx, query.ProductFilter(p))
	if err != nil {
		return nil, apperr.Upstream("Failed to fetch products", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, apperr.Upstream("Failed to create Excel sheet", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range prods {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price)
		if p.OriginalPrice != nil {
			row.AddCell().SetValue(*p.OriginalPrice)
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetValue(p.OnSale)
		row.AddCell().SetValue(p.CategoryID)
		row.AddCell().SetValue(p.Material)
		row.AddCell().SetValue(p.Color)
		row.AddCell().SetValue(p.Dimensions.Width)
		row.AddCell().SetValue(p.Dimensions.Height)
		row.AddCell().SetValue(p.Dimensions.Depth)
		row.AddCell().SetValue(p.StockQuantity)
		row.AddCell().SetValue(p.InStock)
		row.AddCell().SetValue(p.Featured)
		row.AddCell().SetValue(strings.Join(p.Images, ","))
		row.AddCell().SetValue(p.CreatedAt)
		row.AddCell().SetValue(p.UpdatedAt)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, apperr.Upstream("Failed to write Excel file", err)
	}
	return buf.Bytes(), nil
}
