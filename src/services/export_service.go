package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/username/trimestral/src/models"
)

// ExportJSON writes the full aggregation result as indented JSON.
func ExportJSON(result *models.AggregationResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

var detailHeaders = []string{
	"ID", "Fecha", "Importe original", "Moneda", "Importe EUR",
	"Tipo cambio", "País", "Email", "Descripción",
}

// ExportXLSX writes the result as a workbook: a filing summary sheet, one
// detail sheet per bucket (the no-country sheet only when non-empty) and a
// currency conversion sheet.
func ExportXLSX(result *models.AggregationResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Resumen"
	f.SetSheetName(f.GetSheetName(0), summary)

	rows := [][]interface{}{
		{"Periodo", result.Period.Label},
		{"Desde", result.Period.StartDate},
		{"Hasta", result.Period.EndDate},
		{"Total pagos", result.Summary.TotalPayments},
		{"Total EUR", result.Summary.TotalEUR.String()},
		{},
		{"Modelo 303"},
		{"Base imponible UE", result.Modelo303.TaxableBaseEU.String()},
		{"IVA repercutido (21%)", result.Modelo303.VATChargedEU.String()},
		{"Exportaciones no-UE", result.Modelo303.ExportsNonEU.String()},
		{"Total ingresos", result.Modelo303.TotalRevenue.String()},
		{},
		{"Modelo 130"},
		{"Ingresos trimestre", result.Modelo130.QuarterRevenue.String()},
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			_ = f.SetCellValue(summary, cell, value)
		}
	}

	if err := writeDetailSheet(f, "Pagos UE", result.EUPayments); err != nil {
		return err
	}
	if err := writeDetailSheet(f, "Pagos no UE", result.NonEUPayments); err != nil {
		return err
	}
	if len(result.NoCountryPayments) > 0 {
		if err := writeDetailSheet(f, "Pagos sin país", result.NoCountryPayments); err != nil {
			return err
		}
	}
	if err := writeConversionSheet(f, result.Conversions); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeDetailSheet(f *excelize.File, sheet string, payments []models.CanonicalPayment) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	for i, header := range detailHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	for rowIdx, p := range payments {
		values := []interface{}{
			p.ID, p.DateText, p.OriginalAmount.String(), p.Currency,
			p.AmountEUR.String(), p.ExchangeRate.String(), p.CountryCode,
			p.Email, p.Description,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}
	return nil
}

func writeConversionSheet(f *excelize.File, conversions map[string]models.CurrencyConversion) error {
	sheet := "Conversiones"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	headers := []string{"Moneda", "Tipo cambio", "Total original", "Total EUR", "Pagos"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	rowIdx := 2
	for code, conv := range conversions {
		values := []interface{}{
			code, conv.Rate.String(), conv.TotalOriginal.String(),
			conv.TotalEUR.String(), conv.Count,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			_ = f.SetCellValue(sheet, cell, value)
		}
		rowIdx++
	}
	return nil
}
