// src/handlers/report_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/trimestral/src/config"
	"github.com/username/trimestral/src/logger"
	"github.com/username/trimestral/src/models"
	"github.com/username/trimestral/src/services"
	"github.com/username/trimestral/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
	rateSource    services.RateSource
}

func NewReportHandler(reportService services.ReportService, rateSource services.RateSource) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		rateSource:    rateSource,
	}
}

// HandleGenerateReport accepts a multipart upload of a Stripe export and
// returns the quarterly aggregation result. Form fields: file, quarter, year,
// format (csv|json, default csv), offline (skip the rate fetch) and any
// number of rate=CODE:VALUE overrides.
func (h *ReportHandler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	quarter, err := strconv.Atoi(r.FormValue("quarter"))
	if err != nil || quarter < 1 || quarter > 4 {
		utils.SendJSONError(w, "quarter must be an integer between 1 and 4", http.StatusBadRequest)
		return
	}
	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil || year < 1 {
		utils.SendJSONError(w, "year must be a positive integer", http.StatusBadRequest)
		return
	}
	format := r.FormValue("format")
	if format == "" {
		format = "csv"
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	var table models.ExchangeRateTable
	if r.FormValue("offline") == "true" {
		table = models.DefaultRates()
	} else {
		table, err = h.rateSource.Latest(r.Context())
		if err != nil {
			logger.L.Warn("Rate source failed, using default table", "error", err)
			table = models.DefaultRates()
		}
	}
	table = services.ApplyRateOverrides(table, r.Form["rate"])

	logger.L.Info("Processing report request", "filename", fileHeader.Filename, "format", format, "quarter", quarter, "year", year)
	result, err := h.reportService.GenerateFromFile(file, format, quarter, year, table)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Report generation failed during parsing", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing %s file: %v", format, err), http.StatusBadRequest)
		} else {
			logger.L.Error("Internal error generating report", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while generating the report.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding report response", "error", err)
	}
}

// HandleGetDefaultRates returns the built-in fallback rate table.
func (h *ReportHandler) HandleGetDefaultRates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(models.DefaultRates()); err != nil {
		logger.L.Error("Error encoding default rates response", "error", err)
	}
}
