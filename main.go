package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/username/trimestral/src/config"
	"github.com/username/trimestral/src/handlers"
	"github.com/username/trimestral/src/logger"
	"github.com/username/trimestral/src/models"
	"github.com/username/trimestral/src/processors"
	"github.com/username/trimestral/src/services"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// multiFlag collects a repeatable string flag (-rate USD:0.93 -rate GBP:1.18).
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func main() {
	var (
		filePath   = flag.String("file", "", "CSV or JSON file with payments (runs in one-shot mode)")
		format     = flag.String("format", "csv", "input file format: csv or json")
		quarter    = flag.Int("quarter", 0, "fiscal quarter (1-4)")
		year       = flag.Int("year", 0, "fiscal year")
		offline    = flag.Bool("offline", false, "do not fetch exchange rates online")
		jsonOut    = flag.Bool("json", false, "print the full result as JSON instead of the summary")
		exportPath = flag.String("export", "", "export the result to a JSON file")
		xlsxPath   = flag.String("xlsx", "", "export the result to an XLSX workbook")
		fromStripe = flag.Bool("stripe", false, "list charges from the Stripe API instead of a file")
	)
	var rateOverrides multiFlag
	flag.Var(&rateOverrides, "rate", "exchange rate override as CODE:VALUE (repeatable)")
	flag.Parse()

	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	if *filePath != "" || *fromStripe {
		os.Exit(runCLI(cliOptions{
			file:       *filePath,
			format:     *format,
			quarter:    *quarter,
			year:       *year,
			offline:    *offline,
			jsonOut:    *jsonOut,
			exportPath: *exportPath,
			xlsxPath:   *xlsxPath,
			fromStripe: *fromStripe,
			rates:      rateOverrides,
		}))
	}

	runServer()
}

type cliOptions struct {
	file       string
	format     string
	quarter    int
	year       int
	offline    bool
	jsonOut    bool
	exportPath string
	xlsxPath   string
	fromStripe bool
	rates      []string
}

func runCLI(opts cliOptions) int {
	if opts.quarter < 1 || opts.quarter > 4 {
		fmt.Fprintln(os.Stderr, "Error: -quarter must be between 1 and 4")
		return 1
	}
	if opts.year == 0 {
		fmt.Fprintln(os.Stderr, "Error: -year is required")
		return 1
	}

	var table models.ExchangeRateTable
	if opts.offline {
		table = models.DefaultRates()
	} else {
		rateService := services.NewHTTPRateService(config.Cfg.RatesAPIURL, config.Cfg.RatesFetchTimeout, config.Cfg.RatesCacheTTL)
		table, _ = rateService.Latest(context.Background())
	}
	table = services.ApplyRateOverrides(table, opts.rates)

	aggregator := processors.NewAggregationProcessor()

	var result *models.AggregationResult
	if opts.fromStripe {
		if config.Cfg.StripeAPIKey == "" {
			fmt.Fprintln(os.Stderr, "Error: STRIPE_API_KEY is required with -stripe")
			return 1
		}
		chargeService := services.NewStripeChargeService(config.Cfg.StripeAPIKey)
		records, err := chargeService.ListQuarterCharges(opts.quarter, opts.year)
		if err != nil {
			logger.L.Error("Failed to list charges from Stripe", "error", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		result, err = aggregator.Aggregate(records, opts.quarter, opts.year, table)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		f, err := os.Open(opts.file)
		if err != nil {
			logger.L.Error("Input file not found", "path", opts.file, "error", err)
			fmt.Fprintf(os.Stderr, "Error: input file not found: %s\n", opts.file)
			return 1
		}
		defer f.Close()

		reportService := services.NewReportService(aggregator)
		result, err = reportService.GenerateFromFile(f, opts.format, opts.quarter, opts.year, table)
		if err != nil {
			logger.L.Error("Report generation failed", "path", opts.file, "error", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.exportPath != "" {
		if err := services.ExportJSON(result, opts.exportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Result exported to %s\n", opts.exportPath)
	}
	if opts.xlsxPath != "" {
		if err := services.ExportXLSX(result, opts.xlsxPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Workbook exported to %s\n", opts.xlsxPath)
	}

	if opts.jsonOut {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	printSummary(result)
	return 0
}

func printSummary(result *models.AggregationResult) {
	line := strings.Repeat("=", 65)
	fmt.Println(line)
	fmt.Printf("   INGRESOS STRIPE - %s\n", result.Period.Label)
	fmt.Println(line)

	s := result.Summary
	fmt.Println("\nRESUMEN GENERAL:")
	fmt.Printf("   Total pagos procesados:  %d\n", s.TotalPayments)
	fmt.Printf("   Total en EUR:            %12s €\n", s.TotalEUR.StringFixed(2))

	fmt.Println("\nPAGOS UNION EUROPEA (requieren IVA):")
	fmt.Printf("   Cantidad:                %d\n", s.EU.Count)
	fmt.Printf("   Base imponible:          %12s €\n", s.EU.TotalEUR.StringFixed(2))
	fmt.Printf("   IVA a declarar (21%%):    %12s €\n", s.EU.VATDue21.StringFixed(2))

	fmt.Println("\nPAGOS FUERA DE UE (exentos IVA):")
	fmt.Printf("   Cantidad:                %d\n", s.NonEU.Count)
	fmt.Printf("   Total EUR:               %12s €\n", s.NonEU.TotalEUR.StringFixed(2))

	if s.NoCountry.Count > 0 {
		fmt.Println("\nPAGOS SIN PAIS (revisar):")
		fmt.Printf("   Cantidad:                %d\n", s.NoCountry.Count)
		fmt.Printf("   Total EUR:               %12s €\n", s.NoCountry.TotalEUR.StringFixed(2))
	}

	if len(result.Conversions) > 0 {
		fmt.Println("\nCONVERSIONES DE MONEDA:")
		codes := make([]string, 0, len(result.Conversions))
		for code := range result.Conversions {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			conv := result.Conversions[code]
			fmt.Printf("   %s: %d pagos, %s %s -> %s € (TC: %s)\n",
				code, conv.Count, conv.TotalOriginal.StringFixed(2), code,
				conv.TotalEUR.StringFixed(2), conv.Rate.String())
		}
	}

	fmt.Println("\n" + strings.Repeat("-", 65))
	fmt.Println("DATOS PARA DECLARACIONES:")
	fmt.Println("\n   MODELO 303 (IVA):")
	fmt.Printf("   · Base imponible UE:     %12s €\n", result.Modelo303.TaxableBaseEU.StringFixed(2))
	fmt.Printf("   · IVA repercutido:       %12s €\n", result.Modelo303.VATChargedEU.StringFixed(2))
	fmt.Printf("   · Exportaciones no-UE:   %12s €\n", result.Modelo303.ExportsNonEU.StringFixed(2))
	fmt.Println("\n   MODELO 130 (IRPF):")
	fmt.Printf("   · Ingresos trimestre:    %12s €\n", result.Modelo130.QuarterRevenue.StringFixed(2))
	fmt.Println(line)
}

func runServer() {
	logger.L.Info("Trimestral backend server starting...")

	rateService := services.NewHTTPRateService(config.Cfg.RatesAPIURL, config.Cfg.RatesFetchTimeout, config.Cfg.RatesCacheTTL)
	reportService := services.NewReportService(processors.NewAggregationProcessor())
	reportHandler := handlers.NewReportHandler(reportService, rateService)

	logger.L.Info("Configuring routes...")
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Trimestral backend is running"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/report", reportHandler.HandleGenerateReport)
		r.Get("/rates/default", reportHandler.HandleGetDefaultRates)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
