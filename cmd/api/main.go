package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	apiconfig "valuation_engine/pkg/api/config"
	"valuation_engine/pkg/api/valuation"
	"valuation_engine/pkg/core/assumption"
	"valuation_engine/pkg/core/fundamentals"
	"valuation_engine/pkg/core/store"
)

// ServerConfig is the yaml server configuration (config/server.yaml).
type ServerConfig struct {
	Port                int    `yaml:"port"`
	DatabaseURL         string `yaml:"database_url"`
	FundamentalsURL     string `yaml:"fundamentals_url"`
	CacheDir            string `yaml:"cache_dir"`
	AssumptionOverrides string `yaml:"assumption_overrides"`
}

func loadConfig() ServerConfig {
	cfg := ServerConfig{
		Port:            8080,
		FundamentalsURL: "http://localhost:9000",
	}
	data, err := os.ReadFile("config/server.yaml")
	if err != nil {
		fmt.Println("[CONFIG] No config/server.yaml, using defaults")
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Printf("[WARNING] Failed to parse config/server.yaml: %v\n", err)
	}
	return cfg
}

func main() {
	// Load environment variables (ANALYSIS_API_KEY, DATABASE_URL override)
	godotenv.Load()

	cfg := loadConfig()
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	// Result store: DB primary, file cache fallback
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		p, err := store.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("[WARNING] DB connection failed, using file cache: %v\n", err)
		} else {
			pool = p
			defer pool.Close()
			fmt.Println("[STORE] Connected to Postgres")
		}
	}
	cache := store.NewValuationCache(pool, cfg.CacheDir)

	// Assumption catalogs (built-in tables, optional hjson overrides)
	catalog := assumption.NewCatalog()
	if cfg.AssumptionOverrides != "" {
		if err := catalog.LoadOverrides(cfg.AssumptionOverrides); err != nil {
			fmt.Printf("[WARNING] Failed to load assumption overrides: %v\n", err)
			fmt.Println("  Falling back to built-in catalogs")
		} else {
			fmt.Printf("[CONFIG] Loaded assumption overrides from %s\n", cfg.AssumptionOverrides)
		}
	}

	fundClient := fundamentals.NewClient(cfg.FundamentalsURL)

	// Valuation endpoints
	valuation.InitHandler(cache, fundClient, catalog)
	http.HandleFunc("/api/valuation/dcf", valuation.HandleDCFValuation)
	http.HandleFunc("/api/valuation/report", valuation.HandleDCFReport)

	// Config endpoints
	configHandler := apiconfig.NewHandler(catalog)
	http.HandleFunc("/api/config/models", configHandler.HandleModels)

	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("API server starting on %s...\n", addr)
	fmt.Println("  - POST /api/valuation/dcf")
	fmt.Println("  - POST /api/valuation/report")
	fmt.Println("  - GET  /api/config/models")

	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
