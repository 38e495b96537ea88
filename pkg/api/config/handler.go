package config

import (
	"encoding/json"
	"net/http"

	"valuation_engine/pkg/core/assumption"
)

// Handler serves the assumption catalogs the front end renders as model
// configuration panels.
type Handler struct {
	catalog *assumption.Catalog
}

func NewHandler(catalog *assumption.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

type modelConfig struct {
	Type        string                  `json:"type"`
	Definitions []assumption.Definition `json:"definitions"`
	Defaults    map[string]float64      `json:"defaults"`
}

type modelsResponse struct {
	Models []modelConfig `json:"models"`
}

// HandleModels returns the definitions and seed values for every
// supported model type.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := modelsResponse{}
	for _, model := range h.catalog.Models() {
		defs, err := h.catalog.Definitions(model)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defaults, err := h.catalog.DefaultValues(model)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Models = append(resp.Models, modelConfig{
			Type:        string(model),
			Definitions: defs,
			Defaults:    defaults,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
