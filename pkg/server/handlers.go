package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tariffkit/tariffkit/pkg/billing"
	"github.com/tariffkit/tariffkit/pkg/loadfactor"
	"github.com/tariffkit/tariffkit/pkg/log"
	"github.com/tariffkit/tariffkit/pkg/profile"
	"github.com/tariffkit/tariffkit/pkg/schedule"
	"github.com/tariffkit/tariffkit/pkg/storage"
	"github.com/tariffkit/tariffkit/pkg/tariff"
	"github.com/tariffkit/tariffkit/pkg/types"
)

// maxBodySize bounds uploaded CSV and JSON bodies. A year of 15-minute
// intervals is well under this.
const maxBodySize = 32 << 20

func (s *Server) handleListTariffs(w http.ResponseWriter, r *http.Request) {
	infos, err := s.storage.ListTariffs(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error("failed to list tariffs", slog.Any("error", err))
		writeJSONError(w, "failed to list tariffs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, infos)
}

func (s *Server) handleGetTariff(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadTariff(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, t)
}

func (s *Server) handleTariffSummary(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadTariff(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, tariff.Summarize(t))
}

func (s *Server) handleRateGrid(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadTariff(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, schedule.BuildRateGrid(t.EnergyRateStructure, t.EnergyWeekdaySchedule, t.EnergyWeekendSchedule))
}

type updateRatesRequest struct {
	RateType tariff.RateType `json:"rateType"`
	Period   int             `json:"period"`
	// Month selects the flat demand tier when RateType is "flatdemand".
	Month time.Month `json:"month,omitempty"`
	Rate  float64    `json:"rate"`
	Adj   float64    `json:"adj"`
	// Save persists the edited tariff under a new ID derived from its
	// utility and rate name.
	Save bool `json:"save,omitempty"`
}

type updateRatesResponse struct {
	ID     string        `json:"id,omitempty"`
	Tariff *types.Tariff `json:"tariff"`
}

func (s *Server) handleUpdateRates(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadTariff(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	var req updateRatesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var updated *types.Tariff
	var err error
	switch req.RateType {
	case tariff.RateTypeEnergy, tariff.RateTypeDemand:
		updated, err = tariff.UpdateRate(t, req.RateType, req.Period, req.Rate, req.Adj)
	case "flatdemand":
		updated, err = tariff.UpdateFlatDemandRate(t, req.Month, req.Rate, req.Adj)
	default:
		writeJSONError(w, "rateType must be energy, demand, or flatdemand", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := updateRatesResponse{Tariff: updated}
	if req.Save {
		resp.ID = storage.TariffID(updated) + "_modified"
		if err := s.storage.SaveTariff(r.Context(), resp.ID, updated); err != nil {
			log.Ctx(r.Context()).Error("failed to save modified tariff", slog.Any("error", err))
			writeJSONError(w, "failed to save modified tariff", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, resp)
}

// handleTranslate converts a local-database-format tariff document into the
// API format and returns it without persisting.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	t, err := tariff.TranslateLocal(data)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, t)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	ids, err := s.storage.ListProfiles(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error("failed to list profiles", slog.Any("error", err))
		writeJSONError(w, "failed to list profiles", http.StatusInternalServerError)
		return
	}
	writeJSON(w, ids)
}

type billResponse struct {
	Bills   []types.MonthlyBill `json:"bills"`
	Summary []types.BillSummary `json:"summary"`
}

// handleCalculateBill runs the billing engine. The tariff comes from the
// store via ?tariff=<id>; the profile either from ?profile=<id> or from a
// CSV request body.
func (s *Server) handleCalculateBill(w http.ResponseWriter, r *http.Request) {
	tariffID := r.URL.Query().Get("tariff")
	if tariffID == "" {
		writeJSONError(w, "tariff query parameter is required", http.StatusBadRequest)
		return
	}
	t, ok := s.loadTariff(w, r, tariffID)
	if !ok {
		return
	}

	var p *profile.Profile
	if profileID := r.URL.Query().Get("profile"); profileID != "" {
		var err error
		p, err = s.storage.GetProfile(r.Context(), profileID)
		if errors.Is(err, storage.ErrProfileNotFound) {
			writeJSONError(w, "load profile not found", http.StatusNotFound)
			return
		} else if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		var err error
		p, err = profile.ParseCSV(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	bills, err := billing.Calculate(r.Context(), t, p)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, billResponse{Bills: bills, Summary: billing.ForDisplay(bills)})
}

type loadFactorRequest struct {
	TariffID string `json:"tariffID"`
	// Month is required for monthly analysis, ignored for annual.
	Month             time.Month      `json:"month,omitempty"`
	TOUDemandKW       map[int]float64 `json:"touDemandKW,omitempty"`
	FlatDemandKW      float64         `json:"flatDemandKW,omitempty"`
	EnergyPercentages map[int]float64 `json:"energyPercentages"`
	IncludeBreakdown  bool            `json:"includeBreakdown,omitempty"`
}

type loadFactorResponse struct {
	Points    []types.LoadFactorPoint `json:"points"`
	Breakdown []types.BreakdownRow    `json:"breakdown,omitempty"`
}

func (s *Server) handleLoadFactorMonthly(w http.ResponseWriter, r *http.Request) {
	req, t, ok := s.decodeLoadFactorRequest(w, r)
	if !ok {
		return
	}
	if req.Month < time.January || req.Month > time.December {
		writeJSONError(w, "month must be 1 through 12", http.StatusBadRequest)
		return
	}
	in := loadfactor.Inputs{
		TOUDemandKW:       req.TOUDemandKW,
		FlatDemandKW:      req.FlatDemandKW,
		EnergyPercentages: req.EnergyPercentages,
	}
	resp := loadFactorResponse{Points: loadfactor.CalculateRates(t, in, req.Month)}
	if req.IncludeBreakdown {
		resp.Breakdown = loadfactor.MonthlyBreakdown(t, in, resp.Points, req.Month)
	}
	writeJSON(w, resp)
}

func (s *Server) handleLoadFactorAnnual(w http.ResponseWriter, r *http.Request) {
	req, t, ok := s.decodeLoadFactorRequest(w, r)
	if !ok {
		return
	}
	in := loadfactor.Inputs{
		TOUDemandKW:       req.TOUDemandKW,
		FlatDemandKW:      req.FlatDemandKW,
		EnergyPercentages: req.EnergyPercentages,
	}
	resp := loadFactorResponse{Points: loadfactor.CalculateAnnualRates(t, in)}
	if req.IncludeBreakdown {
		resp.Breakdown = loadfactor.AnnualBreakdown(t, in, resp.Points)
	}
	writeJSON(w, resp)
}

func (s *Server) decodeLoadFactorRequest(w http.ResponseWriter, r *http.Request) (loadFactorRequest, *types.Tariff, bool) {
	var req loadFactorRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return req, nil, false
	}
	if len(req.EnergyPercentages) == 0 {
		writeJSONError(w, "energyPercentages is required", http.StatusBadRequest)
		return req, nil, false
	}
	t, ok := s.loadTariff(w, r, req.TariffID)
	return req, t, ok
}

// loadTariff fetches a stored tariff, writing the error response itself
// when the lookup fails.
func (s *Server) loadTariff(w http.ResponseWriter, r *http.Request, id string) (*types.Tariff, bool) {
	t, err := s.storage.GetTariff(r.Context(), id)
	if errors.Is(err, storage.ErrTariffNotFound) {
		writeJSONError(w, "tariff not found", http.StatusNotFound)
		return nil, false
	} else if err != nil {
		log.Ctx(r.Context()).Error("failed to load tariff", slog.String("id", id), slog.Any("error", err))
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return t, true
}
