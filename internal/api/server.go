package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tycoon/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Game bundles the services the handlers drive.
type Game struct {
	Engine    *game.Engine
	Wallet    *game.Wallet
	Actions   *game.Actions
	Scheduler *game.Scheduler
}

type Server struct {
	log  *slog.Logger
	game Game
	idem *idempotencyCache
	mux  *chi.Mux
}

func New(logger *slog.Logger, g Game) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:  logger,
		game: g,
		idem: newIdempotencyCache(defaultIdempotencyEntries),
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.idempotent)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/click", s.handleClick)
		r.Get("/income", s.handleIncome)
		r.Post("/tick", s.handleTick)

		r.Get("/businesses", s.handleListBusinesses)
		r.Post("/businesses", s.handleCreateBusiness)
		r.Get("/businesses/best", s.handleBestBusiness)
		r.Get("/businesses/{id}", s.handleBusiness)
		r.Delete("/businesses/{id}", s.handleDeleteBusiness)
		r.Post("/businesses/{id}/name", s.handleRename)
		r.Post("/businesses/{id}/level-up", s.handleLevelUp)
		r.Post("/businesses/{id}/cars", s.handleBuyCar)
		r.Post("/businesses/{id}/space", s.handleBuySpace)
		r.Get("/businesses/{id}/materials", s.handleMaterials)
		r.Post("/businesses/{id}/materials", s.handleBuyMaterial)
		r.Post("/businesses/{id}/constructions", s.handleStartConstruction)
		r.Post("/businesses/{id}/constructions/{construction_id}/sell", s.handleSellConstruction)
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, game.BuildDashboard(s.game.Engine, s.game.Wallet, s.game.Scheduler))
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.Engine.Catalog())
}

func (s *Server) handleClick(w http.ResponseWriter, _ *http.Request) {
	balance, err := s.game.Actions.Click()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance": balance,
		"xp":      s.game.Wallet.XP(),
	})
}

func (s *Server) handleIncome(w http.ResponseWriter, _ *http.Request) {
	perHour := s.game.Engine.CalculateAllIncomePerHour()
	writeJSON(w, http.StatusOK, map[string]any{
		"income_per_hour": perHour,
		"income_per_tick": game.Round2(perHour / game.MinutesPerHour),
	})
}

func (s *Server) handleTick(w http.ResponseWriter, _ *http.Request) {
	if s.game.Scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.game.Scheduler.Tick())
}

func (s *Server) handleListBusinesses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"businesses": s.game.Engine.Views()})
}

func (s *Server) handleCreateBusiness(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name    string `json:"name"`
		Type    *int   `json:"type"`
		Subtype int    `json:"subtype"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Type == nil {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	b, err := s.game.Actions.BuyBusiness(in.Name, *in.Type, in.Subtype)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.log.Info("business bought", "id", b.Base().ID, "type", *in.Type, "subtype", in.Subtype)
	s.writeBusiness(w, http.StatusCreated, b.Base().ID)
}

func (s *Server) handleBestBusiness(w http.ResponseWriter, _ *http.Request) {
	best, ok := s.game.Engine.GetBestBusiness()
	if !ok {
		writeError(w, http.StatusNotFound, "no businesses owned")
		return
	}
	s.writeBusiness(w, http.StatusOK, best.Base().ID)
}

func (s *Server) handleBusiness(w http.ResponseWriter, r *http.Request) {
	s.writeBusiness(w, http.StatusOK, chi.URLParam(r, "id"))
}

func (s *Server) handleDeleteBusiness(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.game.Engine.DeleteBusiness(id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.game.Actions.Rename(id, in.Name); err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeBusiness(w, http.StatusOK, id)
}

func (s *Server) handleLevelUp(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.game.Actions.LevelUp(id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeBusiness(w, http.StatusOK, id)
}

func (s *Server) handleBuyCar(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Car int `json:"car"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.game.Actions.BuyCar(id, in.Car); err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeBusiness(w, http.StatusOK, id)
}

func (s *Server) handleBuySpace(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Tier int `json:"tier"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.game.Actions.BuySpace(id, in.Tier); err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeBusiness(w, http.StatusOK, id)
}

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stock := make(map[string]int, len(game.Materials))
	for _, m := range game.Materials {
		n, err := s.game.Engine.GetMaterialAmount(id, m)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		stock[m] = n
	}
	finished, err := s.game.Engine.FinishedProjectsIncome(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"materials":                stock,
		"finished_projects_income": finished,
	})
}

func (s *Server) handleBuyMaterial(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Material string `json:"material"`
		Quantity int    `json:"quantity"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.game.Actions.BuyMaterial(id, in.Material, in.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeBusiness(w, http.StatusOK, id)
}

func (s *Server) handleStartConstruction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Plan       int  `json:"plan"`
		BuyMissing bool `json:"buy_missing"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.game.Actions.StartConstruction(id, in.Plan, in.BuyMissing); err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeBusiness(w, http.StatusCreated, id)
}

func (s *Server) handleSellConstruction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	balance, err := s.game.Actions.SellConstruction(id, chi.URLParam(r, "construction_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	view, err := s.game.Engine.View(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance":  balance,
		"business": view,
	})
}

// writeBusiness renders the business after a change together with the
// balance it left behind.
func (s *Server) writeBusiness(w http.ResponseWriter, status int, id string) {
	view, err := s.game.Engine.View(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, status, map[string]any{
		"business": view,
		"balance":  s.game.Wallet.Balance(),
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	var missing *game.MissingMaterialsError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      err.Error(),
			"missing":    missing.Missing,
			"total_cost": missing.TotalCost(),
		})
	case errors.Is(err, game.ErrBusinessNotFound), errors.Is(err, game.ErrConstructionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrWrongVariant), errors.Is(err, game.ErrConstructionLocked),
		errors.Is(err, game.ErrMaxLevel), errors.Is(err, game.ErrConstructionNotFinished):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrNoSpace),
		errors.Is(err, game.ErrInvalidName), errors.Is(err, game.ErrInvalidQuantity),
		errors.Is(err, game.ErrUnknownType), errors.Is(err, game.ErrUnknownSubtype),
		errors.Is(err, game.ErrUnknownCar), errors.Is(err, game.ErrUnknownSpaceTier),
		errors.Is(err, game.ErrUnknownMaterial), errors.Is(err, game.ErrUnknownPlan):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
