package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"ballpark-tracker/internal/logger"
	"ballpark-tracker/internal/models"
	"ballpark-tracker/internal/reconcile"
	"ballpark-tracker/internal/utils"
	"ballpark-tracker/internal/views"
)

type Handler struct {
	Service *reconcile.Service
	Logger  *logger.Logger
}

func NewHandler(service *reconcile.Service, log *logger.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  log,
	}
}

// RegisterRoutes wires the tracker's API onto a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.ListGames)
			r.Get("/visible", h.ListVisibleGames)
			r.Get("/summary", h.MonthlySummary)
			r.Get("/selectable", h.ListSelectableGames)
			r.Get("/{gameId}", h.GetGame)
			r.Patch("/{gameId}", h.UpdateGameField)
		})
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.ListSales)
			r.Post("/", h.SubmitSale)
			r.Get("/{saleId}", h.GetSale)
			r.Put("/{saleId}", h.UpdateSale)
			r.Delete("/{saleId}", h.DeleteSale)
			r.Get("/{saleId}/qr", h.SaleQR)
		})
	})
}

// ListGames returns the full game list, optionally narrowed by team, year,
// or month. Unlike the visible list this keeps unflagged games; it feeds the
// calendar.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	games := h.Service.Games()
	if team := q.Get("team"); team != "" {
		games = views.FilterByTeam(games, team)
	}
	if year := q.Get("year"); year != "" {
		var narrowed []models.Game
		for _, game := range games {
			if strings.HasPrefix(game.Date, year+"-") {
				narrowed = append(narrowed, game)
			}
		}
		games = narrowed
	}
	if month := q.Get("month"); month != "" {
		var narrowed []models.Game
		for _, game := range games {
			if views.MonthKey(game.Date) == month {
				narrowed = append(narrowed, game)
			}
		}
		games = narrowed
	}
	h.writeJSON(w, http.StatusOK, games)
}

// ListVisibleGames returns attended-or-favorite games under the list view's
// team/year/month filter.
func (h *Handler) ListVisibleGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := views.Filter{
		Team:  q.Get("team"),
		Year:  q.Get("year"),
		Month: q.Get("month"),
	}
	visible := views.VisibleGames(h.Service.Games(), filter)

	type gameWithTotal struct {
		Game  models.Game `json:"game"`
		Total int         `json:"total"`
	}
	out := make([]gameWithTotal, 0, len(visible))
	for _, game := range visible {
		out = append(out, gameWithTotal{Game: game, Total: views.GameTotal(game)})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// MonthlySummary returns per-month spend totals plus the filter options the
// list view offers.
func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := views.Filter{
		Team:  q.Get("team"),
		Year:  q.Get("year"),
		Month: q.Get("month"),
	}
	games := h.Service.Games()
	visible := views.VisibleGames(games, filter)

	response := struct {
		Totals map[string]int `json:"totals"`
		Years  []string       `json:"years"`
		Months []string       `json:"months"`
	}{
		Totals: views.MonthlySummary(visible),
		Years:  views.YearOptions(games),
		Months: views.MonthOptions(games, filter.Year),
	}
	h.writeJSON(w, http.StatusOK, response)
}

// ListSelectableGames returns the games the sale form can link for a given
// sale date.
func (h *Handler) ListSelectableGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	saleDate := q.Get("saleDate")
	if saleDate == "" {
		http.Error(w, "saleDate query parameter is required", http.StatusBadRequest)
		return
	}
	games := views.SelectableGames(h.Service.Games(), saleDate, q.Get("date"))
	h.writeJSON(w, http.StatusOK, games)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	game, err := h.Service.Game(gameID)
	if err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, game)
}

// UpdateGameField applies one field edit from the detail form. The body names
// the field by dot path; the value arrives as raw JSON so booleans and numbers
// don't need quoting on the wire.
func (h *Handler) UpdateGameField(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")

	var body struct {
		Path  string          `json:"path"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	value, err := rawValueToString(body.Value)
	if err != nil {
		http.Error(w, "Invalid value: "+err.Error(), http.StatusBadRequest)
		return
	}

	game, err := h.Service.UpdateGameField(r.Context(), gameID, body.Path, value)
	if err != nil {
		switch {
		case errors.Is(err, reconcile.ErrGameNotFound):
			http.Error(w, "Game not found", http.StatusNotFound)
		case errors.Is(err, reconcile.ErrUnknownField):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.Logger.Error("API", fmt.Sprintf("UpdateGameField: %v", err))
			h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not update game", err.Error()))
		}
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Game updated", game))
}

// ListSales returns the sale cards with their games resolved for display.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	cards := views.SaleCards(h.Service.Sales(), h.Service.Games())
	h.writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleId")
	sale, err := h.Service.Sale(saleID)
	if err != nil {
		http.Error(w, "Ticket sale not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, sale)
}

type saleRequest struct {
	SaleDate string   `json:"saleDate"`
	Games    []string `json:"games"`
	Memo     string   `json:"memo"`
}

// SubmitSale handles the registration form.
func (h *Handler) SubmitSale(w http.ResponseWriter, r *http.Request) {
	var body saleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sale, err := h.Service.SubmitSale(r.Context(), body.SaleDate, body.Games, body.Memo)
	if err != nil {
		if errors.Is(err, reconcile.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("SubmitSale: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not save ticket sale", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Ticket sale saved", sale))
}

// UpdateSale handles an edit-save. The response carries the surviving record,
// which has a different id than the request when the edit merged into an
// existing sale on a date collision.
func (h *Handler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleId")

	var body saleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sale, err := h.Service.UpdateSale(r.Context(), saleID, body.SaleDate, body.Games, body.Memo)
	if err != nil {
		switch {
		case errors.Is(err, reconcile.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, reconcile.ErrSaleNotFound):
			http.Error(w, "Ticket sale not found", http.StatusNotFound)
		default:
			h.Logger.Error("API", fmt.Sprintf("UpdateSale: %v", err))
			h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not update ticket sale", err.Error()))
		}
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket sale updated", sale))
}

func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleId")

	if err := h.Service.DeleteSale(r.Context(), saleID); err != nil {
		if errors.Is(err, reconcile.ErrSaleNotFound) {
			http.Error(w, "Ticket sale not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteSale: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not delete ticket sale", err.Error()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SaleQR renders a sale as a QR code PNG so the card can be pulled up at the
// box office window.
func (h *Handler) SaleQR(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleId")
	sale, err := h.Service.Sale(saleID)
	if err != nil {
		http.Error(w, "Ticket sale not found", http.StatusNotFound)
		return
	}

	payload, err := json.Marshal(sale)
	if err != nil {
		http.Error(w, "Could not encode sale: "+err.Error(), http.StatusInternalServerError)
		return
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SaleQR: %v", err))
		http.Error(w, "Could not generate QR code: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Failed to encode response: %v", err))
	}
}

// rawValueToString flattens a JSON scalar into the string form the service's
// field editor expects: strings lose their quotes, booleans and numbers keep
// their literal text.
func rawValueToString(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return trimmed, nil
}
