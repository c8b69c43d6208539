package views

import (
	"sort"
	"strconv"
	"strings"

	"ballpark-tracker/internal/models"
	"ballpark-tracker/internal/utils"
)

// Read-side projections over the reconciled stores. Nothing here writes.

// GameTotal sums a game's money fields. BeerCount is a count of cups, not an
// amount, and stays out of the total.
func GameTotal(game models.Game) int {
	cost := game.Cost
	return utils.ParseAmount(cost.Ticket) +
		utils.ParseAmount(cost.BeerCost) +
		utils.ParseAmount(cost.BallparkFood) +
		utils.ParseAmount(cost.Goods) +
		utils.ParseAmount(cost.TravelCost)
}

// Filter narrows a game list. Empty fields match everything; Team matches
// either side; Year is "2026", Month a "2026/4" month key.
type Filter struct {
	Team  string
	Year  string
	Month string
}

// MonthKey turns a yyyy-mm-dd date into its "yyyy/m" summary key.
func MonthKey(date string) string {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) < 2 {
		return date
	}
	month := strings.TrimPrefix(parts[1], "0")
	return parts[0] + "/" + month
}

func matchesTeam(game models.Game, team string) bool {
	return team == "" || game.Home == team || game.Away == team
}

// FilterByTeam is the calendar view's filter: every game of one club, both
// home and away.
func FilterByTeam(games []models.Game, team string) []models.Game {
	if team == "" {
		return games
	}
	var out []models.Game
	for _, game := range games {
		if matchesTeam(game, team) {
			out = append(out, game)
		}
	}
	return out
}

// VisibleGames is the list view's selection: games flagged attended or
// favorite, narrowed by the filter.
func VisibleGames(games []models.Game, f Filter) []models.Game {
	var out []models.Game
	for _, game := range games {
		if !game.Attended && !game.Favorite {
			continue
		}
		if !matchesTeam(game, f.Team) {
			continue
		}
		if f.Year != "" && !strings.HasPrefix(game.Date, f.Year+"-") {
			continue
		}
		if f.Month != "" && MonthKey(game.Date) != f.Month {
			continue
		}
		out = append(out, game)
	}
	return out
}

// MonthlySummary totals spend per month key over an already-filtered list.
func MonthlySummary(games []models.Game) map[string]int {
	totals := make(map[string]int)
	for _, game := range games {
		totals[MonthKey(game.Date)] += GameTotal(game)
	}
	return totals
}

// YearOptions lists the years that have flagged games, ascending.
func YearOptions(games []models.Game) []string {
	seen := make(map[string]bool)
	var years []string
	for _, game := range games {
		if !game.Attended && !game.Favorite {
			continue
		}
		year := strings.SplitN(game.Date, "-", 2)[0]
		if !seen[year] {
			seen[year] = true
			years = append(years, year)
		}
	}
	sort.Strings(years)
	return years
}

// MonthOptions lists the month keys that have flagged games, chronologically,
// optionally narrowed to one year.
func MonthOptions(games []models.Game, year string) []string {
	seen := make(map[string]bool)
	var months []string
	for _, game := range games {
		if !game.Attended && !game.Favorite {
			continue
		}
		if year != "" && !strings.HasPrefix(game.Date, year+"-") {
			continue
		}
		key := MonthKey(game.Date)
		if !seen[key] {
			seen[key] = true
			months = append(months, key)
		}
	}
	sort.Slice(months, func(i, j int) bool {
		return monthKeyLess(months[i], months[j])
	})
	return months
}

func monthKeyLess(a, b string) bool {
	ay, am := splitMonthKey(a)
	by, bm := splitMonthKey(b)
	if ay != by {
		return ay < by
	}
	return am < bm
}

func splitMonthKey(key string) (year, month int) {
	parts := strings.SplitN(key, "/", 2)
	year, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		month, _ = strconv.Atoi(parts[1])
	}
	return year, month
}

// SaleCard is the display projection of one ticket sale: the covered games
// resolved against the game store, plus the refund follow-up count.
type SaleCard struct {
	ID          string     `json:"id"`
	SaleDate    string     `json:"saleDate"`
	Games       []SaleGame `json:"games"`
	Memo        string     `json:"memo"`
	RefundCount int        `json:"refundCount"`
}

type SaleGame struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Home      string `json:"home"`
	Away      string `json:"away"`
	Stadium   string `json:"stadium"`
	StartTime string `json:"startTime"`
}

// SaleCards projects the sale list for display, ordered by sale date. A game
// id with no game behind it is skipped, not removed: if the game comes back,
// the link still holds.
func SaleCards(sales []models.TicketSale, games []models.Game) []SaleCard {
	byID := make(map[string]models.Game, len(games))
	for _, game := range games {
		byID[game.ID] = game
	}

	cards := make([]SaleCard, 0, len(sales))
	for _, sale := range sales {
		card := SaleCard{
			ID:          sale.ID,
			SaleDate:    sale.SaleDate,
			Games:       []SaleGame{},
			Memo:        sale.Memo,
			RefundCount: len(sale.DeletedGames),
		}
		for _, id := range sale.Games {
			game, ok := byID[id]
			if !ok {
				continue
			}
			card.Games = append(card.Games, SaleGame{
				ID:        game.ID,
				Date:      game.Date,
				Home:      game.Home,
				Away:      game.Away,
				Stadium:   game.Stadium,
				StartTime: game.StartTime,
			})
		}
		cards = append(cards, card)
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].SaleDate < cards[j].SaleDate
	})
	return cards
}

// SelectableGames is the sale form's picker: games on or after the sale date,
// narrowed to a single day when filterDate is set.
func SelectableGames(games []models.Game, saleDate, filterDate string) []models.Game {
	var out []models.Game
	for _, game := range games {
		if filterDate != "" && game.Date != filterDate {
			continue
		}
		if game.Date < saleDate {
			continue
		}
		out = append(out, game)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}
