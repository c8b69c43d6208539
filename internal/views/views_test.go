package views

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ballpark-tracker/internal/models"
)

func game(id, date, home, away string, attended, favorite bool, ticket string) models.Game {
	return models.Game{
		ID:       id,
		Date:     date,
		Home:     home,
		Away:     away,
		Attended: attended,
		Favorite: favorite,
		Cost:     models.ExpenseRecord{Ticket: ticket},
	}
}

func TestGameTotalExcludesBeerCount(t *testing.T) {
	g := models.Game{
		Cost: models.ExpenseRecord{
			Ticket:       "1,000",
			BeerCost:     "800",
			BeerCount:    "4",
			BallparkFood: "1,200",
			Goods:        "3,000",
			TravelCost:   "500",
		},
	}
	assert.Equal(t, 6500, GameTotal(g))
}

func TestGameTotalTreatsBlanksAsZero(t *testing.T) {
	g := models.Game{Cost: models.ExpenseRecord{Ticket: "2,500"}}
	assert.Equal(t, 2500, GameTotal(g))
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2026/4", MonthKey("2026-04-18"))
	assert.Equal(t, "2026/11", MonthKey("2026-11-02"))
}

func TestFilterByTeamMatchesEitherSide(t *testing.T) {
	games := []models.Game{
		game("1", "2026-04-01", "Tigers", "Giants", false, false, ""),
		game("2", "2026-04-02", "Carp", "Tigers", false, false, ""),
		game("3", "2026-04-03", "Carp", "Giants", false, false, ""),
	}

	filtered := FilterByTeam(games, "Tigers")

	assert.Len(t, filtered, 2)
	assert.Equal(t, "1", filtered[0].ID)
	assert.Equal(t, "2", filtered[1].ID)
}

func TestVisibleGamesRequiresFlag(t *testing.T) {
	games := []models.Game{
		game("1", "2026-04-01", "Tigers", "Giants", true, false, ""),
		game("2", "2026-04-02", "Tigers", "Carp", false, true, ""),
		game("3", "2026-04-03", "Tigers", "Swallows", false, false, ""),
	}

	visible := VisibleGames(games, Filter{})

	assert.Len(t, visible, 2)
}

func TestVisibleGamesFilters(t *testing.T) {
	games := []models.Game{
		game("1", "2026-04-01", "Tigers", "Giants", true, false, ""),
		game("2", "2026-05-02", "Tigers", "Carp", true, false, ""),
		game("3", "2025-04-03", "Tigers", "Swallows", true, false, ""),
	}

	assert.Len(t, VisibleGames(games, Filter{Year: "2026"}), 2)
	assert.Len(t, VisibleGames(games, Filter{Month: "2026/4"}), 1)
	assert.Len(t, VisibleGames(games, Filter{Team: "Carp"}), 1)
	assert.Len(t, VisibleGames(games, Filter{Team: "Carp", Year: "2025"}), 0)
}

func TestMonthlySummaryTotalsPerMonth(t *testing.T) {
	games := []models.Game{
		game("1", "2026-04-01", "Tigers", "Giants", true, false, "1,000"),
		game("2", "2026-04-18", "Tigers", "Carp", true, false, "2,500"),
		game("3", "2026-05-02", "Tigers", "Swallows", true, false, "3,000"),
	}

	totals := MonthlySummary(games)

	assert.Equal(t, 3500, totals["2026/4"])
	assert.Equal(t, 3000, totals["2026/5"])
}

func TestYearAndMonthOptions(t *testing.T) {
	games := []models.Game{
		game("1", "2025-09-01", "Tigers", "Giants", true, false, ""),
		game("2", "2026-04-02", "Tigers", "Carp", false, true, ""),
		game("3", "2026-04-10", "Tigers", "Carp", true, false, ""),
		game("4", "2026-11-03", "Tigers", "Swallows", true, false, ""),
		game("5", "2026-12-01", "Tigers", "Swallows", false, false, ""),
	}

	assert.Equal(t, []string{"2025", "2026"}, YearOptions(games))
	assert.Equal(t, []string{"2025/9", "2026/4", "2026/11"}, MonthOptions(games, ""))
	assert.Equal(t, []string{"2026/4", "2026/11"}, MonthOptions(games, "2026"))
}

func TestSaleCardsResolveGamesAndSkipDangling(t *testing.T) {
	games := []models.Game{
		game("A", "2026-04-01", "Tigers", "Giants", true, false, ""),
		game("B", "2026-04-02", "Tigers", "Carp", true, false, ""),
	}
	sales := []models.TicketSale{
		{ID: "t2", SaleDate: "2026-05-01", Games: []string{"B"}, DeletedGames: []string{"X", "Y"}},
		{ID: "t1", SaleDate: "2026-03-01", Games: []string{"A", "ghost"}, Memo: "opening day"},
	}

	cards := SaleCards(sales, games)

	assert.Len(t, cards, 2)
	// Sorted by sale date.
	assert.Equal(t, "t1", cards[0].ID)
	assert.Len(t, cards[0].Games, 1)
	assert.Equal(t, "A", cards[0].Games[0].ID)
	assert.Equal(t, "opening day", cards[0].Memo)

	assert.Equal(t, "t2", cards[1].ID)
	assert.Equal(t, 2, cards[1].RefundCount)
}

func TestSelectableGames(t *testing.T) {
	games := []models.Game{
		game("1", "2026-03-30", "Tigers", "Giants", false, false, ""),
		game("2", "2026-04-05", "Tigers", "Carp", false, false, ""),
		game("3", "2026-04-05", "Carp", "Tigers", false, false, ""),
		game("4", "2026-04-12", "Tigers", "Swallows", false, false, ""),
	}

	// Day picker set: only that day, and never before the sale date.
	day := SelectableGames(games, "2026-04-01", "2026-04-05")
	assert.Len(t, day, 2)

	before := SelectableGames(games, "2026-04-01", "2026-03-30")
	assert.Empty(t, before)

	open := SelectableGames(games, "2026-04-01", "")
	assert.Len(t, open, 3)
}
