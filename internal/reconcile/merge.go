package reconcile

import (
	"bytes"
	"encoding/json"
	"strings"

	"ballpark-tracker/internal/models"
	"ballpark-tracker/internal/utils"
)

// MergeBySaleDate collapses duplicate ticket-sale records sharing a saleDate
// into one record per date. Earlier versions of the client could write two
// records for the same date, so this runs on every load. Groups of one pass
// through untouched; the pass is idempotent.
func MergeBySaleDate(sales []models.TicketSale) []models.TicketSale {
	groups := make(map[string][]models.TicketSale)
	var order []string
	for _, sale := range sales {
		if _, seen := groups[sale.SaleDate]; !seen {
			order = append(order, sale.SaleDate)
		}
		groups[sale.SaleDate] = append(groups[sale.SaleDate], sale)
	}

	merged := make([]models.TicketSale, 0, len(order))
	for _, date := range order {
		group := groups[date]
		if len(group) == 1 {
			merged = append(merged, group[0])
			continue
		}
		merged = append(merged, mergeGroup(group))
	}
	return merged
}

func mergeGroup(group []models.TicketSale) models.TicketSale {
	merged := models.TicketSale{
		SaleDate:     group[0].SaleDate,
		Games:        []string{},
		DeletedGames: []string{},
	}
	var memos []string
	for _, sale := range group {
		if merged.ID == "" {
			merged.ID = sale.ID
		}
		merged.Games = appendUnique(merged.Games, sale.Games...)
		merged.DeletedGames = appendUnique(merged.DeletedGames, sale.DeletedGames...)
		if sale.Memo != "" {
			memos = append(memos, sale.Memo)
		}
	}
	if merged.ID == "" {
		merged.ID = utils.GenerateSaleID()
	}
	// A game linked by one duplicate and flagged deleted by another stays
	// linked; a refund marker never coexists with a live link.
	merged.DeletedGames = subtract(merged.DeletedGames, merged.Games)
	merged.Memo = strings.Join(memos, "\n")
	return merged
}

// mergeInto folds src into dst. dst keeps its own id and saleDate; games and
// refund markers union, memos concatenate dst-first.
func mergeInto(dst, src models.TicketSale) models.TicketSale {
	dst.Games = appendUnique(dst.Games, src.Games...)
	dst.DeletedGames = appendUnique(dst.DeletedGames, src.DeletedGames...)
	dst.DeletedGames = subtract(dst.DeletedGames, dst.Games)
	dst.Memo = joinMemos(dst.Memo, src.Memo)
	return dst
}

// SyncTicketStartDates aligns each game's denormalized ticketStartDate with
// the sale whose games set lists it. Forward-only: a game with no matching
// sale keeps whatever it has (deletion paths clear the field explicitly).
func SyncTicketStartDates(games []models.Game, sales []models.TicketSale) ([]models.Game, bool) {
	out := make([]models.Game, len(games))
	copy(out, games)

	changed := false
	for i := range out {
		for _, sale := range sales {
			if hasID(sale.Games, out[i].ID) {
				if out[i].TicketStartDate != sale.SaleDate {
					out[i].TicketStartDate = sale.SaleDate
					changed = true
				}
				break
			}
		}
	}
	return out, changed
}

func hasID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func appendUnique(dst []string, ids ...string) []string {
	for _, id := range ids {
		if !hasID(dst, id) {
			dst = append(dst, id)
		}
	}
	return dst
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func subtract(ids, exclude []string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if !hasID(exclude, id) {
			out = append(out, id)
		}
	}
	return out
}

func dedup(ids []string) []string {
	return appendUnique([]string{}, ids...)
}

func joinMemos(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "\n" + b
}

// salesEqual compares two sale lists by their serialized form, the same
// representation the store persists.
func salesEqual(a, b []models.TicketSale) bool {
	rawA, _ := json.Marshal(a)
	rawB, _ := json.Marshal(b)
	return bytes.Equal(rawA, rawB)
}
