package models

// TicketSale is one on-sale date and the set of games it covers. Games keeps
// insertion order for display; DeletedGames holds ids removed after linkage,
// retained as a refund follow-up marker.
type TicketSale struct {
	ID           string   `json:"id"`
	SaleDate     string   `json:"saleDate"` // yyyy-mm-dd
	Games        []string `json:"games"`
	DeletedGames []string `json:"deletedGames"`
	Memo         string   `json:"memo"`
}
