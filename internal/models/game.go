package models

// ExpenseRecord is the per-game cost breakdown. Money fields are kept as the
// display string the user typed (thousands separators included); BeerCount is
// a plain count, not an amount.
type ExpenseRecord struct {
	Ticket       string `json:"ticket"`
	BeerCost     string `json:"beerCost"`
	BeerCount    string `json:"beerCount"`
	BallparkFood string `json:"ballparkFood"`
	Goods        string `json:"goods"`
	TravelCost   string `json:"travelCost"`
}

type StartingPitcher struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// Game is one scheduled match. The whole game list is persisted as a single
// JSON array value, so fields carry JSON tags rather than table tags.
type Game struct {
	ID              string          `json:"id"`
	Date            string          `json:"date"` // yyyy-mm-dd
	Home            string          `json:"home"`
	Away            string          `json:"away"`
	Stadium         string          `json:"stadium"`
	StartTime       string          `json:"startTime"`
	Attended        bool            `json:"attended"`
	Favorite        bool            `json:"favorite"`
	Cost            ExpenseRecord   `json:"cost"`
	StartingPitcher StartingPitcher `json:"startingPitcher"`
	Memo            string          `json:"memo"`

	// TicketStartDate mirrors the saleDate of the one ticket sale whose
	// games set contains this game's id; empty when unlinked.
	TicketStartDate string `json:"ticketStartDate"`
}

// RawGame is one record of the schedule seed file (the scraper's output).
type RawGame struct {
	ID        string `json:"id,omitempty"`
	Date      string `json:"date"`
	Home      string `json:"home"`
	Away      string `json:"away"`
	Stadium   string `json:"stadium"`
	StartTime string `json:"startTime"`
}
