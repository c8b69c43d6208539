package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ballpark-tracker/internal/logger"
	"ballpark-tracker/internal/models"
	"ballpark-tracker/internal/utils"
)

var (
	// ErrValidation is the only user-facing save failure: the sale form
	// needs both a sale date and at least one selected game.
	ErrValidation = errors.New("a sale date and at least one game are required")

	ErrGameNotFound = errors.New("game not found")
	ErrSaleNotFound = errors.New("ticket sale not found")
	ErrUnknownField = errors.New("unknown game field")
)

type GameStore interface {
	Load(ctx context.Context) (games []models.Game, found bool, err error)
	Save(ctx context.Context, games []models.Game) error
}

type SaleStore interface {
	Load(ctx context.Context) ([]models.TicketSale, error)
	Save(ctx context.Context, sales []models.TicketSale) error
}

// SeedSource produces the initial game list on first run.
type SeedSource interface {
	Games(ctx context.Context) ([]models.Game, error)
}

type EventPublisher interface {
	PublishGameUpdated(game models.Game) error
	PublishSaleSaved(sale models.TicketSale) error
	PublishSaleDeleted(sale models.TicketSale) error
}

// Service owns both record stores and is the single write path for every
// mutation the interface layer can make. It holds the reconciled lists in
// memory and writes both stores back before a mutation returns, so invariant
// violations only exist across a crash, and the load pass repairs those.
type Service struct {
	mu     sync.Mutex
	games  GameStore
	sales  SaleStore
	seed   SeedSource
	events EventPublisher
	logger *logger.Logger

	gameList []models.Game
	saleList []models.TicketSale
}

func NewService(games GameStore, sales SaleStore, seed SeedSource, events EventPublisher, log *logger.Logger) *Service {
	return &Service{
		games:  games,
		sales:  sales,
		seed:   seed,
		events: events,
		logger: log,
	}
}

// Load reads both stores, seeding the game list on first run, then runs the
// repair passes: duplicate-date merge over the sales, denormalization sync
// over the games. Repaired stores are written back only when they differ
// from what was loaded.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gameList, found, err := s.games.Load(ctx)
	if err != nil {
		return err
	}
	if !found {
		if s.seed == nil {
			gameList = []models.Game{}
		} else {
			gameList, err = s.seed.Games(ctx)
			if err != nil {
				return fmt.Errorf("failed to seed game list: %w", err)
			}
			s.logReconcile("SEED", fmt.Sprintf("Seeded %d games", len(gameList)))
		}
		if err := s.games.Save(ctx, gameList); err != nil {
			return err
		}
	}

	saleList, err := s.sales.Load(ctx)
	if err != nil {
		return err
	}
	if saleList == nil {
		// The merge pass always yields a non-nil list; normalize so the
		// change compare doesn't see null vs [] on a never-written store.
		saleList = []models.TicketSale{}
	}
	merged := MergeBySaleDate(saleList)
	if !salesEqual(merged, saleList) {
		s.logReconcile("MERGE", fmt.Sprintf("Collapsed %d sale records into %d", len(saleList), len(merged)))
		if err := s.sales.Save(ctx, merged); err != nil {
			return err
		}
	}

	synced, changed := SyncTicketStartDates(gameList, merged)
	if changed {
		s.logReconcile("SYNC", "Updated denormalized ticket start dates")
		if err := s.games.Save(ctx, synced); err != nil {
			return err
		}
	}

	s.gameList = synced
	s.saleList = merged
	return nil
}

// Games returns the current reconciled game list.
func (s *Service) Games() []models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Game, len(s.gameList))
	copy(out, s.gameList)
	return out
}

// Game returns one game by id.
func (s *Service) Game(gameID string) (models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, game := range s.gameList {
		if game.ID == gameID {
			return game, nil
		}
	}
	return models.Game{}, ErrGameNotFound
}

// Sales returns the current reconciled sale list.
func (s *Service) Sales() []models.TicketSale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSales(s.saleList)
}

// Sale returns one ticket sale by id.
func (s *Service) Sale(saleID string) (models.TicketSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sale := range s.saleList {
		if sale.ID == saleID {
			return cloneSale(sale), nil
		}
	}
	return models.TicketSale{}, ErrSaleNotFound
}

// UpdateGameField applies one field edit from the game detail form, addressed
// by dot path ("attended", "cost.ticket", "startingPitcher.home", ...).
// Money fields are normalized to their grouped display form on commit; a
// ticketStartDate edit runs the link/unlink reconciliation against the sale
// store before anything is persisted.
func (s *Service) UpdateGameField(ctx context.Context, gameID, path, value string) (models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.gameList {
		if s.gameList[i].ID == gameID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return models.Game{}, ErrGameNotFound
	}

	game := s.gameList[idx]
	salesChanged := false

	switch path {
	case "attended":
		game.Attended = value == "true"
	case "favorite":
		game.Favorite = value == "true"
	case "memo":
		game.Memo = value
	case "startingPitcher.home":
		game.StartingPitcher.Home = value
	case "startingPitcher.away":
		game.StartingPitcher.Away = value
	case "cost.beerCount":
		game.Cost.BeerCount = value
	case "cost.ticket":
		game.Cost.Ticket = normalizeMoney(value)
	case "cost.beerCost":
		game.Cost.BeerCost = normalizeMoney(value)
	case "cost.ballparkFood":
		game.Cost.BallparkFood = normalizeMoney(value)
	case "cost.goods":
		game.Cost.Goods = normalizeMoney(value)
	case "cost.travelCost":
		game.Cost.TravelCost = normalizeMoney(value)
	case "ticketStartDate":
		salesChanged = s.retargetTicketDate(&game, value)
	default:
		return models.Game{}, fmt.Errorf("%w: %s", ErrUnknownField, path)
	}

	s.gameList[idx] = game

	if salesChanged {
		if err := s.sales.Save(ctx, s.saleList); err != nil {
			return models.Game{}, err
		}
	}
	if err := s.games.Save(ctx, s.gameList); err != nil {
		return models.Game{}, err
	}

	if s.events != nil {
		if err := s.events.PublishGameUpdated(game); err != nil {
			s.logError("KAFKA", fmt.Sprintf("Failed to publish game update: %v", err))
		}
	}
	return game, nil
}

// retargetTicketDate implements the link/unlink contract for a direct edit of
// a game's ticketStartDate. Reports whether the sale list changed.
func (s *Service) retargetTicketDate(game *models.Game, newDate string) bool {
	old := game.TicketStartDate
	if old == newDate {
		return false
	}

	changed := false
	if old != "" {
		s.saleList, changed = unlinkGame(s.saleList, old, game.ID)
	}

	if newDate != "" {
		linked := false
		for i := range s.saleList {
			if s.saleList[i].SaleDate == newDate {
				s.saleList[i].Games = appendUnique(s.saleList[i].Games, game.ID)
				s.saleList[i].DeletedGames = removeID(s.saleList[i].DeletedGames, game.ID)
				linked = true
				break
			}
		}
		if !linked {
			s.saleList = append(s.saleList, models.TicketSale{
				ID:           utils.GenerateSaleID(),
				SaleDate:     newDate,
				Games:        []string{game.ID},
				DeletedGames: []string{},
			})
		}
		changed = true
	}

	game.TicketStartDate = newDate
	return changed
}

// unlinkGame removes gameID from the sale dated saleDate. A sale whose games
// set empties is dissolved entirely; the refund markers go with it.
func unlinkGame(sales []models.TicketSale, saleDate, gameID string) ([]models.TicketSale, bool) {
	for i := range sales {
		if sales[i].SaleDate != saleDate {
			continue
		}
		if !hasID(sales[i].Games, gameID) {
			return sales, false
		}
		sales[i].Games = removeID(sales[i].Games, gameID)
		if len(sales[i].Games) == 0 {
			return append(sales[:i:i], sales[i+1:]...), true
		}
		return sales, true
	}
	return sales, false
}

// SubmitSale handles the sale registration form. A submit whose saleDate
// already has a record appends to that record instead of erroring: new game
// ids join the games set, a non-empty memo is concatenated on a new line.
func (s *Service) SubmitSale(ctx context.Context, saleDate string, gameIDs []string, memo string) (models.TicketSale, error) {
	if saleDate == "" || len(gameIDs) == 0 {
		return models.TicketSale{}, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := dedup(gameIDs)

	idx := -1
	for i := range s.saleList {
		if s.saleList[i].SaleDate == saleDate {
			idx = i
			break
		}
	}

	var saleID string
	if idx >= 0 {
		saleID = s.saleList[idx].ID
		s.saleList[idx].Games = appendUnique(s.saleList[idx].Games, ids...)
		s.saleList[idx].DeletedGames = subtract(s.saleList[idx].DeletedGames, s.saleList[idx].Games)
		if memo != "" {
			s.saleList[idx].Memo = joinMemos(s.saleList[idx].Memo, memo)
		}
	} else {
		sale := models.TicketSale{
			ID:           utils.GenerateSaleID(),
			SaleDate:     saleDate,
			Games:        ids,
			DeletedGames: []string{},
			Memo:         memo,
		}
		saleID = sale.ID
		s.saleList = append(s.saleList, sale)
	}

	// A selected game already covered by a different sale moves over; a game
	// id never lives in two sales at once.
	s.detachFromOtherSales(ids, saleID)

	if err := s.finishSaleMutation(ctx); err != nil {
		return models.TicketSale{}, err
	}

	result, _ := s.saleByID(saleID)
	if s.events != nil {
		if err := s.events.PublishSaleSaved(result); err != nil {
			s.logError("KAFKA", fmt.Sprintf("Failed to publish sale save: %v", err))
		}
	}
	return result, nil
}

// UpdateSale handles an edit-save of an existing sale: new date, new game
// list, new memo. When the new date collides with a different sale the edited
// record merges into it and its own id disappears. Games removed in the edit
// become refund markers on the surviving record.
func (s *Service) UpdateSale(ctx context.Context, saleID, saleDate string, gameIDs []string, memo string) (models.TicketSale, error) {
	if saleDate == "" || len(gameIDs) == 0 {
		return models.TicketSale{}, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.saleList {
		if s.saleList[i].ID == saleID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return models.TicketSale{}, ErrSaleNotFound
	}
	orig := s.saleList[idx]

	edited := models.TicketSale{
		ID:           orig.ID,
		SaleDate:     saleDate,
		Games:        dedup(gameIDs),
		DeletedGames: appendUnique([]string{}, orig.DeletedGames...),
		Memo:         memo,
	}

	// Games dropped in this edit keep their money on the line: mark them for
	// refund follow-up rather than forgetting them. Re-added games leave the
	// refund list again.
	for _, id := range orig.Games {
		if !hasID(edited.Games, id) {
			edited.DeletedGames = appendUnique(edited.DeletedGames, id)
			s.clearTicketDate(id, orig.SaleDate)
		}
	}
	edited.DeletedGames = subtract(edited.DeletedGames, edited.Games)

	// Find the record already sitting on the target date before detaching.
	// An edit that takes over all of that record's games would otherwise
	// dissolve it here and skip the merge below, losing its id, memo and
	// refund markers.
	collisionID := ""
	for i := range s.saleList {
		if i != idx && s.saleList[i].SaleDate == saleDate {
			collisionID = s.saleList[i].ID
			break
		}
	}

	keep := []string{edited.ID}
	if collisionID != "" {
		keep = append(keep, collisionID)
	}
	s.detachFromOtherSales(edited.Games, keep...)

	// Detaching can dissolve other sales and shift positions; re-find both
	// records afterwards.
	idx = -1
	collision := -1
	for i := range s.saleList {
		if s.saleList[i].ID == saleID {
			idx = i
		}
		if collisionID != "" && s.saleList[i].ID == collisionID {
			collision = i
		}
	}

	var survivorID string
	if collision >= 0 {
		s.saleList[collision] = mergeInto(s.saleList[collision], edited)
		survivorID = s.saleList[collision].ID
		s.saleList = append(s.saleList[:idx:idx], s.saleList[idx+1:]...)
		s.logReconcile("MERGE", fmt.Sprintf("Sale %s merged into %s on date collision (%s)", edited.ID, survivorID, saleDate))
	} else {
		s.saleList[idx] = edited
		survivorID = edited.ID
	}

	if err := s.finishSaleMutation(ctx); err != nil {
		return models.TicketSale{}, err
	}

	result, _ := s.saleByID(survivorID)
	if s.events != nil {
		if err := s.events.PublishSaleSaved(result); err != nil {
			s.logError("KAFKA", fmt.Sprintf("Failed to publish sale save: %v", err))
		}
	}
	return result, nil
}

// DeleteSale removes a sale card. Games that pointed their ticketStartDate at
// it are cleared; the forward-only sync would never repair them otherwise.
func (s *Service) DeleteSale(ctx context.Context, saleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.saleList {
		if s.saleList[i].ID == saleID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrSaleNotFound
	}
	sale := s.saleList[idx]
	s.saleList = append(s.saleList[:idx:idx], s.saleList[idx+1:]...)

	for _, id := range sale.Games {
		s.clearTicketDate(id, sale.SaleDate)
	}

	if err := s.finishSaleMutation(ctx); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishSaleDeleted(sale); err != nil {
			s.logError("KAFKA", fmt.Sprintf("Failed to publish sale delete: %v", err))
		}
	}
	return nil
}

// detachFromOtherSales removes the given game ids from every sale not listed
// in keepIDs, dissolving sales that empty out.
func (s *Service) detachFromOtherSales(gameIDs []string, keepIDs ...string) {
	kept := s.saleList[:0:0]
	for _, sale := range s.saleList {
		if hasID(keepIDs, sale.ID) {
			kept = append(kept, sale)
			continue
		}
		for _, id := range gameIDs {
			sale.Games = removeID(sale.Games, id)
		}
		if len(sale.Games) == 0 {
			// Nothing left on sale; refund markers alone don't keep a card.
			continue
		}
		kept = append(kept, sale)
	}
	s.saleList = kept
}

// clearTicketDate blanks a game's denormalized date when it still points at
// the given sale date.
func (s *Service) clearTicketDate(gameID, saleDate string) {
	for i := range s.gameList {
		if s.gameList[i].ID == gameID && s.gameList[i].TicketStartDate == saleDate {
			s.gameList[i].TicketStartDate = ""
		}
	}
}

// finishSaleMutation re-syncs the denormalized dates and persists both stores
// (sales first; a crash in between is repaired by the next Load).
func (s *Service) finishSaleMutation(ctx context.Context) error {
	synced, _ := SyncTicketStartDates(s.gameList, s.saleList)
	s.gameList = synced

	if err := s.sales.Save(ctx, s.saleList); err != nil {
		return err
	}
	return s.games.Save(ctx, s.gameList)
}

func (s *Service) saleByID(saleID string) (models.TicketSale, bool) {
	for _, sale := range s.saleList {
		if sale.ID == saleID {
			return cloneSale(sale), true
		}
	}
	return models.TicketSale{}, false
}

func (s *Service) logReconcile(action, message string) {
	if s.logger != nil {
		s.logger.LogReconcile(action, message)
	}
}

func (s *Service) logError(category, message string) {
	if s.logger != nil {
		s.logger.Error(category, message)
	}
}

func normalizeMoney(value string) string {
	return utils.FormatAmount(utils.ParseAmount(value))
}

func cloneSale(sale models.TicketSale) models.TicketSale {
	sale.Games = append([]string{}, sale.Games...)
	sale.DeletedGames = append([]string{}, sale.DeletedGames...)
	return sale
}

func cloneSales(sales []models.TicketSale) []models.TicketSale {
	out := make([]models.TicketSale, len(sales))
	for i, sale := range sales {
		out[i] = cloneSale(sale)
	}
	return out
}
