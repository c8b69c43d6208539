package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballpark-tracker/internal/api"
	"ballpark-tracker/internal/models"
	"ballpark-tracker/internal/reconcile"
	"ballpark-tracker/internal/views"
)

type memGameStore struct {
	games []models.Game
}

func (m *memGameStore) Load(ctx context.Context) ([]models.Game, bool, error) {
	return m.games, true, nil
}

func (m *memGameStore) Save(ctx context.Context, games []models.Game) error {
	m.games = games
	return nil
}

type memSaleStore struct {
	sales []models.TicketSale
}

func (m *memSaleStore) Load(ctx context.Context) ([]models.TicketSale, error) {
	return m.sales, nil
}

func (m *memSaleStore) Save(ctx context.Context, sales []models.TicketSale) error {
	m.sales = sales
	return nil
}

func setupServer(t *testing.T, games []models.Game, sales []models.TicketSale) *httptest.Server {
	t.Helper()
	svc := reconcile.NewService(&memGameStore{games: games}, &memSaleStore{sales: sales}, nil, nil, nil)
	require.NoError(t, svc.Load(context.Background()))

	r := chi.NewRouter()
	api.NewHandler(svc, nil).RegisterRoutes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestListGames(t *testing.T) {
	server := setupServer(t, []models.Game{
		{ID: "1", Date: "2026-04-01", Home: "Tigers", Away: "Giants"},
		{ID: "2", Date: "2026-04-02", Home: "Carp", Away: "Swallows"},
	}, nil)

	resp, err := http.Get(server.URL + "/api/games/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var games []models.Game
	decodeJSON(t, resp, &games)
	assert.Len(t, games, 2)

	resp, err = http.Get(server.URL + "/api/games/?team=Tigers")
	require.NoError(t, err)
	decodeJSON(t, resp, &games)
	assert.Len(t, games, 1)
}

func TestGetGameNotFound(t *testing.T) {
	server := setupServer(t, nil, nil)

	resp, err := http.Get(server.URL + "/api/games/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPatchGameField(t *testing.T) {
	server := setupServer(t, []models.Game{{ID: "1", Date: "2026-04-01"}}, nil)

	body := bytes.NewBufferString(`{"path":"attended","value":true}`)
	req, err := http.NewRequest(http.MethodPatch, server.URL+"/api/games/1", body)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success bool        `json:"success"`
		Data    models.Game `json:"data"`
	}
	decodeJSON(t, resp, &out)
	assert.True(t, out.Success)
	assert.True(t, out.Data.Attended)
}

func TestPatchGameFieldStringValue(t *testing.T) {
	server := setupServer(t, []models.Game{{ID: "1", Date: "2026-04-01"}}, nil)

	body := bytes.NewBufferString(`{"path":"cost.ticket","value":"4500"}`)
	req, err := http.NewRequest(http.MethodPatch, server.URL+"/api/games/1", body)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var out struct {
		Data models.Game `json:"data"`
	}
	decodeJSON(t, resp, &out)
	assert.Equal(t, "4,500", out.Data.Cost.Ticket)
}

func TestPatchGameFieldUnknownPath(t *testing.T) {
	server := setupServer(t, []models.Game{{ID: "1"}}, nil)

	body := bytes.NewBufferString(`{"path":"cost.parking","value":"500"}`)
	req, err := http.NewRequest(http.MethodPatch, server.URL+"/api/games/1", body)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitSaleAndListCards(t *testing.T) {
	server := setupServer(t, []models.Game{
		{ID: "A", Date: "2026-04-18", Home: "Tigers", Away: "Giants"},
	}, nil)

	body := bytes.NewBufferString(`{"saleDate":"2026-03-01","games":["A"],"memo":"lottery win"}`)
	resp, err := http.Post(server.URL+"/api/sales/", "application/json", body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data models.TicketSale `json:"data"`
	}
	decodeJSON(t, resp, &created)
	assert.NotEmpty(t, created.Data.ID)

	resp, err = http.Get(server.URL + "/api/sales/")
	require.NoError(t, err)

	var cards []views.SaleCard
	decodeJSON(t, resp, &cards)
	require.Len(t, cards, 1)
	assert.Equal(t, "2026-03-01", cards[0].SaleDate)
	require.Len(t, cards[0].Games, 1)
	assert.Equal(t, "Tigers", cards[0].Games[0].Home)
}

func TestSubmitSaleValidationError(t *testing.T) {
	server := setupServer(t, nil, nil)

	body := bytes.NewBufferString(`{"saleDate":"","games":[]}`)
	resp, err := http.Post(server.URL+"/api/sales/", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateSaleMergeReturnsSurvivor(t *testing.T) {
	server := setupServer(t,
		[]models.Game{{ID: "A"}, {ID: "B"}},
		[]models.TicketSale{
			{ID: "t1", SaleDate: "2026-04-01", Games: []string{"A"}},
			{ID: "t2", SaleDate: "2026-05-01", Games: []string{"B"}},
		})

	body := bytes.NewBufferString(`{"saleDate":"2026-04-01","games":["B"]}`)
	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/sales/t2", body)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data models.TicketSale `json:"data"`
	}
	decodeJSON(t, resp, &out)
	assert.Equal(t, "t1", out.Data.ID)
	assert.ElementsMatch(t, []string{"A", "B"}, out.Data.Games)
}

func TestDeleteSale(t *testing.T) {
	server := setupServer(t,
		[]models.Game{{ID: "A"}},
		[]models.TicketSale{{ID: "t1", SaleDate: "2026-04-01", Games: []string{"A"}}})

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/sales/t1", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/sales/t1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMonthlySummaryEndpoint(t *testing.T) {
	server := setupServer(t, []models.Game{
		{ID: "1", Date: "2026-04-01", Home: "Tigers", Away: "Giants", Attended: true,
			Cost: models.ExpenseRecord{Ticket: "1,000"}},
		{ID: "2", Date: "2026-04-18", Home: "Tigers", Away: "Carp", Attended: true,
			Cost: models.ExpenseRecord{Ticket: "2,500"}},
	}, nil)

	resp, err := http.Get(server.URL + "/api/games/summary")
	require.NoError(t, err)

	var out struct {
		Totals map[string]int `json:"totals"`
		Years  []string       `json:"years"`
	}
	decodeJSON(t, resp, &out)
	assert.Equal(t, 3500, out.Totals["2026/4"])
	assert.Equal(t, []string{"2026"}, out.Years)
}

func TestSaleQRReturnsPNG(t *testing.T) {
	server := setupServer(t,
		[]models.Game{{ID: "A"}},
		[]models.TicketSale{{ID: "t1", SaleDate: "2026-04-01", Games: []string{"A"}}})

	resp, err := http.Get(server.URL + "/api/sales/t1/qr")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}
