package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"ballpark-tracker/internal/logger"
	"ballpark-tracker/internal/models"
)

// FileSource feeds the game store its initial schedule from a JSON file on
// first boot. A missing file is not an error; the tracker just starts empty.
type FileSource struct {
	Path   string
	Logger *logger.Logger
}

func NewFileSource(path string, log *logger.Logger) *FileSource {
	return &FileSource{Path: path, Logger: log}
}

// Games loads and converts the seed file.
func (s *FileSource) Games(ctx context.Context) ([]models.Game, error) {
	raws, err := LoadFile(s.Path)
	if os.IsNotExist(err) {
		if s.Logger != nil {
			s.Logger.Warn("SEED", fmt.Sprintf("seed file %s not found, starting empty", s.Path))
		}
		return []models.Game{}, nil
	}
	if err != nil {
		return nil, err
	}
	games := Convert(raws)
	if s.Logger != nil {
		s.Logger.Info("SEED", fmt.Sprintf("loaded %d games from %s", len(games), s.Path))
	}
	return games, nil
}

// LoadFile reads one schedule file into raw records.
func LoadFile(path string) ([]models.RawGame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raws []models.RawGame
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return raws, nil
}

// Convert turns raw schedule records into fresh game records: flags off,
// costs blank, no ticket link. Records without an id get their list position
// as one.
func Convert(raws []models.RawGame) []models.Game {
	games := make([]models.Game, 0, len(raws))
	for i, raw := range raws {
		id := raw.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		games = append(games, models.Game{
			ID:        id,
			Date:      raw.Date,
			Home:      raw.Home,
			Away:      raw.Away,
			Stadium:   raw.Stadium,
			StartTime: raw.StartTime,
		})
	}
	return games
}
