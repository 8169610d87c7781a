package models

import (
	"time"
)

// Game is a catalog entry. The catalog service owns writes; the journal
// only references games from activity events.
type Game struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"type:varchar(200);not null;index"`
	ReleaseYear *int      `gorm:"default:null"`
	CoverURL    string    `gorm:"type:varchar(500)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Game) TableName() string {
	return "games"
}

type GameSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	ReleaseYear *int   `json:"release_year,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
}

func (g *Game) Summary() GameSummary {
	return GameSummary{
		ID:          g.ID,
		Title:       g.Title,
		ReleaseYear: g.ReleaseYear,
		CoverURL:    g.CoverURL,
	}
}
