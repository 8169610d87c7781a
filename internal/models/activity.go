package models

import (
	"database/sql/driver"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

const (
	MinScore      = 0
	MaxScore      = 10
	MaxNoteLength = 200
)

// ActivityVerb is the kind of journal action an activity event records.
type ActivityVerb uint8

const (
	VerbStatusChange ActivityVerb = iota + 1
	VerbRated
	VerbSessionLogged
)

var activityVerbNames = map[ActivityVerb]string{
	VerbStatusChange:  "STATUS_CHANGE",
	VerbRated:         "RATED",
	VerbSessionLogged: "SESSION_LOGGED",
}

func ParseActivityVerb(s string) (ActivityVerb, error) {
	if v, ok := enumLookup(activityVerbNames, s); ok {
		return v, nil
	}
	return 0, fmt.Errorf("invalid activity verb %q", s)
}

func (v ActivityVerb) String() string {
	if name, ok := activityVerbNames[v]; ok {
		return name
	}
	return fmt.Sprintf("ActivityVerb(%d)", uint8(v))
}

func (v ActivityVerb) Value() (driver.Value, error) {
	return enumValue(activityVerbNames, v, "activity verb")
}

func (v *ActivityVerb) Scan(src interface{}) error {
	label, ok, err := enumText(src)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("activity verb is NULL")
	}
	parsed, err := ParseActivityVerb(label)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v ActivityVerb) MarshalText() ([]byte, error) {
	name, ok := activityVerbNames[v]
	if !ok {
		return nil, fmt.Errorf("invalid activity verb %d", uint8(v))
	}
	return []byte(name), nil
}

func (v *ActivityVerb) UnmarshalText(text []byte) error {
	parsed, err := ParseActivityVerb(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// EntryStatus mirrors the journal entry status. The zero value means
// "not set" and is stored as NULL.
type EntryStatus uint8

const (
	EntryStatusPlanning EntryStatus = iota + 1
	EntryStatusPlaying
	EntryStatusPlayed
	EntryStatusDropped
	EntryStatusCompleted
)

var entryStatusNames = map[EntryStatus]string{
	EntryStatusPlanning:  "PLANNING",
	EntryStatusPlaying:   "PLAYING",
	EntryStatusPlayed:    "PLAYED",
	EntryStatusDropped:   "DROPPED",
	EntryStatusCompleted: "COMPLETED",
}

func ParseEntryStatus(s string) (EntryStatus, error) {
	if v, ok := enumLookup(entryStatusNames, s); ok {
		return v, nil
	}
	return 0, fmt.Errorf("invalid entry status %q", s)
}

func (s EntryStatus) IsSet() bool {
	return s != 0
}

func (s EntryStatus) String() string {
	if name, ok := entryStatusNames[s]; ok {
		return name
	}
	if s == 0 {
		return ""
	}
	return fmt.Sprintf("EntryStatus(%d)", uint8(s))
}

func (s EntryStatus) Value() (driver.Value, error) {
	if s == 0 {
		return nil, nil
	}
	return enumValue(entryStatusNames, s, "entry status")
}

func (s *EntryStatus) Scan(src interface{}) error {
	label, ok, err := enumText(src)
	if err != nil {
		return err
	}
	if !ok {
		*s = 0
		return nil
	}
	parsed, err := ParseEntryStatus(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s EntryStatus) MarshalText() ([]byte, error) {
	if s == 0 {
		return []byte{}, nil
	}
	name, ok := entryStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid entry status %d", uint8(s))
	}
	return []byte(name), nil
}

func (s *EntryStatus) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = 0
		return nil
	}
	parsed, err := ParseEntryStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ActivityEvent is an immutable record of a journal action. Rows are only
// ever inserted.
type ActivityEvent struct {
	ID          uint         `gorm:"primaryKey"`
	ActorID     uint         `gorm:"not null;index:idx_activity_actor_created,priority:1"`
	Actor       User         `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
	Verb        ActivityVerb `gorm:"type:varchar(20);not null"`
	GameID      uint         `gorm:"not null;index"`
	Game        Game         `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
	Status      EntryStatus  `gorm:"type:varchar(12)"`
	Score       *int
	DurationMin *int
	Note        string    `gorm:"type:varchar(200)"`
	SourceKey   *string   `gorm:"type:varchar(64);uniqueIndex"`
	CreatedAt   time.Time `gorm:"index:idx_activity_actor_created,priority:2;index"`
}

func (ActivityEvent) TableName() string {
	return "activity_events"
}

// Validate checks the verb-specific payload.
func (e *ActivityEvent) Validate() error {
	if e.ActorID == 0 || e.GameID == 0 {
		return fmt.Errorf("actor and game are required")
	}
	if e.Score != nil && (*e.Score < MinScore || *e.Score > MaxScore) {
		return fmt.Errorf("score must be between %d and %d", MinScore, MaxScore)
	}
	if utf8.RuneCountInString(e.Note) > MaxNoteLength {
		return fmt.Errorf("note must be at most %d characters", MaxNoteLength)
	}

	switch e.Verb {
	case VerbStatusChange:
		if !e.Status.IsSet() {
			return fmt.Errorf("status change requires a status")
		}
	case VerbRated:
		if e.Score == nil {
			return fmt.Errorf("rating requires a score")
		}
	case VerbSessionLogged:
		if e.DurationMin == nil || *e.DurationMin <= 0 {
			return fmt.Errorf("session requires a positive duration")
		}
	default:
		return fmt.Errorf("invalid activity verb %d", uint8(e.Verb))
	}
	return nil
}

func (e *ActivityEvent) BeforeCreate(tx *gorm.DB) error {
	if err := e.Validate(); err != nil {
		return gorm.ErrInvalidData
	}
	return nil
}

// ActivityView is the feed representation of an event.
type ActivityView struct {
	ID          uint         `json:"id"`
	Actor       MiniUser     `json:"actor"`
	Verb        ActivityVerb `json:"verb"`
	Status      EntryStatus  `json:"status,omitempty"`
	Score       *int         `json:"score,omitempty"`
	DurationMin *int         `json:"duration_min,omitempty"`
	Note        string       `json:"note,omitempty"`
	Game        GameSummary  `json:"game"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (e *ActivityEvent) View() ActivityView {
	return ActivityView{
		ID:          e.ID,
		Actor:       e.Actor.Mini(),
		Verb:        e.Verb,
		Status:      e.Status,
		Score:       e.Score,
		DurationMin: e.DurationMin,
		Note:        e.Note,
		Game:        e.Game.Summary(),
		CreatedAt:   e.CreatedAt,
	}
}
