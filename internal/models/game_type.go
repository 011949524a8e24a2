// internal/models/game_type.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ScoreType string

const (
	ScorePositive ScoreType = "positive"
	ScoreNegative ScoreType = "negative"
)

type WhammieStyle string

const (
	WhammieCircled  WhammieStyle = "circled"
	WhammieBlockout WhammieStyle = "blockout"
)

// WinCondition is shared by winCondition and tieBreaker.
type WinCondition string

const (
	WinByRounds WinCondition = "rounds"
	WinByLow    WinCondition = "low"
	WinByHigh   WinCondition = "high"
)

type WinType string

const (
	WinTypeRounds WinType = "rounds"
	WinTypeScore  WinType = "score"
)

// GameConfiguration is a named ruleset describing how a scoring game is played:
// player counts, scoring, whammies, and what ends and wins the game.
type GameConfiguration struct {
	ID      uuid.UUID `json:"id"`
	ShortID string    `json:"shortId"`
	URL     string    `json:"url" validate:"required,max=128,urlslug"`
	Name    string    `json:"name" validate:"required,max=200"`

	MinPlayers int `json:"minPlayers" validate:"min=1,max=10"`
	MaxPlayers int `json:"maxPlayers" validate:"min=1,max=10,gtefield=MinPlayers"`

	ScoreTypes []ScoreType `json:"scoreTypes" validate:"required,min=1,dive,oneof=positive negative"`
	StartScore int         `json:"startScore" validate:"min=-2147483648,max=2147483647"`

	Whammies     bool          `json:"whammies"`
	WhammieScore int           `json:"whammieScore" validate:"min=-2147483648,max=2147483647"`
	WhammieStyle *WhammieStyle `json:"whammieStyle,omitempty" validate:"omitempty,oneof=circled blockout"`
	WhammieName  *string       `json:"whammieName,omitempty"`

	PassesAllowed bool `json:"passesAllowed"`

	// FixedRounds is nil when the game has no round limit.
	FixedRounds *int `json:"fixedRounds" validate:"omitempty,max=2147483647"`

	WinType      []WinType    `json:"winType" validate:"required,min=1,dive,oneof=rounds score"`
	WinCondition WinCondition `json:"winCondition" validate:"required,oneof=rounds low high"`
	WinScore     *int         `json:"winScore" validate:"omitempty,min=-2147483648,max=2147483647"`
	TieBreaker   WinCondition `json:"tieBreaker" validate:"required,oneof=rounds low high"`

	DealerRotates       bool `json:"dealerRotates"`
	PreRenderScoreboard bool `json:"preRenderScoreboard"`

	LevelLabels []LevelLabel `json:"levelLabels,omitempty" validate:"omitempty,unique=Value,dive"`
	Description *string      `json:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Revision is 1 on create and increments with every update.
	Revision int64 `json:"revision"`
}

const (
	DefaultMinPlayers  = 2
	DefaultMaxPlayers  = 4
	DefaultFixedRounds = 11
)

// DefaultGameConfiguration returns a configuration with every defaulted field set.
// Name and WinType have no default and must come from the caller.
func DefaultGameConfiguration() GameConfiguration {
	rounds := DefaultFixedRounds
	return GameConfiguration{
		MinPlayers:          DefaultMinPlayers,
		MaxPlayers:          DefaultMaxPlayers,
		ScoreTypes:          []ScoreType{ScorePositive},
		StartScore:          0,
		Whammies:            false,
		WhammieScore:        0,
		PassesAllowed:       false,
		FixedRounds:         &rounds,
		WinCondition:        WinByLow,
		TieBreaker:          WinByRounds,
		DealerRotates:       true,
		PreRenderScoreboard: true,
	}
}

// HasWinType reports whether wt is one of the configured completion conditions.
func (g *GameConfiguration) HasWinType(wt WinType) bool {
	for _, w := range g.WinType {
		if w == wt {
			return true
		}
	}
	return false
}

// Normalize trims the name and lowercases/trims the url. A blank url is derived from the name,
// and an empty label set is stored as no labels.
func (g *GameConfiguration) Normalize() {
	g.Name = strings.TrimSpace(g.Name)
	g.URL = strings.ToLower(strings.TrimSpace(g.URL))
	if g.URL == "" {
		g.URL = Slugify(g.Name)
	}
	if len(g.LevelLabels) == 0 {
		g.LevelLabels = nil
	}
}

// Clone returns a deep copy so stored records cannot be mutated through returned values.
func (g *GameConfiguration) Clone() *GameConfiguration {
	c := *g
	c.ScoreTypes = append([]ScoreType(nil), g.ScoreTypes...)
	c.WinType = append([]WinType(nil), g.WinType...)
	if g.LevelLabels != nil {
		c.LevelLabels = append([]LevelLabel{}, g.LevelLabels...)
	}
	c.WhammieStyle = clonePtr(g.WhammieStyle)
	c.WhammieName = clonePtr(g.WhammieName)
	c.FixedRounds = clonePtr(g.FixedRounds)
	c.WinScore = clonePtr(g.WinScore)
	c.Description = clonePtr(g.Description)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Slugify lowercases s and collapses every run of characters outside [a-z0-9_] into one '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
