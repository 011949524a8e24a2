package models

// Nullable distinguishes an omitted field (Set == false) from an explicit null (Set && Value == nil).
type Nullable[T any] struct {
	Value *T
	Set   bool
}

// Null returns an explicitly null value.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// Some returns a set, non-null value.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Value: &v, Set: true}
}

// GameTypeInput carries the caller-supplied fields of a create or update.
// Nil pointers and nil slices mean "not provided"; a non-nil empty slice is an explicit empty list.
type GameTypeInput struct {
	URL  *string
	Name *string

	MinPlayers *int
	MaxPlayers *int

	ScoreTypes []ScoreType
	StartScore *int

	Whammies     *bool
	WhammieScore *int
	WhammieStyle Nullable[WhammieStyle]
	WhammieName  Nullable[string]

	PassesAllowed *bool
	FixedRounds   Nullable[int]

	WinType      []WinType
	WinCondition *WinCondition
	WinScore     Nullable[int]
	TieBreaker   *WinCondition

	DealerRotates       *bool
	PreRenderScoreboard *bool

	LevelLabels []LevelLabel
	Description Nullable[string]
}

// ApplyTo merges every provided field of in onto g. Identity fields are never touched.
func (in GameTypeInput) ApplyTo(g *GameConfiguration) {
	setIf(&g.URL, in.URL)
	setIf(&g.Name, in.Name)
	setIf(&g.MinPlayers, in.MinPlayers)
	setIf(&g.MaxPlayers, in.MaxPlayers)
	if in.ScoreTypes != nil {
		g.ScoreTypes = append([]ScoreType{}, in.ScoreTypes...)
	}
	setIf(&g.StartScore, in.StartScore)
	setIf(&g.Whammies, in.Whammies)
	setIf(&g.WhammieScore, in.WhammieScore)
	setNullable(&g.WhammieStyle, in.WhammieStyle)
	setNullable(&g.WhammieName, in.WhammieName)
	setIf(&g.PassesAllowed, in.PassesAllowed)
	setNullable(&g.FixedRounds, in.FixedRounds)
	if in.WinType != nil {
		g.WinType = append([]WinType{}, in.WinType...)
	}
	setIf(&g.WinCondition, in.WinCondition)
	setNullable(&g.WinScore, in.WinScore)
	setIf(&g.TieBreaker, in.TieBreaker)
	setIf(&g.DealerRotates, in.DealerRotates)
	setIf(&g.PreRenderScoreboard, in.PreRenderScoreboard)
	if in.LevelLabels != nil {
		g.LevelLabels = append([]LevelLabel{}, in.LevelLabels...)
	}
	setNullable(&g.Description, in.Description)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setNullable[T any](dst **T, src Nullable[T]) {
	if !src.Set {
		return
	}
	if src.Value == nil {
		*dst = nil
		return
	}
	v := *src.Value
	*dst = &v
}
