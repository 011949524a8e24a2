package graph

import (
	graphql "github.com/graph-gophers/graphql-go"

	"github.com/twilightcoders/cardgames/internal/gametype"
	"github.com/twilightcoders/cardgames/internal/models"
)

// gameTypeInput is the GameTypeInput input object. Null and omitted are the same for most fields;
// the graphql.Null* fields keep an explicit null so it can clear the stored value. Enum inputs
// cannot be nullable-tracked, so whammieStyle is cleared with ClearWhammieStyle instead.
type gameTypeInput struct {
	URL                 *string
	Name                *string
	MinPlayers          *int32
	MaxPlayers          *int32
	ScoreTypes          *[]string
	StartScore          *int32
	Whammies            *bool
	WhammieScore        *int32
	WhammieStyle        *string
	ClearWhammieStyle   *bool
	WhammieName         graphql.NullString
	PassesAllowed       *bool
	FixedRounds         graphql.NullInt
	WinType             *[]string
	WinCondition        *string
	WinScore            graphql.NullInt
	TieBreaker          *string
	DealerRotates       *bool
	PreRenderScoreboard *bool
	LevelLabels         graphql.NullString
	Description         graphql.NullString
}

func (in gameTypeInput) toModel() (models.GameTypeInput, error) {
	out := models.GameTypeInput{
		URL:                 in.URL,
		Name:                in.Name,
		MinPlayers:          intPtr(in.MinPlayers),
		MaxPlayers:          intPtr(in.MaxPlayers),
		StartScore:          intPtr(in.StartScore),
		Whammies:            in.Whammies,
		WhammieScore:        intPtr(in.WhammieScore),
		WhammieName:         nullString(in.WhammieName),
		PassesAllowed:       in.PassesAllowed,
		FixedRounds:         nullInt(in.FixedRounds),
		WinScore:            nullInt(in.WinScore),
		DealerRotates:       in.DealerRotates,
		PreRenderScoreboard: in.PreRenderScoreboard,
		Description:         nullString(in.Description),
	}

	if in.ScoreTypes != nil {
		out.ScoreTypes = make([]models.ScoreType, len(*in.ScoreTypes))
		for i, s := range *in.ScoreTypes {
			out.ScoreTypes[i] = models.ScoreType(s)
		}
	}
	if in.WinType != nil {
		out.WinType = make([]models.WinType, len(*in.WinType))
		for i, s := range *in.WinType {
			out.WinType[i] = models.WinType(s)
		}
	}
	clearStyle := in.ClearWhammieStyle != nil && *in.ClearWhammieStyle
	switch {
	case clearStyle && in.WhammieStyle != nil:
		return out, validationError(gametype.Violation{
			Field:      "clearWhammieStyle",
			Constraint: "excluded_with",
			Message:    "clearWhammieStyle cannot be combined with whammieStyle",
		})
	case clearStyle:
		out.WhammieStyle = models.Null[models.WhammieStyle]()
	case in.WhammieStyle != nil:
		out.WhammieStyle = models.Some(models.WhammieStyle(*in.WhammieStyle))
	}
	if in.WinCondition != nil {
		wc := models.WinCondition(*in.WinCondition)
		out.WinCondition = &wc
	}
	if in.TieBreaker != nil {
		tb := models.WinCondition(*in.TieBreaker)
		out.TieBreaker = &tb
	}

	if in.LevelLabels.Set {
		raw := ""
		if in.LevelLabels.Value != nil {
			raw = *in.LevelLabels.Value
		}
		labels, err := models.DecodeLevelLabels(raw)
		if err != nil {
			return out, validationError(gametype.Violation{
				Field:      "levelLabels",
				Constraint: "format",
				Message:    err.Error(),
			})
		}
		// a non-nil empty slice clears stored labels
		if labels == nil {
			labels = []models.LevelLabel{}
		}
		out.LevelLabels = labels
	}
	return out, nil
}

func intPtr(p *int32) *int {
	if p == nil {
		return nil
	}
	v := int(*p)
	return &v
}

func nullInt(n graphql.NullInt) models.Nullable[int] {
	if !n.Set {
		return models.Nullable[int]{}
	}
	if n.Value == nil {
		return models.Null[int]()
	}
	return models.Some(int(*n.Value))
}

func nullString(n graphql.NullString) models.Nullable[string] {
	if !n.Set {
		return models.Nullable[string]{}
	}
	if n.Value == nil {
		return models.Null[string]()
	}
	return models.Some(*n.Value)
}
