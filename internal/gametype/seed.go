package gametype

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/twilightcoders/cardgames/internal/models"
)

type seedFile struct {
	GameTypes []seedGameType `yaml:"gameTypes"`
}

// seedGameType mirrors models.GameTypeInput. Nullable fields are kept as raw nodes so that an
// explicit `null` can be told apart from an omitted key.
type seedGameType struct {
	URL                 *string              `yaml:"url"`
	Name                *string              `yaml:"name"`
	MinPlayers          *int                 `yaml:"minPlayers"`
	MaxPlayers          *int                 `yaml:"maxPlayers"`
	ScoreTypes          []models.ScoreType   `yaml:"scoreTypes"`
	StartScore          *int                 `yaml:"startScore"`
	Whammies            *bool                `yaml:"whammies"`
	WhammieScore        *int                 `yaml:"whammieScore"`
	WhammieStyle        yaml.Node            `yaml:"whammieStyle"`
	WhammieName         yaml.Node            `yaml:"whammieName"`
	PassesAllowed       *bool                `yaml:"passesAllowed"`
	FixedRounds         yaml.Node            `yaml:"fixedRounds"`
	WinType             []models.WinType     `yaml:"winType"`
	WinCondition        *models.WinCondition `yaml:"winCondition"`
	WinScore            yaml.Node            `yaml:"winScore"`
	TieBreaker          *models.WinCondition `yaml:"tieBreaker"`
	DealerRotates       *bool                `yaml:"dealerRotates"`
	PreRenderScoreboard *bool                `yaml:"preRenderScoreboard"`
	LevelLabels         map[int]string       `yaml:"levelLabels"`
	Description         yaml.Node            `yaml:"description"`
}

// LoadSeedFile reads game type definitions from a YAML file with a top-level `gameTypes` list.
func LoadSeedFile(path string) ([]models.GameTypeInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML into store inputs.
func ParseSeed(data []byte) ([]models.GameTypeInput, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}

	inputs := make([]models.GameTypeInput, 0, len(f.GameTypes))
	for i, sg := range f.GameTypes {
		in, err := sg.toInput()
		if err != nil {
			return nil, fmt.Errorf("gameTypes[%d]: %w", i, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func (sg seedGameType) toInput() (models.GameTypeInput, error) {
	in := models.GameTypeInput{
		URL:                 sg.URL,
		Name:                sg.Name,
		MinPlayers:          sg.MinPlayers,
		MaxPlayers:          sg.MaxPlayers,
		ScoreTypes:          sg.ScoreTypes,
		StartScore:          sg.StartScore,
		Whammies:            sg.Whammies,
		WhammieScore:        sg.WhammieScore,
		PassesAllowed:       sg.PassesAllowed,
		WinType:             sg.WinType,
		WinCondition:        sg.WinCondition,
		TieBreaker:          sg.TieBreaker,
		DealerRotates:       sg.DealerRotates,
		PreRenderScoreboard: sg.PreRenderScoreboard,
	}

	var err error
	if in.WhammieStyle, err = nullableNode[models.WhammieStyle](sg.WhammieStyle); err != nil {
		return in, fmt.Errorf("whammieStyle: %w", err)
	}
	if in.WhammieName, err = nullableNode[string](sg.WhammieName); err != nil {
		return in, fmt.Errorf("whammieName: %w", err)
	}
	if in.FixedRounds, err = nullableNode[int](sg.FixedRounds); err != nil {
		return in, fmt.Errorf("fixedRounds: %w", err)
	}
	if in.WinScore, err = nullableNode[int](sg.WinScore); err != nil {
		return in, fmt.Errorf("winScore: %w", err)
	}
	if in.Description, err = nullableNode[string](sg.Description); err != nil {
		return in, fmt.Errorf("description: %w", err)
	}

	if len(sg.LevelLabels) > 0 {
		in.LevelLabels = make([]models.LevelLabel, 0, len(sg.LevelLabels))
		for _, v := range slices.Sorted(maps.Keys(sg.LevelLabels)) {
			in.LevelLabels = append(in.LevelLabels, models.LevelLabel{Value: v, Label: sg.LevelLabels[v]})
		}
	}
	return in, nil
}

func nullableNode[T any](n yaml.Node) (models.Nullable[T], error) {
	if n.Kind == 0 {
		return models.Nullable[T]{}, nil
	}
	if n.ShortTag() == "!!null" {
		return models.Null[T](), nil
	}
	var v T
	if err := n.Decode(&v); err != nil {
		return models.Nullable[T]{}, err
	}
	return models.Some(v), nil
}
