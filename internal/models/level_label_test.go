package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLevelLabels(t *testing.T) {
	s, err := EncodeLevelLabels(nil)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	s, err = EncodeLevelLabels([]LevelLabel{{Value: 11, Label: "Jack"}, {Value: 12, Label: "Queen"}})
	require.NoError(t, err)
	assert.Equal(t, `[{"value":11,"label":"Jack"},{"value":12,"label":"Queen"}]`, s)
}

func TestDecodeLevelLabels(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []LevelLabel
	}{
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"empty array", "[]", []LevelLabel{}},
		{"canonical", `[{"value":11,"label":"Jack"},{"value":-5,"label":"Whammy"}]`,
			[]LevelLabel{{Value: 11, Label: "Jack"}, {Value: -5, Label: "Whammy"}}},
		{"legacy one pair per object", `[{"11":"Jack"},{"12":"Queen"}]`,
			[]LevelLabel{{Value: 11, Label: "Jack"}, {Value: 12, Label: "Queen"}}},
		{"legacy several pairs", `[{"13":"King","11":"Jack"}]`,
			[]LevelLabel{{Value: 11, Label: "Jack"}, {Value: 13, Label: "King"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLevelLabels(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeLevelLabelsErrors(t *testing.T) {
	tests := map[string]string{
		"not json":        `Jack`,
		"object not list": `{"11":"Jack"}`,
		"entry not obj":   `["Jack"]`,
		"non-int key":     `[{"eleven":"Jack"}]`,
		"non-string":      `[{"11":11}]`,
		"unknown field":   `[{"value":11,"label":"Jack","color":"red"}]`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeLevelLabels(in)
			assert.Error(t, err)
		})
	}
}

func TestLevelLabelsRoundTrip(t *testing.T) {
	labels := []LevelLabel{{Value: 1, Label: "Ace"}, {Value: 13, Label: "King"}}
	s, err := EncodeLevelLabels(labels)
	require.NoError(t, err)
	got, err := DecodeLevelLabels(s)
	require.NoError(t, err)
	assert.Equal(t, labels, got)
}
