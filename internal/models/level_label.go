package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// LevelLabel replaces the display of a raw score value, e.g. 11 => "Jack".
type LevelLabel struct {
	Value int    `json:"value" validate:"min=-2147483648,max=2147483647"`
	Label string `json:"label" validate:"required"`
}

// EncodeLevelLabels renders labels as the opaque string exposed on the wire.
// An empty set encodes to "".
func EncodeLevelLabels(labels []LevelLabel) (string, error) {
	if len(labels) == 0 {
		return "", nil
	}
	b, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("encode level labels: %w", err)
	}
	return string(b), nil
}

// DecodeLevelLabels parses the wire form of levelLabels.
//
// Accepted forms:
//
//	[{"value":11,"label":"Jack"}]   canonical
//	[{"11":"Jack"},{"12":"Queen"}]  legacy mixed objects, one or more pairs each
//	""                              no labels
func DecodeLevelLabels(s string) ([]LevelLabel, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("levelLabels must be a JSON array: %w", err)
	}

	labels := make([]LevelLabel, 0, len(raw))
	for i, entry := range raw {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(entry, &obj); err != nil {
			return nil, fmt.Errorf("levelLabels[%d] must be an object: %w", i, err)
		}

		if _, ok := obj["label"]; ok {
			var l LevelLabel
			dec := json.NewDecoder(bytes.NewReader(entry))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&l); err != nil {
				return nil, fmt.Errorf("levelLabels[%d]: %w", i, err)
			}
			labels = append(labels, l)
			continue
		}

		// legacy {"<score>": "<label>"} entries; keys sorted for a stable order
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil {
				return nil, fmt.Errorf("levelLabels[%d]: key %q is not an integer score", i, k)
			}
			var label string
			if err := json.Unmarshal(obj[k], &label); err != nil {
				return nil, fmt.Errorf("levelLabels[%d]: label for %q must be a string", i, k)
			}
			labels = append(labels, LevelLabel{Value: v, Label: label})
		}
	}
	return labels, nil
}
