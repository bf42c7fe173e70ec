package survey

import (
	"encoding/json"

	"github.com/evalhub/evalhub/model"
)

// Answer values persist as JSON: a plain string for single-valued answers,
// an array (order preserved) for checkbox multi-select. This keeps a
// comma-bearing free-text answer distinct from a joined selection list;
// joining with ", " happens only at display/export time.

func encodeValue(t model.QuestionType, values []string) (string, error) {
	if t.MultiSelect() {
		encoded, err := json.Marshal(values)
		return string(encoded), err
	}

	var single string
	if len(values) > 0 {
		single = values[0]
	}
	encoded, err := json.Marshal(single)
	return string(encoded), err
}

func decodeValue(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}

	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		if single == "" {
			return nil, nil
		}
		return []string{single}, nil
	}

	var many []string
	err := json.Unmarshal([]byte(raw), &many)
	return many, err
}
