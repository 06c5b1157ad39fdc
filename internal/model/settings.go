package model

import "encoding/json"

// Settings is the single global settings record. Keys other than the ones
// modeled here are preserved across a load/save round trip so an older or
// newer build never strips them from settings.json.
type Settings struct {
	ExcludeWeekends bool
	Extra           map[string]json.RawMessage
}

func DefaultSettings() Settings {
	return Settings{ExcludeWeekends: false}
}

func (s Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Extra)+1)
	for k, v := range s.Extra {
		out[k] = v
	}
	raw, err := json.Marshal(s.ExcludeWeekends)
	if err != nil {
		return nil, err
	}
	out["exclude_weekends"] = raw
	return json.Marshal(out)
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = DefaultSettings()
	if v, ok := raw["exclude_weekends"]; ok {
		if err := json.Unmarshal(v, &s.ExcludeWeekends); err != nil {
			return err
		}
		delete(raw, "exclude_weekends")
	}
	if len(raw) > 0 {
		s.Extra = raw
	}
	return nil
}
