package ledger

import "encoding/json"

func decodeCategories(raw string) []string {
	var cats []string
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		return nil
	}
	return cats
}

func encodeCategories(cats []string) string {
	b, _ := json.Marshal(cats)
	return string(b)
}
