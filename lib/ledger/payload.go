package ledger

import (
	"bytes"
	"encoding/json"
)

func isEmpty(b []byte) bool {
	return len(bytes.TrimSpace(b)) == 0
}

func emptyList() json.RawMessage {
	return json.RawMessage("[]")
}

// wrapList returns a one element JSON list holding b as a string.
func wrapList(b []byte) json.RawMessage {
	doc, _ := json.Marshal([]string{string(b)})

	return doc
}

// wrapItem returns a JSON object holding id and b as a string.
func wrapItem(id string, b []byte) json.RawMessage {
	doc, _ := json.Marshal(struct {
		ID   string `json:"id"`
		Data string `json:"data"`
	}{id, string(b)})

	return doc
}
