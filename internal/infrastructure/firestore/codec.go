package firestore

import (
	"encoding/json"
	"fmt"
)

// toDocument converts a record to the map stored in Firestore. Records go
// through their JSON encoding so field names match the HTTP API and the
// postgres JSON columns, and decimals stay exact strings.
func toDocument(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	delete(doc, "id")
	return doc, nil
}

// fromDocument decodes a stored map into record and sets its ID.
func fromDocument(id string, doc map[string]any, record any) error {
	withID := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		withID[k] = v
	}
	withID["id"] = id

	data, err := json.Marshal(withID)
	if err != nil {
		return fmt.Errorf("decode document %s: %w", id, err)
	}
	if err := json.Unmarshal(data, record); err != nil {
		return fmt.Errorf("decode document %s: %w", id, err)
	}
	return nil
}
