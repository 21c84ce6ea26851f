package storage

import (
	"bytes"
	"encoding/json"

	"github.com/micro-nova/inventory-go/internal/models"
)

func encodeSnapshot(snap *models.Snapshot) ([]byte, error) {
	out := models.EmptySnapshot()
	if snap != nil && snap.Items != nil {
		out.Items = snap.Items
	}
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func jsonUnmarshal(data []byte, v any) error {
	return json.Unmarshal(bytes.TrimSpace(data), v)
}
