package models

import (
	"encoding/json"
	"time"
)

// Item is one inventory record. ID and LastUpdated are assigned by the
// backend; an Item that has not been confirmed by the server has neither.
type Item struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit"`      // "kg", "pcs", ...
	Threshold   float64   `json:"threshold"` // low-stock trigger
	LastUpdated time.Time `json:"lastUpdated"`
	Supplier    string    `json:"supplier"`
}

// UnmarshalJSON accepts both "_id" and "id" as the identity field.
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*it = Item(aux.plain)
	if it.ID == "" {
		it.ID = aux.AltID
	}
	return nil
}

// Equal reports whether two items hold the same values.
func (it Item) Equal(other Item) bool {
	return it.ID == other.ID &&
		it.Name == other.Name &&
		it.Category == other.Category &&
		it.Quantity == other.Quantity &&
		it.Unit == other.Unit &&
		it.Threshold == other.Threshold &&
		it.LastUpdated.Equal(other.LastUpdated) &&
		it.Supplier == other.Supplier
}

// IsLow reports whether the quantity has reached the low-stock threshold.
func (it Item) IsLow() bool {
	return it.Quantity <= it.Threshold
}

// ItemsEqual compares two item lists element by element, order included.
func ItemsEqual(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
