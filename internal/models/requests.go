package models

import "time"

// ItemCreate is the POST body for adding an item. The backend assigns the id
// and lastUpdated.
type ItemCreate struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Threshold float64 `json:"threshold"`
	Supplier  string  `json:"supplier"`
}

// ItemUpdate is a partial item. Nil fields are absent from the JSON body and
// left untouched by ApplyTo. The backend's PUT response is decoded into this
// type as well, so only the fields it returns are merged locally.
type ItemUpdate struct {
	Name        *string    `json:"name,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Quantity    *float64   `json:"quantity,omitempty"`
	Unit        *string    `json:"unit,omitempty"`
	Threshold   *float64   `json:"threshold,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
	Supplier    *string    `json:"supplier,omitempty"`
}

// ApplyTo copies every present field onto it.
func (u ItemUpdate) ApplyTo(it *Item) {
	if u.Name != nil {
		it.Name = *u.Name
	}
	if u.Category != nil {
		it.Category = *u.Category
	}
	if u.Quantity != nil {
		it.Quantity = *u.Quantity
	}
	if u.Unit != nil {
		it.Unit = *u.Unit
	}
	if u.Threshold != nil {
		it.Threshold = *u.Threshold
	}
	if u.LastUpdated != nil {
		it.LastUpdated = *u.LastUpdated
	}
	if u.Supplier != nil {
		it.Supplier = *u.Supplier
	}
}

// IsEmpty reports whether no field is present.
func (u ItemUpdate) IsEmpty() bool {
	return u.Name == nil && u.Category == nil && u.Quantity == nil &&
		u.Unit == nil && u.Threshold == nil && u.LastUpdated == nil &&
		u.Supplier == nil
}
