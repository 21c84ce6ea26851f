// Package models defines the inventory records and the store state shared by
// the backend client, the persistence drivers and the local UI bridge.
// JSON field names match the inventory REST API for wire compatibility.
package models

// StorageKey is the namespace under which the persisted snapshot lives in
// every storage driver.
const StorageKey = "inventory-storage"

// State is the complete client-side store state.
type State struct {
	Items   []Item `json:"items"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"` // last failure message; "" means none
}

// Snapshot is the subset of State that survives a restart. Loading and Error
// are never persisted.
type Snapshot struct {
	Items []Item `json:"items"`
}

// DeepCopy returns a deep copy of the state.
func (s State) DeepCopy() State {
	next := State{
		Loading: s.Loading,
		Error:   s.Error,
	}
	next.Items = copyItems(s.Items)
	return next
}

// Snapshot returns the persisted subset of the state.
func (s State) Snapshot() Snapshot {
	return Snapshot{Items: copyItems(s.Items)}
}

// DeepCopy returns a deep copy of the snapshot.
func (s Snapshot) DeepCopy() Snapshot {
	return Snapshot{Items: copyItems(s.Items)}
}

// IndexOf returns the position of the item with the given id, or -1.
func (s State) IndexOf(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func copyItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
