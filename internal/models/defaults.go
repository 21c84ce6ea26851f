package models

// EmptyState returns the state of a store that has never loaded anything.
func EmptyState() State {
	return State{Items: []Item{}}
}

// EmptySnapshot returns a snapshot with no items. Storage drivers return it
// when nothing has been persisted yet or the persisted blob is unreadable.
func EmptySnapshot() Snapshot {
	return Snapshot{Items: []Item{}}
}
