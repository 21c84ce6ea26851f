package storage

import (
	"log/slog"

	"github.com/micro-nova/inventory-go/internal/models"
)

// normalize repairs snapshots written by older clients or by hand: the item
// list is never nil and records without an id are dropped, since nothing can
// address them.
func normalize(snap *models.Snapshot) {
	if snap.Items == nil {
		snap.Items = []models.Item{}
		return
	}
	kept := snap.Items[:0]
	for _, it := range snap.Items {
		if it.ID == "" {
			slog.Warn("storage: dropping persisted item without id", "name", it.Name)
			continue
		}
		kept = append(kept, it)
	}
	snap.Items = kept
}

// decodeSnapshot parses a persisted blob. Corrupt data is logged and treated
// as an empty snapshot.
func decodeSnapshot(data []byte, where string) *models.Snapshot {
	var snap models.Snapshot
	if err := jsonUnmarshal(data, &snap); err != nil {
		slog.Warn("storage: corrupt snapshot, starting empty", "path", where, "err", err)
		empty := models.EmptySnapshot()
		return &empty
	}
	normalize(&snap)
	return &snap
}
