package api

import (
	"net/http"
	"path/filepath"
)

type backupList struct {
	Files []string `json:"files"`
}

func (h *Handlers) listBackups(w http.ResponseWriter, r *http.Request) {
	files, err := h.backups.ListBackups()
	if err != nil {
		writeError(w, err)
		return
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	writeJSON(w, http.StatusOK, backupList{Files: names})
}

func (h *Handlers) createBackup(w http.ResponseWriter, r *http.Request) {
	path, err := h.backups.RunBackupNow()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"file": filepath.Base(path)})
}
