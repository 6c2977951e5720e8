package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/benvon/day-planner/internal/backup"
	"github.com/benvon/day-planner/internal/models"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const backupRunTimeout = time.Minute

// BackupHandler exposes on-demand backups and the snapshot list
type BackupHandler struct {
	manager *backup.Manager
	log     *zap.Logger
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(manager *backup.Manager, log *zap.Logger) *BackupHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackupHandler{manager: manager, log: log}
}

// RegisterRoutes registers backup routes on a /backups subrouter
func (h *BackupHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListBackups).Methods("GET")
	r.HandleFunc("", h.RunBackup).Methods("POST")
	r.HandleFunc("/{name}/restore", h.RestoreBackup).Methods("POST")
}

// ListBackupsResponse is the body of GET /backups
type ListBackupsResponse struct {
	Backups []backup.Snapshot `json:"backups"`
	Total   int               `json:"total"`
}

// ListBackups lists snapshots, newest first
func (h *BackupHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.manager.List()
	if err != nil {
		h.log.Error("backup_list_failed", zap.Error(err))
		respondJSONError(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to list backups")
		return
	}
	respondJSON(w, http.StatusOK, ListBackupsResponse{Backups: snaps, Total: len(snaps)})
}

// RunBackup writes a snapshot now
func (h *BackupHandler) RunBackup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), backupRunTimeout)
	defer cancel()

	snap, err := h.manager.Run(ctx)
	if err != nil {
		h.log.Error("backup_run_failed", zap.Error(err))
		respondJSONError(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to write backup")
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

// RestoreBackup replaces every task with the contents of the named snapshot
func (h *BackupHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !backup.IsSnapshotName(name) {
		respondJSONError(w, r, http.StatusBadRequest, "Bad Request", "Invalid backup name")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), backupRunTimeout)
	defer cancel()

	if err := h.manager.Restore(ctx, name); err != nil {
		switch {
		case errors.Is(err, backup.ErrNotFound):
			respondJSONError(w, r, http.StatusNotFound, "Not Found", "Backup not found")
		case errors.Is(err, models.ErrImportFormat):
			respondJSONError(w, r, http.StatusUnprocessableEntity, "Unprocessable Entity", "Backup does not contain a task list")
		default:
			h.log.Error("backup_restore_failed", zap.String("name", name), zap.Error(err))
			respondJSONError(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to restore backup")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
