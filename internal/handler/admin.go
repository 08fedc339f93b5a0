package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/spacequiz/internal/bank"
)

const maxUploadSize = 10 << 20

type uploadResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
	Count  int    `json:"count"`
}

type validationResponse struct {
	Error  string       `json:"error"`
	Issues []bank.Issue `json:"issues,omitempty"`
}

// handleUploadBank imports a bank file sent as the "bank_file" form field.
// The optional "id" field overrides the ID derived from the file name.
func (h *Handler) handleUploadBank(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("bank_file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.FormValue("id"))
	if id == "" {
		id = bank.IDFromPath(header.Filename)
	}

	hashBytes := sha256.Sum256(data)
	hash := hex.EncodeToString(hashBytes[:])

	storedHash, err := h.store.UploadHash(id)
	if err != nil {
		slog.Error("failed to check import status", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if storedHash == hash {
		writeJSON(w, http.StatusOK, uploadResponse{Status: "unchanged", ID: id})
		return
	}

	b, err := bank.ParseAs(data, header.Filename, id)
	if err != nil {
		resp := validationResponse{Error: err.Error()}
		var verr *bank.ValidationError
		if errors.As(err, &verr) {
			resp.Issues = verr.Issues
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	if err := h.store.UpsertBank(r.Context(), b); err != nil {
		slog.Error("failed to store bank", "id", id, "error", err)
		http.Error(w, "failed to store bank: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.store.SetUploadHash(id, hash); err != nil {
		slog.Error("failed to record import", "error", err)
	}

	slog.Info("uploaded bank via admin", "filename", header.Filename, "id", id, "count", b.Count())
	writeJSON(w, http.StatusCreated, uploadResponse{Status: "imported", ID: id, Count: b.Count()})
}

func (h *Handler) handleDeleteBank(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bankID")
	ok, err := h.store.DeleteBank(r.Context(), id)
	if err != nil {
		slog.Error("failed to delete bank", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "bank not found", http.StatusNotFound)
		return
	}
	if err := h.store.ClearUploadHash(id); err != nil {
		slog.Error("failed to clear import record", "id", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
