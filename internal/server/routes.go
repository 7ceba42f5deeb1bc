package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nhanvu/docchat/internal/docstore"
	"github.com/nhanvu/docchat/internal/extract"
	"github.com/nhanvu/docchat/internal/rag"
)

type uploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Message  string `json:"message"`
}

type listFilesResponse struct {
	Files []docstore.Document `json:"files"`
}

type chatRequest struct {
	Text         string   `json:"text"`
	ContextFiles []string `json:"context_files,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleUpload accepts one multipart file, extracts its text, indexes it
// and registers it. Re-uploading an existing filename replaces the
// previous version. Nothing is kept if any step fails.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte upload limit", s.cfg.Upload.MaxBytes))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !s.cfg.AllowedExtension(ext) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("file type %q is not supported", ext))
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir(), 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	dest := filepath.Join(s.cfg.UploadDir(), filename)

	out, err := os.Create(dest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	size, err := io.Copy(out, file)
	out.Close()
	if err != nil {
		os.Remove(dest)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	text, err := extract.Text(dest)
	if err != nil {
		os.Remove(dest)
		log.Printf("server: extracting %s: %v", filename, err)
		writeError(w, http.StatusUnprocessableEntity, "could not extract text from file")
		return
	}

	// Replace semantics: drop the previous version's chunks before
	// indexing the new ones.
	exists, err := s.docs.Exists(ctx, filename)
	if err != nil {
		os.Remove(dest)
		writeError(w, http.StatusInternalServerError, "failed to check existing document")
		return
	}
	if exists {
		if err := s.rag.Delete(ctx, filename); err != nil {
			os.Remove(dest)
			log.Printf("server: removing stale chunks of %s: %v", filename, err)
			writeError(w, http.StatusInternalServerError, "failed to replace existing document")
			return
		}
	}

	if err := s.rag.Ingest(ctx, text, filename); err != nil {
		os.Remove(dest)
		if errors.Is(err, rag.ErrEmptyDocument) {
			writeError(w, http.StatusUnprocessableEntity, "document contains no indexable text")
			return
		}
		log.Printf("server: indexing %s: %v", filename, err)
		writeError(w, http.StatusInternalServerError, "failed to index document")
		return
	}

	doc := docstore.Document{
		Filename:    filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        size,
		Text:        text,
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		log.Printf("server: registering %s: %v", filename, err)
		// Unwind the index and the stored file: an unregistered document
		// is invisible to the files API yet would stay retrievable.
		if delErr := s.rag.Delete(ctx, filename); delErr != nil {
			log.Printf("server: unwinding index for %s: %v", filename, delErr)
		}
		os.Remove(dest)
		writeError(w, http.StatusInternalServerError, "failed to register document")
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		Filename: filename,
		Size:     size,
		Message:  "file uploaded and indexed",
	})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []docstore.Document{}
	}
	writeJSON(w, http.StatusOK, listFilesResponse{Files: docs})
}

// handleDeleteFile removes a document everywhere: index, registry and
// the stored upload.
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filename := filepath.Base(chi.URLParam(r, "filename"))

	if err := s.docs.Delete(ctx, filename); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	if err := s.rag.Delete(ctx, filename); err != nil {
		log.Printf("server: removing chunks of %s: %v", filename, err)
		writeError(w, http.StatusInternalServerError, "failed to remove document from index")
		return
	}

	if err := os.Remove(filepath.Join(s.cfg.UploadDir(), filename)); err != nil && !os.IsNotExist(err) {
		log.Printf("server: removing upload %s: %v", filename, err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	answer, err := s.rag.Answer(r.Context(), req.Text, req.ContextFiles)
	if err != nil {
		log.Printf("server: answering chat: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to generate answer")
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
