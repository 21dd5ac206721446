package grids

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	gridiodomain "relief-grid-go/internal/domain/gridio"
	commonhandler "relief-grid-go/internal/transport/httpserver/handler/common"
	"relief-grid-go/internal/transport/httpserver/middleware"
)

const maxImportBytes = 10 << 20

func (h *Handlers) ExportGrids(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	format, err := gridiodomain.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.export", err)
		return
	}

	rows, err := h.GridIO.Export(r.Context(), actor)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.export", err, "actor_id", actor.ID)
		return
	}
	h.writeFile(w, format, "grids", rows)
}

// Template is the header row alone, ready to fill in.
func (h *Handlers) Template(w http.ResponseWriter, r *http.Request) {
	format, err := gridiodomain.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.template", err)
		return
	}
	h.writeFile(w, format, "grids-template", nil)
}

func (h *Handlers) ImportGrids(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	body, format, err := importBody(r)
	if err != nil {
		h.log.BusinessError("grids.import: unreadable upload", err, "actor_id", actor.ID)
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidFile, err.Error())
		return
	}
	defer body.Close()

	records, err := gridiodomain.Decode(format, body)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.import", err, "actor_id", actor.ID)
		return
	}

	result, err := h.GridIO.Import(r.Context(), actor, records)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.import", err, "actor_id", actor.ID)
		return
	}

	h.log.Info("grids.import: batch done", "actor_id", actor.ID, "created", result.Created, "failed", result.Summary.Failed)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) writeFile(w http.ResponseWriter, format gridiodomain.Format, name string, rows [][]string) {
	var buf bytes.Buffer
	if err := gridiodomain.Encode(format, &buf, rows); err != nil {
		h.log.InternalError("grids.export: encode failed", err, "format", format)
		writeError(w, http.StatusInternalServerError, commonhandler.CodeInternal, "internal error")
		return
	}
	w.Header().Set("Content-Type", gridiodomain.ContentType(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": name + "." + string(format),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// importBody accepts a multipart upload in the "file" field or a raw body.
// The format comes from ?format=, then the file extension, then the
// content type.
func importBody(r *http.Request) (io.ReadCloser, gridiodomain.Format, error) {
	explicit := strings.TrimSpace(r.URL.Query().Get("format"))
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		if explicit == "" {
			explicit = strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
		}
		format, err := gridiodomain.ParseFormat(explicit)
		if err != nil {
			_ = file.Close()
			return nil, "", err
		}
		return file, format, nil
	}

	if explicit == "" && mediaType == gridiodomain.ContentType(gridiodomain.FormatXLSX) {
		explicit = string(gridiodomain.FormatXLSX)
	}
	format, err := gridiodomain.ParseFormat(explicit)
	if err != nil {
		return nil, "", err
	}
	return r.Body, format, nil
}
