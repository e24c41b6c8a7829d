// internal/app/features/speakup/attachment.go
package speakupfeature

import (
	"context"
	"errors"
	"io"
	"net/http"

	speakupstore "github.com/Sherifrax/speakup-sub001/internal/app/store/speakup"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/jsonutil"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxUploadBytes caps attachment uploads.
const maxUploadBytes = 10 << 20 // 10 MB

// attachmentPath is where an attachment's bytes live in file storage. The
// path is derived from the server-assigned id, never from client input.
func attachmentPath(id primitive.ObjectID) string {
	return "speakup/attachments/" + id.Hex()
}

// HandleUploadAttachment handles POST speakup/attachment - store the file
// bytes and return the reference the draft carries into save. The entry
// itself is not touched; an upload that is never saved is just an orphan
// blob.
func (h *Handler) HandleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, ok := scope(r); !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonutil.BadRequest(w, "a file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := primitive.NewObjectID()
	if err := h.Files.Put(ctx, attachmentPath(id), file, &storage.PutOptions{
		ContentType: contentType,
	}); err != nil {
		h.Log.Error("attachment upload failed", zap.Error(err))
		jsonutil.InternalError(w, "upload failed")
		return
	}

	h.Log.Info("speakup attachment uploaded",
		zap.String("attachment_id", id.Hex()),
		zap.String("name", header.Filename),
		zap.Int64("size", header.Size))

	jsonutil.OK(w, AttachmentRef{
		ID:          id.Hex(),
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: contentType,
	})
}

// HandleDownloadAttachment handles GET speakup/attachment/{id}. The file is
// only served through the entry that references it, so scope rules apply.
func (h *Handler) HandleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sc, ok := scope(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, "attachment not found")
		return
	}

	store := speakupstore.New(h.DB)
	entry, err := store.GetByAttachmentID(ctx, sc, id)
	if err != nil {
		switch {
		case errors.Is(err, speakupstore.ErrNotFound):
			jsonutil.NotFound(w, "attachment not found")
		case errors.Is(err, speakupstore.ErrForbidden):
			jsonutil.Forbidden(w, "entry belongs to another reporter")
		default:
			h.Log.Error("attachment lookup failed", zap.Error(err))
			jsonutil.InternalError(w, "download failed")
		}
		return
	}

	rc, err := h.Files.Get(ctx, entry.Attachment.StoragePath)
	if err != nil {
		h.Log.Error("attachment read failed",
			zap.String("attachment_id", id.Hex()),
			zap.Error(err))
		jsonutil.NotFound(w, "attachment not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", entry.Attachment.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+entry.Attachment.Name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warn("attachment stream interrupted", zap.Error(err))
	}
}
