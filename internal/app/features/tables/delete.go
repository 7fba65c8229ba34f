package tables

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	recordstore "github.com/homeandown/estatehub/internal/app/store/records"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrConfirmationRequired is returned to clients that delete without
// confirm=yes.
var ErrConfirmationRequired = errors.New("confirmation required")

// ServeDelete handles DELETE /tables/{kind}/{id}?confirm=yes. Without the
// confirmation nothing is deleted and the answer is 409.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	kind, m, ok := h.kind(w, r, chi.URLParam(r, "kind"))
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid record ID.")
		return
	}
	if query.Get(r, "confirm") != "yes" {
		uierrors.Write(w, http.StatusConflict, ErrConfirmationRequired.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	switch err := h.Records.Delete(ctx, kind, id); {
	case errors.Is(err, recordstore.ErrNotFound):
		uierrors.RenderNotFound(w, r, "Record not found.")
		return
	case errors.Is(err, recordstore.ErrNotDeletable):
		uierrors.Write(w, http.StatusMethodNotAllowed, "Records of this kind cannot be deleted.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "delete failed", err, "A database error occurred.")
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	h.Audit.RecordDeleted(r.Context(), r, uid.Hex(), m.Table, id.Hex())
	h.refresh(r.Context(), realtime.Event{Table: m.Table, Event: realtime.Delete, ID: id.Hex()})

	w.WriteHeader(http.StatusNoContent)
}
