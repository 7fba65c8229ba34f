package tables

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	recordstore "github.com/homeandown/estatehub/internal/app/store/records"
	"github.com/homeandown/estatehub/internal/app/system/paging"
	"github.com/homeandown/estatehub/internal/app/system/tableview"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.uber.org/zap"
)

// filterFromQuery reads the four filter axes. Missing axes mean "all".
func filterFromQuery(r *http.Request) tableview.FilterState {
	f := tableview.DefaultFilter()
	f.Search = query.Get(r, "search")
	if v := query.Get(r, "status"); v != "" {
		f.Status = v
	}
	if v := query.Get(r, "user_type"); v != "" {
		f.UserType = v
	}
	if v := query.Get(r, "listing_type"); v != "" {
		f.ListingType = v
	}
	return f
}

// load fetches every record of kind, capped at MaxRows. truncated reports
// that older rows were left out, so filters and totals only cover the
// newest MaxRows.
func (h *Handler) load(ctx context.Context, kind models.Kind) (records []models.Record, truncated bool, err error) {
	records, truncated, err = recordstore.Capped(ctx, h.Records, kind, h.MaxRows)
	if truncated {
		h.Log.Warn("table load hit row cap",
			zap.String("kind", string(kind)),
			zap.Int64("max_rows", h.MaxRows))
	}
	return records, truncated, err
}

// truncatedWarning is shown when a table holds more rows than the cap.
func truncatedWarning(maxRows int64) string {
	return fmt.Sprintf("Only the newest %d rows were searched. Older rows are not included.", maxRows)
}

// ServeList handles GET /tables/{kind}.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	kind, m, ok := h.kind(w, r, chi.URLParam(r, "kind"))
	if !ok {
		return
	}
	cols, err := tableview.Columns(kind)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "no columns for kind", err, "This table cannot be displayed.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	records, truncated, err := h.load(ctx, kind)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "table load failed", err, "A database error occurred.")
		return
	}

	v := tableview.NewView(m.Title, paging.ParsePerPage(r, h.DefaultPerPage))
	v.SetFilter(filterFromQuery(r))
	v.SetPage(paging.ParsePage(r))
	res := v.Render(records)

	h.Log.Debug("table served",
		zap.String("kind", string(kind)),
		zap.Int("total", res.Total),
		zap.Int("page", res.Page))

	data := newListData(m.Title, kind, cols, v.Filter, res)
	if truncated {
		data.Truncated = true
		data.Warnings = append(data.Warnings, truncatedWarning(h.MaxRows))
	}
	uierrors.WriteJSON(w, http.StatusOK, data)
}
