package tables

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/export"
	"github.com/homeandown/estatehub/internal/app/system/tableview"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// utf8BOM makes spreadsheet apps open the CSV as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// HeaderTruncated is set on a download whose source table held more rows
// than the export cap. Its value is the cap.
const HeaderTruncated = "X-Export-Truncated"

// ServeExport handles GET /tables/{kind}/export?format=csv|xlsx.
// It exports every row that passes the current filters, not only the
// visible page. ?encoding=naive selects the unquoted legacy CSV layout.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	kind, m, ok := h.kind(w, r, chi.URLParam(r, "kind"))
	if !ok {
		return
	}
	format, ok := export.ParseFormat(query.Get(r, "format"))
	if !ok {
		uierrors.RenderBadRequest(w, r, "Unsupported export format.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Export())
	defer cancel()

	records, truncated, err := h.load(ctx, kind)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "export load failed", err, "A database error occurred.")
		return
	}
	filtered := tableview.ApplyFilters(records, filterFromQuery(r))

	var buf bytes.Buffer
	switch {
	case format == export.FormatXLSX:
		err = export.XLSX(&buf, m.Title, filtered)
	case query.Get(r, "encoding") == "naive":
		buf.Write(utf8BOM)
		err = export.NaiveCSV(&buf, filtered)
	default:
		buf.Write(utf8BOM)
		err = export.CSV(&buf, filtered)
	}
	h.Metrics.Export(format, len(filtered), err)
	if errors.Is(err, export.ErrNoData) {
		uierrors.RenderBadRequest(w, r, "No data to export")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "export failed", err, "Export failed.")
		return
	}

	_, _, uid, _ := authz.UserCtx(r)
	h.Audit.DataExported(r.Context(), r, uid.Hex(), m.Table, format, len(filtered))
	h.Log.Info("table exported",
		zap.String("kind", string(kind)),
		zap.String("format", format),
		zap.Int("rows", len(filtered)),
		zap.Bool("truncated", truncated))

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(m.Title, format)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if truncated {
		w.Header().Set(HeaderTruncated, strconv.FormatInt(h.MaxRows, 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
