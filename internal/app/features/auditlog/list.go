package auditlog

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	"github.com/homeandown/estatehub/internal/app/store/audit"
	"github.com/homeandown/estatehub/internal/app/system/paging"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

// ServeList handles GET /audit with category, event_type, table,
// start_date, end_date (YYYY-MM-DD, inclusive) and page filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	category := query.Get(r, "category")
	eventType := query.Get(r, "event_type")
	table := query.Get(r, "table")
	startDate := query.Get(r, "start_date")
	endDate := query.Get(r, "end_date")
	page := paging.ParsePage(r)

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Table:     table,
	}
	if t, err := time.Parse("2006-01-02", startDate); err == nil {
		filter.StartTime = &t
	}
	if t, err := time.Parse("2006-01-02", endDate); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &end
	}

	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events failed", err, "A database error occurred.")
		return
	}
	totalPages := paging.TotalPages(int(total), pageSize)
	page = paging.Clamp(page, totalPages)
	filter.Limit = pageSize
	filter.Offset = int64((page - 1) * pageSize)

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events failed", err, "A database error occurred.")
		return
	}

	names := h.resolveNames(ctx, events)
	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:        e.ID.Hex(),
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			Table:     e.Table,
			RecordID:  e.RecordID,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		}
		if e.ActorID != nil {
			item.ActorName = nameOr(names, *e.ActorID)
		}
		if e.UserID != nil {
			item.TargetName = nameOr(names, *e.UserID)
		}
		items = append(items, item)
	}

	rng := paging.ComputeRange(page, pageSize, int(total))
	uierrors.WriteJSON(w, http.StatusOK, listData{
		Items:      items,
		Category:   category,
		EventType:  eventType,
		Table:      table,
		StartDate:  startDate,
		EndDate:    endDate,
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(category),
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		RangeStart: rng.Start,
		RangeEnd:   rng.End,
		PrevPage:   rng.PrevPage,
		NextPage:   rng.NextPage,
	})
}

// resolveNames maps the actor and target ids of events to display names.
// A lookup failure only costs the names.
func (h *Handler) resolveNames(ctx context.Context, events []audit.Event) map[primitive.ObjectID]string {
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id != nil && !seen[*id] {
				seen[*id] = true
				ids = append(ids, *id)
			}
		}
	}
	out := map[primitive.ObjectID]string{}
	if len(ids) == 0 {
		return out
	}
	refs, err := h.Users.Refs(ctx, ids)
	if err != nil {
		h.Log.Warn("audit name lookup failed", zap.Error(err))
		return out
	}
	for id, ref := range refs {
		out[id] = ref.FullName()
	}
	return out
}

func nameOr(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id.Hex()
}
