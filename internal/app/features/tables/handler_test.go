package tables_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	"github.com/homeandown/estatehub/internal/app/features/tables"
	recordstore "github.com/homeandown/estatehub/internal/app/store/records"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/homeandown/estatehub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeRecords struct {
	data    map[models.Kind][]models.Record
	deleted []primitive.ObjectID
	err     error
}

func (f *fakeRecords) Load(_ context.Context, kind models.Kind, limit int64) ([]models.Record, error) {
	recs := f.data[kind]
	if limit > 0 && int64(len(recs)) > limit {
		recs = recs[:limit]
	}
	return recs, f.err
}

func (f *fakeRecords) Delete(_ context.Context, kind models.Kind, id primitive.ObjectID) error {
	if kind == models.KindSeller {
		return recordstore.ErrNotDeletable
	}
	for i, r := range f.data[kind] {
		if r.RecordID() == id.Hex() {
			f.data[kind] = append(f.data[kind][:i], f.data[kind][i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return recordstore.ErrNotFound
}

func sampleUsers(n int) []models.Record {
	out := make([]models.User, n)
	for i := range out {
		status := models.StatusActive
		if i%2 == 1 {
			status = models.StatusInactive
		}
		out[i] = models.User{
			ID:        primitive.NewObjectID(),
			FirstName: "User",
			LastName:  string(rune('A' + i%26)),
			Email:     strings.ToLower("user" + string(rune('a'+i%26)) + "@example.com"),
			UserType:  models.UserTypeBuyer,
			Status:    status,
		}
	}
	return models.AsRecords(out)
}

func setup(data map[models.Kind][]models.Record) (*tables.Handler, *fakeRecords, *[]realtime.Event) {
	recs := &fakeRecords{data: data}
	events := &[]realtime.Event{}
	log := zap.NewNop()
	h := tables.NewHandler(recs, nil, telemetry.New(),
		func(_ context.Context, ev realtime.Event) { *events = append(*events, ev) },
		10, 50000, uierrors.NewErrorLogger(log), log)
	return h, recs, events
}

func serve(h *tables.Handler, method, target string) *testutil.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/tables/{kind}", h.ServeList)
	r.Get("/tables/{kind}/export", h.ServeExport)
	r.Delete("/tables/{kind}/{id}", h.ServeDelete)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest(method, target, testutil.AdminUser()))
	return rec
}

type listBody struct {
	Title string `json:"title"`
	Rows  []struct {
		ID    string   `json:"id"`
		Cells []string `json:"cells"`
	} `json:"rows"`
	Page         int      `json:"page"`
	PerPage      int      `json:"per_page"`
	TotalPages   int      `json:"total_pages"`
	Total        int      `json:"total"`
	Showing      string   `json:"showing"`
	Empty        bool     `json:"empty"`
	EmptyMessage string   `json:"empty_message"`
	Printable    bool     `json:"printable"`
	Truncated    bool     `json:"truncated"`
	Warnings     []string `json:"warnings"`
}

func TestServeList_PaginatesFilteredSet(t *testing.T) {
	h, _, _ := setup(map[models.Kind][]models.Record{models.KindUser: sampleUsers(30)})

	rec := serve(h, "GET", "/tables/users?status=active&page=2")
	rec.AssertStatus(t, http.StatusOK)

	var body listBody
	rec.DecodeJSON(t, &body)
	assert.Equal(t, "Users", body.Title)
	assert.Equal(t, 15, body.Total)
	assert.Equal(t, 2, body.TotalPages)
	assert.Equal(t, 2, body.Page)
	assert.Len(t, body.Rows, 5)
	assert.Equal(t, "Showing 11 to 15 of 15 entries", body.Showing)
	assert.True(t, body.Printable)
}

func TestServeList_ClampsPageAndPerPage(t *testing.T) {
	h, _, _ := setup(map[models.Kind][]models.Record{models.KindUser: sampleUsers(12)})

	rec := serve(h, "GET", "/tables/users?page=9&per_page=7")
	rec.AssertStatus(t, http.StatusOK)

	var body listBody
	rec.DecodeJSON(t, &body)
	assert.Equal(t, 10, body.PerPage, "unsupported page size falls back to the default")
	assert.Equal(t, 2, body.Page, "page past the end is clamped")
	assert.Len(t, body.Rows, 2)
}

func TestServeList_EmptyState(t *testing.T) {
	h, _, _ := setup(map[models.Kind][]models.Record{})

	rec := serve(h, "GET", "/tables/bookings")
	rec.AssertStatus(t, http.StatusOK)

	var body listBody
	rec.DecodeJSON(t, &body)
	assert.True(t, body.Empty)
	assert.Equal(t, 0, body.TotalPages)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, "No bookings found.", body.EmptyMessage)
	assert.Equal(t, "Showing 0 to 0 of 0 entries", body.Showing)
}

func TestServeList_UnknownKind(t *testing.T) {
	h, _, _ := setup(nil)
	rec := serve(h, "GET", "/tables/widgets")
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeExport_CSVCoversFilteredSet(t *testing.T) {
	h, _, _ := setup(map[models.Kind][]models.Record{models.KindUser: sampleUsers(25)})

	rec := serve(h, "GET", "/tables/users/export?format=csv&status=inactive")
	rec.AssertStatus(t, http.StatusOK)
	assert.Equal(t, `attachment; filename="Users.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	body := rec.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}), "CSV starts with a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(body[3:])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1+12, "header plus every inactive user, not only one page")
	assert.Equal(t, "id", rows[0][0])
}

func TestServeList_FlagsRowCap(t *testing.T) {
	h, _, _ := setup(map[models.Kind][]models.Record{models.KindUser: sampleUsers(30)})
	h.MaxRows = 20

	rec := serve(h, "GET", "/tables/users")
	rec.AssertStatus(t, http.StatusOK)

	var body listBody
	rec.DecodeJSON(t, &body)
	assert.Equal(t, 20, body.Total)
	assert.True(t, body.Truncated)
	require.Len(t, body.Warnings, 1)
	assert.Contains(t, body.Warnings[0], "newest 20 rows")

	h.MaxRows = 30
	rec = serve(h, "GET", "/tables/users")
	var full listBody
	rec.DecodeJSON(t, &full)
	assert.Equal(t, 30, full.Total)
	assert.False(t, full.Truncated)
	assert.Empty(t, full.Warnings)
}

func TestServeExport_MarksRowCap(t *testing.T) {
	h, _, _ := setup(map[models.Kind][]models.Record{models.KindUser: sampleUsers(30)})
	h.MaxRows = 20

	rec := serve(h, "GET", "/tables/users/export?format=csv")
	rec.AssertStatus(t, http.StatusOK)
	assert.Equal(t, "20", rec.Header().Get(tables.HeaderTruncated))

	rows, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes()[3:])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1+20)

	h.MaxRows = 50
	rec = serve(h, "GET", "/tables/users/export?format=csv")
	assert.Empty(t, rec.Header().Get(tables.HeaderTruncated))
}

func TestServeExport_XLSX(t *testing.T) {
	h, _, _ := setup(map[models.Kind][]models.Record{models.KindUser: sampleUsers(3)})

	rec := serve(h, "GET", "/tables/users/export?format=xlsx")
	rec.AssertStatus(t, http.StatusOK)
	assert.Equal(t, `attachment; filename="Users.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Users")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestServeExport_NoData(t *testing.T) {
	h, _, _ := setup(map[models.Kind][]models.Record{models.KindUser: sampleUsers(3)})

	rec := serve(h, "GET", "/tables/users/export?search=nobody-matches-this")
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "No data to export")
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestServeExport_BadFormat(t *testing.T) {
	h, _, _ := setup(map[models.Kind][]models.Record{models.KindUser: sampleUsers(3)})
	rec := serve(h, "GET", "/tables/users/export?format=pdf")
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeDelete_RequiresConfirmation(t *testing.T) {
	users := sampleUsers(2)
	h, recs, events := setup(map[models.Kind][]models.Record{models.KindUser: users})
	id := users[0].RecordID()

	rec := serve(h, "DELETE", "/tables/users/"+id)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "confirmation required")
	assert.Empty(t, recs.deleted)
	assert.Empty(t, *events)

	rec = serve(h, "DELETE", "/tables/users/"+id+"?confirm=yes")
	rec.AssertStatus(t, http.StatusNoContent)
	require.Len(t, recs.deleted, 1)
	assert.Equal(t, id, recs.deleted[0].Hex())
	require.Len(t, *events, 1)
	assert.Equal(t, realtime.Delete, (*events)[0].Event)
	assert.Equal(t, "users", (*events)[0].Table)

	rec = serve(h, "DELETE", "/tables/users/"+id+"?confirm=yes")
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeDelete_SellerProfilesNotDeletable(t *testing.T) {
	h, _, _ := setup(nil)
	rec := serve(h, "DELETE", "/tables/approvals/"+primitive.NewObjectID().Hex()+"?confirm=yes")
	rec.AssertStatus(t, http.StatusMethodNotAllowed)
}
