package tables

import (
	"fmt"
	"strings"

	"github.com/homeandown/estatehub/internal/app/system/paging"
	"github.com/homeandown/estatehub/internal/app/system/tableview"
	"github.com/homeandown/estatehub/internal/domain/models"
)

type column struct {
	Key    string `json:"key"`
	Header string `json:"header"`
}

type row struct {
	ID    string   `json:"id"`
	Cells []string `json:"cells"`
}

type listData struct {
	Title          string                `json:"title"`
	Kind           models.Kind           `json:"kind"`
	Columns        []column              `json:"columns"`
	Rows           []row                 `json:"rows"`
	Filter         tableview.FilterState `json:"filter"`
	Page           int                   `json:"page"`
	PerPage        int                   `json:"per_page"`
	PerPageOptions []int                 `json:"per_page_options"`
	TotalPages     int                   `json:"total_pages"`
	Total          int                   `json:"total"`
	Showing        string                `json:"showing"`
	PrevPage       int                   `json:"prev_page"`
	NextPage       int                   `json:"next_page"`
	Empty          bool                  `json:"empty"`
	EmptyMessage   string                `json:"empty_message,omitempty"`
	Printable      bool                  `json:"printable"`
	Truncated      bool                  `json:"truncated,omitempty"`
	Warnings       []string              `json:"warnings,omitempty"`
}

func newListData(title string, kind models.Kind, cols []tableview.ColumnSpec, f tableview.FilterState, res tableview.Result) listData {
	d := listData{
		Title:          title,
		Kind:           kind,
		Columns:        make([]column, len(cols)),
		Rows:           make([]row, len(res.Rows)),
		Filter:         f,
		Page:           res.Page,
		PerPage:        res.PerPage,
		PerPageOptions: paging.PerPageOptions,
		TotalPages:     res.TotalPages,
		Total:          res.Total,
		Showing:        fmt.Sprintf("Showing %d to %d of %d entries", res.Range.Start, res.Range.End, res.Range.Total),
		PrevPage:       res.Range.PrevPage,
		NextPage:       res.Range.NextPage,
		Empty:          res.Empty(),
		Printable:      true,
	}
	for i, c := range cols {
		d.Columns[i] = column{Key: c.Key, Header: c.Header}
	}
	for i, rec := range res.Rows {
		d.Rows[i] = row{ID: rec.RecordID(), Cells: tableview.RenderRow(rec, cols)}
	}
	if d.Empty {
		d.EmptyMessage = "No " + strings.ToLower(title) + " found."
	}
	return d
}
