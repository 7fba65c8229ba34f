package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	recordstore "github.com/homeandown/estatehub/internal/app/store/records"
	"github.com/homeandown/estatehub/internal/app/system/export"
	"github.com/homeandown/estatehub/internal/app/system/tableview"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/spf13/cobra"
)

const defaultMaxRows = 50000

type exportRequest struct {
	Kind    models.Kind
	Format  string
	Filter  tableview.FilterState
	MaxRows int64
}

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Export a table as CSV or XLSX",
		Long: `Export the filtered rows of one table.

Kinds: users, properties, bookings, inquiries, notifications,
assignments, sellers. Filters match the portal's table view; "all" or an
empty value leaves an axis unconstrained.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := exportRequestFromFlags(cmd, args[0])
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" && req.Format == export.FormatXLSX {
				return fmt.Errorf("--out is required for xlsx")
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var buf bytes.Buffer
			ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.Export())
			defer cancel()
			n, truncated, err := writeExport(ctx, &buf, recordstore.New(s.DB, s.Log), req)
			if err != nil {
				return err
			}
			if truncated {
				fmt.Fprintf(cmd.ErrOrStderr(),
					"warning: %s holds more than %d rows; only the newest were exported (use --max-rows 0 for all)\n",
					req.Kind, req.MaxRows)
			}

			if out == "" {
				_, err = buf.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().String("format", export.FormatCSV, "csv or xlsx")
	cmd.Flags().String("search", "", "case-insensitive text search")
	cmd.Flags().String("status", tableview.All, "status filter")
	cmd.Flags().String("user-type", tableview.All, "user type filter")
	cmd.Flags().String("listing-type", tableview.All, "listing type filter (SALE or RENT)")
	cmd.Flags().Int64("max-rows", defaultMaxRows, "read at most this many rows (0 reads all)")
	cmd.Flags().StringP("out", "o", "", "output file (csv defaults to stdout)")
	return cmd
}

func exportRequestFromFlags(cmd *cobra.Command, rawKind string) (exportRequest, error) {
	kind, ok := models.ParseKind(rawKind)
	if !ok {
		return exportRequest{}, fmt.Errorf("unknown kind %q", rawKind)
	}
	rawFormat, _ := cmd.Flags().GetString("format")
	format, ok := export.ParseFormat(rawFormat)
	if !ok {
		return exportRequest{}, fmt.Errorf("unsupported format %q", rawFormat)
	}
	search, _ := cmd.Flags().GetString("search")
	status, _ := cmd.Flags().GetString("status")
	userType, _ := cmd.Flags().GetString("user-type")
	listingType, _ := cmd.Flags().GetString("listing-type")
	maxRows, _ := cmd.Flags().GetInt64("max-rows")

	return exportRequest{
		Kind:   kind,
		Format: format,
		Filter: tableview.FilterState{
			Search:      search,
			Status:      status,
			UserType:    userType,
			ListingType: strings.ToUpper(listingType),
		},
		MaxRows: maxRows,
	}, nil
}

// writeExport loads, filters and encodes one table. It returns the number
// of rows written and whether the row cap left older rows out.
func writeExport(ctx context.Context, w io.Writer, loader recordstore.Loader, req exportRequest) (int, bool, error) {
	records, truncated, err := recordstore.Capped(ctx, loader, req.Kind, req.MaxRows)
	if err != nil {
		return 0, false, fmt.Errorf("load %s: %w", req.Kind, err)
	}
	filtered := tableview.ApplyFilters(records, req.Filter)

	switch req.Format {
	case export.FormatXLSX:
		err = export.XLSX(w, title(req.Kind), filtered)
	default:
		err = export.CSV(w, filtered)
	}
	if err != nil {
		return 0, truncated, err
	}
	return len(filtered), truncated, nil
}

func title(k models.Kind) string {
	switch k {
	case models.KindAssignment:
		return "Agent Assignments"
	case models.KindSeller:
		return "Seller Approvals"
	case models.KindProperty:
		return "Properties"
	case models.KindInquiry:
		return "Inquiries"
	default:
		s := string(k)
		return strings.ToUpper(s[:1]) + s[1:] + "s"
	}
}
