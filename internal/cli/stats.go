package cli

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/homeandown/estatehub/internal/app/store/gateway"
	metricsstore "github.com/homeandown/estatehub/internal/app/store/metrics"
	"github.com/homeandown/estatehub/internal/app/system/stats"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard aggregate as JSON",
		Long: `Print the admin dashboard aggregate as JSON.

Sub-queries that fail are reported as 0 and listed under "degraded".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.Long())
			defer cancel()
			return writeStats(ctx, cmd.OutOrStdout(), gateway.New(s.DB), time.Now(), s.Log)
		},
	}
	return cmd
}

type statsOutput struct {
	Stats    stats.Aggregate `json:"stats"`
	Window   stats.Window    `json:"window"`
	Degraded []string        `json:"degraded"`
}

func writeStats(ctx context.Context, w io.Writer, gw gateway.Gateway, now time.Time, log *zap.Logger) error {
	win := stats.WindowAt(now)
	in, degraded := metricsstore.FetchDashboardInputs(ctx, gw, win, log, nil)
	if degraded == nil {
		degraded = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(statsOutput{Stats: stats.Compute(in), Window: win, Degraded: degraded})
}
