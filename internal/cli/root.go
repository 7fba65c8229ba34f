// Package cli is the estatectl operator tool: dashboard figures and table
// exports straight from the database, without the web portal.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const AppName = "estatectl"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "estatectl - operator tool for the EstateHub portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("mongo-uri", envOr("ESTATEHUB_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	cmd.PersistentFlags().String("database", envOr("ESTATEHUB_MONGO_DATABASE", "estate_hub"), "MongoDB database name")
	cmd.PersistentFlags().Bool("verbose", false, "log queries that fail")

	cmd.AddCommand(
		NewStatsCmd(),
		NewExportCmd(),
	)
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// session is an open database plus the logger commands report through.
type session struct {
	DB  *mongo.Database
	Log *zap.Logger

	client *mongo.Client
}

func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()
	_ = s.client.Disconnect(ctx)
	_ = s.Log.Sync()
}

func openSession(cmd *cobra.Command) (*session, error) {
	uri, _ := cmd.Flags().GetString("mongo-uri")
	name, _ := cmd.Flags().GetString("database")
	verbose, _ := cmd.Flags().GetBool("verbose")

	log := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		log = l
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.Medium())
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName(AppName))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	return &session{DB: client.Database(name), Log: log, client: client}, nil
}
