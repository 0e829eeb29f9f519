// Command shipctl administers the shipment service from a terminal. It talks
// to the database directly and uses the same services as the HTTP API.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/auth"
	"github.com/Mtaasisi/POS-sub062/internal/config"
	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/internal/events"
	"github.com/Mtaasisi/POS-sub062/internal/repository"
	"github.com/Mtaasisi/POS-sub062/internal/repository/postgres"
	"github.com/Mtaasisi/POS-sub062/internal/service"
)

var (
	actorName string
	cfg       *config.Config
	db        *sql.DB
	repos     *repository.Repositories
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "shipctl",
	Short:         "Administer shipments, API clients and tokens",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&actorName, "actor", "shipctl", "name recorded as the actor of writes")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openRepos connects to the configured database on first use
func openRepos() (*repository.Repositories, error) {
	if repos != nil {
		return repos, nil
	}
	var err error
	db, err = postgres.NewConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repos = postgres.NewRepositories(db, logger)
	return repos, nil
}

func shipmentService() (*service.ShipmentService, error) {
	r, err := openRepos()
	if err != nil {
		return nil, err
	}
	tracking, err := service.NewSnowflakeTracking(cfg.TrackingNodeID)
	if err != nil {
		return nil, err
	}
	// status changes made here are not announced on the event stream
	return service.NewShipmentService(r, events.NopPublisher{}, tracking, logger), nil
}

// actorContext attributes writes to the --actor name. The id is derived from
// the name so repeated runs share one identity.
func actorContext(ctx context.Context) context.Context {
	return auth.WithActor(ctx, &domain.Actor{
		ID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte("shipctl:"+actorName)),
		Name: actorName,
		Role: "admin",
	})
}
