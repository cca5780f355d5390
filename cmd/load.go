package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"media-inventory/core/config"
	"media-inventory/core/database"
	"media-inventory/core/logger"
	"media-inventory/core/output"
	"media-inventory/core/storage"
	dumploader "media-inventory/feature/inventory/loader"
	"media-inventory/feature/inventory/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadCmd loads a device dump into the inventory.
var loadCmd = &cobra.Command{
	Use:   "load <device-slug> <dump-path>",
	Short: "Load a device dump into the inventory",
	Long: `Load reconciles a dump file produced by the external scanner against the
persisted inventory for the given device slug. Directories whose checksum is
unchanged are skipped, everything else is created or updated in bulk.

Cover image paths from the dump are resolved against the dump file's own
directory.`,
	Args: cobra.ExactArgs(2),
	RunE: runLoad,
}

func init() {
	RootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	deviceSlug := args[0]
	dumpPath := args[1]

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()

	payload, err := os.ReadFile(dumpPath)
	if err != nil {
		return fmt.Errorf("unable to read dump source: %w", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(&models.Device{}, &models.Directory{}, &models.MediaFile{}); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	ldr, err := dumploader.New(db, output.NewZapSink(logg), cfg.Loader)
	if err != nil {
		return err
	}

	// Cover storage is optional: without it covers stay local references.
	if client, err := storage.NewClient(cfg.Storage); err != nil {
		logg.Warn("Cover storage unavailable, keeping local cover paths", zap.Error(err))
	} else {
		ldr.SetCoverStorage(client, cfg.Storage.Bucket)
	}

	logg.Info("Opening dump", zap.String("path", dumpPath))

	return ldr.Load(ctx, deviceSlug, payload, filepath.Dir(dumpPath))
}
