package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/dmitrivolkov/safety-management/internal/core/events"
	directoryPostgres "github.com/dmitrivolkov/safety-management/internal/directory/postgres"
	"github.com/dmitrivolkov/safety-management/internal/equipment"
	equipmentPostgres "github.com/dmitrivolkov/safety-management/internal/equipment/postgres"
	"github.com/dmitrivolkov/safety-management/pkg/logger"
)

var (
	notifyWithinDays int

	notifyCmd = &cobra.Command{
		Use:   "notify",
		Short: "Publish maintenance due notifications",
		Long:  `Sweep the equipment inventory and publish a due event for every item whose next maintenance falls within the window. Meant to run from cron.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(".")
			if err != nil {
				log.Fatalf("failed to load config: %v", err)
			}

			logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)
			lg := logger.L()

			db, err := initGormDB(cfg.Database)
			if err != nil {
				log.Fatalf("failed to init db: %v", err)
			}

			eventBus := events.NewEventBus(lg)
			equipment.NewEventHandler(lg).RegisterEventHandlers(eventBus)

			svc := equipment.NewService(
				equipmentPostgres.NewEquipmentRepository(db),
				directoryPostgres.NewDirectoryRepository(db),
				eventBus,
				lg,
			)

			count, err := svc.PublishDueNotifications(context.Background(), notifyWithinDays)
			if err != nil {
				log.Fatalf("notification sweep failed: %v", err)
			}
			lg.Info("notification sweep finished", "published", count, "within_days", notifyWithinDays)
		},
	}
)

func init() {
	notifyCmd.Flags().IntVar(&notifyWithinDays, "within-days", 30, "notification window in days")
}
