package main

import (
	"flag"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"

	"github.com/mfigueroa/spotter/configs"
	"github.com/mfigueroa/spotter/internal/cumplo"
	"github.com/mfigueroa/spotter/internal/filters"
	"github.com/mfigueroa/spotter/internal/handler"
	"github.com/mfigueroa/spotter/internal/notifier"
	"github.com/mfigueroa/spotter/internal/repository"
	"github.com/mfigueroa/spotter/internal/router"
	"github.com/mfigueroa/spotter/internal/service"
	"github.com/mfigueroa/spotter/internal/store"
)

func main() {
	cfg := configs.AppLoad()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := gorm.Open(clickhouse.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations and exit")
	flag.Parse()

	if *migrateFlag {
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatalf("Failed to get sql.DB: %v", err)
		}
		if err := goose.SetDialect("clickhouse"); err != nil {
			logger.Fatalf("Goose: failed to set dialect: %v", err)
		}
		logger.Info("Running database migrations...")
		if err := goose.Up(sqlDB, "migrations"); err != nil {
			logger.Fatalf("Goose migration failed: %v", err)
		}
	}

	users, err := store.NewMemoryStoreFromFile(cfg.UsersFile)
	if err != nil {
		logger.Fatalf("Failed to load users: %v", err)
	}

	listing := cumplo.NewGraphQLAPI(cfg.Cumplo, logger)
	detail := cumplo.NewGlobalAPI(cfg.Cumplo, logger)
	supplemental := cumplo.NewHTMLAPI(cfg.Cumplo, logger)
	aggregator := cumplo.NewAggregator(listing, detail, supplemental, cfg.Aggregator, logger)

	publisher := notifier.NewPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic, logger)
	defer publisher.Close()

	fundingRequestsService := service.NewFundingRequestsService(
		aggregator,
		filters.NewEngine(logger),
		users,
		publisher,
		repository.NewGormSnapshotRepository(db),
		logger,
	)
	fundingRequestsHandler := handler.NewFundingRequestsHandler(fundingRequestsService)

	routerConfig := &router.Config{
		FundingRequestsHandler: fundingRequestsHandler,
	}

	router := router.NewRouter(routerConfig)

	router.Run(fmt.Sprintf(":%s", cfg.ServerPort))
}
