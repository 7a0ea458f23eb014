package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/cloud"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/config"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/database"
	httpHandlers "github.com/ANIKETSHETTY47/price-plan-comparator/internal/http"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/repository"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	ctx := context.Background()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	catalog, err := config.PricePlans()
	if err != nil {
		log.Fatal().Err(err).Msg("price plans invalid")
	}

	var store service.ReadingStore
	switch config.ReadingStore() {
	case config.StorePostgres:
		db, err := database.Connect(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("db connect failed")
		}
		defer db.Close()

		repos := repository.New(db)
		if err := repos.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("db schema failed")
		}
		catalog, err = repos.Catalog(ctx, catalog)
		if err != nil {
			log.Fatal().Err(err).Msg("price plans load failed")
		}
		store = repos
	case config.StoreDynamoDB:
		store, err = cloud.NewDynamoDBStore(ctx, config.AWSRegion(), config.DynamoDBTable())
		if err != nil {
			log.Fatal().Err(err).Msg("dynamodb init failed")
		}
	default:
		mem := repository.NewMemoryStore()
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		ids := repository.MeterIDs(config.SeedMeters())
		if err := repository.Seed(ctx, mem, ids, config.SeedReadings(), time.Now(), rnd); err != nil {
			log.Fatal().Err(err).Msg("seed failed")
		}
		seeded, err := mem.Meters(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("list seeded meters")
		}
		log.Info().Strs("meters", seeded).Msg("seeded in-memory readings")
		store = mem
	}

	svcs := service.New(store, catalog, config.MQTTTopic())

	if config.UseCloudServices() {
		s3c, err := cloud.NewS3Client(ctx, config.AWSRegion(), config.S3Bucket())
		if err != nil {
			log.Fatal().Err(err).Msg("s3 init failed")
		}
		var notifier service.Notifier
		if arn := config.SNSTopicArn(); arn != "" {
			snsc, err := cloud.NewSNSClient(ctx, config.AWSRegion(), arn)
			if err != nil {
				log.Fatal().Err(err).Msg("sns init failed")
			}
			notifier = snsc
		}
		svcs.EnableReports(s3c, notifier)
	}

	app := fiber.New()
	httpHandlers.Register(app, svcs)

	addr := config.APIAddr()
	if addr == "" {
		addr = ":8080"
	}
	log.Info().Str("addr", addr).Int("plans", catalog.Len()).Str("store", config.ReadingStore()).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
