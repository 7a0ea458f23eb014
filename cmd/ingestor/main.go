package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/cloud"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/config"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/database"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/repository"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
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
		store = repos
	case config.StoreDynamoDB:
		dynamo, err := cloud.NewDynamoDBStore(ctx, config.AWSRegion(), config.DynamoDBTable())
		if err != nil {
			log.Fatal().Err(err).Msg("dynamodb init failed")
		}
		store = dynamo
	default:
		log.Fatal().Str("store", config.ReadingStore()).Msg("ingestor needs a shared reading store (postgres or dynamodb)")
	}

	readings := service.NewReadingService(store, config.MQTTTopic())

	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		if err := readings.FromMQTT(msg.Topic(), msg.Payload()); err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("ingest failed")
		}
	}

	filters := map[string]byte{
		readings.Topic():        0,
		readings.Topic() + "/+": 0,
	}
	if token := client.SubscribeMultiple(filters, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	log.Info().Str("topic", readings.Topic()).Msg("ingestor running; Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("ingestor stopping")
}
