package main

import (
	"encoding/json"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/config"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/repository"
)

func main() {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	meters := repository.MeterIDs(config.SeedMeters())
	if len(meters) == 0 {
		log.Fatal().Msg("SEED_METERS must be positive")
	}
	for i := 0; i < 100; i++ {
		batch := domain.MeterReadings{
			SmartMeterID:        meters[i%len(meters)],
			ElectricityReadings: repository.GenerateReadings(5, time.Now(), rnd),
		}
		payload, err := json.Marshal(batch)
		if err != nil {
			log.Fatal().Err(err).Msg("marshal readings")
		}
		token := client.Publish(config.MQTTTopic(), 0, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Error().Err(err).Str("meter", batch.SmartMeterID).Msg("publish failed")
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Info().Msg("simulation done")
}
