// Command notifier periodically publishes every rider's due maintenance
// reminders to the MQTT broker.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ridelog/ridelog/internal/advisor"
	"github.com/ridelog/ridelog/internal/config"
	"github.com/ridelog/ridelog/internal/db"
	"github.com/ridelog/ridelog/internal/garage"
	"github.com/ridelog/ridelog/internal/metrics"
	"github.com/ridelog/ridelog/internal/notify"
	log "github.com/sirupsen/logrus"
)

// runner is the part of *notify.Notifier main drives.
type runner interface {
	Run(ctx context.Context, interval time.Duration) error
}

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.App.ConfigureLogging()

	client, err := db.ConnectMongo(cfg.Mongo.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.DisconnectMongo(client)
	database := client.Database(cfg.Mongo.Database)

	publisher, err := notify.NewMQTTPublisher(mqttOptions(cfg.MQTT))
	if err != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", err)
	}
	defer publisher.Close()

	riders := &db.MongoRiderCollection{Collection: database.Collection(db.RidersCollection)}
	garageService := garage.NewService(db.NewMongoStore(database), advisor.NewLocal(nil), nil)
	n := notify.New(riders, garageService, publisher, nil, metrics.New())

	log.WithFields(log.Fields{
		"broker":   cfg.MQTT.Broker,
		"interval": cfg.Notifier.Interval,
	}).Info("Starting reminder notifier")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, n, cfg.Notifier.Interval); err != nil {
		log.Fatalf("Notifier stopped: %v", err)
	}
	log.Info("Notifier shut down")
}

// run drives the notifier until ctx ends. A cancelled context is a clean
// shutdown.
func run(ctx context.Context, r runner, interval time.Duration) error {
	if err := r.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func mqttOptions(c *config.MQTT) notify.MQTTOptions {
	clientID := c.ClientID
	if host, err := os.Hostname(); err == nil && host != "" {
		clientID += "-" + host
	}
	return notify.MQTTOptions{
		Broker:   c.Broker,
		ClientID: clientID,
		Username: c.Username,
		Password: c.Password,
	}
}
