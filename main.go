package main

import (
	"context"
	"flag"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/angelop-1602/rec-review-api/api"
	"github.com/angelop-1602/rec-review-api/review"
	"github.com/angelop-1602/rec-review-api/schema"
	"github.com/angelop-1602/rec-review-api/store"
	"github.com/angelop-1602/rec-review-api/utils"
	"github.com/angelop-1602/rec-review-api/watch"
)

func initViper(configFile string) {
	viper.SetConfigFile(configFile)
	viper.SetEnvPrefix("rec")
	viper.AutomaticEnv()

	viper.SetDefault("port", "8087")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("mongo.conn", "mongodb://127.0.0.1:27017/?compressors=disabled")
	viper.SetDefault("mongo.database", "rec-review")
	viper.SetDefault("i18n.dir", "./i18n")
	viper.SetDefault("expiry.interval", "1h")

	if err := viper.ReadInConfig(); err != nil {
		log.WithError(err).Warn("fail to read config file, using defaults and environment")
	}
}

func initLog() {
	level, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
}

// runExpirySweeper periodically moves overdue protocols into the expired
// status as the system actor.
func runExpirySweeper(reviewStore store.ReviewStore, interval time.Duration) {
	for range time.Tick(interval) {
		expired, err := reviewStore.ExpireOverdueProtocols(time.Now())
		if err != nil {
			log.WithError(err).Error("expiry sweep failed")
			continue
		}
		if expired > 0 {
			log.WithField("expired", expired).Info("protocols expired by deadline sweep")
		}
	}
}

func main() {
	var configFile string
	flag.StringVar(&configFile, "c", "./config.yaml", "path to the configuration file")
	flag.Parse()

	initViper(configFile)
	initLog()

	if err := utils.LoadMessageBundle(viper.GetString("i18n.dir")); err != nil {
		log.WithError(err).Fatal("load i18n messages")
	}

	connURI := viper.GetString("mongo.conn")
	database := viper.GetString("mongo.database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connURI))
	if err != nil {
		log.WithError(err).Fatal("connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.WithError(err).Fatal("ping mongo")
	}

	if err := schema.NewMongoDBIndexer(connURI, database).IndexAll(); err != nil {
		log.WithError(err).Fatal("create mongo indexes")
	}

	reviewStore := store.NewMongoStore(client, database)
	hub := watch.NewHub(watch.NewMongoSource(client, database, reviewStore))
	cards := review.NewCardService(reviewStore)

	go runExpirySweeper(reviewStore, viper.GetDuration("expiry.interval"))

	server := api.NewServer(reviewStore, cards, hub)
	server.SetTraceMode(viper.GetBool("log.trace"))

	log.WithField("port", viper.GetString("port")).Info("starting rec review api")
	log.Fatal(server.Run(":" + viper.GetString("port")))
}
