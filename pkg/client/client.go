// Package client owns the outbound connections a service may hold. Each
// service wires only what it needs: every service connects to Mongo, the
// postgres pool exists solely for the advisory-lock backend.
package client

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reservd/pkg/logger"
)

type Client struct {
	Mongo    *mongo.Client
	Postgres *pgxpool.Pool
}

func New() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, uri string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Connected to MongoDB")
	c.Mongo = mc
}

func (c *Client) SetPostgres(log *logger.Logger, url string) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Fatal("Invalid Postgres URL", "error", err)
	}
	poolCfg.MaxConnLifetime = 5 * time.Minute
	poolCfg.MaxConnIdleTime = 1 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatal("Failed to create Postgres pool", "error", err)
	}
	if err := pool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping Postgres", "error", err)
	}

	log.Info("Connected to Postgres")
	c.Postgres = pool
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect MongoDB", "error", err)
		} else {
			log.Info("MongoDB connection closed")
		}
	}
	if c.Postgres != nil {
		c.Postgres.Close()
		log.Info("Postgres pool closed")
	}
}
