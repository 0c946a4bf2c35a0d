// Package dbpool opens and shares the database handles named in
// DatabasesConfig, implementing pkg/policy.Databases so store-backed
// policy factories can ask for the one they need without depending on this
// internal package directly.
package dbpool

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aras-services/bouncer/config"
)

// Pools holds the shared handles opened from DatabasesConfig. A zero value
// (as returned when a kind is unconfigured) reports false from its
// accessor.
type Pools struct {
	postgres *pgxpool.Pool
	mysql    *sql.DB
	redis    *redis.Client
	mongo    *mongo.Database

	mongoClient *mongo.Client
}

// Open connects every handle named in cfg, pinging each before returning,
// so an unreachable store fails startup fast rather than on first use.
func Open(ctx context.Context, cfg config.DatabasesConfig) (*Pools, error) {
	p := &Pools{}

	if cfg.Postgres != nil {
		pool, err := pgxpool.New(ctx, cfg.Postgres.ConnectionURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("pinging postgres: %w", err)
		}
		p.postgres = pool
	}

	if cfg.MySQL != nil {
		db, err := sql.Open("mysql", cfg.MySQL.ConnectionURL)
		if err != nil {
			return nil, fmt.Errorf("opening mysql pool: %w", err)
		}
		if cfg.MySQL.ConnectionPoolSize > 0 {
			db.SetMaxOpenConns(cfg.MySQL.ConnectionPoolSize)
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("pinging mysql: %w", err)
		}
		p.mysql = db
	}

	if cfg.Redis != nil {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.ConnectionURL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("pinging redis: %w", err)
		}
		p.redis = client
	}

	if cfg.Mongo != nil {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.ConnectionURL))
		if err != nil {
			return nil, fmt.Errorf("opening mongo client: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, fmt.Errorf("pinging mongo: %w", err)
		}
		dbName := cfg.Mongo.Database
		if dbName == "" {
			dbName = "bouncer"
		}
		p.mongoClient = client
		p.mongo = client.Database(dbName)
	}

	return p, nil
}

// Postgres implements pkg/policy.Databases.
func (p *Pools) Postgres() (*pgxpool.Pool, bool) { return p.postgres, p.postgres != nil }

// MySQL implements pkg/policy.Databases.
func (p *Pools) MySQL() (*sql.DB, bool) { return p.mysql, p.mysql != nil }

// Redis implements pkg/policy.Databases.
func (p *Pools) Redis() (*redis.Client, bool) { return p.redis, p.redis != nil }

// Mongo implements pkg/policy.Databases.
func (p *Pools) Mongo() (*mongo.Database, bool) { return p.mongo, p.mongo != nil }

// Close releases every opened handle. Errors from individual handles are
// joined so one failure doesn't hide the others.
func (p *Pools) Close(ctx context.Context) error {
	var errs []error
	if p.postgres != nil {
		p.postgres.Close()
	}
	if p.mysql != nil {
		if err := p.mysql.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.redis != nil {
		if err := p.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.mongoClient != nil {
		if err := p.mongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing database pools: %v", errs)
	}
	return nil
}
