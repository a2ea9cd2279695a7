// Command sync-catalog copies the active Postgres catalog into the DynamoDB
// product table used when CATALOG_BACKEND=dynamodb.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/config"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/database"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	awspkg "github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/aws"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/logger"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/repository"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	var table string
	var batch int
	flag.StringVar(&table, "table", cfg.ProductsTable, "DynamoDB table name")
	flag.IntVar(&batch, "batch", 100, "rows read from Postgres per batch")
	flag.Parse()

	log, err := logger.Initialize(cfg.AppEnv)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	if batch <= 0 {
		log.Fatal("batch must be positive", zap.Int("batch", batch))
	}

	ctx := context.Background()
	db, err := database.ConnectPostgres(cfg.PostgresDSN(), log)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer database.Close(db)

	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatal("aws config", zap.Error(err))
	}
	target := repository.NewDynamoProductAdapter(dynamodb.NewFromConfig(awsCfg), table)
	source := repository.NewGormProductRepository(db)

	start := time.Now()
	count := 0
	err = source.Batches(ctx, batch, func(products []models.Product) error {
		if err := target.PutBatch(ctx, products); err != nil {
			return err
		}
		before := count
		count += len(products)
		if count/100 > before/100 {
			log.Info("Synced products", zap.Int("count", count))
		}
		return nil
	})
	if err != nil {
		log.Fatal("sync failed", zap.Int("synced", count), zap.Error(err))
	}

	// Readers of the Postgres catalog keep cached listings until the version moves.
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("Redis unavailable, product cache not invalidated", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache := repository.NewCachedProductLookup(source, redisClient, cfg.ProductCacheTTL, log)
			if err := cache.Invalidate(ctx); err != nil {
				log.Warn("Product cache invalidation failed", zap.Error(err))
			}
		}
	}

	log.Info("Catalog sync complete",
		zap.String("table", table),
		zap.Int("products", count),
		zap.Duration("took", time.Since(start)),
	)
}
