package mongo

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"notely/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrNotInitialized is returned by Shutdown when Init never connected.
var ErrNotInitialized = errors.New("mongo client not initialized")

// ErrShutdown is returned by Shutdown after the first call.
var ErrShutdown = errors.New("mongo client already shut down")

var (
	drv driver = mongoDriver{}

	client  *mongo.Client
	db      *mongo.Database
	initErr error
	mu      sync.Mutex

	initOnce     sync.Once
	shutdownOnce sync.Once
)

// Init initializes the MongoDB connection (first call wins, thread-safe).
// A failed first attempt is remembered; later calls return the same error.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	initOnce.Do(func() {
		opts := options.Client().
			ApplyURI(cfg.MongoURI).
			SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
			SetConnectTimeout(10 * time.Second).
			SetAppName("notely")

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		cli, err := drv.Connect(ctx, opts)
		if err != nil {
			log.Error("failed to connect to mongo", "err", err)
			initErr = err
			return
		}

		if err := drv.Ping(ctx, cli); err != nil {
			log.Error("failed to ping mongo", "err", err)
			_ = drv.Disconnect(ctx, cli)
			initErr = err
			return
		}

		mu.Lock()
		client = cli
		db = cli.Database(cfg.MongoDBName)
		mu.Unlock()

		log.Info("successfully connected to mongo", "db", cfg.MongoDBName)
	})

	mu.Lock()
	defer mu.Unlock()
	return client, db, initErr
}

// Client returns the singleton MongoDB client instance.
func Client() *mongo.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// DB returns the singleton MongoDB database instance.
func DB() *mongo.Database {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Shutdown disconnects the client. Only the first call does any work.
func Shutdown(ctx context.Context) error {
	err := ErrShutdown
	shutdownOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()

		if client == nil {
			err = ErrNotInitialized
			return
		}

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		err = drv.Disconnect(ctx, client)
		client = nil
		db = nil
	})
	return err
}
