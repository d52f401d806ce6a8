package mongo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"notely/internal/config"
	"notely/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const unreachableURI = "mongodb://invalid/?connectTimeoutMS=1&serverSelectionTimeoutMS=1"

// stubDriver never touches the network. With pingErr nil it hands out a real
// but lazily connected client, which is enough for the singleton.
type stubDriver struct {
	connectErr  error
	pingErr     error
	connects    *atomic.Int32
	disconnects *atomic.Int32
}

func (s stubDriver) Connect(_ context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	s.connects.Add(1)
	if s.connectErr != nil {
		return nil, s.connectErr
	}
	return mongo.Connect(opts)
}

func (s stubDriver) Ping(context.Context, *mongo.Client) error { return s.pingErr }

func (s stubDriver) Disconnect(context.Context, *mongo.Client) error {
	s.disconnects.Add(1)
	return nil
}

// useStub installs s as the driver for the duration of the test.
func useStub(t *testing.T, s stubDriver) stubDriver {
	t.Helper()
	if s.connects == nil {
		s.connects = &atomic.Int32{}
	}
	if s.disconnects == nil {
		s.disconnects = &atomic.Int32{}
	}

	old := drv
	drv = s
	reset()
	t.Cleanup(func() {
		drv = old
		reset()
	})
	return s
}

func testCfg() config.Config {
	return config.Config{
		MongoURI:    unreachableURI,
		MongoDBName: "notely_test",
		LogLevel:    "error",
		LogFormat:   "json",
	}
}

func TestInitSuccess(t *testing.T) {
	stub := useStub(t, stubDriver{})

	cli, database, err := Init(context.Background(), testCfg(), logger.L())
	require.NoError(t, err)
	require.NotNil(t, cli)
	require.NotNil(t, database)
	assert.Equal(t, "notely_test", database.Name())

	assert.Same(t, cli, Client())
	assert.Same(t, database, DB())

	cli2, db2, err := Init(context.Background(), testCfg(), logger.L())
	require.NoError(t, err)
	assert.Same(t, cli, cli2, "the first Init wins")
	assert.Same(t, database, db2)
	assert.EqualValues(t, 1, stub.connects.Load())

	require.NoError(t, Shutdown(context.Background()))
	assert.ErrorIs(t, Shutdown(context.Background()), ErrShutdown)
	assert.EqualValues(t, 1, stub.disconnects.Load())
	assert.Nil(t, Client())
	assert.Nil(t, DB())
}

func TestInitFailures(t *testing.T) {
	tests := []struct {
		name            string
		stub            stubDriver
		wantDisconnects int32
	}{
		{name: "connect fails", stub: stubDriver{connectErr: context.DeadlineExceeded}},
		{name: "ping fails", stub: stubDriver{pingErr: context.DeadlineExceeded}, wantDisconnects: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := useStub(t, tt.stub)

			cli, database, err := Init(context.Background(), testCfg(), logger.L())
			require.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Nil(t, cli)
			assert.Nil(t, database)
			assert.EqualValues(t, tt.wantDisconnects, stub.disconnects.Load(), "a client that fails ping is released")

			// The failure is remembered; nothing is retried.
			_, _, err = Init(context.Background(), testCfg(), logger.L())
			require.ErrorIs(t, err, context.DeadlineExceeded)
			assert.EqualValues(t, 1, stub.connects.Load())

			assert.Nil(t, Client())
			assert.Nil(t, DB())
		})
	}
}

func TestInitConcurrent(t *testing.T) {
	stub := useStub(t, stubDriver{})

	const goroutines = 10
	var wg sync.WaitGroup
	clients := make([]*mongo.Client, goroutines)

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			cli, _, err := Init(context.Background(), testCfg(), logger.L())
			if err != nil {
				t.Errorf("Init: %v", err)
			}
			clients[i] = cli
		}(i)
	}
	wg.Wait()

	require.NotNil(t, clients[0])
	for i := 1; i < goroutines; i++ {
		assert.Same(t, clients[0], clients[i], "all callers share one client")
	}
	assert.EqualValues(t, 1, stub.connects.Load())
}

func TestShutdownWithoutInit(t *testing.T) {
	useStub(t, stubDriver{connectErr: context.DeadlineExceeded})

	_, _, err := Init(context.Background(), testCfg(), logger.L())
	require.Error(t, err)

	assert.ErrorIs(t, Shutdown(context.Background()), ErrNotInitialized)
	assert.ErrorIs(t, Shutdown(context.Background()), ErrShutdown)
}

// reset clears the singleton without going through Shutdown (helper for tests).
func reset() {
	mu.Lock()
	defer mu.Unlock()
	client = nil
	db = nil
	initErr = nil

	initOnce = sync.Once{}
	shutdownOnce = sync.Once{}
}
