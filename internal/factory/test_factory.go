package factory

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/teamscore/internal/dependencies/mocks"
	"github.com/mcoot/teamscore/internal/metrics"
	"github.com/mcoot/teamscore/internal/services/auth"
	"github.com/mcoot/teamscore/internal/storage/memory"
	"github.com/mcoot/teamscore/internal/testutil"
)

// TestSecret signs tokens issued by test apps
const TestSecret = "teamscore-test-secret-0123456789abcdef"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MemoryStorage *memory.Storage
	Registry      *prometheus.Registry
}

// TestOption adjusts a test app before it is wired
type TestOption func(*testOptions)

type testOptions struct {
	writeRate  float64
	writeBurst int
}

// WithWriteLimit overrides the per-caller write limit
func WithWriteLimit(perSecond float64, burst int) TestOption {
	return func(o *testOptions) {
		o.writeRate = perSecond
		o.writeBurst = burst
	}
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The default write limit is high enough that tests never hit it.
func NewTestApp(opts ...TestOption) *TestApp {
	o := testOptions{writeRate: 1000, writeBurst: 1000}
	for _, opt := range opts {
		opt(&o)
	}

	mockClock := mocks.NewMockClock(testutil.FixedTime)
	store := memory.NewWithClock(mockClock)
	registry := prometheus.NewRegistry()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = TestSecret

	app := newWithDependencies(store, mockClock, metrics.NewWithRegistry(registry), authCfg, o.writeRate, o.writeBurst, testutil.NopLogger())

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MemoryStorage: store,
		Registry:      registry,
	}
}
