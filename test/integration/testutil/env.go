package testutil

import (
	"os"
	"testing"
)

// TestEnv points the suite at a running stack: Mongo plus the two HTTP
// services, usually brought up with docker compose.
type TestEnv struct {
	MongoURI        string
	DatabaseName    string
	ResourcesURL    string
	ReservationsURL string
}

func NewTestEnv() *TestEnv {
	return &TestEnv{
		MongoURI:        getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName:    getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ResourcesURL:    getEnv("TEST_RESOURCES_URL", "http://localhost:8081"),
		ReservationsURL: getEnv("TEST_RESERVATIONS_URL", "http://localhost:8082"),
	}
}

// RequireIntegration skips the test unless the suite is explicitly
// enabled. The stack is external; unit runs must not depend on it.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("integration tests disabled; set TEST_INTEGRATION=1 and start the stack to run them")
	}
}

// Setup cleans the database and waits for both services to report
// healthy. Returns the mongo helper and one client per service.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client, *Client) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDatabase(t)

	resources := NewClient(e.ResourcesURL)
	resources.WaitForHealthy(t, DefaultHealthCheckTimeout)

	reservations := NewClient(e.ReservationsURL)
	reservations.WaitForHealthy(t, DefaultHealthCheckTimeout)

	return mongo, resources, reservations
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanDatabase(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
