package repository

import (
	"fmt"

	"reservd/pkg/config"
)

// New selects the ledger backend configured by LEDGER_BACKEND. Memory is
// for tests and single-process runs; anything shared needs mongo.
func New(cfg *config.Config) (ReservationRepository, error) {
	switch cfg.LedgerBackend {
	case config.LedgerBackendMongo:
		return NewMongoReservationRepository(cfg), nil
	case config.LedgerBackendMemory:
		return NewMemoryLedger(), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}
