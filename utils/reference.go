package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var (
	refMu      sync.Mutex
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// GenerateTransactionRef builds a unique-enough reference for a ledger row.
// The dicoin_transactions table carries a unique index on the column, so a
// collision fails the insert (and its transaction) instead of passing silently.
func GenerateTransactionRef(userID uint) string {
	refMu.Lock()
	defer refMu.Unlock()

	nanoPart := time.Now().UnixNano() % 1000000
	randPart := seededRand.Intn(900) + 100

	return fmt.Sprintf("DCM-%06d%03d%d", nanoPart, randPart, userID)
}
