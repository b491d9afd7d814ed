package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID generates a calibration run ID with a timestamp prefix so
// report files sort chronologically.
func GenerateRunID() string {
	timestamp := time.Now().UTC().Format("20060102-150405")
	return fmt.Sprintf("cal-%s-%s", timestamp, uuid.NewString()[:8])
}

// GenerateID generates a bare unique identifier.
func GenerateID() string {
	return uuid.NewString()
}
