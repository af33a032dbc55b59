package config

import (
	"fmt"
	"os"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = time.RFC3339

// SLOT_STEP is the grid slot starts are aligned to.
const SLOT_STEP = 15 * time.Minute

// BOOKING_HOLD_TTL is how long an unpaid booking keeps its slot before
// the expiry job releases it.
const BOOKING_HOLD_TTL = 30 * time.Minute

// REFUND_WINDOW bounds deposit refunds: eligible while the appointment
// starts within this many hours from now.
const REFUND_WINDOW = 72 * time.Hour

// COOLDOWN_PERIOD is how long a client is blocked from re-booking the
// same artist after cancelling.
const COOLDOWN_PERIOD = 48 * time.Hour
