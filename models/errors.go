package models

import "errors"

// Wager rejections. These are the only failures a player ever sees.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMarketClosed      = errors.New("market is not open for betting")
	ErrInvalidSelection  = errors.New("selection is not a candidate of this market")
	ErrBelowMinimumStake = errors.New("stake is below the market minimum")
)

// ErrConcurrentModification means a compare-and-swap lost against another
// writer. Callers either retry or treat the work as owned by the winner.
var ErrConcurrentModification = errors.New("concurrent modification")

var (
	ErrInvalidMarketID         = errors.New("invalid market ID")
	ErrInvalidMarketName       = errors.New("invalid market name")
	ErrInvalidCandidateDomain  = errors.New("invalid candidate domain")
	ErrInvalidPayoutMultiplier = errors.New("payout multiplier must be a whole number greater than one")
	ErrInvalidMinStake         = errors.New("minimum stake must be positive")
	ErrInvalidMarketDuration   = errors.New("invalid market duration")
	ErrInvalidResolutionMode   = errors.New("invalid resolution mode")
	ErrInvalidSchedule         = errors.New("invalid open/close schedule")
	ErrUnknownCoverGroup       = errors.New("unknown cover group")

	ErrRoundNotInResults = errors.New("round is not in results phase")
	ErrNoWagers          = errors.New("round has no wagers")

	ErrInvalidStake        = errors.New("stake must be positive")
	ErrStakePrecision      = errors.New("stake must have at most 2 decimal places")
	ErrWagerAlreadySettled = errors.New("wager is already settled")

	ErrInvalidUserID            = errors.New("invalid user ID")
	ErrInvalidTier              = errors.New("invalid wallet tier")
	ErrNegativeBalance          = errors.New("balance cannot be negative")
	ErrInvalidTransactionAmount = errors.New("invalid transaction amount")
	ErrInvalidEntryType         = errors.New("invalid ledger entry type")

	ErrInvalidPhone   = errors.New("invalid phone number")
	ErrInvalidRole    = errors.New("invalid role")
	ErrPlayerExists   = errors.New("player already registered")
	ErrPhoneTaken     = errors.New("phone number already registered")
	ErrPlayerInactive = errors.New("player is inactive")

	ErrInvalidAuditAction  = errors.New("invalid audit action")
	ErrInvalidResourceType = errors.New("invalid resource type")

	ErrDatabaseCredentialNotConfigured = errors.New("database credentials not configured")
	ErrInvalidRetryLimit               = errors.New("retry limit must be between 1 and 50")
	ErrInvalidTickInterval             = errors.New("tick interval must be positive")
	ErrInvalidConcurrency              = errors.New("concurrency must be positive")
	ErrInvalidCacheTTL                 = errors.New("cache ttl must be positive")
	ErrInvalidBatchSize                = errors.New("batch size must be positive")

	ErrRecordNotFound = errors.New("record not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
)
