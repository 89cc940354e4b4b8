package usecases

import "time"

// Payment policy bounds. Hourly floors track the federal minimum wage so
// the platform cannot be used to list sub-minimum work.
const (
	ServiceFeeRate = 0.025

	HourlyMinimumAmount = 7.25
	HourlyMaximumAmount = 500.00
	FixedMinimumAmount  = 5.00
	FixedMaximumAmount  = 10000.00
)

// Orchestration defaults; all overridable through config.
const (
	DefaultRefundAttempts       = 3
	DefaultRefundBackoff        = 500 * time.Millisecond
	DefaultCommitTimeout        = 10 * time.Second
	DefaultMaxRecoveryAttempts  = 3
	DefaultStalenessThreshold   = time.Hour
	DefaultOnboardingLinkExpiry = time.Hour
)
