package chain

import "errors"

// Sentinel errors for the wallet and purchase flows. The platform maps
// these to user-facing messages; everything else surfaces as a generic
// provider failure with the underlying cause attached.
var (
	// ErrNoProvider means no wallet provider is reachable at all.
	ErrNoProvider = errors.New("no wallet provider available")

	// ErrNotConnected means an operation needs a wallet session first.
	ErrNotConnected = errors.New("wallet not connected")

	// ErrUserRejected means the user declined the request in the wallet.
	ErrUserRejected = errors.New("request rejected in wallet")

	// ErrProvider wraps unexpected wallet or node failures.
	ErrProvider = errors.New("wallet provider error")

	// ErrContractUnavailable means a required contract address could not
	// be resolved for the configured network.
	ErrContractUnavailable = errors.New("contract not available on this network")

	// ErrInsufficientBalance means the account cannot cover the price at
	// submission time.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAllowanceRequired means a token purchase needs an approval
	// transaction before it can go through.
	ErrAllowanceRequired = errors.New("token allowance required")

	// ErrSubmissionFailed means the transaction was mined but reverted.
	ErrSubmissionFailed = errors.New("transaction failed on chain")

	// ErrConfirmationTimeout means no receipt appeared within the
	// configured confirmation window.
	ErrConfirmationTimeout = errors.New("confirmation timed out")
)
