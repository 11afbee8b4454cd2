// Package constants provides shared constants for the loan-desk application.
package constants

// MonthLayout is the format used for regulation effective months in
// reference data and is also the output month format.
const MonthLayout = "2006-01"

// Regulation thresholds. All currency values are in millions of KRW.
const (
	// DSRCeilingPercent is the debt service ratio above which a loan is refused.
	// A DSR exactly equal to the ceiling is still acceptable.
	DSRCeilingPercent = 50

	// PriceTierLow is the upper bound (inclusive) of the lowest price tier.
	PriceTierLow = 1500

	// PriceTierHigh is the upper bound (inclusive) of the middle price tier.
	PriceTierHigh = 2500

	// CapPriceTierLow is the purchase loan cap for homes priced at or below PriceTierLow.
	CapPriceTierLow = 600

	// CapPriceTierMid is the purchase loan cap for homes priced above PriceTierLow
	// and at or below PriceTierHigh.
	CapPriceTierMid = 400

	// CapPriceTierHigh is the purchase loan cap for homes priced above PriceTierHigh.
	CapPriceTierHigh = 200

	// CapFirstTimeBuyerOther is the cap for first-time buyers outside the
	// capital area.
	CapFirstTimeBuyerOther = 600

	// CombinedLivingFundLimit is the aggregate cap across new and existing
	// living stabilization loans in regulated and metro regions.
	CombinedLivingFundLimit = 100

	// ObligationMonths is the deadline for post-approval duties.
	ObligationMonths = 6
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "LOANDESK"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum JSON request body size (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024

	// MaxAssistantSessions bounds the number of assistant conversations a
	// server keeps in memory.
	MaxAssistantSessions = 256
)

// Assistant defaults
const (
	// DefaultAssistantEndpoint is the base URL of the generative language API.
	DefaultAssistantEndpoint = "https://generativelanguage.googleapis.com"

	// DefaultAssistantModel is the model used when none is configured.
	DefaultAssistantModel = "gemini-2.0-flash"

	// DefaultAssistantTimeoutSeconds bounds a single assistant call.
	DefaultAssistantTimeoutSeconds = 30

	// MaxAssistantReplyBytes bounds the size of a gateway response body.
	MaxAssistantReplyBytes = 256 * 1024

	// MaxInquiryRunes bounds the length of a single inquiry.
	MaxInquiryRunes = 4000
)

// PercentageMultiplier is used for percentage conversions
const PercentageMultiplier = 100
