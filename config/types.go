package config

// Config is the vault client configuration, stored as JSON under
// <home>/config/.
type Config struct {
	// LogLevel is a zerolog level: -1 trace .. 5 panic.
	LogLevel int `json:"log_level"`
	// LogFormat is "console" or "json".
	LogFormat string `json:"log_format"`

	// RPCURLs are the ledger RPC endpoints, tried round-robin.
	RPCURLs []string `json:"rpc_urls"`

	// KeypairFile is the payer keypair, in the standard JSON byte-array
	// format, relative to the home directory unless absolute.
	KeypairFile string `json:"keypair_file"`
	// AuthorizingKeyFile is the PEM-encoded P-256 authorizing key.
	AuthorizingKeyFile string `json:"authorizing_key_file"`

	// DatabaseFile is the SQLite file tracking submitted transactions.
	DatabaseFile string `json:"database_file"`

	// WithdrawExpirySeconds is how far in the future withdrawal
	// authorizations expire by default.
	WithdrawExpirySeconds int64 `json:"withdraw_expiry_seconds"`
}
