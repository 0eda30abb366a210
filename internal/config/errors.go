package config

import "errors"

// Configuration validation errors.
//
// Design decision: Package-level sentinel errors rather than ad-hoc
// fmt.Errorf calls in Resolve/Validate. Callers can match them with
// errors.Is while the messages stay human-readable, and each message for
// a missing setting names the configuration key the user must supply.
var (
	// ErrMissingRespectRobots is returned when respect_robots_txt is
	// absent from the configuration. The crawler refuses to guess
	// whether compliance checking should be on.
	ErrMissingRespectRobots = errors.New(`missing required configuration key: "respect_robots_txt"`)

	// ErrMissingUserAgent is returned when user_agent is absent or empty.
	// Polite crawlers must identify themselves.
	ErrMissingUserAgent = errors.New(`missing required configuration key: "user_agent"`)

	// ErrMissingDefaultDelay is returned when default_delay_seconds is absent.
	ErrMissingDefaultDelay = errors.New(`missing required configuration key: "default_delay_seconds"`)

	// ErrMissingTargetNamespaces is returned when target_namespaces is absent.
	// An explicit empty list is valid and means "all namespaces".
	ErrMissingTargetNamespaces = errors.New(`missing required configuration key: "target_namespaces"`)

	// ErrInvalidDelay is returned when the default delay is not positive.
	ErrInvalidDelay = errors.New("invalid default_delay_seconds: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout_seconds: must be positive")

	// ErrInvalidMaxRetries is returned when max_retries is negative.
	// Zero is valid and disables retries entirely.
	ErrInvalidMaxRetries = errors.New("invalid max_retries: must be non-negative")

	// ErrInvalidSaveStateEvery is returned when the checkpoint cadence
	// is not positive.
	ErrInvalidSaveStateEvery = errors.New("invalid save_state_every_n_pages: must be positive")

	// ErrInvalidMaxBodySize is returned when the body size cap is negative.
	// Zero is valid and means "use the default".
	ErrInvalidMaxBodySize = errors.New("invalid max_body_size: must be non-negative")
)
