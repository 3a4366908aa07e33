package driven

// ConfigStore holds the persisted settings as flat dot-notation keys
// ("clustering.threshold", "editor.sort"). Writes are durable when Set or
// Delete returns.
type ConfigStore interface {
	// Get returns the raw value stored under key.
	Get(key string) (any, bool)

	// GetString returns the value under key if it is a string, else "".
	GetString(key string) string

	// GetFloat returns the value under key as a float. Integers are widened
	// and numeric strings parsed; anything else reads as 0.
	GetFloat(key string) float64

	Set(key string, value any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys lists the stored keys in lexical order.
	Keys() []string

	// Path describes where the values live.
	Path() string
}
