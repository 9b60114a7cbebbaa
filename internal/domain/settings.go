package domain

// Settings holds platform-wide configuration values keyed by name. The
// console never interprets them.
type Settings map[string]any

// SettingsEnvelope wraps settings on the wire.
type SettingsEnvelope struct {
	Settings Settings `json:"settings"`
}
