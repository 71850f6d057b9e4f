package interaction

import "time"

// Config holds the picking and auto-completion tunables
type Config struct {
	// HitRadius is the world-space pick tolerance for pointer rays
	HitRadius float64 `mapstructure:"hit_radius"`
	// TouchHitRadius is the pick tolerance in screen pixels for touch input
	TouchHitRadius float64 `mapstructure:"touch_hit_radius"`
	// CompletionProximity is how close the live pointer has to come to the
	// first point of an area before it completes
	CompletionProximity float64 `mapstructure:"completion_proximity"`
	// Debounce delays auto-completion so a single near sample does not
	// close the polygon
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultConfig returns the defaults used by the viewer
func DefaultConfig() Config {
	return Config{
		HitRadius:           0.25,
		TouchHitRadius:      24,
		CompletionProximity: 0.3,
		Debounce:            500 * time.Millisecond,
	}
}
