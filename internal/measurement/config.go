package measurement

// Config holds the tunables of the record model
type Config struct {
	// ClosingProximity is the distance within which the last point of an
	// area is treated as a repeat of the first point when completing it.
	ClosingProximity float64 `mapstructure:"closing_proximity"`
	// InclinationThreshold in degrees above which a length is shown with
	// its inclination.
	InclinationThreshold float64 `mapstructure:"inclination_threshold"`
}

// DefaultConfig returns the defaults used by the viewer
func DefaultConfig() Config {
	return Config{
		ClosingProximity:     0.3,
		InclinationThreshold: 5,
	}
}
