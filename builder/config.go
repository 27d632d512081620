package builder

// Config configures the compiled network.
type Config struct {
	// Frames is the number of time frames allocated for recurrent networks. Feed-forward networks always
	// get a single frame. Trainers rebuffer to the longest sequence they see.
	Frames int
	// Offline selects offline (whole sequence) computation for recurrent networks.
	Offline bool
}

// DefaultConfig returns a config for a single frame online network.
func DefaultConfig() Config {
	return Config{
		Frames: 1,
	}
}

func (conf Config) IsValid() bool {
	return conf.Frames >= 1
}
