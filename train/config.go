package train

// Config configures the trainers. Fields that do not apply to a trainer are ignored by it.
type Config struct {
	Epochs      int
	TargetError float64 // training stops once the validation error drops below this
	Features    []int   // input feature selection, nil for all

	LearningRate       float64
	Momentum           float64
	Online             bool // update after every sample instead of once per epoch
	Permute            bool // visit the samples in a new random order every epoch
	ValidationInterval int  // epochs between validations
	EarlyStopping      bool
	EarlyStoppingCount int // validations without improvement before stopping early

	SearchLo, SearchHi float64 // random search interval

	// differential evolution
	PopSize        int
	Crossover      float64 // probability of taking a weight from the mutant
	Scale, Scale2  float64 // weights of the first and second difference vectors
	Mutation       Mutation
	InitLo, InitHi float64 // interval of the initial population
}

// DefaultConfig returns the defaults for every trainer.
func DefaultConfig() Config {
	return Config{
		Epochs:             100,
		LearningRate:       0.0001,
		Momentum:           0.9,
		Online:             true,
		Permute:            true,
		ValidationInterval: 5,
		EarlyStoppingCount: 10,
		SearchLo:           -100,
		SearchHi:           100,
		PopSize:            100,
		Crossover:          0.7,
		Scale:              0.4,
		Scale2:             0.4,
		Mutation:           RandOne,
		InitLo:             -1,
		InitHi:             1,
	}
}

func (conf Config) IsValid() bool {
	return conf.Epochs >= 0 &&
		conf.LearningRate > 0 &&
		conf.Momentum >= 0 && conf.Momentum < 1 &&
		conf.ValidationInterval >= 1 &&
		conf.EarlyStoppingCount >= 0 &&
		conf.SearchLo < conf.SearchHi &&
		conf.PopSize >= minPopSize &&
		conf.Crossover >= 0 && conf.Crossover <= 1 &&
		conf.Mutation <= RandToBestOne &&
		conf.InitLo < conf.InitHi
}
