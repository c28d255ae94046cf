package smoke

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultBaseID        = 900_000
	PercentageMultiplier = 100
)
