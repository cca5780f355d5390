package loader

// Config holds configuration for the dump loader.
type Config struct {
	// TimeZone is the default timezone assigned to naive dump timestamps.
	TimeZone string `mapstructure:"timezone" default:"UTC"`
	// BatchLimit is the maximum number of rows per bulk insert batch.
	// Zero or negative means a single batch.
	BatchLimit int `mapstructure:"batch_limit" default:"500"`
}
