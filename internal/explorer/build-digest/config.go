// internal/explorer/build-digest/config.go
package builddigest

const (
	MaxEntries    = 10
	MaxEntryChars = 1000
)

type Config struct {
	MaxEntries    int
	MaxEntryChars int
}

func LoadConfig() *Config {
	return &Config{
		MaxEntries:    MaxEntries,
		MaxEntryChars: MaxEntryChars,
	}
}
