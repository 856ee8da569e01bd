package tehom

import (
	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// WorldConfig is loaded from the environment when a world is created. Every
// field has a usable default so a bare `NewWorld()` works on a laptop.
type WorldConfig struct {
	Namespace         string `config:"TEHOM_NAMESPACE"`
	RedisAddress      string `config:"REDIS_ADDRESS"`
	RedisPassword     string `config:"REDIS_PASSWORD"`
	StatsdAddress     string `config:"STATSD_ADDRESS"`
	EventStreamPort   string `config:"TEHOM_EVENT_STREAM_PORT"`
	EnableEventStream bool   `config:"TEHOM_EVENT_STREAM"`
	EnableSnapshots   bool   `config:"TEHOM_SNAPSHOTS"`
	// EntityIDCeiling lowers the entity-id allocation ceiling. Zero keeps the
	// full id space.
	EntityIDCeiling uint64 `config:"TEHOM_ENTITY_ID_CEILING"`
}

func defaultWorldConfig() WorldConfig {
	return WorldConfig{
		Namespace:       "tehom",
		RedisAddress:    "localhost:6379",
		EventStreamPort: "3333",
	}
}

func loadWorldConfig() (WorldConfig, error) {
	cfg := defaultWorldConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to load world config from env")
	}
	return cfg, nil
}
