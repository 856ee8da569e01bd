// Package statsd is a helper package that wraps some common statsd methods.
// It hides the datadog dependency so a future migration away from datadog only
// needs to edit this single file.
package statsd

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitFrameStat reports how long one frame stage took ("update",
// "post-update", "render", "actualize").
func EmitFrameStat(start time.Time, stage string) {
	duration := time.Since(start)
	if err := Client().Timing("frame", duration, []string{"stage:" + stage}, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit frame stat: %v", err)
	}
}

// EmitMigrationStat reports how long one entity migration took.
func EmitMigrationStat(start time.Time, op string) {
	duration := time.Since(start)
	if err := Client().Timing("migration", duration, []string{"op:" + op}, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit migration stat: %v", err)
	}
}

// EmitArchetypeCount reports the current size of the archetype table.
func EmitArchetypeCount(count int) {
	if err := Client().Gauge("archetypes", float64(count), nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit archetype count: %v", err)
	}
}

func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics
		ddstatsd.WithNamespace("tehom"),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return err
	}
	// Success! replace the global client
	client = newClient
	return nil
}
