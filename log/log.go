// Package log builds the structured zerolog events the registry emits for
// entity and archetype lifecycle changes.
package log

import (
	"github.com/rs/zerolog"

	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

func loadShapeIntoEvent(ev *zerolog.Event, shape *archetype.Shape) *zerolog.Event {
	arr := zerolog.Arr()
	for _, name := range shape.Names() {
		term, _ := shape.Term(name)
		dict := zerolog.Dict().
			Str("term", name).
			Str("kind", term.Kind.String())
		if term.Value != "" {
			dict = dict.Str("value", term.Value)
		}
		arr = arr.Dict(dict)
	}
	ev.Int("total_terms", shape.Len())
	return ev.Array("terms", arr)
}

// Shape logs the creation of an archetype for the given shape.
func Shape(logger *zerolog.Logger, level zerolog.Level, shape *archetype.Shape) {
	ev := logger.WithLevel(level)
	ev = loadShapeIntoEvent(ev, shape)
	ev.Uint64("shape_hash", shape.Hash()).Msg("archetype created")
}

// Entity logs an entity landing in an archetype.
func Entity(logger *zerolog.Logger, level zerolog.Level, id types.EntityID, shape *archetype.Shape, row int) {
	logger.WithLevel(level).
		Uint64("entity_id", uint64(id)).
		Stringer("shape", shape).
		Int("row", row).
		Msg("entity registered")
}

// Migration logs an entity moving between archetypes because its term set
// changed.
func Migration(logger *zerolog.Logger, level zerolog.Level, id types.EntityID, from, to *archetype.Shape) {
	logger.WithLevel(level).
		Uint64("entity_id", uint64(id)).
		Stringer("from", from).
		Stringer("to", to).
		Msg("entity migrated")
}
