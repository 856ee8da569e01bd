package tehom_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	tehom "github.com/yvileapsis/TEHOM-old-sub000"
	"github.com/yvileapsis/TEHOM-old-sub000/assert"
	"github.com/yvileapsis/TEHOM-old-sub000/ecs"
	"github.com/yvileapsis/TEHOM-old-sub000/events"
)

type Position struct {
	X, Y float64
}

func (Position) Name() string {
	return "position"
}

type Velocity struct {
	DX, DY float64
}

func (Velocity) Name() string {
	return "velocity"
}

func newWorldForTest(t *testing.T, cfg tehom.WorldConfig) *tehom.World {
	t.Helper()
	if cfg.Namespace == "" {
		cfg.Namespace = "test"
	}
	world, err := tehom.NewWorld(tehom.WithConfig(cfg))
	assert.NilError(t, err)
	assert.NilError(t, tehom.RegisterComponent[Position](world))
	assert.NilError(t, tehom.RegisterComponent[Velocity](world))
	return world
}

func TestFrameRunsTheLifecycleStagesInOrder(t *testing.T) {
	world := newWorldForTest(t, tehom.WorldConfig{})

	var stages []string
	for _, name := range []string{events.Update, events.PostUpdate, events.Render, events.Actualize} {
		name := name
		_, err := world.Bus().Subscribe(name, events.GlobalScope(), func(ev events.Event) {
			stages = append(stages, ev.Name)
		})
		assert.NilError(t, err)
	}

	world.Frame()
	assert.DeepEqual(t, []string{"update", "post-update", "render", "actualize"}, stages)
	assert.Equal(t, uint64(1), world.CurrentFrame())
}

func TestStageEventsCarryTheFrameNumber(t *testing.T) {
	world := newWorldForTest(t, tehom.WorldConfig{})

	var frames []uint64
	_, err := world.Bus().Subscribe(events.Update, events.GlobalScope(), func(ev events.Event) {
		frames = append(frames, ev.Payload.(uint64))
	})
	assert.NilError(t, err)

	world.Frame()
	world.Frame()
	assert.DeepEqual(t, []uint64{0, 1}, frames)
}

func TestCreateAndQueryThroughTheWorld(t *testing.T) {
	world := newWorldForTest(t, tehom.WorldConfig{})

	handle, err := tehom.Create(world, Position{X: 1}, Velocity{DX: 2})
	assert.NilError(t, err)

	pos, vel, err := tehom.Frame2[Position, Velocity](handle, "position", "velocity")
	assert.NilError(t, err)
	assert.Equal(t, 1.0, pos.X)
	assert.Equal(t, 2.0, vel.DX)

	q, err := world.QueryFromCQL("CONTAINS(position) & CONTAINS(velocity)")
	assert.NilError(t, err)
	assert.Equal(t, 1, q.Count())

	_, err = tehom.Create(world, Position{X: 3})
	assert.NilError(t, err)
	assert.Equal(t, 1, q.Count())
}

func TestQueryFromCQLRejectsUnknownComponents(t *testing.T) {
	world := newWorldForTest(t, tehom.WorldConfig{})

	_, err := world.QueryFromCQL("CONTAINS(mystery)")
	assert.ErrorIs(t, err, ecs.ErrComponentNotRegistered)
}

func TestDuplicateComponentRegistrationThroughTheWorldFails(t *testing.T) {
	world := newWorldForTest(t, tehom.WorldConfig{})
	assert.ErrorIs(t, tehom.RegisterComponent[Position](world), ecs.ErrComponentAlreadyRegistered)
}

func TestSnapshotWithoutStorageFails(t *testing.T) {
	world := newWorldForTest(t, tehom.WorldConfig{})

	ctx := context.Background()
	assert.ErrorIs(t, world.SaveSnapshot(ctx), tehom.ErrNoSnapshotStorage)
	assert.ErrorIs(t, world.LoadSnapshot(ctx), tehom.ErrNoSnapshotStorage)
}

func TestWorldSnapshotRoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := tehom.WorldConfig{
		Namespace:       "roundtrip",
		RedisAddress:    s.Addr(),
		EnableSnapshots: true,
	}
	ctx := context.Background()

	source := newWorldForTest(t, cfg)
	handle, err := tehom.Create(source, Position{X: 7})
	assert.NilError(t, err)
	assert.NilError(t, source.SaveSnapshot(ctx))

	target := newWorldForTest(t, cfg)
	assert.NilError(t, target.LoadSnapshot(ctx))

	pos, err := ecs.Get[Position](target.Registry().Handle(handle.ID()))
	assert.NilError(t, err)
	assert.Equal(t, Position{X: 7}, *pos)
}

func TestEntityIDCeilingIsApplied(t *testing.T) {
	world := newWorldForTest(t, tehom.WorldConfig{EntityIDCeiling: 2})

	_, err := tehom.Create(world, Position{})
	assert.NilError(t, err)
	_, err = tehom.Create(world, Position{})
	assert.ErrorIs(t, err, ecs.ErrEntityIDExhausted)
}
