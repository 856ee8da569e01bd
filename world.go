package tehom

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/yvileapsis/TEHOM-old-sub000/component"
	"github.com/yvileapsis/TEHOM-old-sub000/cql"
	"github.com/yvileapsis/TEHOM-old-sub000/ecs"
	"github.com/yvileapsis/TEHOM-old-sub000/events"
	"github.com/yvileapsis/TEHOM-old-sub000/filter"
	"github.com/yvileapsis/TEHOM-old-sub000/query"
	"github.com/yvileapsis/TEHOM-old-sub000/statsd"
	"github.com/yvileapsis/TEHOM-old-sub000/storage/redis"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

const RedisDialTimeOut = 15

var ErrNoSnapshotStorage = eris.New("world has no snapshot storage configured")

// World is the outermost facade: one registry plus the optional process-level
// surfaces around it (snapshot storage, statsd, the websocket event stream)
// and the per-frame lifecycle relay.
type World struct {
	cfg    WorldConfig
	logger zerolog.Logger

	registry *ecs.Registry

	storage *redis.Storage
	hub     *events.StreamHub
	app     *fiber.App

	frame atomic.Uint64
}

// NewWorld creates a world from the environment config, overridden by the
// given options.
func NewWorld(opts ...WorldOption) (*World, error) {
	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, err
	}
	world := &World{
		cfg:    cfg,
		logger: zerolog.New(os.Stdout).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(world)
	}

	regOpts := []ecs.Option{ecs.WithLogger(world.logger)}
	if world.cfg.EntityIDCeiling > 0 {
		regOpts = append(regOpts, ecs.WithEntityIDCeiling(types.EntityID(world.cfg.EntityIDCeiling)))
	}
	world.registry, err = ecs.NewRegistry(regOpts...)
	if err != nil {
		return nil, err
	}

	if world.cfg.StatsdAddress != "" {
		tags := []string{"tehom_namespace:" + world.cfg.Namespace}
		if err := statsd.Init(world.cfg.StatsdAddress, tags); err != nil {
			return nil, eris.Wrap(err, "unable to init statsd")
		}
	} else {
		world.logger.Warn().Msg("statsd is disabled")
	}

	if world.cfg.EnableSnapshots {
		store := redis.NewRedisStorage(redis.Options{
			Addr:        world.cfg.RedisAddress,
			Password:    world.cfg.RedisPassword,
			DB:          0,                              // use default DB
			DialTimeout: RedisDialTimeOut * time.Second, // Increase startup dial timeout
		}, world.cfg.Namespace)
		store.Log = world.logger
		world.storage = &store
	}

	if world.cfg.EnableEventStream {
		world.hub = events.NewStreamHub(world.registry.Bus(), world.logger)
		world.app = fiber.New(fiber.Config{DisableStartupMessage: true})
		world.hub.Mount(world.app, "/events")
	}

	return world, nil
}

// Registry returns the underlying entity registry.
func (w *World) Registry() *ecs.Registry {
	return w.registry
}

// Bus returns the registry's event bus.
func (w *World) Bus() *events.Bus {
	return w.registry.Bus()
}

func (w *World) Namespace() string {
	return w.cfg.Namespace
}

// CurrentFrame returns the number of completed frames.
func (w *World) CurrentFrame() uint64 {
	return w.frame.Load()
}

// Frame runs one full frame: the four lifecycle stages in order, then a flush
// of the event stream.
func (w *World) Frame() {
	start := time.Now()
	w.Update()
	w.PostUpdate()
	w.Render()
	w.Actualize()
	if w.hub != nil {
		w.hub.Flush()
	}
	w.frame.Add(1)
	statsd.EmitFrameStat(start, "full_frame")
}

// Update publishes the update stage event to every global subscriber.
func (w *World) Update() {
	w.publishStage(events.Update)
}

// PostUpdate publishes the post-update stage event.
func (w *World) PostUpdate() {
	w.publishStage(events.PostUpdate)
}

// Render publishes the render stage event.
func (w *World) Render() {
	w.publishStage(events.Render)
}

// Actualize publishes the actualize stage event.
func (w *World) Actualize() {
	w.publishStage(events.Actualize)
}

func (w *World) publishStage(name string) {
	start := time.Now()
	w.registry.Bus().Publish(events.Event{
		Name:    name,
		Scope:   events.GlobalScope(),
		Payload: w.frame.Load(),
	})
	statsd.EmitFrameStat(start, name)
}

// StartEventStream serves the websocket relay on the configured port. It
// returns immediately; stream errors are logged, not returned.
func (w *World) StartEventStream() error {
	if w.hub == nil {
		return eris.New("event stream is not enabled")
	}
	go func() {
		if err := w.app.Listen(":" + w.cfg.EventStreamPort); err != nil {
			w.logger.Err(err).Msg("event stream server stopped")
		}
	}()
	w.logger.Info().Str("port", w.cfg.EventStreamPort).Msg("event stream started")
	return nil
}

// Shutdown stops the event stream and closes the storage connection.
func (w *World) Shutdown() error {
	if w.hub != nil {
		w.hub.Shutdown()
		if err := w.app.Shutdown(); err != nil {
			return eris.Wrap(err, "")
		}
	}
	if w.storage != nil {
		if err := w.storage.Close(); err != nil {
			return err
		}
	}
	w.logger.Info().Msg("world shut down")
	return nil
}

// SaveSnapshot persists every populated archetype to redis under the world's
// namespace.
func (w *World) SaveSnapshot(ctx context.Context) error {
	if w.storage == nil {
		return eris.Wrap(ErrNoSnapshotStorage, w.cfg.Namespace)
	}
	return w.storage.SaveRegistry(ctx, w.registry)
}

// LoadSnapshot restores the namespace's snapshot into the registry. All
// component types in the snapshot must be registered first.
func (w *World) LoadSnapshot(ctx context.Context) error {
	if w.storage == nil {
		return eris.Wrap(ErrNoSnapshotStorage, w.cfg.Namespace)
	}
	return w.storage.LoadRegistry(ctx, w.registry)
}

// Search registers a live query over the given filters.
func (w *World) Search(filters ...filter.ShapeFilter) *query.Query {
	q := query.New(filters...)
	w.registry.RegisterQuery(q)
	return q
}

// QueryFromCQL compiles a query-language string into a registered live query.
// Component names in the string must name registered component types.
func (w *World) QueryFromCQL(cqlText string) (*query.Query, error) {
	shapeFilter, err := cql.Parse(cqlText, func(name string) error {
		_, err := w.registry.ComponentByName(name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w.Search(shapeFilter), nil
}

// RegisterComponent registers the component type T with the world and, when
// snapshot storage is configured, persists its schema.
func RegisterComponent[T types.Component](w *World) error {
	meta, err := component.NewComponentMetadata[T]()
	if err != nil {
		return err
	}
	if err := w.registry.RegisterComponent(meta); err != nil {
		return err
	}
	if w.storage != nil {
		if err := w.storage.SetSchema(meta.Name(), meta.GetSchema()); err != nil {
			return err
		}
	}
	return nil
}

// Create allocates an entity holding the given components.
func Create(w *World, comps ...types.Component) (ecs.EntityHandle, error) {
	return w.registry.CreateEntityWith(comps...)
}
