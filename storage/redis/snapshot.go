package redis

import (
	"bytes"
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/yvileapsis/TEHOM-old-sub000/codec"
	"github.com/yvileapsis/TEHOM-old-sub000/ecs"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

var ErrNoSnapshotFound = eris.New("no snapshot found")

// SnapshotStorage persists a whole registry as one dump per populated
// archetype: a JSON record of the shape's terms and the entity ids, plus the
// raw column payload in bulk-load order. Loading replays each dump through
// the registry's bulk-load path.
type SnapshotStorage struct {
	Client    *redis.Client
	Namespace string
}

func NewSnapshotStorage(client *redis.Client, namespace string) SnapshotStorage {
	return SnapshotStorage{
		Client:    client,
		Namespace: namespace,
	}
}

// archetypeDump is the JSON half of one archetype's snapshot. Entities are
// listed in the same row order the column payload was written in.
type archetypeDump struct {
	Terms    map[string]types.Term `json:"terms"`
	Entities []types.EntityID      `json:"entities"`
}

// SaveRegistry overwrites the namespace's snapshot with the registry's current
// populated archetypes.
func (r *SnapshotStorage) SaveRegistry(ctx context.Context, reg *ecs.Registry) error {
	if err := r.Client.Del(ctx, r.snapshotMetaKey(), r.snapshotDataKey()).Err(); err != nil {
		return eris.Wrap(err, "")
	}
	index := 0
	for _, arch := range reg.Archetypes() {
		if arch.Count() == 0 {
			continue
		}
		rows := arch.OccupiedRows()
		dump := archetypeDump{
			Terms:    arch.Shape().TermMap(),
			Entities: make([]types.EntityID, 0, len(rows)),
		}
		for _, row := range rows {
			slot, err := arch.Slot(row)
			if err != nil {
				return err
			}
			dump.Entities = append(dump.Entities, slot.Entity)
		}
		meta, err := codec.Encode(dump)
		if err != nil {
			return err
		}
		payload := bytes.Buffer{}
		if err := arch.WriteBulk(&payload, rows); err != nil {
			return err
		}
		field := strconv.Itoa(index)
		if err := r.Client.HSet(ctx, r.snapshotMetaKey(), field, meta).Err(); err != nil {
			return eris.Wrap(err, "")
		}
		if err := r.Client.HSet(ctx, r.snapshotDataKey(), field, payload.Bytes()).Err(); err != nil {
			return eris.Wrap(err, "")
		}
		index++
	}
	return nil
}

// LoadRegistry replays the namespace's snapshot into the registry. All
// component types present in the snapshot must already be registered. The
// registry is expected to be empty; adopted entity ids collide otherwise.
func (r *SnapshotStorage) LoadRegistry(ctx context.Context, reg *ecs.Registry) error {
	metas, err := r.Client.HGetAll(ctx, r.snapshotMetaKey()).Result()
	if err != nil {
		return eris.Wrap(err, "")
	}
	if len(metas) == 0 {
		return eris.Wrap(ErrNoSnapshotFound, r.Namespace)
	}
	for field, meta := range metas {
		dump, err := codec.Decode[archetypeDump]([]byte(meta))
		if err != nil {
			return err
		}
		payload, err := r.Client.HGet(ctx, r.snapshotDataKey(), field).Bytes()
		if err != nil {
			return eris.Wrap(err, "")
		}
		if err := reg.AdoptArchetype(dump.Terms, dump.Entities, bytes.NewReader(payload)); err != nil {
			return err
		}
	}
	return nil
}
