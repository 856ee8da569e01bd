package redis

import "fmt"

/*
	SNAPSHOT STORAGE:  per-namespace pair of hashes, field = archetype index.
	The META hash holds the JSON term map and entity ids; the DATA hash holds
	the matching raw column payload.

	SCHEMA STORAGE:    per-namespace hash of component name -> JSON schema.
*/

func (r *SnapshotStorage) snapshotMetaKey() string {
	return fmt.Sprintf("%s:SNAPSHOT_META", r.Namespace)
}

func (r *SnapshotStorage) snapshotDataKey() string {
	return fmt.Sprintf("%s:SNAPSHOT_DATA", r.Namespace)
}

func (r *SchemaStorage) schemaStorageKey() string {
	return fmt.Sprintf("%s:COMPONENT_NAME_TO_SCHEMA_DATA", r.Namespace)
}
