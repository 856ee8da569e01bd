package component_test

import (
	"testing"

	"github.com/yvileapsis/TEHOM-old-sub000/assert"
	"github.com/yvileapsis/TEHOM-old-sub000/component"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

type Health struct {
	Current int32
	Max     int32
}

func (Health) Name() string {
	return "health"
}

type Mana struct {
	Current int32
}

func (Mana) Name() string {
	return "mana"
}

func TestMetadataCarriesTheComponentName(t *testing.T) {
	meta, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)
	assert.Equal(t, "health", meta.Name())
}

func TestNewColumnStoresTheConcreteType(t *testing.T) {
	meta, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)

	col := meta.NewColumn("health")
	col.Extend(1)
	assert.NilError(t, col.SetValue(0, Health{Current: 10, Max: 20}))
	value, err := col.Value(0)
	assert.NilError(t, err)
	assert.Equal(t, Health{Current: 10, Max: 20}, value)

	assert.IsError(t, col.SetValue(0, Mana{Current: 5}))
}

func TestSchemaIsStableAcrossReflections(t *testing.T) {
	first, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)
	second, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)

	same, err := types.IsSchemaValid(first.GetSchema(), second.GetSchema())
	assert.NilError(t, err)
	assert.True(t, same)
}

func TestDifferentStructsProduceDifferentSchemas(t *testing.T) {
	healthMeta, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)
	manaMeta, err := component.NewComponentMetadata[Mana]()
	assert.NilError(t, err)

	same, err := types.IsSchemaValid(healthMeta.GetSchema(), manaMeta.GetSchema())
	assert.NilError(t, err)
	assert.False(t, same)
}
