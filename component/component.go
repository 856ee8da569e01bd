// Package component wraps user-defined component structs with the metadata the
// registry needs: a generically-instantiated column factory and the JSON
// schema captured at registration time.
package component

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"

	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

// Interface guard
var _ types.ComponentMetadata = (*componentMetadata[types.Component])(nil)

// componentMetadata represents a type of component. The column factory is
// bound to the concrete Go type here, once, so archetype creation never needs
// runtime type introspection.
type componentMetadata[T types.Component] struct {
	compType reflect.Type
	name     string
	schema   []byte
}

// NewComponentMetadata creates the metadata for a component type.
func NewComponentMetadata[T types.Component]() (types.ComponentMetadata, error) {
	var t T
	compType := reflect.TypeOf(t)

	schema, err := jsonschema.ReflectFromType(compType).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}

	return &componentMetadata[T]{
		compType: compType,
		name:     t.Name(),
		schema:   schema,
	}, nil
}

func (c *componentMetadata[T]) Name() string {
	return c.name
}

// String returns the component type name.
func (c *componentMetadata[T]) String() string {
	return c.name
}

func (c *componentMetadata[T]) GetSchema() []byte {
	return c.schema
}

func (c *componentMetadata[T]) NewColumn(name string) types.Column {
	return archetype.NewStore[T](name)
}
