package types

import (
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// Component is the interface that the user needs to implement to create a new
// component type.
type Component interface {
	// Name returns the name of the component.
	Name() string
}

// ComponentMetadata wraps a user-defined Component struct with the
// functionality the engine needs: a column factory and the component's JSON
// schema, captured once at registration time.
type ComponentMetadata interface {
	Component

	// NewColumn returns an empty storage column for this component type.
	NewColumn(name string) Column
	// GetSchema returns the JSON schema captured from the component struct.
	GetSchema() []byte
}

func SerializeComponentSchema(component Component) ([]byte, error) {
	componentSchema := jsonschema.Reflect(component)
	schema, err := componentSchema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

// IsSchemaValid returns true if the two JSON schemas are identical.
func IsSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}
