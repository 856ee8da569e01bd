package archetype_test

import (
	"testing"

	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/assert"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
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

func TestShapeIdentityIgnoresConstructionOrder(t *testing.T) {
	a := archetype.FromComponents(Position{}, Velocity{})
	b := archetype.FromComponents(Velocity{}, Position{})

	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, a.Equal(b))
}

func TestShapeAlwaysContainsTheEntityTerm(t *testing.T) {
	empty := archetype.NewShape(nil)
	assert.True(t, empty.HasTerm(types.EntityTermName))
	assert.Equal(t, 1, empty.Len())

	withComps := archetype.FromComponents(Position{})
	assert.True(t, withComps.HasTerm(types.EntityTermName))
	assert.Equal(t, 2, withComps.Len())
}

func TestEntityTermCannotBeAddedOrRemoved(t *testing.T) {
	shape := archetype.FromComponents(Position{})

	_, err := shape.WithTerm(types.EntityTermName, types.Term{Kind: types.TermIntrinsic})
	assert.ErrorIs(t, err, archetype.ErrIntrinsicTermImmutable)

	_, err = shape.WithTerm("other", types.Term{Kind: types.TermIntrinsic})
	assert.ErrorIs(t, err, archetype.ErrIntrinsicTermImmutable)

	_, err = shape.WithoutTerm(types.EntityTermName)
	assert.ErrorIs(t, err, archetype.ErrIntrinsicTermImmutable)
}

func TestWithTermRejectsANamePresentInTheShape(t *testing.T) {
	shape := archetype.FromComponents(Position{})
	_, err := shape.WithTerm("position", types.Term{Kind: types.TermAssociated, TypeName: "position"})
	assert.ErrorIs(t, err, archetype.ErrTermAlreadyPresent)
}

func TestWithoutTermRejectsAnAbsentName(t *testing.T) {
	shape := archetype.FromComponents(Position{})
	_, err := shape.WithoutTerm("velocity")
	assert.ErrorIs(t, err, archetype.ErrTermNotPresent)
}

func TestWithTermLeavesTheReceiverUntouched(t *testing.T) {
	shape := archetype.FromComponents(Position{})
	grown, err := shape.WithTerm("velocity", types.Term{Kind: types.TermAssociated, TypeName: "velocity"})
	assert.NilError(t, err)

	assert.Equal(t, 2, shape.Len())
	assert.Equal(t, 3, grown.Len())
	assert.False(t, shape.Equal(grown))
}

func TestAuxiliaryTermsCarryNoColumn(t *testing.T) {
	shape := archetype.FromComponents(Position{})
	tagged, err := shape.WithTerm("team", types.Term{Kind: types.TermAuxiliary, Value: "red"})
	assert.NilError(t, err)

	assert.Equal(t, 3, tagged.Len())
	assert.DeepEqual(t, []string{"position"}, tagged.ColumnNames())
}

func TestTagValueIsPartOfTheShapeIdentity(t *testing.T) {
	base := archetype.FromComponents(Position{})
	red, err := base.WithTerm("team", types.Term{Kind: types.TermAuxiliary, Value: "red"})
	assert.NilError(t, err)
	blue, err := base.WithTerm("team", types.Term{Kind: types.TermAuxiliary, Value: "blue"})
	assert.NilError(t, err)

	assert.False(t, red.Equal(blue))
}

func TestShapeRoundTripsThroughItsTermMap(t *testing.T) {
	shape := archetype.FromComponents(Position{}, Velocity{})
	rebuilt := archetype.NewShape(shape.TermMap())
	assert.True(t, shape.Equal(rebuilt))
}
