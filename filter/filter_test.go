package filter_test

import (
	"strings"
	"testing"

	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/assert"
	"github.com/yvileapsis/TEHOM-old-sub000/filter"
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

func taggedShape(t *testing.T, name, value string, comps ...types.Component) *archetype.Shape {
	t.Helper()
	shape, err := archetype.FromComponents(comps...).
		WithTerm(name, types.Term{Kind: types.TermAuxiliary, Value: value})
	assert.NilError(t, err)
	return shape
}

func TestContainsMatchesSupersets(t *testing.T) {
	f := filter.Contains("position")

	assert.True(t, f.MatchesShape(archetype.FromComponents(Position{})))
	assert.True(t, f.MatchesShape(archetype.FromComponents(Position{}, Velocity{})))
	assert.False(t, f.MatchesShape(archetype.FromComponents(Velocity{})))
	assert.False(t, f.MatchesShape(archetype.NewShape(nil)))
}

func TestExactIgnoresTheEntityTerm(t *testing.T) {
	f := filter.Exact("position", "velocity")

	assert.True(t, f.MatchesShape(archetype.FromComponents(Position{}, Velocity{})))
	assert.False(t, f.MatchesShape(archetype.FromComponents(Position{})))

	// An extra auxiliary term breaks exactness.
	tagged := taggedShape(t, "team", "red", Position{}, Velocity{})
	assert.False(t, f.MatchesShape(tagged))
}

func TestTagMatchesNameAndValue(t *testing.T) {
	f := filter.Tag("team", "red")

	assert.True(t, f.MatchesShape(taggedShape(t, "team", "red", Position{})))
	assert.False(t, f.MatchesShape(taggedShape(t, "team", "blue", Position{})))
	assert.False(t, f.MatchesShape(archetype.FromComponents(Position{})))
}

func TestPredicateSeesTheTermValue(t *testing.T) {
	f := filter.Predicate("team", func(term types.Term) bool {
		return strings.HasPrefix(term.Value, "r")
	})

	assert.True(t, f.MatchesShape(taggedShape(t, "team", "red", Position{})))
	assert.False(t, f.MatchesShape(taggedShape(t, "team", "blue", Position{})))
	assert.False(t, f.MatchesShape(archetype.FromComponents(Position{})))
}

func TestCombinators(t *testing.T) {
	posNotVel := filter.And(filter.Contains("position"), filter.Not(filter.Contains("velocity")))
	assert.True(t, posNotVel.MatchesShape(archetype.FromComponents(Position{})))
	assert.False(t, posNotVel.MatchesShape(archetype.FromComponents(Position{}, Velocity{})))

	either := filter.Or(filter.Contains("position"), filter.Contains("velocity"))
	assert.True(t, either.MatchesShape(archetype.FromComponents(Velocity{})))
	assert.False(t, either.MatchesShape(archetype.NewShape(nil)))

	assert.True(t, filter.All().MatchesShape(archetype.NewShape(nil)))
}
