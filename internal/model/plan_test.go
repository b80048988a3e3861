package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetalLevel(t *testing.T) {
	tests := []struct {
		in   string
		want MetalLevel
		ok   bool
	}{
		{"gold", MetalGold, true},
		{"GOLD", MetalGold, true},
		{" Silver ", MetalSilver, true},
		{"catastrophic", MetalCatastrophic, true},
		{"copper", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseMetalLevel(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParsePlanType(t *testing.T) {
	got, ok := ParsePlanType("hmo")
	require.True(t, ok)
	assert.Equal(t, PlanHMO, got)

	got, ok = ParsePlanType("hdhp")
	require.True(t, ok)
	assert.Equal(t, PlanHDHP, got)

	_, ok = ParsePlanType("indemnity")
	assert.False(t, ok)
}

func TestCoverageStatusOnFormulary(t *testing.T) {
	assert.True(t, Covered.OnFormulary())
	assert.True(t, Tier1.OnFormulary())
	assert.True(t, Tier4.OnFormulary())
	assert.False(t, NotCovered.OnFormulary())
}

func TestPlanLookupDefaults(t *testing.T) {
	p := Plan{
		Network:   map[string]NetworkStatus{"Dr. Smith": InNetwork},
		Formulary: map[string]CoverageStatus{"Metformin": Tier1},
	}

	assert.Equal(t, InNetwork, p.NetworkStatusFor("Dr. Smith"))
	assert.Equal(t, OutOfNetwork, p.NetworkStatusFor("Dr. Nobody"))
	assert.Equal(t, Tier1, p.CoverageFor("Metformin"))
	assert.Equal(t, NotCovered, p.CoverageFor("Unknownium"))
}

func TestDefaultAdministrativeIsIndependent(t *testing.T) {
	a := DefaultAdministrative()
	b := DefaultAdministrative()
	a.PriorAuthCommon = true
	a.PlanRating = 1.0

	assert.False(t, b.PriorAuthCommon)
	assert.Equal(t, 3.0, b.PlanRating)
}

func TestMetalLevelsDescendingOrder(t *testing.T) {
	want := []MetalLevel{MetalPlatinum, MetalGold, MetalSilver, MetalBronze, MetalCatastrophic}
	assert.Equal(t, want, MetalLevelsDescending)
}
