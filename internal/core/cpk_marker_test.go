package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"cpk-tools/internal/types"
)

func TestCpkMarkerRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		in     types.Coordinate
		marker types.Coordinate
	}{
		{
			name:   "grouped module",
			in:     types.Coordinate{Group: "com.example", Name: "workflows", Version: "1.0"},
			marker: types.Coordinate{Group: "com.example", Name: "com.example.workflows.corda.cpk", Version: "1.0"},
		},
		{
			name:   "module without group",
			in:     types.Coordinate{Name: "contracts"},
			marker: types.Coordinate{Name: "contracts.corda.cpk"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker := ToCpkMarker(tt.in)
			if diff := cmp.Diff(tt.marker, marker); diff != "" {
				t.Fatalf("unexpected marker (-want +got):\n%s", diff)
			}
			assert.True(t, IsCpkMarker(marker))
			back, ok := FromCpkMarker(marker)
			assert.True(t, ok)
			if diff := cmp.Diff(tt.in, back); diff != "" {
				t.Fatalf("unexpected module (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToCpkMarkerWithoutName(t *testing.T) {
	in := types.Coordinate{Group: "com.example", Version: "1.0"}
	marker := ToCpkMarker(in)
	assert.Equal(t, in, marker)
	assert.False(t, IsCpkMarker(marker))
}

func TestIsCpkMarkerRejectsLookalikes(t *testing.T) {
	tests := []struct {
		name string
		in   types.Coordinate
	}{
		{name: "suffix without group prefix", in: types.Coordinate{Group: "com.example", Name: "workflows.corda.cpk"}},
		{name: "prefix of another group", in: types.Coordinate{Group: "com.example", Name: "com.examples.workflows.corda.cpk"}},
		{name: "group and suffix only", in: types.Coordinate{Group: "com.example", Name: "com.example.corda.cpk"}},
		{name: "bare suffix", in: types.Coordinate{Name: ".corda.cpk"}},
		{name: "ordinary module", in: types.Coordinate{Group: "com.example", Name: "workflows"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, IsCpkMarker(tt.in))
			_, ok := FromCpkMarker(tt.in)
			assert.False(t, ok)
		})
	}
}

func TestToCpkMarkerDependencyDropsClassifierAndPlatform(t *testing.T) {
	dep := types.ModuleDependency("com.example", "workflows", "2.0").WithTransitive(false)
	dep.Classifier = "sources"
	dep.Platform = true

	marker := ToCpkMarkerDependency(dep)
	assert.Equal(t, "com.example:com.example.workflows.corda.cpk:2.0", marker.Key())
	assert.False(t, marker.Transitive)
	assert.False(t, marker.Platform)
	assert.Equal(t, "workflows", dep.Coordinate.Name)
}
