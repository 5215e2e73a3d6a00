package app

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpk-tools/internal/types"
)

func TestServiceInspect(t *testing.T) {
	ws := newWorkspace(t)
	service := newTestService(t)
	out := calculateWorkspace(t, service, ws)

	result, err := service.Inspect(InspectRequest{OutputDir: out})
	require.NoError(t, err)
	require.Len(t, result.Buckets, len(types.Buckets))

	counts := map[types.Bucket]int{}
	for _, summary := range result.Buckets {
		counts[summary.Bucket] = summary.Count
		assert.Len(t, summary.Files, summary.Count)
	}
	assert.Equal(t, 1, counts[types.BucketLibraries])
	assert.Equal(t, 2, counts[types.BucketRemoteCordapps])
	require.Len(t, result.Dependencies, 3)
	assert.Equal(t, "com.example.contracts", result.Dependencies[0].Name)
}

func TestServiceInspectErrors(t *testing.T) {
	service := newTestService(t)

	_, err := service.Inspect(InspectRequest{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = service.Inspect(InspectRequest{OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}
