package cron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&testJob{name: "a"}))
	assert.Error(t, registry.Register(&testJob{name: "a"}))
	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(&testJob{}))

	jobs := registry.Jobs()
	require.Len(t, jobs, 1)
	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0], "internal slice leaked")
}
