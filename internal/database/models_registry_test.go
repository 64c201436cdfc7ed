package database

import (
	"testing"

	modelspkg "capstonehub/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesRequest(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*modelspkg.Request); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include Request")
}
