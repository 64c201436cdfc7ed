package database

import (
	"testing"

	"capstonehub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		env         string
		wantSQL     bool
		wantAuto    bool
		wantErr     bool
	}{
		{name: "hybrid in development", mode: "hybrid", env: "development", wantSQL: true, wantAuto: true},
		{name: "hybrid in production", mode: "hybrid", env: "production", wantSQL: true, wantAuto: false},
		{name: "empty mode defaults to hybrid", mode: "", env: "development", wantSQL: true, wantAuto: true},
		{name: "sql mode", mode: "sql", env: "production", wantSQL: true, wantAuto: false},
		{name: "auto in development", mode: "auto", env: "development", wantSQL: false, wantAuto: true},
		{name: "auto refused in production", mode: "auto", env: "production", wantErr: true},
		{name: "auto refused in staging", mode: "auto", env: "staging", wantErr: true},
		{name: "unknown mode", mode: "bogus", env: "development", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{DBSchemaMode: tt.mode, Env: tt.env}
			runSQL, runAuto, err := schemaPolicy(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestRegisteredMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms, "embedded migrations should be registered at init")

	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Version, ms[i].Version, "migrations must be sorted by version")
	}
	for _, m := range ms {
		assert.NotEmpty(t, m.UpScript, "migration %s has no up script", m.String())
		assert.NotEmpty(t, m.DownScript, "migration %s has no down script", m.String())
	}
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "init"}, {Version: 2, Name: "index"}}

	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}
