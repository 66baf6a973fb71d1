package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fanflow-app/fanflow/internal/store"
)

func TestSplitOrigins(t *testing.T) {
	require.Nil(t, splitOrigins(""))
	require.Nil(t, splitOrigins("  "))
	require.Equal(t, []string{"https://fanflow.app"}, splitOrigins("https://fanflow.app"))
	require.Equal(t,
		[]string{"https://fanflow.app", "http://localhost:3000"},
		splitOrigins(" https://fanflow.app, http://localhost:3000 ,"))
}

func TestLoadWindowsEnvOverride(t *testing.T) {
	t.Setenv("CLIP_COOLDOWN", "45s")
	windows := loadWindows()
	require.Equal(t, 45*time.Second, windows.ClipSubmit)
	require.Equal(t, 60*time.Second, windows.ProfileSave, "unset windows keep defaults")
}

func TestDetectDSNType(t *testing.T) {
	require.Equal(t, "postgres", store.DetectDSNType("postgres://u:p@localhost/fanflow"))
	require.Equal(t, "postgres", store.DetectDSNType("host=localhost user=fanflow"))
	require.Equal(t, "sqlite", store.DetectDSNType("/var/lib/fanflow/fanflow.db"))
}
