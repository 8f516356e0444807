package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttentionCatalogue(t *testing.T) {
	tests := []struct {
		attentionType AttentionType
		prefix        string
		average       int
		priority      int
	}{
		{AttentionCaja, "CA", 5, 1},
		{AttentionPersonalBanker, "PB", 15, 2},
		{AttentionEmpresas, "EM", 20, 2},
		{AttentionGerencia, "GE", 30, 3},
	}
	for _, tt := range tests {
		profile, ok := ProfileFor(tt.attentionType)
		require.True(t, ok)
		require.Equal(t, tt.prefix, profile.Prefix)
		require.Equal(t, tt.average, profile.AverageServiceMinutes)
		require.Equal(t, tt.priority, profile.Priority)
	}
}

func TestProfileForUnknownType(t *testing.T) {
	_, ok := ProfileFor(AttentionType("LOANS"))
	require.False(t, ok)
}

func TestParseAttentionType(t *testing.T) {
	parsed, err := ParseAttentionType("EMPRESAS")
	require.NoError(t, err)
	require.Equal(t, AttentionEmpresas, parsed)

	_, err = ParseAttentionType("empresas")
	require.Error(t, err)
	_, err = ParseAttentionType("")
	require.Error(t, err)
}

func TestAttentionProfilesOrderedByPriority(t *testing.T) {
	profiles := AttentionProfiles()
	require.Len(t, profiles, 4)
	for i := 1; i < len(profiles); i++ {
		require.GreaterOrEqual(t, profiles[i-1].Priority, profiles[i].Priority)
	}
	// Ties break deterministically so every tick scans in the same order.
	require.Equal(t, AttentionGerencia, profiles[0].Type)
	require.Equal(t, AttentionEmpresas, profiles[1].Type)
	require.Equal(t, AttentionPersonalBanker, profiles[2].Type)
	require.Equal(t, AttentionCaja, profiles[3].Type)
}
