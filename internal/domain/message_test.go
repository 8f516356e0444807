package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderTicketCreated(t *testing.T) {
	content := RenderTicketCreated("CA-4", 4, 20)
	require.Contains(t, content, "CA-4")
	require.Contains(t, content, "#4")
	require.Contains(t, content, "20 minutos")
}

func TestRenderNearTurn(t *testing.T) {
	content := RenderNearTurn("PB-2")
	require.Contains(t, content, "PB-2")
	require.Contains(t, content, "turno")
}

func TestRenderTurnActive(t *testing.T) {
	content := RenderTurnActive("GE-1", "M5", "Laura Soto")
	require.Contains(t, content, "GE-1")
	require.Contains(t, content, "M5")
	require.Contains(t, content, "Laura Soto")
}
