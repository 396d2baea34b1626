package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextwoods/woodsgames/internal/gameerr"
)

func TestDecodeRoundTrip(t *testing.T) {
	e, g := newTestGame(t, withCPUs(1))

	decoded, err := Decode(mustJSON(t, g))
	require.NoError(t, err)
	assert.Equal(t, g, decoded)

	_, err = Decode(mustJSON(t, e.Fresh()))
	require.NoError(t, err)
}

func TestDecodeMigratesLegacyDocument(t *testing.T) {
	legacy := `{
		"players": ["alice"],
		"teams": {"green": {"color": "0x00ff00", "players": ["alice"]}},
		"player_team": {"alice": "green"},
		"cpu_players": null,
		"state": "WAITING_FOR_PLAYERS",
		"turn": 0,
		"settings": {"sequences_to_win": 2, "sequence_length": 5, "board": "spiral", "custom_hand_cards": null, "cpu_wait_time": null},
		"table_state": {}
	}`

	g, err := Decode([]byte(legacy))
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, g.SchemaVersion)
	assert.Nil(t, g.TableState)
	assert.Equal(t, []string{}, g.CPUPlayers)
	assert.Equal(t, Green, g.PlayerTeam["alice"])
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"players": [`},
		{"unknown field", `{"schema_version": 1, "players": [], "teams": {}, "player_team": {}, "cpu_players": [], "state": "WAITING_FOR_PLAYERS", "colour": "red"}`},
		{"newer version", `{"schema_version": 2}`},
		{"missing players", `{"schema_version": 1, "teams": {}, "player_team": {}, "state": "WAITING_FOR_PLAYERS"}`},
		{"unknown state", `{"schema_version": 1, "players": [], "teams": {}, "player_team": {}, "state": "PAUSED"}`},
		{"playing without a table", `{"schema_version": 1, "players": ["a"], "teams": {}, "player_team": {}, "state": "WAITING_TO_PLAY"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, gameerr.ErrInvalidState)
		})
	}
}
