package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/avalon/internal/apperrors"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/player"
	"github.com/palemoky/avalon/internal/game/role"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMixedPlayerEntries(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
game:
  optional_roles: [percival, morgana]
  seed: 42
players:
  - Alice
  - name: Bob
    type: agent
  - name: Carol
  - Dave
  - Eve
agent:
  model: gpt-4o-mini
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Players, 5)
	assert.Equal(t, "Alice", cfg.Players[0].Name)
	assert.Equal(t, "human", cfg.Players[0].Type)
	assert.Equal(t, "Bob", cfg.Players[1].Name)
	assert.Equal(t, "agent", cfg.Players[1].Type)
	assert.Equal(t, "human", cfg.Players[2].Type)

	require.NotNil(t, cfg.Game.Seed)
	assert.Equal(t, int64(42), *cfg.Game.Seed)
	assert.Equal(t, "gpt-4o-mini", cfg.Agent.Model)
	assert.Equal(t, 60, cfg.Agent.Timeout, "timeout defaults when unset")
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	t.Run("Missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid yaml", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, "players: [unbalanced"))
		assert.ErrorIs(t, err, apperrors.ErrConfigIncompatible)
	})

	t.Run("No players", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, "game:\n  seed: 1\n"))
		assert.ErrorIs(t, err, apperrors.ErrConfigIncompatible)
	})
}

func TestGameConfigBuildsRoles(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
game:
  optional_roles: [Percival, MORGANA]
players: [A, B, C, D, E, F, G]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	gameCfg, err := cfg.GameConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, gameCfg.PlayerCount)

	counts := map[role.Type]int{}
	for _, r := range gameCfg.Roles {
		counts[r]++
	}
	// Merlin and the assassin are implied, names are case-insensitive.
	assert.Equal(t, 1, counts[role.Merlin])
	assert.Equal(t, 1, counts[role.Assassin])
	assert.Equal(t, 1, counts[role.Percival])
	assert.Equal(t, 1, counts[role.Morgana])
}

func TestGameConfigRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
game:
  optional_roles: [jester]
players: [A, B, C, D, E]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.GameConfig()
	assert.ErrorIs(t, err, apperrors.ErrConfigIncompatible)
}

func TestGameConfigRejectsBadPlayerCount(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "players: [A, B, C]\n"))
	require.NoError(t, err)

	_, err = cfg.GameConfig()
	assert.ErrorIs(t, err, apperrors.ErrConfigIncompatible)
}

func TestDiscussionSectionOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
players: [A, B, C, D, E]
discussion:
  pre_vote: false
  post_mission: false
  max_statements: 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	gameCfg, err := cfg.GameConfig()
	require.NoError(t, err)

	d := gameCfg.Discussion
	assert.True(t, d.Enabled, "unset keys keep their defaults")
	assert.True(t, d.PreProposal)
	assert.False(t, d.PreVote)
	assert.False(t, d.PostMission)
	assert.True(t, d.PreAssassination)
	assert.Equal(t, 1, d.MaxStatementsPerPlayer)
	assert.True(t, d.AllowPass)
}

func TestDiscussionSectionDefaultsWhenAbsent(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "players: [A, B, C, D, E]\n"))
	require.NoError(t, err)

	gameCfg, err := cfg.GameConfig()
	require.NoError(t, err)
	assert.Equal(t, discussion.DefaultConfig(), gameCfg.Discussion)
}

func TestDiscussionSectionExplicitDisable(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
players: [A, B, C, D, E]
discussion:
  enabled: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	gameCfg, err := cfg.GameConfig()
	require.NoError(t, err)
	assert.False(t, gameCfg.Discussion.Enabled)
	for _, phase := range []discussion.Phase{
		discussion.PhasePreProposal, discussion.PhasePreVote,
		discussion.PhasePostMission, discussion.PhasePreAssassination,
	} {
		assert.False(t, gameCfg.Discussion.Allows(phase))
	}
}

func TestRegistrations(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
players:
  - Alice
  - name: Bob
    type: agent
  - name: Carol
    type: HUMAN
  - D
  - E
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	regs, err := cfg.Registrations()
	require.NoError(t, err)
	require.Len(t, regs, 5)
	assert.Equal(t, player.KindHuman, regs[0].Kind)
	assert.Equal(t, player.KindAgent, regs[1].Kind)
	assert.Equal(t, player.KindHuman, regs[2].Kind)
}

func TestRegistrationsRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
players:
  - name: Alice
    type: robot
  - B
  - C
  - D
  - E
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.Registrations()
	assert.ErrorIs(t, err, apperrors.ErrConfigIncompatible)
}
