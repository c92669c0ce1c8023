package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/avalon/internal/apperrors"
	"github.com/palemoky/avalon/internal/game/role"
)

func TestDefaultConfigs(t *testing.T) {
	t.Parallel()

	for playerCount := 5; playerCount <= 10; playerCount++ {
		cfg, err := Default(playerCount)
		require.NoError(t, err)
		assert.Equal(t, playerCount, cfg.PlayerCount)
		assert.NoError(t, cfg.Validate())
		assert.True(t, cfg.HasAssassin(), "official sets always seat the assassin")
	}

	_, err := Default(12)
	assert.ErrorIs(t, err, apperrors.ErrConfigIncompatible)
}

func TestConfigValidateUnsupportedCount(t *testing.T) {
	t.Parallel()

	cfg := Config{PlayerCount: 4, Roles: []role.Type{role.LoyalServant}}
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrConfigIncompatible)
}

func TestConfigAccessors(t *testing.T) {
	t.Parallel()

	cfg, err := Default(7)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.TeamSize(1))
	assert.Equal(t, 4, cfg.TeamSize(4))
	assert.Equal(t, 1, cfg.FailThreshold(1))
	assert.Equal(t, 2, cfg.FailThreshold(4))
}

func TestHasAssassinWithoutMerlin(t *testing.T) {
	t.Parallel()

	cfg := Config{
		PlayerCount: 5,
		Roles: []role.Type{role.LoyalServant, role.LoyalServant, role.LoyalServant,
			role.MinionOfMordred, role.MinionOfMordred},
	}
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.HasAssassin())
}
