package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/avalon/internal/apperrors"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/engine"
	"github.com/palemoky/avalon/internal/game/role"
	"github.com/palemoky/avalon/internal/game/snapshot"
	"github.com/palemoky/avalon/internal/testutil"
)

// roundTrip encodes the game to JSON and rebuilds it from the document.
func roundTrip(t *testing.T, g *engine.Game) *engine.Game {
	t.Helper()
	data, err := snapshot.Encode(g.ToSnapshot())
	require.NoError(t, err)
	doc, err := snapshot.Decode(data)
	require.NoError(t, err)
	restored, err := engine.FromSnapshot(doc)
	require.NoError(t, err)
	return restored
}

// assertEquivalent compares both the public projection and every player's
// private view between the original and the restored game.
func assertEquivalent(t *testing.T, original, restored *engine.Game) {
	t.Helper()
	assert.Equal(t, original.Public(), restored.Public())
	assert.Equal(t, original.Seed(), restored.Seed())
	assert.Equal(t, original.Events().Len(), restored.Events().Len())

	for _, p := range original.Players() {
		want, ok := original.ViewFor(p.ID)
		require.True(t, ok)
		got, ok := restored.ViewFor(p.ID)
		require.True(t, ok)
		assert.Equal(t, want, got, "view mismatch for %s", p.ID)

		assert.Equal(t,
			len(original.Events().ForPlayer(p.ID)),
			len(restored.Events().ForPlayer(p.ID)))
	}
}

func TestSnapshotRoundTripFreshGame(t *testing.T) {
	t.Parallel()

	g := startGame(t, 7)
	restored := roundTrip(t, g)
	assertEquivalent(t, g, restored)
	assert.Equal(t, engine.PhaseLeadership, restored.Phase())

	// The restored game accepts the same next action.
	require.NoError(t, testutil.ProposeLeaderTeam(restored))
}

func TestSnapshotRoundTripMidVote(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	require.NoError(t, testutil.ProposeLeaderTeam(g))
	players := g.Players()
	for _, p := range players[:3] {
		_, err := g.CastVote(p.ID, true)
		require.NoError(t, err)
	}

	restored := roundTrip(t, g)
	assertEquivalent(t, g, restored)
	require.Equal(t, engine.PhaseTeamVote, restored.Phase())

	// Buffered ballots survive: the three early voters stay locked out
	// and the remaining two can still complete the vote.
	_, err := restored.CastVote(players[0].ID, false)
	assert.Error(t, err)
	for _, p := range players[3:] {
		_, err := restored.CastVote(p.ID, true)
		require.NoError(t, err)
	}
	assert.Equal(t, engine.PhaseMissionExecution, restored.Phase())
}

func TestSnapshotRoundTripMidMission(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	resistance := testutil.FindByAlignment(g, role.AlignmentResistance)
	team := []string{resistance[0].ID, resistance[1].ID}
	require.NoError(t, g.ProposeTeam(g.Leader().ID, team))
	_, err := testutil.VoteAll(g, true)
	require.NoError(t, err)
	_, err = g.SubmitMissionCard(team[0], engine.CardSuccess)
	require.NoError(t, err)

	restored := roundTrip(t, g)
	assertEquivalent(t, g, restored)
	require.Equal(t, engine.PhaseMissionExecution, restored.Phase())

	summary, err := restored.SubmitMissionCard(team[1], engine.CardSuccess)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, engine.MissionSuccess, summary.Result)
}

func TestSnapshotRoundTripAssassinationPending(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	for g.Phase() != engine.PhaseAssassinationPending {
		_, err := testutil.AlignedTeamRound(g, role.AlignmentResistance, 0)
		require.NoError(t, err)
	}

	restored := roundTrip(t, g)
	assertEquivalent(t, g, restored)

	assassin, ok := testutil.FindByRole(restored, role.Assassin)
	require.True(t, ok)
	merlin, ok := testutil.FindByRole(restored, role.Merlin)
	require.True(t, ok)
	record, err := restored.PerformAssassination(assassin.ID, merlin.ID)
	require.NoError(t, err)
	assert.True(t, record.Correct)
}

func TestSnapshotRoundTripGameOver(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	for i := 0; i < 3; i++ {
		_, err := testutil.AlignedTeamRound(g, role.AlignmentMinion, 1)
		require.NoError(t, err)
	}
	require.Equal(t, engine.PhaseGameOver, g.Phase())

	restored := roundTrip(t, g)
	assertEquivalent(t, g, restored)
	assert.Equal(t, role.AlignmentMinion, restored.Winner())

	// Terminal games stay terminal after restoration.
	err := restored.ProposeTeam(restored.Leader().ID, []string{restored.Players()[0].ID})
	assert.Error(t, err)
}

func TestSnapshotPreservesPrivateHistories(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	require.NoError(t, testutil.ProposeLeaderTeam(g))
	_, err := testutil.VoteAll(g, false)
	require.NoError(t, err)
	_, err = testutil.AlignedTeamRound(g, role.AlignmentMinion, 1)
	require.NoError(t, err)

	restored := roundTrip(t, g)

	wantVotes := g.VoteHistory()
	gotVotes := restored.VoteHistory()
	require.Equal(t, len(wantVotes), len(gotVotes))
	for i := range wantVotes {
		assert.Equal(t, wantVotes[i].Ballots, gotVotes[i].Ballots)
	}

	wantMissions := g.MissionHistory()
	gotMissions := restored.MissionHistory()
	require.Equal(t, len(wantMissions), len(gotMissions))
	for i := range wantMissions {
		assert.Equal(t, wantMissions[i].Actions, gotMissions[i].Actions)
	}
}

func TestSnapshotRoundTripMidDiscussion(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	players := g.Players()

	// One archived discussion and one still open across the snapshot.
	require.NoError(t, g.StartDiscussion(discussion.PhasePreProposal))
	_, err := g.AddStatement(players[0].ID, "propose the obvious pair")
	require.NoError(t, err)
	_, err = g.AddStatement(players[1].ID, "agreed")
	require.NoError(t, err)
	require.NoError(t, g.EndDiscussion())

	require.NoError(t, testutil.ProposeLeaderTeam(g))
	require.NoError(t, g.StartDiscussion(discussion.PhasePreVote))
	_, err = g.AddStatement(players[2].ID, "this team smells wrong")
	require.NoError(t, err)

	restored := roundTrip(t, g)
	assertEquivalent(t, g, restored)
	assert.Equal(t, g.DiscussionHistory(), restored.DiscussionHistory())

	cur := restored.CurrentDiscussion()
	require.NotNil(t, cur)
	assert.Equal(t, discussion.PhasePreVote, cur.Phase)
	require.Len(t, cur.Statements, 1)
	assert.Equal(t, "this team smells wrong", cur.Statements[0].Message)

	// The open discussion keeps counting against the restored caps:
	// one more statement is allowed, a third is not.
	_, err = restored.AddStatement(players[2].ID, "I will vote it down")
	require.NoError(t, err)
	_, err = restored.AddStatement(players[2].ID, "and so should you")
	assert.ErrorIs(t, err, apperrors.ErrStatementLimit)

	require.NoError(t, restored.EndDiscussion())
	assert.Len(t, restored.DiscussionHistory(), 2)
}

func TestMissionActionOrderIsSubmissionIndependent(t *testing.T) {
	t.Parallel()

	playThrough := func(reverse bool) []engine.MissionAction {
		g, err := testutil.StartGame(5, 1234)
		require.NoError(t, err)

		team := teamOfSeats(g, 2)
		require.NoError(t, g.ProposeTeam(g.Leader().ID, team))
		_, err = testutil.VoteAll(g, true)
		require.NoError(t, err)

		order := team
		if reverse {
			order = []string{team[1], team[0]}
		}
		for _, id := range order {
			p, _ := g.PlayerByID(id)
			card := engine.CardSuccess
			if p.Alignment() == role.AlignmentMinion {
				card = engine.CardFail
			}
			_, err := g.SubmitMissionCard(id, card)
			require.NoError(t, err)
		}
		return g.MissionHistory()[0].Actions
	}

	// The stored order derives from the game seed, never from who clicked first.
	assert.Equal(t, playThrough(false), playThrough(true))
}
