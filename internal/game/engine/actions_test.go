package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/avalon/internal/apperrors"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/engine"
	"github.com/palemoky/avalon/internal/game/role"
	"github.com/palemoky/avalon/internal/testutil"
)

func startGame(t *testing.T, playerCount int) *engine.Game {
	t.Helper()
	g, err := testutil.StartGame(playerCount, 42)
	require.NoError(t, err)
	return g
}

func teamOfSeats(g *engine.Game, size int) []string {
	ids := make([]string, 0, size)
	for _, p := range g.Players()[:size] {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestProposeTeamValidation(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	leader := g.Leader()
	size := g.Config().TeamSize(1)
	team := teamOfSeats(g, size)

	var notLeader string
	for _, p := range g.Players() {
		if p.ID != leader.ID {
			notLeader = p.ID
			break
		}
	}

	tests := []struct {
		name     string
		leaderID string
		team     []string
		expected error
	}{
		{
			name:     "Non-leader proposer",
			leaderID: notLeader,
			team:     team,
			expected: apperrors.ErrInvalidLeader,
		},
		{
			name:     "Wrong team size",
			leaderID: leader.ID,
			team:     team[:size-1],
			expected: apperrors.ErrInvalidTeamSize,
		},
		{
			name:     "Duplicate member",
			leaderID: leader.ID,
			team:     []string{team[0], team[0]},
			expected: apperrors.ErrDuplicatePlayer,
		},
		{
			name:     "Unknown member",
			leaderID: leader.ID,
			team:     []string{team[0], "ghost"},
			expected: apperrors.ErrUnknownPlayer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ProposeTeam(tt.leaderID, tt.team)
			assert.ErrorIs(t, err, tt.expected)
			// A rejected proposal leaves the game untouched.
			assert.Equal(t, engine.PhaseLeadership, g.Phase())
			assert.Empty(t, g.CurrentTeam())
		})
	}

	require.NoError(t, g.ProposeTeam(leader.ID, team))
	assert.Equal(t, engine.PhaseTeamVote, g.Phase())
	assert.Equal(t, team, g.CurrentTeam())

	// Proposing again mid-vote is out of phase.
	assert.ErrorIs(t, g.ProposeTeam(leader.ID, team), apperrors.ErrInvalidPhase)
}

func TestCastVoteBuffersUntilComplete(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	require.NoError(t, g.ProposeTeam(g.Leader().ID, teamOfSeats(g, 2)))

	players := g.Players()
	for i := 0; i < len(players)-1; i++ {
		summary, err := g.CastVote(players[i].ID, true)
		require.NoError(t, err)
		assert.Nil(t, summary, "vote %d must not resolve early", i)
		assert.Equal(t, engine.PhaseTeamVote, g.Phase())
	}

	// Double voting is rejected while the set is still open.
	_, err := g.CastVote(players[0].ID, false)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyVoted)

	// Outsiders cannot vote.
	_, err = g.CastVote("ghost", true)
	assert.ErrorIs(t, err, apperrors.ErrUnknownPlayer)

	summary, err := g.CastVote(players[len(players)-1].ID, true)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 5, summary.Approvals)
	assert.True(t, summary.Approved)
	assert.Equal(t, engine.PhaseMissionExecution, g.Phase())
}

func TestCastVoteOutOfPhase(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	_, err := g.CastVote(g.Players()[0].ID, true)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPhase)
}

func TestCastVotesResolvesWholeSet(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	require.NoError(t, g.ProposeTeam(g.Leader().ID, teamOfSeats(g, 2)))

	ballots := make(map[string]bool, 5)
	for i, p := range g.Players() {
		ballots[p.ID] = i < 4
	}

	summary, err := g.CastVotes(ballots)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 4, summary.Approvals)
	assert.Equal(t, 1, summary.Rejections)
	assert.True(t, summary.Approved)
	assert.Equal(t, engine.PhaseMissionExecution, g.Phase())
}

func TestCastVotesRejectsIncompleteSet(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	require.NoError(t, g.ProposeTeam(g.Leader().ID, teamOfSeats(g, 2)))
	players := g.Players()

	// One ballot short: the whole set is refused and nothing is buffered.
	ballots := map[string]bool{}
	for _, p := range players[:4] {
		ballots[p.ID] = true
	}
	_, err := g.CastVotes(ballots)
	assert.ErrorIs(t, err, apperrors.ErrIncompleteVoteSet)
	assert.Equal(t, engine.PhaseTeamVote, g.Phase())

	// A player from the refused batch can still vote normally, so the
	// partial set really was discarded.
	summary, err := g.CastVote(players[0].ID, true)
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestCastVotesValidation(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)

	// Out of phase before any proposal.
	_, err := g.CastVotes(map[string]bool{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPhase)

	require.NoError(t, g.ProposeTeam(g.Leader().ID, teamOfSeats(g, 2)))
	players := g.Players()

	full := make(map[string]bool, 5)
	for _, p := range players {
		full[p.ID] = true
	}

	// Unknown voter in the batch.
	withGhost := map[string]bool{"ghost": true}
	for id, v := range full {
		withGhost[id] = v
	}
	_, err = g.CastVotes(withGhost)
	assert.ErrorIs(t, err, apperrors.ErrUnknownPlayer)

	// Overlap with an already-cast individual vote.
	_, err = g.CastVote(players[0].ID, false)
	require.NoError(t, err)
	_, err = g.CastVotes(full)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyVoted)

	// The remaining seats can still be filled as a batch.
	rest := make(map[string]bool, 4)
	for _, p := range players[1:] {
		rest[p.ID] = true
	}
	summary, err := g.CastVotes(rest)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 4, summary.Approvals)
	assert.Equal(t, 1, summary.Rejections)
}

func TestEvenSplitRejects(t *testing.T) {
	t.Parallel()

	// Six players, three approvals: no strict majority, the proposal falls.
	g := startGame(t, 6)
	leaderBefore := g.Leader().ID
	require.NoError(t, g.ProposeTeam(leaderBefore, teamOfSeats(g, 2)))

	var summary *engine.VoteSummary
	for i, p := range g.Players() {
		s, err := g.CastVote(p.ID, i < 3)
		require.NoError(t, err)
		if s != nil {
			summary = s
		}
	}

	require.NotNil(t, summary)
	assert.Equal(t, 3, summary.Approvals)
	assert.Equal(t, 3, summary.Rejections)
	assert.False(t, summary.Approved)

	assert.Equal(t, engine.PhaseTeamProposal, g.Phase())
	assert.Equal(t, 2, g.Attempt())
	assert.Equal(t, 1, g.ConsecutiveRejections())
	assert.NotEqual(t, leaderBefore, g.Leader().ID)
}

func TestFiveRejectionsAutoFail(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)

	for i := 0; i < 5; i++ {
		require.NoError(t, testutil.ProposeLeaderTeam(g))
		summary, err := testutil.VoteAll(g, false)
		require.NoError(t, err)
		require.NotNil(t, summary)
		assert.False(t, summary.Approved)
	}

	// The fifth rejection scores a failed mission for the minions.
	missions := g.MissionHistory()
	require.Len(t, missions, 1)
	assert.True(t, missions[0].AutoFail)
	assert.Equal(t, engine.MissionFailure, missions[0].Result)
	assert.Equal(t, 1, missions[0].FailCount)
	assert.Equal(t, missions[0].RequiredFails, missions[0].FailCount)
	assert.Empty(t, missions[0].Team)

	_, minionScore := g.Scores()
	assert.Equal(t, 1, minionScore)

	// Play resumes normally in the next round with a fresh counter.
	assert.Equal(t, engine.PhaseLeadership, g.Phase())
	assert.Equal(t, 2, g.Round())
	assert.Equal(t, 1, g.Attempt())
	assert.Equal(t, 0, g.ConsecutiveRejections())
}

func TestApprovalResetsRejectionCounter(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)

	require.NoError(t, testutil.ProposeLeaderTeam(g))
	_, err := testutil.VoteAll(g, false)
	require.NoError(t, err)
	assert.Equal(t, 1, g.ConsecutiveRejections())

	require.NoError(t, testutil.ProposeLeaderTeam(g))
	_, err = testutil.VoteAll(g, true)
	require.NoError(t, err)
	assert.Equal(t, 0, g.ConsecutiveRejections())
	assert.Equal(t, engine.PhaseMissionExecution, g.Phase())
}

func TestSubmitMissionCardValidation(t *testing.T) {
	t.Parallel()

	g, err := testutil.StartGameWithRoles([]role.Type{
		role.Merlin, role.Percival, role.LoyalServant, role.Assassin, role.Morgana,
	}, 42)
	require.NoError(t, err)

	_, err = testutil.AlignedTeamRound(g, role.AlignmentResistance, 0)
	// AlignedTeamRound plays the mission through; instead drive this one by hand.
	require.NoError(t, err)

	// Round two: put one resistance and one minion player on the team.
	resistance := testutil.FindByAlignment(g, role.AlignmentResistance)
	minions := testutil.FindByAlignment(g, role.AlignmentMinion)
	size := g.Config().TeamSize(g.Round())
	team := []string{resistance[0].ID, minions[0].ID}
	for _, p := range resistance[1:] {
		if len(team) == size {
			break
		}
		team = append(team, p.ID)
	}
	require.NoError(t, g.ProposeTeam(g.Leader().ID, team))
	_, err = testutil.VoteAll(g, true)
	require.NoError(t, err)
	require.Equal(t, engine.PhaseMissionExecution, g.Phase())

	var offTeam string
	for _, p := range g.Players() {
		onTeam := false
		for _, id := range team {
			if p.ID == id {
				onTeam = true
			}
		}
		if !onTeam {
			offTeam = p.ID
			break
		}
	}

	// Bystanders cannot play cards.
	_, err = g.SubmitMissionCard(offTeam, engine.CardSuccess)
	assert.ErrorIs(t, err, apperrors.ErrNotOnMission)

	// Unknown ids are rejected before team membership is considered.
	_, err = g.SubmitMissionCard("ghost", engine.CardSuccess)
	assert.ErrorIs(t, err, apperrors.ErrUnknownPlayer)

	// A resistance member may not throw the mission; the buffer stays open.
	_, err = g.SubmitMissionCard(resistance[0].ID, engine.CardFail)
	assert.ErrorIs(t, err, apperrors.ErrAlignmentViolation)

	// The same player can still submit the legal card afterwards.
	_, err = g.SubmitMissionCard(resistance[0].ID, engine.CardSuccess)
	require.NoError(t, err)

	// Duplicate submissions are rejected.
	_, err = g.SubmitMissionCard(resistance[0].ID, engine.CardSuccess)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateSubmission)

	// Garbage card values never enter the buffer.
	_, err = g.SubmitMissionCard(minions[0].ID, engine.Card("banana"))
	assert.Error(t, err)

	summary, err := g.SubmitMissionCard(minions[0].ID, engine.CardFail)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, engine.MissionFailure, summary.Result)
	assert.Equal(t, 1, summary.FailCount)
}

func TestFourthMissionNeedsTwoFailsWithSevenPlayers(t *testing.T) {
	t.Parallel()

	g := startGame(t, 7)

	// Alternate wins to reach round four at two all.
	_, err := testutil.AlignedTeamRound(g, role.AlignmentResistance, 0)
	require.NoError(t, err)
	_, err = testutil.AlignedTeamRound(g, role.AlignmentMinion, 1)
	require.NoError(t, err)
	_, err = testutil.AlignedTeamRound(g, role.AlignmentResistance, 0)
	require.NoError(t, err)
	require.Equal(t, 4, g.Round())

	// A single fail card is not enough on the protected round.
	summary, err := testutil.AlignedTeamRound(g, role.AlignmentMinion, 1)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.RequiredFails)
	assert.Equal(t, 1, summary.FailCount)
	assert.Equal(t, engine.MissionSuccess, summary.Result)
}

func TestAssassinationValidation(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	for g.Phase() != engine.PhaseAssassinationPending {
		_, err := testutil.AlignedTeamRound(g, role.AlignmentResistance, 0)
		require.NoError(t, err)
	}

	assassin, ok := testutil.FindByRole(g, role.Assassin)
	require.True(t, ok)
	merlin, ok := testutil.FindByRole(g, role.Merlin)
	require.True(t, ok)
	servant, ok := testutil.FindByRole(g, role.Percival)
	require.True(t, ok)

	// Only the assassin may act.
	_, err := g.PerformAssassination(servant.ID, merlin.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAssassin)

	// The target has to exist and cannot be the assassin.
	_, err = g.PerformAssassination(assassin.ID, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrUnknownTarget)
	_, err = g.PerformAssassination(assassin.ID, assassin.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnknownTarget)

	record, err := g.PerformAssassination(assassin.ID, servant.ID)
	require.NoError(t, err)
	assert.False(t, record.Correct)
	assert.Equal(t, role.AlignmentResistance, record.Winner)
	assert.Equal(t, engine.PhaseGameOver, g.Phase())

	// Exactly one assassination per game.
	_, err = g.PerformAssassination(assassin.ID, merlin.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResolved)
}

func TestAssassinationOutOfPhase(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	assassin, ok := testutil.FindByRole(g, role.Assassin)
	require.True(t, ok)
	merlin, ok := testutil.FindByRole(g, role.Merlin)
	require.True(t, ok)

	_, err := g.PerformAssassination(assassin.ID, merlin.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPhase)
}

func TestTerminalStateRejectsEverything(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	for g.Phase() != engine.PhaseAssassinationPending {
		_, err := testutil.AlignedTeamRound(g, role.AlignmentResistance, 0)
		require.NoError(t, err)
	}
	assassin, _ := testutil.FindByRole(g, role.Assassin)
	merlin, _ := testutil.FindByRole(g, role.Merlin)
	_, err := g.PerformAssassination(assassin.ID, merlin.ID)
	require.NoError(t, err)
	require.Equal(t, engine.PhaseGameOver, g.Phase())

	err = g.ProposeTeam(g.Leader().ID, teamOfSeats(g, 2))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResolved)
	_, err = g.CastVote(g.Players()[0].ID, true)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResolved)
	_, err = g.SubmitMissionCard(g.Players()[0].ID, engine.CardSuccess)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResolved)
	_, err = g.PerformAssassination(assassin.ID, merlin.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResolved)
	_, err = g.CastVotes(map[string]bool{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResolved)
	err = g.StartDiscussion(discussion.PhasePreProposal)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResolved)
	_, err = g.AddStatement(g.Players()[0].ID, "table talk after the verdict")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResolved)
}

func TestLeaderRotatesAfterMission(t *testing.T) {
	t.Parallel()

	g := startGame(t, 5)
	first := g.Leader().ID
	_, err := testutil.AlignedTeamRound(g, role.AlignmentResistance, 0)
	require.NoError(t, err)
	assert.NotEqual(t, first, g.Leader().ID)
	assert.Equal(t, 2, g.Round())
}
