//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/avalon/internal/agent"
	"github.com/palemoky/avalon/internal/game/discussion"
)

// MockDecider 实现 agent.Decider 的 mock
type MockDecider struct {
	mock.Mock
}

func (m *MockDecider) ProposeTeam(ctx context.Context, obs agent.Observation) (agent.TeamProposal, error) {
	args := m.Called(ctx, obs)
	return args.Get(0).(agent.TeamProposal), args.Error(1)
}

func (m *MockDecider) VoteOnTeam(ctx context.Context, obs agent.Observation) (agent.VoteDecision, error) {
	args := m.Called(ctx, obs)
	return args.Get(0).(agent.VoteDecision), args.Error(1)
}

func (m *MockDecider) ExecuteMission(ctx context.Context, obs agent.Observation) (agent.MissionDecision, error) {
	args := m.Called(ctx, obs)
	return args.Get(0).(agent.MissionDecision), args.Error(1)
}

func (m *MockDecider) GuessMerlin(ctx context.Context, obs agent.Observation) (agent.AssassinationGuess, error) {
	args := m.Called(ctx, obs)
	return args.Get(0).(agent.AssassinationGuess), args.Error(1)
}

func (m *MockDecider) MakeStatement(ctx context.Context, obs agent.Observation, phase discussion.Phase) (agent.DiscussionResponse, error) {
	args := m.Called(ctx, obs, phase)
	return args.Get(0).(agent.DiscussionResponse), args.Error(1)
}
