package agent

import (
	"context"

	"github.com/palemoky/avalon/internal/game/discussion"
)

// Scripted 确定性决策器，用于测试与离线演示
// 队列为空时落到固定默认策略
type Scripted struct {
	// AlwaysApprove 默认投票策略
	AlwaysApprove bool
	// AlwaysSucceed 默认出牌策略（忽略阵营约束由引擎兜底）
	AlwaysSucceed bool

	Proposals  []TeamProposal
	Votes      []VoteDecision
	Missions   []MissionDecision
	Guesses    []AssassinationGuess
	Statements []DiscussionResponse

	proposalIdx  int
	voteIdx      int
	missionIdx   int
	guessIdx     int
	statementIdx int
}

// NewScripted 创建始终赞成、始终成功的默认决策器
func NewScripted() *Scripted {
	return &Scripted{AlwaysApprove: true, AlwaysSucceed: true}
}

// ProposeTeam 弹出脚本提名；无脚本时提名座位顺序前 N 人
func (s *Scripted) ProposeTeam(_ context.Context, obs Observation) (TeamProposal, error) {
	if s.proposalIdx < len(s.Proposals) {
		p := s.Proposals[s.proposalIdx]
		s.proposalIdx++
		return p, nil
	}
	team := append([]string(nil), obs.PlayerIDs[:obs.RequiredTeamSize]...)
	return TeamProposal{Team: team, Reasoning: "default: first seats"}, nil
}

// VoteOnTeam 弹出脚本投票；无脚本时按 AlwaysApprove
func (s *Scripted) VoteOnTeam(_ context.Context, _ Observation) (VoteDecision, error) {
	if s.voteIdx < len(s.Votes) {
		v := s.Votes[s.voteIdx]
		s.voteIdx++
		return v, nil
	}
	return VoteDecision{Approve: s.AlwaysApprove, Reasoning: "default vote"}, nil
}

// ExecuteMission 弹出脚本出牌；无脚本时按 AlwaysSucceed
func (s *Scripted) ExecuteMission(_ context.Context, _ Observation) (MissionDecision, error) {
	if s.missionIdx < len(s.Missions) {
		m := s.Missions[s.missionIdx]
		s.missionIdx++
		return m, nil
	}
	return MissionDecision{Success: s.AlwaysSucceed, Reasoning: "default card"}, nil
}

// GuessMerlin 弹出脚本目标；无脚本时猜第一个非自己的玩家
func (s *Scripted) GuessMerlin(_ context.Context, obs Observation) (AssassinationGuess, error) {
	if s.guessIdx < len(s.Guesses) {
		g := s.Guesses[s.guessIdx]
		s.guessIdx++
		return g, nil
	}
	for _, id := range obs.PlayerIDs {
		if id != obs.PlayerID {
			return AssassinationGuess{TargetID: id, Reasoning: "default guess"}, nil
		}
	}
	return AssassinationGuess{TargetID: obs.PlayerIDs[0]}, nil
}

// MakeStatement 弹出脚本发言；无脚本时弃权
func (s *Scripted) MakeStatement(_ context.Context, _ Observation, _ discussion.Phase) (DiscussionResponse, error) {
	if s.statementIdx < len(s.Statements) {
		r := s.Statements[s.statementIdx]
		s.statementIdx++
		return r, nil
	}
	return DiscussionResponse{Reasoning: "default: pass"}, nil
}
