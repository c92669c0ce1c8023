// Package agent 连接引擎与自动玩家：构建观察、调用决策器
// 决策器只做管道，不含任何学习逻辑
package agent

import (
	"context"

	"github.com/palemoky/avalon/internal/game/discussion"
)

// TeamProposal 代理的组队提名
type TeamProposal struct {
	Team      []string
	Reasoning string
}

// VoteDecision 代理的组队投票
type VoteDecision struct {
	Approve   bool
	Reasoning string
}

// MissionDecision 代理的任务出牌
type MissionDecision struct {
	Success   bool
	Reasoning string
}

// AssassinationGuess 代理刺客的刺杀目标
type AssassinationGuess struct {
	TargetID  string
	Reasoning string
}

// DiscussionResponse 代理的讨论发言，Message 为空表示弃权
type DiscussionResponse struct {
	Message   string
	Reasoning string
}

// Decider 自动玩家的决策接口
// 实现方只能依赖传入的 Observation，不得访问引擎私有状态
type Decider interface {
	ProposeTeam(ctx context.Context, obs Observation) (TeamProposal, error)
	VoteOnTeam(ctx context.Context, obs Observation) (VoteDecision, error)
	ExecuteMission(ctx context.Context, obs Observation) (MissionDecision, error)
	GuessMerlin(ctx context.Context, obs Observation) (AssassinationGuess, error)
	MakeStatement(ctx context.Context, obs Observation, phase discussion.Phase) (DiscussionResponse, error)
}
