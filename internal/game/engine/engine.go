// Package engine 实现规则状态机：回合推进、行动校验与胜负判定
// 所有写操作串行执行，读取可并发
package engine

import (
	"sync"

	"github.com/palemoky/avalon/internal/game"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/event"
	"github.com/palemoky/avalon/internal/game/knowledge"
	"github.com/palemoky/avalon/internal/game/player"
	"github.com/palemoky/avalon/internal/game/role"
	"github.com/palemoky/avalon/internal/game/setup"
)

// Phase 状态机阶段
type Phase string

const (
	PhaseSetup                Phase = "setup"
	PhaseLeadership           Phase = "leadership"
	PhaseTeamProposal         Phase = "team_proposal"
	PhaseTeamVote             Phase = "team_vote"
	PhaseMissionExecution     Phase = "mission_execution"
	PhaseOutcome              Phase = "outcome"
	PhaseAssassinationPending Phase = "assassination_pending"
	PhaseGameOver             Phase = "game_over"
)

// Card 任务牌
type Card string

const (
	CardSuccess Card = "success"
	CardFail    Card = "fail"
)

// MissionResult 任务结果
type MissionResult string

const (
	MissionSuccess MissionResult = "success"
	MissionFailure MissionResult = "failure"
)

// VoteRecord 一次组队投票的完整记录
// Ballots 为私密数据，公开视图只暴露聚合计数
type VoteRecord struct {
	Round    int
	Attempt  int
	LeaderID string
	Team     []string
	Ballots  map[string]bool
	Approved bool
}

// Approvals 赞成票数
func (v VoteRecord) Approvals() int {
	n := 0
	for _, approve := range v.Ballots {
		if approve {
			n++
		}
	}
	return n
}

// Rejections 反对票数
func (v VoteRecord) Rejections() int {
	return len(v.Ballots) - v.Approvals()
}

// Summary 返回可公开的聚合视图
func (v VoteRecord) Summary() VoteSummary {
	return VoteSummary{
		Round:      v.Round,
		Attempt:    v.Attempt,
		LeaderID:   v.LeaderID,
		Team:       append([]string(nil), v.Team...),
		Approvals:  v.Approvals(),
		Rejections: v.Rejections(),
		Approved:   v.Approved,
	}
}

// VoteSummary 投票的公开聚合视图
type VoteSummary struct {
	Round      int
	Attempt    int
	LeaderID   string
	Team       []string
	Approvals  int
	Rejections int
	Approved   bool
}

// MissionAction 私密记录：某位队员打出的任务牌
type MissionAction struct {
	PlayerID string
	Card     Card
}

// MissionRecord 一轮任务的完整记录，Actions 为私密数据
type MissionRecord struct {
	Round         int
	Attempt       int
	Team          []string
	FailCount     int
	RequiredFails int
	Result        MissionResult
	AutoFail      bool
	Actions       []MissionAction
}

// Summary 返回不含个人出牌的公开视图
func (m MissionRecord) Summary() MissionSummary {
	return MissionSummary{
		Round:         m.Round,
		Attempt:       m.Attempt,
		Team:          append([]string(nil), m.Team...),
		FailCount:     m.FailCount,
		RequiredFails: m.RequiredFails,
		Result:        m.Result,
		AutoFail:      m.AutoFail,
	}
}

// MissionSummary 任务的公开视图：只含队伍、结果与计数
type MissionSummary struct {
	Round         int
	Attempt       int
	Team          []string
	FailCount     int
	RequiredFails int
	Result        MissionResult
	AutoFail      bool
}

// AssassinationRecord 刺杀结算记录，一局至多一条
type AssassinationRecord struct {
	AssassinID string
	TargetID   string
	Correct    bool
	Winner     role.Alignment
}

// Game 一局游戏的状态机
type Game struct {
	mu sync.RWMutex

	cfg     game.Config
	players []*player.Player
	byID    map[string]*player.Player
	packets map[string]knowledge.Packet

	phase       Phase
	round       int
	attempt     int
	leaderIndex int

	resistanceScore int
	minionScore     int

	currentTeam  []string
	pendingVotes map[string]bool
	pendingCards map[string]Card

	consecutiveRejections int

	votes         []VoteRecord
	missions      []MissionRecord
	assassination *AssassinationRecord

	discussions       []discussion.Round
	currentDiscussion *discussion.Round

	provisionalWinner role.Alignment
	finalWinner       role.Alignment

	seed int64
	log  *event.Log
}

// New 根据开局结果创建状态机并写入开局事件
func New(res *setup.Result) (*Game, error) {
	g, err := construct(res.Config, res.Players, res.Seed, event.NewLog())
	if err != nil {
		return nil, err
	}
	g.recordSetupEvents()
	g.setPhase(PhaseLeadership)
	return g, nil
}

// construct 构建状态机骨架，供开局与快照恢复共用
func construct(cfg game.Config, players []*player.Player, seed int64, log *event.Log) (*Game, error) {
	byID := make(map[string]*player.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	// 情报包由角色分配唯一确定，无需持久化，恢复时重算
	packets, err := knowledge.Resolve(players)
	if err != nil {
		return nil, err
	}

	return &Game{
		cfg:     cfg,
		players: players,
		byID:    byID,
		packets: packets,
		phase:   PhaseSetup,
		round:   1,
		attempt: 1,
		seed:    seed,
		log:     log,
	}, nil
}

// recordSetupEvents 写入开局事件：公开开局 + 各玩家私密身份与情报
func (g *Game) recordSetupEvents() {
	names := make([]string, len(g.players))
	ids := make([]string, len(g.players))
	for i, p := range g.players {
		names[i] = p.DisplayName
		ids[i] = p.ID
	}
	g.log.Record(event.KindGameStarted, map[string]any{
		"player_count": g.cfg.PlayerCount,
		"player_ids":   ids,
		"player_names": names,
		"seed":         g.seed,
	}, event.VisibilityPublic)

	var mutualMinions []string
	for _, p := range g.players {
		g.log.Record(event.KindRoleAssigned, map[string]any{
			"player_id": p.ID,
			"role":      string(p.Role),
			"alignment": string(p.Alignment()),
		}, event.VisibilityPrivate, event.PlayerTag(p.ID))

		packet := g.packets[p.ID]
		if packet.HasInformation() {
			g.log.Record(event.KindKnowledgeRevealed, map[string]any{
				"player_id":        p.ID,
				"visible":          packet.Visible,
				"ambiguous_groups": packet.AmbiguousGroups,
			}, event.VisibilityPrivate, event.PlayerTag(p.ID))
		}

		if p.Alignment() == role.AlignmentMinion && !p.HasTag(role.TagIsolated) {
			mutualMinions = append(mutualMinions, p.ID)
		}
	}

	if len(mutualMinions) > 1 {
		g.log.Record(event.KindMinionsRevealed, map[string]any{
			"player_ids": mutualMinions,
		}, event.VisibilityPrivate, event.AlignmentTag(role.AlignmentMinion))
	}
}

// setPhase 切换阶段并写入公开事件
func (g *Game) setPhase(phase Phase) {
	g.phase = phase
	g.log.Record(event.KindPhaseChanged, map[string]any{
		"phase": string(phase),
	}, event.VisibilityPublic)
}

// advanceLeader 队长按座位顺序轮转一位
func (g *Game) advanceLeader() {
	g.leaderIndex = (g.leaderIndex + 1) % len(g.players)
}

// obfuscationSeed 推导任务出牌乱序种子
// 仅依赖 (建局种子, 轮次, 尝试次数)，快照恢复后可复现同一顺序
func obfuscationSeed(seed int64, round, attempt int) int64 {
	return (seed << 16) ^ int64(round<<8) ^ int64(attempt)
}
