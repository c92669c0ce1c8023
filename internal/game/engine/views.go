package engine

import (
	"github.com/palemoky/avalon/internal/game"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/event"
	"github.com/palemoky/avalon/internal/game/knowledge"
	"github.com/palemoky/avalon/internal/game/player"
	"github.com/palemoky/avalon/internal/game/role"
)

// PublicView 对所有观察者安全的对局视图
// 不含角色、个人投票与个人出牌
type PublicView struct {
	PlayerIDs             []string
	PlayerNames           []string
	Phase                 Phase
	Round                 int
	Attempt               int
	LeaderID              string
	ResistanceScore       int
	MinionScore           int
	ConsecutiveRejections int
	CurrentTeam           []string
	Votes                 []VoteSummary
	Missions              []MissionSummary
	Statements            []discussion.Statement
	Winner                role.Alignment
	Assassination         *AssassinationRecord
}

// PlayerView 指定玩家可见的私密视图
type PlayerView struct {
	Public    PublicView
	PlayerID  string
	Role      role.Type
	Alignment role.Alignment
	Knowledge knowledge.Packet
	// OwnBallots 自己投过的票 (round, attempt) -> approve
	OwnBallots []OwnBallot
	// OwnActions 自己在各任务中的出牌
	OwnActions []OwnAction
}

// OwnBallot 玩家自己的一张组队票
type OwnBallot struct {
	Round   int
	Attempt int
	Approve bool
}

// OwnAction 玩家自己的一次任务出牌
type OwnAction struct {
	Round   int
	Attempt int
	Card    Card
}

// Config 返回对局配置
func (g *Game) Config() game.Config {
	return g.cfg
}

// Phase 返回当前阶段
func (g *Game) Phase() Phase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase
}

// Round 返回当前轮次（从 1 开始）
func (g *Game) Round() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.round
}

// Attempt 返回本轮第几次提名（从 1 开始）
func (g *Game) Attempt() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.attempt
}

// Leader 返回现任队长
func (g *Game) Leader() *player.Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.players[g.leaderIndex]
}

// Scores 返回 (抵抗组织得分, 爪牙得分)
func (g *Game) Scores() (resistance, minion int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.resistanceScore, g.minionScore
}

// ConsecutiveRejections 返回当前连续否决计数
func (g *Game) ConsecutiveRejections() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.consecutiveRejections
}

// CurrentTeam 返回当前提名/执行中的队伍
func (g *Game) CurrentTeam() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.currentTeam...)
}

// Players 返回座位顺序的完整名册（含角色，管理用途）
func (g *Game) Players() []*player.Player {
	out := make([]*player.Player, len(g.players))
	copy(out, g.players)
	return out
}

// PlayerByID 按 id 查找玩家
func (g *Game) PlayerByID(id string) (*player.Player, bool) {
	p, ok := g.byID[id]
	return p, ok
}

// KnowledgeFor 返回指定玩家的开局情报包
func (g *Game) KnowledgeFor(playerID string) (knowledge.Packet, bool) {
	packet, ok := g.packets[playerID]
	return packet, ok
}

// Winner 返回最终胜方，未分出时为空
func (g *Game) Winner() role.Alignment {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.finalWinner
}

// ProvisionalWinner 返回暂定胜方（三胜后待刺杀反转）
func (g *Game) ProvisionalWinner() role.Alignment {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.provisionalWinner
}

// Assassination 返回刺杀记录，未发生时为 nil
func (g *Game) Assassination() *AssassinationRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.assassination == nil {
		return nil
	}
	out := *g.assassination
	return &out
}

// VoteHistory 返回含个人票的完整投票历史（管理用途）
func (g *Game) VoteHistory() []VoteRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]VoteRecord, len(g.votes))
	copy(out, g.votes)
	return out
}

// PublicVotes 返回只含聚合计数的投票历史
func (g *Game) PublicVotes() []VoteSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]VoteSummary, len(g.votes))
	for i, v := range g.votes {
		out[i] = v.Summary()
	}
	return out
}

// MissionHistory 返回含个人出牌的完整任务历史（管理用途）
func (g *Game) MissionHistory() []MissionRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]MissionRecord, len(g.missions))
	copy(out, g.missions)
	return out
}

// PublicMissions 返回不含个人出牌的任务历史
func (g *Game) PublicMissions() []MissionSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]MissionSummary, len(g.missions))
	for i, m := range g.missions {
		out[i] = m.Summary()
	}
	return out
}

// Events 返回底层事件日志
func (g *Game) Events() *event.Log {
	return g.log
}

// Seed 返回建局种子
func (g *Game) Seed() int64 {
	return g.seed
}

// Public 返回完整的公开视图投影
func (g *Game) Public() PublicView {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]string, len(g.players))
	names := make([]string, len(g.players))
	for i, p := range g.players {
		ids[i] = p.ID
		names[i] = p.DisplayName
	}
	votes := make([]VoteSummary, len(g.votes))
	for i, v := range g.votes {
		votes[i] = v.Summary()
	}
	missions := make([]MissionSummary, len(g.missions))
	for i, m := range g.missions {
		missions[i] = m.Summary()
	}

	view := PublicView{
		PlayerIDs:             ids,
		PlayerNames:           names,
		Phase:                 g.phase,
		Round:                 g.round,
		Attempt:               g.attempt,
		LeaderID:              g.players[g.leaderIndex].ID,
		ResistanceScore:       g.resistanceScore,
		MinionScore:           g.minionScore,
		ConsecutiveRejections: g.consecutiveRejections,
		CurrentTeam:           append([]string(nil), g.currentTeam...),
		Votes:                 votes,
		Missions:              missions,
		Statements:            g.statementsLocked(),
	}
	// 刺杀结果在终局后属于公开信息
	if g.phase == PhaseGameOver {
		view.Winner = g.finalWinner
		if g.assassination != nil {
			record := *g.assassination
			view.Assassination = &record
		}
	}
	return view
}

// ViewFor 返回指定玩家的私密视图
func (g *Game) ViewFor(playerID string) (PlayerView, bool) {
	p, ok := g.byID[playerID]
	if !ok {
		return PlayerView{}, false
	}

	public := g.Public()

	g.mu.RLock()
	defer g.mu.RUnlock()

	var ballots []OwnBallot
	for _, v := range g.votes {
		if approve, voted := v.Ballots[playerID]; voted {
			ballots = append(ballots, OwnBallot{Round: v.Round, Attempt: v.Attempt, Approve: approve})
		}
	}
	var actions []OwnAction
	for _, m := range g.missions {
		for _, a := range m.Actions {
			if a.PlayerID == playerID {
				actions = append(actions, OwnAction{Round: m.Round, Attempt: m.Attempt, Card: a.Card})
			}
		}
	}

	return PlayerView{
		Public:     public,
		PlayerID:   playerID,
		Role:       p.Role,
		Alignment:  p.Alignment(),
		Knowledge:  g.packets[playerID],
		OwnBallots: ballots,
		OwnActions: actions,
	}, true
}
