package agent

import (
	"fmt"

	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/engine"
	"github.com/palemoky/avalon/internal/game/knowledge"
	"github.com/palemoky/avalon/internal/game/role"
)

// Observation 某个代理玩家在某一时刻可见的全部信息
// 由引擎的玩家视图投影而来，绝不包含他人私密数据
type Observation struct {
	PlayerID    string
	DisplayName string
	Role        role.Type
	Alignment   role.Alignment
	Knowledge   knowledge.Packet

	PlayerIDs   []string
	PlayerNames []string

	Phase                 engine.Phase
	Round                 int
	Attempt               int
	ResistanceScore       int
	MinionScore           int
	ConsecutiveRejections int
	LeaderID              string
	CurrentTeam           []string

	Votes    []engine.VoteSummary
	Missions []engine.MissionSummary

	// Statements 全部公开发言，含进行中的讨论
	Statements []discussion.Statement

	RequiredTeamSize  int
	RequiredFailCount int

	// OwnActions 自己参与过的任务出牌，供推理使用
	OwnActions []engine.OwnAction
}

// Observe 为指定玩家构建观察
func Observe(g *engine.Game, playerID string) (Observation, error) {
	view, ok := g.ViewFor(playerID)
	if !ok {
		return Observation{}, fmt.Errorf("unknown player id: %s", playerID)
	}
	p, _ := g.PlayerByID(playerID)
	cfg := g.Config()

	return Observation{
		PlayerID:              playerID,
		DisplayName:           p.DisplayName,
		Role:                  view.Role,
		Alignment:             view.Alignment,
		Knowledge:             view.Knowledge,
		PlayerIDs:             view.Public.PlayerIDs,
		PlayerNames:           view.Public.PlayerNames,
		Phase:                 view.Public.Phase,
		Round:                 view.Public.Round,
		Attempt:               view.Public.Attempt,
		ResistanceScore:       view.Public.ResistanceScore,
		MinionScore:           view.Public.MinionScore,
		ConsecutiveRejections: view.Public.ConsecutiveRejections,
		LeaderID:              view.Public.LeaderID,
		CurrentTeam:           view.Public.CurrentTeam,
		Votes:                 view.Public.Votes,
		Missions:              view.Public.Missions,
		Statements:            view.Public.Statements,
		RequiredTeamSize:      cfg.TeamSize(view.Public.Round),
		RequiredFailCount:     cfg.FailThreshold(view.Public.Round),
		OwnActions:            view.OwnActions,
	}, nil
}

// NameOf 按 id 查显示名，未知 id 原样返回
func (o Observation) NameOf(playerID string) string {
	for i, id := range o.PlayerIDs {
		if id == playerID {
			return o.PlayerNames[i]
		}
	}
	return playerID
}
