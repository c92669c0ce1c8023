//go:build !production

// Package testutil 提供测试专用的对局构造与推进工具
package testutil

import (
	"fmt"

	"github.com/palemoky/avalon/internal/game"
	"github.com/palemoky/avalon/internal/game/engine"
	"github.com/palemoky/avalon/internal/game/player"
	"github.com/palemoky/avalon/internal/game/role"
	"github.com/palemoky/avalon/internal/game/rule"
	"github.com/palemoky/avalon/internal/game/setup"
)

// Registrations 生成 n 份报名，id 为 p1..pn，名字为 Player1..PlayerN
func Registrations(n int) []setup.Registration {
	out := make([]setup.Registration, n)
	for i := range out {
		out[i] = setup.Registration{
			PlayerID:    fmt.Sprintf("p%d", i+1),
			DisplayName: fmt.Sprintf("Player%d", i+1),
			Kind:        player.KindHuman,
		}
	}
	return out
}

// StartGame 按默认角色组合、固定种子开一局
func StartGame(playerCount int, seed int64) (*engine.Game, error) {
	cfg, err := game.Default(playerCount)
	if err != nil {
		return nil, err
	}
	cfg.Seed = &seed

	res, err := setup.Perform(cfg, Registrations(playerCount))
	if err != nil {
		return nil, err
	}
	return engine.New(res)
}

// StartGameWithRoles 指定角色组合开一局
func StartGameWithRoles(roles []role.Type, seed int64) (*engine.Game, error) {
	cfg := game.Config{
		PlayerCount: len(roles),
		Roles:       roles,
		Seed:        &seed,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res, err := setup.Perform(cfg, Registrations(len(roles)))
	if err != nil {
		return nil, err
	}
	return engine.New(res)
}

// FindByRole 按角色查玩家
func FindByRole(g *engine.Game, r role.Type) (*player.Player, bool) {
	for _, p := range g.Players() {
		if p.Role == r {
			return p, true
		}
	}
	return nil, false
}

// FindByAlignment 返回指定阵营的全部玩家
func FindByAlignment(g *engine.Game, a role.Alignment) []*player.Player {
	var out []*player.Player
	for _, p := range g.Players() {
		if p.Alignment() == a {
			out = append(out, p)
		}
	}
	return out
}

// ProposeLeaderTeam 由当前队长提名从自己起按座位顺序凑满人数的队伍
func ProposeLeaderTeam(g *engine.Game) error {
	leader := g.Leader()
	size := g.Config().TeamSize(g.Round())
	ids := make([]string, 0, size)
	players := g.Players()

	start := 0
	for i, p := range players {
		if p.ID == leader.ID {
			start = i
			break
		}
	}
	for i := 0; len(ids) < size; i++ {
		ids = append(ids, players[(start+i)%len(players)].ID)
	}
	return g.ProposeTeam(leader.ID, ids)
}

// VoteAll 所有玩家投出同一票
func VoteAll(g *engine.Game, approve bool) (*engine.VoteSummary, error) {
	var summary *engine.VoteSummary
	for _, p := range g.Players() {
		s, err := g.CastVote(p.ID, approve)
		if err != nil {
			return nil, err
		}
		if s != nil {
			summary = s
		}
	}
	return summary, nil
}

// PlayMission 队员出牌：邪恶队员中前 fails 名出失败牌，其余出成功牌
func PlayMission(g *engine.Game, fails int) (*engine.MissionSummary, error) {
	var summary *engine.MissionSummary
	remaining := fails
	for _, id := range g.CurrentTeam() {
		p, _ := g.PlayerByID(id)
		card := engine.CardSuccess
		if remaining > 0 && p.Alignment() == role.AlignmentMinion {
			card = engine.CardFail
			remaining--
		}
		s, err := g.SubmitMissionCard(id, card)
		if err != nil {
			return nil, err
		}
		if s != nil {
			summary = s
		}
	}
	if remaining > 0 {
		return nil, fmt.Errorf("team lacks enough minions to play %d fail cards", fails)
	}
	return summary, nil
}

// RunMissionRound 完整跑完一轮：提名、全票通过、按 fails 出牌
func RunMissionRound(g *engine.Game, fails int) (*engine.MissionSummary, error) {
	if err := ProposeLeaderTeam(g); err != nil {
		return nil, err
	}
	if _, err := VoteAll(g, true); err != nil {
		return nil, err
	}
	return PlayMission(g, fails)
}

// AlignedTeamRound 提名一支优先由指定阵营组成的队伍，全票通过后按 fails 出牌
func AlignedTeamRound(g *engine.Game, preferred role.Alignment, fails int) (*engine.MissionSummary, error) {
	leader := g.Leader()
	size := g.Config().TeamSize(g.Round())

	ids := make([]string, 0, size)
	for _, p := range FindByAlignment(g, preferred) {
		if len(ids) == size {
			break
		}
		ids = append(ids, p.ID)
	}
	for _, p := range g.Players() {
		if len(ids) == size {
			break
		}
		if p.Alignment() != preferred {
			ids = append(ids, p.ID)
		}
	}

	if err := g.ProposeTeam(leader.ID, ids); err != nil {
		return nil, err
	}
	if _, err := VoteAll(g, true); err != nil {
		return nil, err
	}
	return PlayMission(g, fails)
}

// RejectionsToAutoFail 返回触发自动判负所需的连续否决次数
func RejectionsToAutoFail() int {
	return rule.MaxRejections
}
