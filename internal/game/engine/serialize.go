package engine

import (
	"fmt"

	"github.com/palemoky/avalon/internal/game"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/event"
	"github.com/palemoky/avalon/internal/game/player"
	"github.com/palemoky/avalon/internal/game/role"
	"github.com/palemoky/avalon/internal/game/snapshot"
)

// ToSnapshot 将完整状态（含私密历史与事件日志）导出为快照文档
func (g *Game) ToSnapshot() *snapshot.Game {
	g.mu.RLock()
	defer g.mu.RUnlock()

	roles := make([]string, len(g.cfg.Roles))
	for i, r := range g.cfg.Roles {
		roles[i] = string(r)
	}

	players := make([]snapshot.PlayerData, len(g.players))
	for i, p := range g.players {
		players[i] = snapshot.PlayerData{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Role:        string(p.Role),
			Kind:        string(p.Kind),
		}
	}

	votes := make([]snapshot.VoteData, len(g.votes))
	for i, v := range g.votes {
		ballots := make(map[string]bool, len(v.Ballots))
		for id, approve := range v.Ballots {
			ballots[id] = approve
		}
		votes[i] = snapshot.VoteData{
			Round:    v.Round,
			Attempt:  v.Attempt,
			LeaderID: v.LeaderID,
			Team:     append([]string(nil), v.Team...),
			Ballots:  ballots,
			Approved: v.Approved,
		}
	}

	missions := make([]snapshot.MissionData, len(g.missions))
	for i, m := range g.missions {
		actions := make([]snapshot.ActionData, len(m.Actions))
		for j, a := range m.Actions {
			actions[j] = snapshot.ActionData{PlayerID: a.PlayerID, Card: string(a.Card)}
		}
		missions[i] = snapshot.MissionData{
			Round:         m.Round,
			Attempt:       m.Attempt,
			Team:          append([]string(nil), m.Team...),
			FailCount:     m.FailCount,
			RequiredFails: m.RequiredFails,
			Result:        string(m.Result),
			AutoFail:      m.AutoFail,
			Actions:       actions,
		}
	}

	discussions := make([]snapshot.DiscussionData, len(g.discussions))
	for i, r := range g.discussions {
		discussions[i] = discussionData(r)
	}
	var currentDiscussion *snapshot.DiscussionData
	if g.currentDiscussion != nil {
		d := discussionData(*g.currentDiscussion)
		currentDiscussion = &d
	}

	var assassination *snapshot.Assassination
	if g.assassination != nil {
		assassination = &snapshot.Assassination{
			AssassinID: g.assassination.AssassinID,
			TargetID:   g.assassination.TargetID,
			Correct:    g.assassination.Correct,
			Winner:     string(g.assassination.Winner),
		}
	}

	var pendingVotes map[string]bool
	if len(g.pendingVotes) > 0 {
		pendingVotes = make(map[string]bool, len(g.pendingVotes))
		for id, approve := range g.pendingVotes {
			pendingVotes[id] = approve
		}
	}
	var pendingCards map[string]string
	if len(g.pendingCards) > 0 {
		pendingCards = make(map[string]string, len(g.pendingCards))
		for id, card := range g.pendingCards {
			pendingCards[id] = string(card)
		}
	}

	return &snapshot.Game{
		Config: snapshot.ConfigData{
			PlayerCount:   g.cfg.PlayerCount,
			Roles:         roles,
			LadyOfTheLake: g.cfg.LadyOfTheLake,
			Seed:          g.cfg.Seed,
			Discussion: snapshot.DiscussionConfigData{
				Enabled:                g.cfg.Discussion.Enabled,
				PreProposal:            g.cfg.Discussion.PreProposal,
				PreVote:                g.cfg.Discussion.PreVote,
				PostMission:            g.cfg.Discussion.PostMission,
				PreAssassination:       g.cfg.Discussion.PreAssassination,
				MaxStatementsPerPlayer: g.cfg.Discussion.MaxStatementsPerPlayer,
				AllowPass:              g.cfg.Discussion.AllowPass,
			},
		},
		Players: players,
		State: snapshot.StateData{
			Phase:                 string(g.phase),
			Round:                 g.round,
			Attempt:               g.attempt,
			LeaderIndex:           g.leaderIndex,
			ResistanceScore:       g.resistanceScore,
			MinionScore:           g.minionScore,
			CurrentTeam:           append([]string(nil), g.currentTeam...),
			PendingVotes:          pendingVotes,
			PendingCards:          pendingCards,
			CurrentDiscussion:     currentDiscussion,
			ConsecutiveRejections: g.consecutiveRejections,
			ProvisionalWinner:     string(g.provisionalWinner),
			FinalWinner:           string(g.finalWinner),
		},
		Votes:         votes,
		Missions:      missions,
		Discussions:   discussions,
		Assassination: assassination,
		Seed:          g.seed,
		Events:        g.log.All(),
	}
}

// FromSnapshot 从快照文档重建行为等价的状态机
// 种子直接取自快照，恢复后队长轮转与乱序结果与原局一致
func FromSnapshot(s *snapshot.Game) (*Game, error) {
	cfgRoles := make([]role.Type, len(s.Config.Roles))
	for i, r := range s.Config.Roles {
		cfgRoles[i] = role.Type(r)
	}
	cfg := game.Config{
		PlayerCount:   s.Config.PlayerCount,
		Roles:         cfgRoles,
		LadyOfTheLake: s.Config.LadyOfTheLake,
		Seed:          s.Config.Seed,
		Discussion: discussion.Config{
			Enabled:                s.Config.Discussion.Enabled,
			PreProposal:            s.Config.Discussion.PreProposal,
			PreVote:                s.Config.Discussion.PreVote,
			PostMission:            s.Config.Discussion.PostMission,
			PreAssassination:       s.Config.Discussion.PreAssassination,
			MaxStatementsPerPlayer: s.Config.Discussion.MaxStatementsPerPlayer,
			AllowPass:              s.Config.Discussion.AllowPass,
		},
	}

	players := make([]*player.Player, len(s.Players))
	for i, p := range s.Players {
		if !role.Known(role.Type(p.Role)) {
			return nil, fmt.Errorf("snapshot contains unknown role %q", p.Role)
		}
		players[i] = &player.Player{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Role:        role.Type(p.Role),
			Kind:        player.Kind(p.Kind),
		}
	}

	g, err := construct(cfg, players, s.Seed, event.FromEvents(s.Events))
	if err != nil {
		return nil, err
	}

	g.phase = Phase(s.State.Phase)
	g.round = s.State.Round
	g.attempt = s.State.Attempt
	g.leaderIndex = s.State.LeaderIndex
	g.resistanceScore = s.State.ResistanceScore
	g.minionScore = s.State.MinionScore
	g.currentTeam = append([]string(nil), s.State.CurrentTeam...)
	g.consecutiveRejections = s.State.ConsecutiveRejections
	g.provisionalWinner = role.Alignment(s.State.ProvisionalWinner)
	g.finalWinner = role.Alignment(s.State.FinalWinner)

	// 半程收集的投票/出牌缓存一并恢复
	if g.phase == PhaseTeamVote {
		g.pendingVotes = make(map[string]bool, len(s.State.PendingVotes))
		for id, approve := range s.State.PendingVotes {
			g.pendingVotes[id] = approve
		}
	}
	if g.phase == PhaseMissionExecution {
		g.pendingCards = make(map[string]Card, len(s.State.PendingCards))
		for id, card := range s.State.PendingCards {
			g.pendingCards[id] = Card(card)
		}
	}

	for _, v := range s.Votes {
		ballots := make(map[string]bool, len(v.Ballots))
		for id, approve := range v.Ballots {
			ballots[id] = approve
		}
		g.votes = append(g.votes, VoteRecord{
			Round:    v.Round,
			Attempt:  v.Attempt,
			LeaderID: v.LeaderID,
			Team:     append([]string(nil), v.Team...),
			Ballots:  ballots,
			Approved: v.Approved,
		})
	}

	for _, m := range s.Missions {
		actions := make([]MissionAction, len(m.Actions))
		for j, a := range m.Actions {
			actions[j] = MissionAction{PlayerID: a.PlayerID, Card: Card(a.Card)}
		}
		g.missions = append(g.missions, MissionRecord{
			Round:         m.Round,
			Attempt:       m.Attempt,
			Team:          append([]string(nil), m.Team...),
			FailCount:     m.FailCount,
			RequiredFails: m.RequiredFails,
			Result:        MissionResult(m.Result),
			AutoFail:      m.AutoFail,
			Actions:       actions,
		})
	}

	for _, d := range s.Discussions {
		g.discussions = append(g.discussions, discussionRound(d))
	}
	if s.State.CurrentDiscussion != nil {
		r := discussionRound(*s.State.CurrentDiscussion)
		g.currentDiscussion = &r
	}

	if s.Assassination != nil {
		g.assassination = &AssassinationRecord{
			AssassinID: s.Assassination.AssassinID,
			TargetID:   s.Assassination.TargetID,
			Correct:    s.Assassination.Correct,
			Winner:     role.Alignment(s.Assassination.Winner),
		}
	}

	return g, nil
}

func discussionData(r discussion.Round) snapshot.DiscussionData {
	statements := make([]snapshot.StatementData, len(r.Statements))
	for i, s := range r.Statements {
		statements[i] = snapshot.StatementData{
			SpeakerID: s.SpeakerID,
			Message:   s.Message,
			Round:     s.Round,
			Attempt:   s.Attempt,
			Phase:     string(s.Phase),
		}
	}
	return snapshot.DiscussionData{
		Round:      r.Round,
		Attempt:    r.Attempt,
		Phase:      string(r.Phase),
		Statements: statements,
	}
}

func discussionRound(d snapshot.DiscussionData) discussion.Round {
	r := discussion.Round{
		Round:   d.Round,
		Attempt: d.Attempt,
		Phase:   discussion.Phase(d.Phase),
	}
	for _, s := range d.Statements {
		r.Add(discussion.Statement{
			SpeakerID: s.SpeakerID,
			Message:   s.Message,
			Round:     s.Round,
			Attempt:   s.Attempt,
			Phase:     discussion.Phase(s.Phase),
		})
	}
	return r
}
