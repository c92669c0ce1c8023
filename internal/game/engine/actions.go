package engine

import (
	"fmt"
	"math/rand"

	"github.com/palemoky/avalon/internal/apperrors"
	"github.com/palemoky/avalon/internal/game/event"
	"github.com/palemoky/avalon/internal/game/role"
	"github.com/palemoky/avalon/internal/game/rule"
)

// ProposeTeam 现任队长提名本轮任务队伍
// 仅在 LEADERSHIP / TEAM_PROPOSAL 阶段合法；被拒绝时状态不变
func (g *Game) ProposeTeam(leaderID string, team []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameOver {
		return apperrors.ErrAlreadyResolved
	}
	if g.phase != PhaseLeadership && g.phase != PhaseTeamProposal {
		return apperrors.ErrInvalidPhase
	}
	if leaderID != g.players[g.leaderIndex].ID {
		return apperrors.ErrInvalidLeader
	}

	required := g.cfg.TeamSize(g.round)
	if len(team) != required {
		return apperrors.New(apperrors.KindInvalidTeamSize,
			fmt.Sprintf("team size must be %d for round %d", required, g.round))
	}

	seen := make(map[string]bool, len(team))
	for _, id := range team {
		if seen[id] {
			return apperrors.New(apperrors.KindDuplicatePlayer,
				fmt.Sprintf("player %s appears twice in the proposal", id))
		}
		seen[id] = true
		if _, ok := g.byID[id]; !ok {
			return apperrors.New(apperrors.KindUnknownPlayer,
				fmt.Sprintf("unknown player id in team proposal: %s", id))
		}
	}

	g.currentTeam = append([]string(nil), team...)
	g.pendingVotes = make(map[string]bool, len(g.players))
	g.setPhase(PhaseTeamVote)
	g.log.Record(event.KindTeamProposed, map[string]any{
		"round":     g.round,
		"attempt":   g.attempt,
		"leader_id": leaderID,
		"team":      append([]string(nil), team...),
	}, event.VisibilityPublic)
	return nil
}

// CastVote 记录一张组队票
// 所有人未投完前只缓存不结算（同时亮票语义）
// 集齐后结算并返回公开聚合结果，否则返回 nil
func (g *Game) CastVote(playerID string, approve bool) (*VoteSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameOver {
		return nil, apperrors.ErrAlreadyResolved
	}
	if g.phase != PhaseTeamVote {
		return nil, apperrors.ErrInvalidPhase
	}
	if _, ok := g.byID[playerID]; !ok {
		return nil, apperrors.ErrUnknownPlayer
	}
	if _, ok := g.pendingVotes[playerID]; ok {
		return nil, apperrors.ErrAlreadyVoted
	}

	g.pendingVotes[playerID] = approve
	g.log.Record(event.KindVoteCast, map[string]any{
		"round":     g.round,
		"attempt":   g.attempt,
		"player_id": playerID,
		"approve":   approve,
	}, event.VisibilityPrivate, event.PlayerTag(playerID))

	if len(g.pendingVotes) < len(g.players) {
		return nil, nil
	}
	summary := g.resolveVotes()
	return &summary, nil
}

// CastVotes 一次性录入整组选票（同时亮票的批量形式）
// 缺少任何未投玩家的选票时整体拒绝，缓存不变
func (g *Game) CastVotes(ballots map[string]bool) (*VoteSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameOver {
		return nil, apperrors.ErrAlreadyResolved
	}
	if g.phase != PhaseTeamVote {
		return nil, apperrors.ErrInvalidPhase
	}
	for id := range ballots {
		if _, ok := g.byID[id]; !ok {
			return nil, apperrors.ErrUnknownPlayer
		}
		if _, ok := g.pendingVotes[id]; ok {
			return nil, apperrors.ErrAlreadyVoted
		}
	}
	for _, p := range g.players {
		if _, done := g.pendingVotes[p.ID]; done {
			continue
		}
		if _, ok := ballots[p.ID]; !ok {
			return nil, apperrors.New(apperrors.KindIncompleteVoteSet,
				fmt.Sprintf("missing ballot for player %s", p.ID))
		}
	}

	// 录入顺序固定为座位顺序，保证事件序列确定
	for _, p := range g.players {
		approve, ok := ballots[p.ID]
		if !ok {
			continue
		}
		g.pendingVotes[p.ID] = approve
		g.log.Record(event.KindVoteCast, map[string]any{
			"round":     g.round,
			"attempt":   g.attempt,
			"player_id": p.ID,
			"approve":   approve,
		}, event.VisibilityPrivate, event.PlayerTag(p.ID))
	}
	summary := g.resolveVotes()
	return &summary, nil
}

// resolveVotes 全员投票集齐后的原子结算
func (g *Game) resolveVotes() VoteSummary {
	ballots := make(map[string]bool, len(g.pendingVotes))
	approvals := 0
	for id, approve := range g.pendingVotes {
		ballots[id] = approve
		if approve {
			approvals++
		}
	}
	approved := rule.Approved(approvals, len(g.players))

	record := VoteRecord{
		Round:    g.round,
		Attempt:  g.attempt,
		LeaderID: g.players[g.leaderIndex].ID,
		Team:     append([]string(nil), g.currentTeam...),
		Ballots:  ballots,
		Approved: approved,
	}
	g.votes = append(g.votes, record)
	g.pendingVotes = nil

	summary := record.Summary()
	g.log.Record(event.KindTeamVoteResolved, map[string]any{
		"round":      summary.Round,
		"attempt":    summary.Attempt,
		"leader_id":  summary.LeaderID,
		"team":       append([]string(nil), summary.Team...),
		"approvals":  summary.Approvals,
		"rejections": summary.Rejections,
		"approved":   summary.Approved,
	}, event.VisibilityPublic)

	if approved {
		g.consecutiveRejections = 0
		g.pendingCards = make(map[string]Card, len(g.currentTeam))
		g.setPhase(PhaseMissionExecution)
		return summary
	}

	g.consecutiveRejections++
	g.advanceLeader()
	if g.consecutiveRejections >= rule.MaxRejections {
		g.autoFailMission()
		return summary
	}

	g.attempt++
	g.currentTeam = nil
	g.setPhase(PhaseTeamProposal)
	return summary
}

// autoFailMission 连续五次否决的强制判负
// 记为一次失败任务计入爪牙得分，随后走正常胜负判定
func (g *Game) autoFailMission() {
	threshold := g.cfg.FailThreshold(g.round)
	record := MissionRecord{
		Round:         g.round,
		Attempt:       g.attempt,
		Team:          nil,
		FailCount:     threshold,
		RequiredFails: threshold,
		Result:        MissionFailure,
		AutoFail:      true,
	}
	g.missions = append(g.missions, record)
	g.currentTeam = nil
	g.consecutiveRejections = 0
	g.minionScore++

	g.log.Record(event.KindMissionAutoFailed, map[string]any{
		"round":          record.Round,
		"attempt":        record.Attempt,
		"fail_count":     record.FailCount,
		"required_fails": record.RequiredFails,
	}, event.VisibilityPublic)

	// 队长已在否决结算中轮转过，这里不再重复轮转
	g.resolveOutcome(false)
}

// SubmitMissionCard 队员提交任务牌
// 抵抗组织成员出失败牌直接拒绝，缓存区不变
// 全队提交后结算并返回公开任务视图，否则返回 nil
func (g *Game) SubmitMissionCard(playerID string, card Card) (*MissionSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameOver {
		return nil, apperrors.ErrAlreadyResolved
	}
	if g.phase != PhaseMissionExecution {
		return nil, apperrors.ErrInvalidPhase
	}
	p, ok := g.byID[playerID]
	if !ok {
		return nil, apperrors.ErrUnknownPlayer
	}
	if !g.onCurrentTeam(playerID) {
		return nil, apperrors.ErrNotOnMission
	}
	if _, ok := g.pendingCards[playerID]; ok {
		return nil, apperrors.ErrDuplicateSubmission
	}
	if card != CardSuccess && card != CardFail {
		return nil, apperrors.New(apperrors.KindAlignmentViolation,
			fmt.Sprintf("invalid mission card: %s", card))
	}
	if card == CardFail && p.Alignment() == role.AlignmentResistance {
		return nil, apperrors.ErrAlignmentViolation
	}

	g.pendingCards[playerID] = card
	g.log.Record(event.KindMissionCardSubmitted, map[string]any{
		"round":     g.round,
		"attempt":   g.attempt,
		"player_id": playerID,
		"card":      string(card),
	}, event.VisibilityPrivate, event.PlayerTag(playerID))

	if len(g.pendingCards) < len(g.currentTeam) {
		return nil, nil
	}
	summary := g.resolveMission()
	return &summary, nil
}

// resolveMission 全队出牌集齐后的原子结算
func (g *Game) resolveMission() MissionSummary {
	failCount := 0
	actions := make([]MissionAction, 0, len(g.currentTeam))
	for _, id := range g.currentTeam {
		card := g.pendingCards[id]
		if card == CardFail {
			failCount++
		}
		actions = append(actions, MissionAction{PlayerID: id, Card: card})
	}

	// 存储顺序按推导种子乱序，与提名顺序和提交顺序都无关
	rng := rand.New(rand.NewSource(obfuscationSeed(g.seed, g.round, g.attempt)))
	rng.Shuffle(len(actions), func(i, j int) {
		actions[i], actions[j] = actions[j], actions[i]
	})

	threshold := g.cfg.FailThreshold(g.round)
	result := MissionSuccess
	if failCount >= threshold {
		result = MissionFailure
	}

	record := MissionRecord{
		Round:         g.round,
		Attempt:       g.attempt,
		Team:          append([]string(nil), g.currentTeam...),
		FailCount:     failCount,
		RequiredFails: threshold,
		Result:        result,
		Actions:       actions,
	}
	g.missions = append(g.missions, record)
	g.currentTeam = nil
	g.pendingCards = nil

	summary := record.Summary()
	g.log.Record(event.KindMissionResolved, map[string]any{
		"round":          summary.Round,
		"attempt":        summary.Attempt,
		"team":           append([]string(nil), summary.Team...),
		"fail_count":     summary.FailCount,
		"required_fails": summary.RequiredFails,
		"result":         string(summary.Result),
		"auto_fail":      summary.AutoFail,
	}, event.VisibilityPublic)

	if result == MissionSuccess {
		g.resistanceScore++
	} else {
		g.minionScore++
	}
	g.resolveOutcome(true)
	return summary
}

// resolveOutcome 任务结束后的胜负判定与回合推进
// rotate 指示本路径是否还需轮转队长（否决路径已轮转过）
func (g *Game) resolveOutcome(rotate bool) {
	g.setPhase(PhaseOutcome)

	if g.minionScore >= 3 {
		g.provisionalWinner = role.AlignmentMinion
		g.completeGame(role.AlignmentMinion, "three_failed_missions")
		return
	}

	if g.resistanceScore >= 3 {
		g.provisionalWinner = role.AlignmentResistance
		if g.cfg.HasAssassin() {
			g.setPhase(PhaseAssassinationPending)
			return
		}
		g.completeGame(role.AlignmentResistance, "three_successful_missions")
		return
	}

	if rotate {
		g.advanceLeader()
	}
	g.round++
	g.attempt = 1
	g.consecutiveRejections = 0
	g.setPhase(PhaseLeadership)
}

// PerformAssassination 刺客结算：猜中梅林则反转胜负
// 结算后整局进入终局，任何后续动作一律拒绝
func (g *Game) PerformAssassination(assassinID, targetID string) (*AssassinationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameOver || g.assassination != nil {
		return nil, apperrors.ErrAlreadyResolved
	}
	if g.phase != PhaseAssassinationPending {
		return nil, apperrors.ErrInvalidPhase
	}
	assassin, ok := g.byID[assassinID]
	if !ok || !assassin.HasTag(role.TagAssassin) {
		return nil, apperrors.ErrInvalidAssassin
	}
	target, ok := g.byID[targetID]
	if !ok {
		return nil, apperrors.ErrUnknownTarget
	}
	if targetID == assassinID {
		return nil, apperrors.New(apperrors.KindUnknownAssassinationTarget,
			"the assassin may not target themselves")
	}

	correct := target.Definition().AssassinTarget
	winner := role.AlignmentResistance
	reason := "assassination_failure"
	if correct {
		winner = role.AlignmentMinion
		reason = "assassination_success"
	}

	record := &AssassinationRecord{
		AssassinID: assassinID,
		TargetID:   targetID,
		Correct:    correct,
		Winner:     winner,
	}
	g.assassination = record
	g.provisionalWinner = winner

	g.log.Record(event.KindAssassinationResolved, map[string]any{
		"assassin_id": assassinID,
		"target_id":   targetID,
		"correct":     correct,
	}, event.VisibilityPublic)

	g.completeGame(winner, reason)
	out := *record
	return &out, nil
}

// completeGame 写入终局事件并切换到 GAME_OVER
func (g *Game) completeGame(winner role.Alignment, reason string) {
	g.finalWinner = winner
	g.log.Record(event.KindGameCompleted, map[string]any{
		"winner": string(winner),
		"reason": reason,
	}, event.VisibilityPublic)
	g.setPhase(PhaseGameOver)
}

func (g *Game) onCurrentTeam(playerID string) bool {
	for _, id := range g.currentTeam {
		if id == playerID {
			return true
		}
	}
	return false
}
