package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/avalon/internal/agent"
	"github.com/palemoky/avalon/internal/apperrors"
	"github.com/palemoky/avalon/internal/config"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/engine"
	"github.com/palemoky/avalon/internal/game/player"
	"github.com/palemoky/avalon/internal/game/role"
	"github.com/palemoky/avalon/internal/game/setup"
	"github.com/palemoky/avalon/internal/interaction"
	"github.com/palemoky/avalon/internal/logger"
	"github.com/palemoky/avalon/internal/storage"
)

// host 驱动一局游戏：轮询阶段、向玩家取决策、写快照
type host struct {
	game     *engine.Game
	console  *interaction.Console
	deciders map[string]agent.Decider
	fallback *agent.Scripted
	store    storage.SnapshotStore
	gameID   string
	timeout  time.Duration
}

// newHost 新开一局或从存储恢复
func newHost(cfg *config.Config, store storage.SnapshotStore, resumeID string) (*host, error) {
	console := interaction.NewConsole(os.Stdin, os.Stdout)

	h := &host{
		console:  console,
		store:    store,
		fallback: agent.NewScripted(),
		timeout:  time.Duration(cfg.Agent.Timeout) * time.Second,
	}

	if resumeID != "" {
		if store == nil {
			return nil, fmt.Errorf("resume requires a snapshot backend in the config file")
		}
		snap, err := store.Load(context.Background(), resumeID)
		if err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", resumeID, err)
		}
		g, err := engine.FromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		h.game = g
		h.gameID = resumeID
		logger.Info("game %s resumed at phase %s", resumeID, g.Phase())
	} else {
		gameCfg, err := cfg.GameConfig()
		if err != nil {
			return nil, err
		}
		regs, err := cfg.Registrations()
		if err != nil {
			return nil, err
		}
		res, err := setup.Perform(gameCfg, regs)
		if err != nil {
			return nil, err
		}
		g, err := engine.New(res)
		if err != nil {
			return nil, err
		}
		h.game = g
		h.gameID = uuid.NewString()
		logger.Info("game %s started with %d players, seed %d",
			h.gameID, gameCfg.PlayerCount, res.Seed)

		// 逐人传阅身份，只对人类玩家展示
		for _, b := range res.Briefings {
			if b.Player.Kind == player.KindHuman {
				if err := console.DeliverBriefing(b); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := h.bindDeciders(cfg); err != nil {
		return nil, err
	}
	return h, nil
}

// bindDeciders 为每位玩家绑定决策来源
// 人类走终端，代理走 OpenAI；没有 API Key 时退化为脚本决策
func (h *host) bindDeciders(cfg *config.Config) error {
	var llm agent.Decider
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		opts := []agent.OpenAIOption{
			agent.WithModel(cfg.Agent.Model),
			agent.WithBaseURL(cfg.Agent.BaseURL),
		}
		d, err := agent.NewOpenAIDecider(key, opts...)
		if err != nil {
			return err
		}
		llm = d
	} else {
		logger.Info("OPENAI_API_KEY not set, agent players fall back to scripted decisions")
	}

	h.deciders = make(map[string]agent.Decider, len(h.game.Players()))
	for _, p := range h.game.Players() {
		switch {
		case p.Kind == player.KindHuman:
			h.deciders[p.ID] = h.console
		case llm != nil:
			h.deciders[p.ID] = llm
		default:
			h.deciders[p.ID] = h.fallback
		}
	}
	return nil
}

// run 主循环，直到终局
func (h *host) run() error {
	for {
		switch h.game.Phase() {
		case engine.PhaseLeadership, engine.PhaseTeamProposal:
			if err := h.stepProposal(); err != nil {
				return err
			}
		case engine.PhaseTeamVote:
			if err := h.stepVote(); err != nil {
				return err
			}
		case engine.PhaseMissionExecution:
			if err := h.stepMission(); err != nil {
				return err
			}
		case engine.PhaseAssassinationPending:
			if err := h.stepAssassination(); err != nil {
				return err
			}
		case engine.PhaseGameOver:
			h.console.AnnounceGameOver(h.game)
			return h.persist()
		default:
			return fmt.Errorf("unexpected phase: %s", h.game.Phase())
		}
		if err := h.persist(); err != nil {
			logger.Error("snapshot save failed: %v", err)
		}
	}
}

func (h *host) decide(playerID string) (agent.Decider, agent.Observation, context.Context, context.CancelFunc, error) {
	obs, err := agent.Observe(h.game, playerID)
	if err != nil {
		return nil, agent.Observation{}, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	return h.deciders[playerID], obs, ctx, cancel, nil
}

// runDiscussion 按座位顺序给每位玩家一次发言机会
// 时机未开放时静默跳过；恢复的对局可接续未结束的讨论
func (h *host) runDiscussion(phase discussion.Phase) error {
	if !h.game.Config().Discussion.Allows(phase) {
		return nil
	}
	if err := h.game.StartDiscussion(phase); err != nil {
		if !errors.Is(err, apperrors.ErrDiscussionInProgress) {
			return err
		}
	}

	for _, p := range h.game.Players() {
		d, obs, ctx, cancel, err := h.decide(p.ID)
		if err != nil {
			return err
		}
		response, err := d.MakeStatement(ctx, obs, phase)
		cancel()
		if err != nil {
			logger.Error("statement by %s failed: %v", p.ID, err)
			continue
		}
		if response.Message == "" {
			continue
		}
		s, err := h.game.AddStatement(p.ID, response.Message)
		if err != nil {
			// 断点续局时同一玩家可能已用完发言配额
			if errors.Is(err, apperrors.ErrStatementLimit) || errors.Is(err, apperrors.ErrEmptyStatement) {
				continue
			}
			return err
		}
		h.console.AnnounceStatement(obs.DisplayName, s)
	}
	return h.game.EndDiscussion()
}

func (h *host) stepProposal() error {
	if err := h.runDiscussion(discussion.PhasePreProposal); err != nil {
		return err
	}
	leaderID := h.game.Leader().ID
	for {
		d, obs, ctx, cancel, err := h.decide(leaderID)
		if err != nil {
			return err
		}
		proposal, err := d.ProposeTeam(ctx, obs)
		cancel()
		if err != nil {
			logger.Error("leader %s proposal failed: %v", leaderID, err)
			proposal, err = h.fallback.ProposeTeam(context.Background(), obs)
			if err != nil {
				return err
			}
		}
		if err := h.game.ProposeTeam(leaderID, proposal.Team); err != nil {
			// 人类输入非法队伍时重新提名，代理则直接判为致命
			if isHuman(h.game, leaderID) {
				fmt.Println("队伍不合法:", err)
				continue
			}
			return err
		}
		logger.Info("round %d attempt %d: leader %s proposed %v",
			obs.Round, obs.Attempt, leaderID, proposal.Team)
		return nil
	}
}

func (h *host) stepVote() error {
	if err := h.runDiscussion(discussion.PhasePreVote); err != nil {
		return err
	}
	for _, p := range h.game.Players() {
		d, obs, ctx, cancel, err := h.decide(p.ID)
		if err != nil {
			return err
		}
		decision, err := d.VoteOnTeam(ctx, obs)
		cancel()
		if err != nil {
			logger.Error("vote by %s failed: %v", p.ID, err)
			decision, _ = h.fallback.VoteOnTeam(context.Background(), obs)
		}
		summary, err := h.game.CastVote(p.ID, decision.Approve)
		if err != nil {
			// 恢复的对局中部分玩家已投过票
			if errors.Is(err, apperrors.ErrAlreadyVoted) {
				continue
			}
			return err
		}
		if summary != nil {
			h.console.AnnounceVote(*summary)
			logger.Info("round %d attempt %d vote resolved %d:%d approved=%v",
				summary.Round, summary.Attempt, summary.Approvals, summary.Rejections, summary.Approved)
		}
	}
	return nil
}

func (h *host) stepMission() error {
	for _, id := range h.game.CurrentTeam() {
		d, obs, ctx, cancel, err := h.decide(id)
		if err != nil {
			return err
		}
		decision, err := d.ExecuteMission(ctx, obs)
		cancel()
		if err != nil {
			logger.Error("mission card by %s failed: %v", id, err)
			decision, _ = h.fallback.ExecuteMission(context.Background(), obs)
		}
		// 正义方无论决策器怎么说都只能出成功牌
		if obs.Alignment == role.AlignmentResistance {
			decision.Success = true
		}
		card := engine.CardSuccess
		if !decision.Success {
			card = engine.CardFail
		}
		summary, err := h.game.SubmitMissionCard(id, card)
		if err != nil {
			if errors.Is(err, apperrors.ErrDuplicateSubmission) {
				continue
			}
			return err
		}
		if summary != nil {
			h.console.AnnounceMission(*summary)
			logger.Info("mission %d resolved: %s (fails=%d)",
				summary.Round, summary.Result, summary.FailCount)
			if h.game.Phase() != engine.PhaseGameOver {
				if err := h.runDiscussion(discussion.PhasePostMission); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (h *host) stepAssassination() error {
	if err := h.runDiscussion(discussion.PhasePreAssassination); err != nil {
		return err
	}
	var assassinID string
	for _, p := range h.game.Players() {
		if p.HasTag(role.TagAssassin) {
			assassinID = p.ID
			break
		}
	}
	if assassinID == "" {
		return fmt.Errorf("assassination pending but no assassin in the game")
	}

	for {
		d, obs, ctx, cancel, err := h.decide(assassinID)
		if err != nil {
			return err
		}
		guess, err := d.GuessMerlin(ctx, obs)
		cancel()
		if err != nil {
			logger.Error("assassination guess failed: %v", err)
			guess, _ = h.fallback.GuessMerlin(context.Background(), obs)
		}
		record, err := h.game.PerformAssassination(assassinID, guess.TargetID)
		if err != nil {
			if isHuman(h.game, assassinID) {
				fmt.Println("目标不合法:", err)
				continue
			}
			return err
		}
		logger.Info("assassination: %s targeted %s, correct=%v",
			record.AssassinID, record.TargetID, record.Correct)
		return nil
	}
}

// persist 将当前局面写入快照存储
func (h *host) persist() error {
	if h.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.store.Save(ctx, h.gameID, h.game.ToSnapshot())
}

func isHuman(g *engine.Game, playerID string) bool {
	p, ok := g.PlayerByID(playerID)
	return ok && p.Kind == player.KindHuman
}
