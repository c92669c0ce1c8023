package engine

import (
	"fmt"
	"strings"

	"github.com/palemoky/avalon/internal/apperrors"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/event"
)

// StartDiscussion 开启一轮桌面讨论
// 同一时刻只允许一轮讨论，时机未在配置中开放时拒绝
func (g *Game) StartDiscussion(phase discussion.Phase) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameOver {
		return apperrors.ErrAlreadyResolved
	}
	if g.currentDiscussion != nil {
		return apperrors.ErrDiscussionInProgress
	}
	if !g.cfg.Discussion.Allows(phase) {
		return apperrors.New(apperrors.KindInvalidPhase,
			fmt.Sprintf("discussion is not open at %s", phase))
	}

	g.currentDiscussion = &discussion.Round{
		Round:   g.round,
		Attempt: g.attempt,
		Phase:   phase,
	}
	return nil
}

// AddStatement 记录一条公开发言并写入公开事件
// 轮次、尝试次数与时机由引擎盖章，调用方只提供内容
func (g *Game) AddStatement(speakerID, message string) (discussion.Statement, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameOver {
		return discussion.Statement{}, apperrors.ErrAlreadyResolved
	}
	if g.currentDiscussion == nil {
		return discussion.Statement{}, apperrors.New(apperrors.KindInvalidPhase,
			"no discussion in progress")
	}
	if _, ok := g.byID[speakerID]; !ok {
		return discussion.Statement{}, apperrors.ErrUnknownPlayer
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return discussion.Statement{}, apperrors.ErrEmptyStatement
	}
	if limit := g.cfg.Discussion.MaxStatementsPerPlayer; limit > 0 &&
		len(g.currentDiscussion.StatementsBy(speakerID)) >= limit {
		return discussion.Statement{}, apperrors.ErrStatementLimit
	}

	s := discussion.Statement{
		SpeakerID: speakerID,
		Message:   message,
		Round:     g.currentDiscussion.Round,
		Attempt:   g.currentDiscussion.Attempt,
		Phase:     g.currentDiscussion.Phase,
	}
	g.currentDiscussion.Add(s)
	g.log.Record(event.KindDiscussionStatement, map[string]any{
		"round":      s.Round,
		"attempt":    s.Attempt,
		"phase":      string(s.Phase),
		"speaker_id": s.SpeakerID,
		"message":    s.Message,
	}, event.VisibilityPublic)
	return s, nil
}

// EndDiscussion 结束当前讨论并归档
// 终局后仍可关闭悬而未决的讨论，不影响已定胜负
func (g *Game) EndDiscussion() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.currentDiscussion == nil {
		return apperrors.New(apperrors.KindInvalidPhase, "no discussion to end")
	}
	g.discussions = append(g.discussions, g.currentDiscussion.Clone())
	g.currentDiscussion = nil
	return nil
}

// CurrentDiscussion 返回进行中的讨论，没有时为 nil
func (g *Game) CurrentDiscussion() *discussion.Round {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.currentDiscussion == nil {
		return nil
	}
	out := g.currentDiscussion.Clone()
	return &out
}

// DiscussionHistory 返回已归档的讨论环节
func (g *Game) DiscussionHistory() []discussion.Round {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]discussion.Round, len(g.discussions))
	for i, r := range g.discussions {
		out[i] = r.Clone()
	}
	return out
}

// Statements 按发言顺序返回全部发言，含进行中的讨论
func (g *Game) Statements() []discussion.Statement {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.statementsLocked()
}

func (g *Game) statementsLocked() []discussion.Statement {
	var out []discussion.Statement
	for _, r := range g.discussions {
		out = append(out, r.Statements...)
	}
	if g.currentDiscussion != nil {
		out = append(out, g.currentDiscussion.Statements...)
	}
	return out
}
