// Package event 提供带可见性标签的只追加事件日志
package event

import (
	"fmt"
	"time"

	"github.com/palemoky/avalon/internal/game/role"
)

// Kind 事件类别
type Kind string

const (
	KindGameStarted           Kind = "game_started"
	KindRoleAssigned          Kind = "role_assigned"
	KindKnowledgeRevealed     Kind = "knowledge_revealed"
	KindMinionsRevealed       Kind = "minions_revealed"
	KindPhaseChanged          Kind = "phase_changed"
	KindTeamProposed          Kind = "team_proposed"
	KindVoteCast              Kind = "vote_cast"
	KindTeamVoteResolved      Kind = "team_vote_resolved"
	KindMissionCardSubmitted  Kind = "mission_card_submitted"
	KindMissionResolved       Kind = "mission_resolved"
	KindMissionAutoFailed     Kind = "mission_auto_failed"
	KindDiscussionStatement   Kind = "discussion_statement"
	KindAssassinationResolved Kind = "assassination_resolved"
	KindGameCompleted         Kind = "game_completed"
)

// Visibility 事件可见级别
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Event 一条不可变的游戏事件
// Private 事件仅对 Audience 中的标签可见
type Event struct {
	Timestamp  time.Time      `json:"timestamp"`
	Kind       Kind           `json:"kind"`
	Payload    map[string]any `json:"payload"`
	Visibility Visibility     `json:"visibility"`
	Audience   []string       `json:"audience,omitempty"`
}

// VisibleTo 判断持有给定标签集合的观察者能否看到该事件
func (e Event) VisibleTo(tags ...string) bool {
	if e.Visibility == VisibilityPublic {
		return true
	}
	for _, tag := range tags {
		for _, allowed := range e.Audience {
			if tag == allowed {
				return true
			}
		}
	}
	return false
}

// PlayerTag 构造指定玩家的受众标签
func PlayerTag(playerID string) string {
	return fmt.Sprintf("player:%s", playerID)
}

// AlignmentTag 构造指定阵营的受众标签
func AlignmentTag(a role.Alignment) string {
	return fmt.Sprintf("alignment:%s", a)
}
