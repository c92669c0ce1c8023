// Package setup 负责开局：洗角色、建名册、生成情报简报
package setup

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/avalon/internal/apperrors"
	"github.com/palemoky/avalon/internal/game"
	"github.com/palemoky/avalon/internal/game/knowledge"
	"github.com/palemoky/avalon/internal/game/player"
)

// Registration 报名信息
type Registration struct {
	DisplayName string
	// PlayerID 可选，留空时自动生成
	PlayerID string
	Kind     player.Kind
}

// Briefing 单个玩家的私密开局简报
type Briefing struct {
	Player    *player.Player
	Knowledge knowledge.Packet
}

// Result 开局结果，角色分配与情报此后不再变化
type Result struct {
	Config    game.Config
	Players   []*player.Player
	Briefings []Briefing
	// Seed 实际使用的种子，快照恢复后轮转顺序与此一致
	Seed int64
}

// Lobby 返回按座位顺序排列的公开玩家名单
func (r Result) Lobby() []string {
	names := make([]string, len(r.Players))
	for i, p := range r.Players {
		names[i] = p.DisplayName
	}
	return names
}

// KnowledgeFor 返回指定玩家的情报包
func (r Result) KnowledgeFor(playerID string) (knowledge.Packet, bool) {
	for _, b := range r.Briefings {
		if b.Player.ID == playerID {
			return b.Knowledge, true
		}
	}
	return knowledge.Packet{}, false
}

// Perform 执行官方开局流程
// 报名顺序即座位顺序；角色洗牌只使用配置种子，保证可复现
func Perform(cfg game.Config, registrations []Registration) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(registrations) != cfg.PlayerCount {
		return nil, apperrors.New(apperrors.KindConfigIncompatible,
			fmt.Sprintf("player registration count does not match configuration: expected %d, received %d",
				cfg.PlayerCount, len(registrations)))
	}
	normalized, err := normalize(registrations)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	shuffled := make([]int, len(cfg.Roles))
	for i := range shuffled {
		shuffled[i] = i
	}
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	players := make([]*player.Player, len(normalized))
	for i, reg := range normalized {
		id := reg.PlayerID
		if id == "" {
			id = uuid.NewString()
		}
		players[i] = &player.Player{
			ID:          id,
			DisplayName: reg.DisplayName,
			Role:        cfg.Roles[shuffled[i]],
			Kind:        reg.Kind,
		}
	}

	packets, err := knowledge.Resolve(players)
	if err != nil {
		return nil, err
	}
	briefings := make([]Briefing, len(players))
	for i, p := range players {
		briefings[i] = Briefing{Player: p, Knowledge: packets[p.ID]}
	}

	return &Result{
		Config:    cfg,
		Players:   players,
		Briefings: briefings,
		Seed:      seed,
	}, nil
}

// normalize 校验报名信息：名字非空且不重复，显式 id 不重复
func normalize(registrations []Registration) ([]Registration, error) {
	seenNames := map[string]bool{}
	seenIDs := map[string]bool{}
	out := make([]Registration, 0, len(registrations))

	for _, reg := range registrations {
		name := strings.TrimSpace(reg.DisplayName)
		if name == "" {
			return nil, apperrors.New(apperrors.KindConfigIncompatible,
				"player display names must be non-empty")
		}
		lowered := strings.ToLower(name)
		if seenNames[lowered] {
			return nil, apperrors.New(apperrors.KindConfigIncompatible,
				fmt.Sprintf("duplicate player name detected: %s", name))
		}
		seenNames[lowered] = true

		id := strings.TrimSpace(reg.PlayerID)
		if id != "" {
			if seenIDs[id] {
				return nil, apperrors.New(apperrors.KindConfigIncompatible,
					fmt.Sprintf("duplicate player identifier detected: %s", id))
			}
			seenIDs[id] = true
		}

		kind := reg.Kind
		if kind == "" {
			kind = player.KindHuman
		}
		out = append(out, Registration{DisplayName: name, PlayerID: id, Kind: kind})
	}

	return out, nil
}
