// Package knowledge 计算开局时每位玩家获得的身份情报
package knowledge

import (
	"fmt"

	"github.com/palemoky/avalon/internal/game/player"
	"github.com/palemoky/avalon/internal/game/role"
)

// Packet 单个玩家的开局情报，生成后不再变化
type Packet struct {
	// Visible 确定可见的玩家（梅林所见爪牙，或爪牙互认）
	Visible []string
	// AmbiguousGroups 成组出现但无法区分身份的玩家（派西维尔所见）
	AmbiguousGroups [][]string
}

// HasInformation 判断情报包是否包含任何内容
func (p Packet) HasInformation() bool {
	return len(p.Visible) > 0 || len(p.AmbiguousGroups) > 0
}

// Resolve 根据最终角色分配计算全部情报包
// 纯函数：同一分配输入总是得到同一输出，不引入额外随机性
// 仅在角色表被破坏（上游校验失效）时返回错误
func Resolve(players []*player.Player) (map[string]Packet, error) {
	for _, p := range players {
		if !role.Known(p.Role) {
			return nil, fmt.Errorf("knowledge resolution received unknown role %q for player %s", p.Role, p.ID)
		}
	}

	// 可被爪牙互认的玩家（Oberon 除外）
	var mutualMinions []*player.Player
	// sees_minions 能看到的玩家（Mordred 除外）
	var seenMinions []*player.Player
	// dual_reveal 组（梅林与莫甘娜），按座位顺序，位置与身份无关
	var dualSubjects []*player.Player

	for _, p := range players {
		def := p.Definition()
		if def.Alignment == role.AlignmentMinion && !def.HasTag(role.TagIsolated) {
			mutualMinions = append(mutualMinions, p)
		}
		if def.Alignment == role.AlignmentMinion && !def.HasTag(role.TagHiddenFromSeer) {
			seenMinions = append(seenMinions, p)
		}
		if def.HasTag(role.TagDualRevealSubject) {
			dualSubjects = append(dualSubjects, p)
		}
	}

	packets := make(map[string]Packet, len(players))
	for _, p := range players {
		def := p.Definition()
		var packet Packet

		if def.HasTag(role.TagSeesMinions) {
			packet.Visible = idsExcluding(seenMinions, p.ID)
		} else if def.Alignment == role.AlignmentMinion && !def.HasTag(role.TagIsolated) {
			packet.Visible = idsExcluding(mutualMinions, p.ID)
		}

		if def.HasTag(role.TagDualRevealSeer) {
			group := idsExcluding(dualSubjects, p.ID)
			if len(group) > 0 {
				packet.AmbiguousGroups = [][]string{group}
			}
		}

		packets[p.ID] = packet
	}

	return packets, nil
}

// idsExcluding 按座位顺序提取 id，跳过自身
// 座位顺序在角色分配前已固定，不泄露组内身份
func idsExcluding(players []*player.Player, selfID string) []string {
	var ids []string
	for _, p := range players {
		if p.ID != selfID {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
