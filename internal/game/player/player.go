package player

import "github.com/palemoky/avalon/internal/game/role"

// Kind 参与者类型
type Kind string

const (
	KindHuman Kind = "human"
	KindAgent Kind = "agent"
)

// Player 一局游戏中的参与者，开局后不可变
type Player struct {
	ID          string
	DisplayName string
	Role        role.Type
	Kind        Kind
}

// Alignment 返回玩家所属阵营
func (p *Player) Alignment() role.Alignment {
	return role.AlignmentOf(p.Role)
}

// Definition 返回玩家角色的元数据
func (p *Player) Definition() role.Definition {
	return role.Definitions[p.Role]
}

// HasTag 判断玩家角色是否带有指定能力标记
func (p *Player) HasTag(tag role.Tag) bool {
	return p.Definition().HasTag(tag)
}

// IsAgent 判断是否由自动化代理控制
func (p *Player) IsAgent() bool {
	return p.Kind == KindAgent
}
