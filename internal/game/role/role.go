package role

// Alignment 阵营
type Alignment string

const (
	AlignmentResistance Alignment = "resistance"
	AlignmentMinion     Alignment = "minion"
)

// Type 角色类型
type Type string

const (
	Merlin          Type = "merlin"
	Percival        Type = "percival"
	LoyalServant    Type = "loyal_servant_of_arthur"
	Assassin        Type = "assassin"
	Morgana         Type = "morgana"
	Mordred         Type = "mordred"
	Oberon          Type = "oberon"
	MinionOfMordred Type = "minion_of_mordred"
)

// Tag 角色能力标记，知识解析与引擎只认标记不认具体角色
type Tag string

const (
	// TagSeesMinions 看到所有爪牙（Mordred 除外）
	TagSeesMinions Tag = "sees_minions"
	// TagDualRevealSeer 看到一组无法区分的两人（Percival）
	TagDualRevealSeer Tag = "dual_reveal_seer"
	// TagDualRevealSubject 被 dual_reveal_seer 看到（Merlin / Morgana）
	TagDualRevealSubject Tag = "dual_reveal_subject"
	// TagHiddenFromSeer 对 sees_minions 隐身（Mordred）
	TagHiddenFromSeer Tag = "hidden_from_seer"
	// TagIsolated 不参与爪牙互认（Oberon）
	TagIsolated Tag = "isolated"
	// TagAssassin 持有刺杀权
	TagAssassin Tag = "assassin"
)

// Definition 单个角色的静态元数据
type Definition struct {
	Role           Type
	Alignment      Alignment
	Tags           []Tag
	AssassinTarget bool // 刺中即反转胜负
	Unique         bool // 一局中最多出现一次
}

// HasTag 判断角色是否带有指定标记
func (d Definition) HasTag(tag Tag) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Definitions 全部受支持角色的元数据表
var Definitions = map[Type]Definition{
	Merlin: {
		Role:           Merlin,
		Alignment:      AlignmentResistance,
		Tags:           []Tag{TagSeesMinions, TagDualRevealSubject},
		AssassinTarget: true,
		Unique:         true,
	},
	Percival: {
		Role:      Percival,
		Alignment: AlignmentResistance,
		Tags:      []Tag{TagDualRevealSeer},
		Unique:    true,
	},
	LoyalServant: {
		Role:      LoyalServant,
		Alignment: AlignmentResistance,
	},
	Assassin: {
		Role:      Assassin,
		Alignment: AlignmentMinion,
		Tags:      []Tag{TagAssassin},
		Unique:    true,
	},
	Morgana: {
		Role:      Morgana,
		Alignment: AlignmentMinion,
		Tags:      []Tag{TagDualRevealSubject},
		Unique:    true,
	},
	Mordred: {
		Role:      Mordred,
		Alignment: AlignmentMinion,
		Tags:      []Tag{TagHiddenFromSeer},
		Unique:    true,
	},
	Oberon: {
		Role:      Oberon,
		Alignment: AlignmentMinion,
		Tags:      []Tag{TagIsolated},
		Unique:    true,
	},
	MinionOfMordred: {
		Role:      MinionOfMordred,
		Alignment: AlignmentMinion,
	},
}

// AlignmentOf 返回角色的阵营
func AlignmentOf(t Type) Alignment {
	return Definitions[t].Alignment
}

// IsMinion 判断角色是否属于爪牙阵营
func IsMinion(t Type) bool {
	return AlignmentOf(t) == AlignmentMinion
}

// IsResistance 判断角色是否属于抵抗组织阵营
func IsResistance(t Type) bool {
	return AlignmentOf(t) == AlignmentResistance
}

// Known 判断角色类型是否受支持
func Known(t Type) bool {
	_, ok := Definitions[t]
	return ok
}
