package role

import (
	"fmt"

	"github.com/palemoky/avalon/internal/apperrors"
)

// alignmentCounts 官方阵营人数分布 (抵抗组织, 爪牙)
var alignmentCounts = map[int][2]int{
	5:  {3, 2},
	6:  {4, 2},
	7:  {4, 3},
	8:  {5, 3},
	9:  {6, 3},
	10: {6, 4},
}

// defaultRoleSets 官方推荐的默认角色组合
var defaultRoleSets = map[int][]Type{
	5:  {Merlin, Percival, LoyalServant, Assassin, Morgana},
	6:  {Merlin, Percival, LoyalServant, LoyalServant, Assassin, Morgana},
	7:  {Merlin, Percival, LoyalServant, LoyalServant, Assassin, Morgana, Mordred},
	8:  {Merlin, Percival, LoyalServant, LoyalServant, LoyalServant, Assassin, Morgana, Mordred},
	9:  {Merlin, Percival, LoyalServant, LoyalServant, LoyalServant, LoyalServant, Assassin, Morgana, Mordred},
	10: {Merlin, Percival, LoyalServant, LoyalServant, LoyalServant, LoyalServant, Assassin, Morgana, Mordred, Oberon},
}

// SupportedPlayerCount 判断人数是否在 5-10 的官方范围内
func SupportedPlayerCount(n int) bool {
	_, ok := alignmentCounts[n]
	return ok
}

// AlignmentCounts 返回 (抵抗组织人数, 爪牙人数)
func AlignmentCounts(playerCount int) (resistance, minion int, err error) {
	counts, ok := alignmentCounts[playerCount]
	if !ok {
		return 0, 0, apperrors.New(apperrors.KindConfigIncompatible,
			fmt.Sprintf("unsupported player count: %d", playerCount))
	}
	return counts[0], counts[1], nil
}

// DefaultRoles 返回指定人数的官方默认角色组合
func DefaultRoles(playerCount int) ([]Type, error) {
	set, ok := defaultRoleSets[playerCount]
	if !ok {
		return nil, apperrors.New(apperrors.KindConfigIncompatible,
			fmt.Sprintf("unsupported player count: %d", playerCount))
	}
	out := make([]Type, len(set))
	copy(out, set)
	return out, nil
}

// Validate 校验角色组合是否符合官方构成规则
// 引擎假设传入的组合已通过此校验，不会重复执行
func Validate(playerCount int, roles []Type) error {
	expectedResistance, expectedMinions, err := AlignmentCounts(playerCount)
	if err != nil {
		return err
	}
	if len(roles) != playerCount {
		return apperrors.New(apperrors.KindConfigIncompatible,
			fmt.Sprintf("expected %d roles, received %d", playerCount, len(roles)))
	}

	var resistance, minions int
	seen := map[Type]int{}
	tags := map[Tag]bool{}
	for _, r := range roles {
		def, ok := Definitions[r]
		if !ok {
			return apperrors.New(apperrors.KindConfigIncompatible,
				fmt.Sprintf("unknown role: %s", r))
		}
		seen[r]++
		if def.Unique && seen[r] > 1 {
			return apperrors.New(apperrors.KindConfigIncompatible,
				fmt.Sprintf("role %s may only appear once", r))
		}
		if def.Alignment == AlignmentResistance {
			resistance++
		} else {
			minions++
		}
		for _, t := range def.Tags {
			tags[t] = true
		}
	}

	if resistance != expectedResistance {
		return apperrors.New(apperrors.KindConfigIncompatible,
			fmt.Sprintf("resistance role count mismatch: expected %d, received %d",
				expectedResistance, resistance))
	}
	if minions != expectedMinions {
		return apperrors.New(apperrors.KindConfigIncompatible,
			fmt.Sprintf("minion role count mismatch: expected %d, received %d",
				expectedMinions, minions))
	}

	// 角色搭配约束：梅林必须配刺客，派西维尔必须配梅林
	if seen[Merlin] > 0 && !tags[TagAssassin] {
		return apperrors.New(apperrors.KindConfigIncompatible,
			"merlin requires the assassin to be present")
	}
	if tags[TagDualRevealSeer] && seen[Merlin] == 0 {
		return apperrors.New(apperrors.KindConfigIncompatible,
			"percival requires merlin to be present")
	}

	return nil
}

// BuildRoles 根据人数和可选特殊角色生成完整角色组合
// 始终包含梅林与刺客，剩余名额用普通忠臣/爪牙补齐
func BuildRoles(playerCount int, optional []Type) ([]Type, error) {
	expectedResistance, expectedMinions, err := AlignmentCounts(playerCount)
	if err != nil {
		return nil, err
	}

	roles := []Type{Merlin, Assassin}
	resistance, minions := 1, 1

	for _, r := range optional {
		switch r {
		case Merlin, Assassin:
			continue // 必选角色无需重复声明
		case LoyalServant, MinionOfMordred:
			continue // 普通角色由补齐逻辑处理
		}
		def, ok := Definitions[r]
		if !ok {
			return nil, apperrors.New(apperrors.KindConfigIncompatible,
				fmt.Sprintf("unknown role: %s", r))
		}
		for _, existing := range roles {
			if existing == r {
				return nil, apperrors.New(apperrors.KindConfigIncompatible,
					fmt.Sprintf("role %s specified multiple times", r))
			}
		}
		if def.Alignment == AlignmentResistance {
			if resistance >= expectedResistance {
				return nil, apperrors.New(apperrors.KindConfigIncompatible,
					fmt.Sprintf("too many resistance roles for %d players", playerCount))
			}
			resistance++
		} else {
			if minions >= expectedMinions {
				return nil, apperrors.New(apperrors.KindConfigIncompatible,
					fmt.Sprintf("too many minion roles for %d players", playerCount))
			}
			minions++
		}
		roles = append(roles, r)
	}

	for resistance < expectedResistance {
		roles = append(roles, LoyalServant)
		resistance++
	}
	for minions < expectedMinions {
		roles = append(roles, MinionOfMordred)
		minions++
	}

	return roles, nil
}
