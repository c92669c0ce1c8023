// Package game 定义跨引擎组件共享的对局配置
package game

import (
	"fmt"

	"github.com/palemoky/avalon/internal/apperrors"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/role"
	"github.com/palemoky/avalon/internal/game/rule"
)

// Config 一局游戏的不可变配置
// 角色组合的合法性由角色注册表校验，引擎不再重复检查
type Config struct {
	PlayerCount int
	Roles       []role.Type
	// LadyOfTheLake 可选模块开关，当前版本仅随配置与快照透传
	LadyOfTheLake bool
	// Seed 建局随机种子，nil 表示由 setup 抽取
	Seed *int64
	// Discussion 桌面讨论环节配置，零值表示关闭讨论
	Discussion discussion.Config
}

// Validate 通过角色注册表校验配置
func (c Config) Validate() error {
	if !rule.Supported(c.PlayerCount) {
		return apperrors.New(apperrors.KindConfigIncompatible,
			fmt.Sprintf("unsupported player count: %d", c.PlayerCount))
	}
	return role.Validate(c.PlayerCount, c.Roles)
}

// TeamSize 返回指定轮次的队伍规模
func (c Config) TeamSize(round int) int {
	return rule.TeamSize(c.PlayerCount, round)
}

// FailThreshold 返回指定轮次的判负失败牌数
func (c Config) FailThreshold(round int) int {
	return rule.FailThreshold(c.PlayerCount, round)
}

// HasAssassin 判断角色组合中是否存在持刺杀权的角色
func (c Config) HasAssassin() bool {
	for _, r := range c.Roles {
		if role.Definitions[r].HasTag(role.TagAssassin) {
			return true
		}
	}
	return false
}

// Default 返回指定人数的官方默认配置
func Default(playerCount int) (Config, error) {
	roles, err := role.DefaultRoles(playerCount)
	if err != nil {
		return Config{}, err
	}
	return Config{
		PlayerCount: playerCount,
		Roles:       roles,
		Discussion:  discussion.DefaultConfig(),
	}, nil
}
