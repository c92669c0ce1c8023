package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/palemoky/avalon/internal/apperrors"
	"github.com/palemoky/avalon/internal/game"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/player"
	"github.com/palemoky/avalon/internal/game/role"
	"github.com/palemoky/avalon/internal/game/setup"
)

// Config 完整的开局配置文件
type Config struct {
	Game       GameSection       `yaml:"game"`
	Players    []PlayerEntry     `yaml:"players"`
	Agent      AgentSection      `yaml:"agent"`
	Snapshot   SnapshotSection   `yaml:"snapshot"`
	Discussion DiscussionSection `yaml:"discussion"`
}

// GameSection 对局设置
type GameSection struct {
	// OptionalRoles 除梅林/刺客外启用的特殊角色
	OptionalRoles []string `yaml:"optional_roles"`
	LadyOfTheLake bool     `yaml:"lady_of_the_lake"`
	Seed          *int64   `yaml:"seed"`
}

// AgentSection 自动玩家设置
type AgentSection struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	// Timeout 单次决策超时（秒）
	Timeout int `yaml:"timeout"`
}

// SnapshotSection 快照持久化设置
type SnapshotSection struct {
	// Dir 文件快照输出目录，留空不落盘
	Dir string `yaml:"dir"`
	// RedisAddr Redis 快照存储地址，留空不启用
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// DiscussionSection 讨论环节设置
// 布尔项用指针区分"未写"与"显式关闭"，未写时取默认值
type DiscussionSection struct {
	Enabled          *bool `yaml:"enabled"`
	PreProposal      *bool `yaml:"pre_proposal"`
	PreVote          *bool `yaml:"pre_vote"`
	PostMission      *bool `yaml:"post_mission"`
	PreAssassination *bool `yaml:"pre_assassination"`
	// MaxStatements 每人每环节发言上限，0 表示取默认值
	MaxStatements int `yaml:"max_statements"`
}

// Build 在默认配置上套用显式覆盖项
func (s DiscussionSection) Build() discussion.Config {
	cfg := discussion.DefaultConfig()
	override := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	override(&cfg.Enabled, s.Enabled)
	override(&cfg.PreProposal, s.PreProposal)
	override(&cfg.PreVote, s.PreVote)
	override(&cfg.PostMission, s.PostMission)
	override(&cfg.PreAssassination, s.PreAssassination)
	if s.MaxStatements > 0 {
		cfg.MaxStatementsPerPlayer = s.MaxStatements
	}
	return cfg
}

// PlayerEntry 玩家条目，支持纯名字或 {name, type} 两种写法
type PlayerEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// UnmarshalYAML 兼容字符串与映射两种条目格式
func (e *PlayerEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		e.Name = value.Value
		e.Type = "human"
		return nil
	}
	type raw PlayerEntry
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	*e = PlayerEntry(r)
	if e.Type == "" {
		e.Type = "human"
	}
	return nil
}

// roleNames 配置文件中的简写到角色类型的映射
var roleNames = map[string]role.Type{
	"merlin":        role.Merlin,
	"percival":      role.Percival,
	"assassin":      role.Assassin,
	"morgana":       role.Morgana,
	"mordred":       role.Mordred,
	"oberon":        role.Oberon,
	"loyal_servant": role.LoyalServant,
	"minion":        role.MinionOfMordred,
}

// Load 读取并解析 YAML 配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.New(apperrors.KindConfigIncompatible,
			fmt.Sprintf("invalid yaml file: %v", err))
	}
	if len(cfg.Players) == 0 {
		return nil, apperrors.New(apperrors.KindConfigIncompatible,
			"config file must specify a players list")
	}
	if cfg.Agent.Timeout <= 0 {
		cfg.Agent.Timeout = 60
	}
	return &cfg, nil
}

// GameConfig 将配置文件转换为引擎配置
// 角色组合在此通过注册表完成校验，引擎不再重复检查
func (c *Config) GameConfig() (game.Config, error) {
	optional := make([]role.Type, 0, len(c.Game.OptionalRoles))
	for _, name := range c.Game.OptionalRoles {
		r, ok := roleNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return game.Config{}, apperrors.New(apperrors.KindConfigIncompatible,
				fmt.Sprintf("unknown optional role: %s", name))
		}
		optional = append(optional, r)
	}

	roles, err := role.BuildRoles(len(c.Players), optional)
	if err != nil {
		return game.Config{}, err
	}

	cfg := game.Config{
		PlayerCount:   len(c.Players),
		Roles:         roles,
		LadyOfTheLake: c.Game.LadyOfTheLake,
		Seed:          c.Game.Seed,
		Discussion:    c.Discussion.Build(),
	}
	if err := cfg.Validate(); err != nil {
		return game.Config{}, err
	}
	return cfg, nil
}

// Registrations 将玩家条目转换为报名信息
func (c *Config) Registrations() ([]setup.Registration, error) {
	out := make([]setup.Registration, 0, len(c.Players))
	for i, entry := range c.Players {
		var kind player.Kind
		switch strings.ToLower(strings.TrimSpace(entry.Type)) {
		case "", "human":
			kind = player.KindHuman
		case "agent":
			kind = player.KindAgent
		default:
			return nil, apperrors.New(apperrors.KindConfigIncompatible,
				fmt.Sprintf("player entry %d: invalid type %q, must be human or agent", i+1, entry.Type))
		}
		out = append(out, setup.Registration{DisplayName: entry.Name, Kind: kind})
	}
	return out, nil
}
