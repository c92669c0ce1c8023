// Package snapshot 定义对局的可序列化快照文档
// 快照属于管理工件，包含角色与私密历史，不可直接发给玩家
package snapshot

import (
	"encoding/json"
	"os"

	"github.com/palemoky/avalon/internal/game/event"
)

// Game 快照根文档，字段命名保持稳定以保证往返保真
type Game struct {
	Config        ConfigData       `json:"config"`
	Players       []PlayerData     `json:"players"`
	State         StateData        `json:"state"`
	Votes         []VoteData       `json:"votes"`
	Missions      []MissionData    `json:"missions"`
	Discussions   []DiscussionData `json:"discussions,omitempty"`
	Assassination *Assassination   `json:"assassination,omitempty"`
	Seed          int64            `json:"seed"`
	Events        []event.Event    `json:"event_log"`
}

// ConfigData 对局配置
type ConfigData struct {
	PlayerCount   int                  `json:"player_count"`
	Roles         []string             `json:"roles"`
	LadyOfTheLake bool                 `json:"lady_of_the_lake_enabled"`
	Seed          *int64               `json:"random_seed,omitempty"`
	Discussion    DiscussionConfigData `json:"discussion"`
}

// DiscussionConfigData 讨论环节配置
type DiscussionConfigData struct {
	Enabled                bool `json:"enabled"`
	PreProposal            bool `json:"pre_proposal"`
	PreVote                bool `json:"pre_vote"`
	PostMission            bool `json:"post_mission"`
	PreAssassination       bool `json:"pre_assassination"`
	MaxStatementsPerPlayer int  `json:"max_statements_per_player"`
	AllowPass              bool `json:"allow_pass"`
}

// PlayerData 含角色的完整玩家数据
type PlayerData struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Kind        string `json:"kind"`
}

// StateData 状态机当前位置，含未结算的投票/出牌缓存与进行中的讨论
type StateData struct {
	Phase                 string            `json:"phase"`
	Round                 int               `json:"round"`
	Attempt               int               `json:"attempt"`
	LeaderIndex           int               `json:"leader_index"`
	ResistanceScore       int               `json:"resistance_score"`
	MinionScore           int               `json:"minion_score"`
	CurrentTeam           []string          `json:"current_team,omitempty"`
	PendingVotes          map[string]bool   `json:"pending_votes,omitempty"`
	PendingCards          map[string]string `json:"pending_cards,omitempty"`
	CurrentDiscussion     *DiscussionData   `json:"current_discussion,omitempty"`
	ConsecutiveRejections int               `json:"consecutive_rejections"`
	ProvisionalWinner     string            `json:"provisional_winner,omitempty"`
	FinalWinner           string            `json:"final_winner,omitempty"`
}

// DiscussionData 一次讨论环节的全部发言
type DiscussionData struct {
	Round      int             `json:"round"`
	Attempt    int             `json:"attempt"`
	Phase      string          `json:"phase"`
	Statements []StatementData `json:"statements,omitempty"`
}

// StatementData 单条公开发言
type StatementData struct {
	SpeakerID string `json:"speaker_id"`
	Message   string `json:"message"`
	Round     int    `json:"round"`
	Attempt   int    `json:"attempt"`
	Phase     string `json:"phase"`
}

// VoteData 含个人票的投票记录
type VoteData struct {
	Round    int             `json:"round"`
	Attempt  int             `json:"attempt"`
	LeaderID string          `json:"leader_id"`
	Team     []string        `json:"team"`
	Ballots  map[string]bool `json:"ballots"`
	Approved bool            `json:"approved"`
}

// MissionData 含个人出牌的任务记录
type MissionData struct {
	Round         int          `json:"round"`
	Attempt       int          `json:"attempt"`
	Team          []string     `json:"team"`
	FailCount     int          `json:"fail_count"`
	RequiredFails int          `json:"required_fail_count"`
	Result        string       `json:"result"`
	AutoFail      bool         `json:"auto_fail"`
	Actions       []ActionData `json:"actions,omitempty"`
}

// ActionData 单张任务牌
type ActionData struct {
	PlayerID string `json:"player_id"`
	Card     string `json:"card"`
}

// Assassination 刺杀结算
type Assassination struct {
	AssassinID string `json:"assassin_id"`
	TargetID   string `json:"target_id"`
	Correct    bool   `json:"correct"`
	Winner     string `json:"winner"`
}

// Encode 序列化为缩进 JSON
func Encode(g *Game) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// Decode 从 JSON 反序列化
func Decode(data []byte) (*Game, error) {
	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Save 写入文件
func Save(g *Game, path string) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load 从文件读取
func Load(path string) (*Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
