// Package discussion 桌面讨论模型：公开发言的记录与配额
// 发言属于公开信息，所有玩家与代理均可见
package discussion

// Phase 讨论发生的时机
type Phase string

const (
	PhasePreProposal      Phase = "pre_proposal"
	PhasePreVote          Phase = "pre_vote"
	PhasePostMission      Phase = "post_mission_result"
	PhasePreAssassination Phase = "pre_assassination"
)

// Statement 一条公开发言
type Statement struct {
	SpeakerID string
	Message   string
	Round     int
	Attempt   int
	Phase     Phase
}

// Config 讨论环节配置
type Config struct {
	Enabled          bool
	PreProposal      bool
	PreVote          bool
	PostMission      bool
	PreAssassination bool
	// MaxStatementsPerPlayer 每人每环节发言上限，0 表示不限
	MaxStatementsPerPlayer int
	// AllowPass 允许弃权不发言
	AllowPass bool
}

// DefaultConfig 全部时机开启，每人每环节至多两条发言
func DefaultConfig() Config {
	return Config{
		Enabled:                true,
		PreProposal:            true,
		PreVote:                true,
		PostMission:            true,
		PreAssassination:       true,
		MaxStatementsPerPlayer: 2,
		AllowPass:              true,
	}
}

// Allows 判断指定时机是否开放讨论
func (c Config) Allows(p Phase) bool {
	if !c.Enabled {
		return false
	}
	switch p {
	case PhasePreProposal:
		return c.PreProposal
	case PhasePreVote:
		return c.PreVote
	case PhasePostMission:
		return c.PostMission
	case PhasePreAssassination:
		return c.PreAssassination
	}
	return false
}

// Round 一次完整的讨论环节
type Round struct {
	Round      int
	Attempt    int
	Phase      Phase
	Statements []Statement
}

// Add 追加一条发言
func (r *Round) Add(s Statement) {
	r.Statements = append(r.Statements, s)
}

// StatementsBy 返回指定玩家在本环节的全部发言
func (r *Round) StatementsBy(playerID string) []Statement {
	var out []Statement
	for _, s := range r.Statements {
		if s.SpeakerID == playerID {
			out = append(out, s)
		}
	}
	return out
}

// HasSpoken 判断指定玩家在本环节是否发过言
func (r *Round) HasSpoken(playerID string) bool {
	for _, s := range r.Statements {
		if s.SpeakerID == playerID {
			return true
		}
	}
	return false
}

// Clone 返回独立副本
func (r Round) Clone() Round {
	out := r
	out.Statements = append([]Statement(nil), r.Statements...)
	return out
}
