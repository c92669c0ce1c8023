package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/palemoky/avalon/internal/game/discussion"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	maxRetries     = 3
	baseRetryDelay = time.Second
)

// OpenAIDecider 通过 Chat Completions 接口驱动的决策器
// 仅做提示词构造与应答解析，策略完全由模型给出
type OpenAIDecider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// OpenAIOption 配置项
type OpenAIOption func(*OpenAIDecider)

// WithModel 覆盖默认模型
func WithModel(model string) OpenAIOption {
	return func(d *OpenAIDecider) {
		if model != "" {
			d.model = model
		}
	}
}

// WithBaseURL 覆盖接口地址（OpenAI 兼容网关）
func WithBaseURL(url string) OpenAIOption {
	return func(d *OpenAIDecider) {
		if url != "" {
			d.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient 覆盖 HTTP 客户端
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(d *OpenAIDecider) {
		if c != nil {
			d.client = c
		}
	}
}

// NewOpenAIDecider 创建决策器，apiKey 不能为空
func NewOpenAIDecider(apiKey string, opts ...OpenAIOption) (*OpenAIDecider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	d := &OpenAIDecider{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_completion_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// generate 发起一次补全请求，429 按指数退避重试
func (d *OpenAIDecider) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       d.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 1.0,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			d.baseURL+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("rate limited: %s", strings.TrimSpace(string(body)))
			} else if resp.StatusCode != http.StatusOK {
				return "", fmt.Errorf("openai request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
			} else {
				var parsed chatResponse
				if err := json.Unmarshal(body, &parsed); err != nil {
					lastErr = fmt.Errorf("malformed completion response: %w", err)
				} else if parsed.Error != nil {
					return "", fmt.Errorf("openai error: %s", parsed.Error.Message)
				} else if len(parsed.Choices) == 0 {
					lastErr = fmt.Errorf("completion response has no choices")
				} else {
					return parsed.Choices[0].Message.Content, nil
				}
			}
		}

		if attempt < maxRetries-1 {
			delay := baseRetryDelay * (1 << attempt)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return "", lastErr
}

// ProposeTeam 请求模型给出组队提名
func (d *OpenAIDecider) ProposeTeam(ctx context.Context, obs Observation) (TeamProposal, error) {
	prompt := buildPrompt(obs,
		fmt.Sprintf("You are the leader. Propose a mission team of exactly %d player ids.", obs.RequiredTeamSize),
		`{"team": ["id1", "id2"], "reasoning": "..."}`)
	raw, err := d.generate(ctx, prompt)
	if err != nil {
		return TeamProposal{}, err
	}
	var out struct {
		Team      []string `json:"team"`
		Reasoning string   `json:"reasoning"`
	}
	if err := decodeReply(raw, &out); err != nil {
		return TeamProposal{}, err
	}
	return TeamProposal{Team: out.Team, Reasoning: out.Reasoning}, nil
}

// VoteOnTeam 请求模型投票
func (d *OpenAIDecider) VoteOnTeam(ctx context.Context, obs Observation) (VoteDecision, error) {
	prompt := buildPrompt(obs,
		fmt.Sprintf("Vote on the proposed team %v.", obs.CurrentTeam),
		`{"approve": true, "reasoning": "..."}`)
	raw, err := d.generate(ctx, prompt)
	if err != nil {
		return VoteDecision{}, err
	}
	var out struct {
		Approve   bool   `json:"approve"`
		Reasoning string `json:"reasoning"`
	}
	if err := decodeReply(raw, &out); err != nil {
		return VoteDecision{}, err
	}
	return VoteDecision{Approve: out.Approve, Reasoning: out.Reasoning}, nil
}

// ExecuteMission 请求模型出任务牌
func (d *OpenAIDecider) ExecuteMission(ctx context.Context, obs Observation) (MissionDecision, error) {
	constraint := "You are on the mission team. Resistance players must play success."
	prompt := buildPrompt(obs, constraint, `{"success": true, "reasoning": "..."}`)
	raw, err := d.generate(ctx, prompt)
	if err != nil {
		return MissionDecision{}, err
	}
	var out struct {
		Success   bool   `json:"success"`
		Reasoning string `json:"reasoning"`
	}
	if err := decodeReply(raw, &out); err != nil {
		return MissionDecision{}, err
	}
	return MissionDecision{Success: out.Success, Reasoning: out.Reasoning}, nil
}

// GuessMerlin 请求模型选出刺杀目标
func (d *OpenAIDecider) GuessMerlin(ctx context.Context, obs Observation) (AssassinationGuess, error) {
	prompt := buildPrompt(obs,
		"You are the assassin. Identify which player is Merlin.",
		`{"target_id": "id", "reasoning": "..."}`)
	raw, err := d.generate(ctx, prompt)
	if err != nil {
		return AssassinationGuess{}, err
	}
	var out struct {
		TargetID  string `json:"target_id"`
		Reasoning string `json:"reasoning"`
	}
	if err := decodeReply(raw, &out); err != nil {
		return AssassinationGuess{}, err
	}
	return AssassinationGuess{TargetID: out.TargetID, Reasoning: out.Reasoning}, nil
}

// MakeStatement 请求模型生成一条桌面发言，空 message 视为弃权
func (d *OpenAIDecider) MakeStatement(ctx context.Context, obs Observation, phase discussion.Phase) (DiscussionResponse, error) {
	prompt := buildPrompt(obs,
		fmt.Sprintf("Discussion is open (%s). Make one short table-talk statement to the group, or pass with an empty message. Never reveal your own role directly.", phase),
		`{"message": "...", "reasoning": "..."}`)
	raw, err := d.generate(ctx, prompt)
	if err != nil {
		return DiscussionResponse{}, err
	}
	var out struct {
		Message   string `json:"message"`
		Reasoning string `json:"reasoning"`
	}
	if err := decodeReply(raw, &out); err != nil {
		return DiscussionResponse{}, err
	}
	return DiscussionResponse{Message: out.Message, Reasoning: out.Reasoning}, nil
}

// buildPrompt 将观察渲染为自然语言提示词并约束 JSON 应答格式
func buildPrompt(obs Observation, task, schema string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are playing The Resistance: Avalon as %s (%s, role %s).\n",
		obs.DisplayName, obs.Alignment, obs.Role)
	fmt.Fprintf(&b, "Players in seat order: ")
	for i, id := range obs.PlayerIDs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s (%s)", obs.PlayerNames[i], id)
	}
	b.WriteString("\n")

	if len(obs.Knowledge.Visible) > 0 {
		fmt.Fprintf(&b, "You know these players are on the minion side: %s\n",
			strings.Join(obs.Knowledge.Visible, ", "))
	}
	for _, group := range obs.Knowledge.AmbiguousGroups {
		fmt.Fprintf(&b, "One of these players is Merlin, the other Morgana (you cannot tell which): %s\n",
			strings.Join(group, ", "))
	}

	fmt.Fprintf(&b, "Round %d, attempt %d. Score: resistance %d, minions %d. Leader: %s. Consecutive rejections: %d.\n",
		obs.Round, obs.Attempt, obs.ResistanceScore, obs.MinionScore, obs.LeaderID, obs.ConsecutiveRejections)
	fmt.Fprintf(&b, "This round needs a team of %d; the mission fails with %d fail card(s).\n",
		obs.RequiredTeamSize, obs.RequiredFailCount)

	for _, m := range obs.Missions {
		fmt.Fprintf(&b, "Mission %d: team %v, result %s (%d fail cards, auto_fail=%v)\n",
			m.Round, m.Team, m.Result, m.FailCount, m.AutoFail)
	}
	for _, v := range obs.Votes {
		fmt.Fprintf(&b, "Vote r%d a%d: leader %s, team %v, %d-%d, approved=%v\n",
			v.Round, v.Attempt, v.LeaderID, v.Team, v.Approvals, v.Rejections, v.Approved)
	}
	for _, s := range obs.Statements {
		fmt.Fprintf(&b, "%s said (r%d a%d, %s): %s\n",
			obs.NameOf(s.SpeakerID), s.Round, s.Attempt, s.Phase, s.Message)
	}

	fmt.Fprintf(&b, "\nTask: %s\n", task)
	fmt.Fprintf(&b, "Respond with a single JSON object exactly matching this shape: %s\n", schema)
	return b.String()
}

// decodeReply 从模型应答中提取第一个 JSON 对象并解码
func decodeReply(raw string, out any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("reply contains no JSON object: %q", raw)
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), out); err != nil {
		return fmt.Errorf("failed to decode reply: %w", err)
	}
	return nil
}
