// Package interaction 终端交互层：同屏轮流操作的人类玩家界面
// Console 实现 agent.Decider，引擎层对人类与代理玩家一视同仁
package interaction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/avalon/internal/agent"
	"github.com/palemoky/avalon/internal/game/discussion"
	"github.com/palemoky/avalon/internal/game/engine"
	"github.com/palemoky/avalon/internal/game/role"
	"github.com/palemoky/avalon/internal/game/setup"
)

// Console 基于标准输入输出的人类玩家交互
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole 创建交互实例
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

// clearScreen 清屏，防止上一位玩家的私密信息残留
func (c *Console) clearScreen() {
	fmt.Fprint(c.out, "\033[2J\033[H")
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// waitForEnter 等待回车确认
func (c *Console) waitForEnter(prompt string) error {
	c.println(promptStyle.Render(prompt))
	_, err := c.readLine()
	return err
}

// handDeviceTo 传递设备提示，等待目标玩家接手
func (c *Console) handDeviceTo(name string) error {
	c.clearScreen()
	c.printf("%s\n", titleStyle.Render(fmt.Sprintf("请把设备交给 %s", name)))
	return c.waitForEnter("确认是你本人后按回车…")
}

// DeliverBriefing 向单个玩家私密展示身份与初始情报
func (c *Console) DeliverBriefing(b setup.Briefing) error {
	if err := c.handDeviceTo(b.Player.DisplayName); err != nil {
		return err
	}

	style := resistanceStyle
	if b.Player.Alignment() == role.AlignmentMinion {
		style = minionStyle
	}
	c.printf("你的身份: %s（%s 阵营）\n",
		style.Render(string(b.Player.Role)), style.Render(string(b.Player.Alignment())))

	if len(b.Knowledge.Visible) > 0 {
		c.printf("%s %s\n", secretStyle.Render("你看到的邪恶方玩家:"),
			strings.Join(b.Knowledge.Visible, ", "))
	}
	for _, group := range b.Knowledge.AmbiguousGroups {
		c.printf("%s %s\n", secretStyle.Render("其中一人是梅林，另一人是莫甘娜:"),
			strings.Join(group, ", "))
	}
	if !b.Knowledge.HasInformation() {
		c.println(dimStyle.Render("你没有额外情报。"))
	}

	if err := c.waitForEnter("记住后按回车，屏幕将被清空…"); err != nil {
		return err
	}
	c.clearScreen()
	return nil
}

// RenderBoard 渲染公开局面
func (c *Console) RenderBoard(obs agent.Observation) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "第 %d 轮 · 第 %d 次组队\n", obs.Round, obs.Attempt)
	fmt.Fprintf(&sb, "比分  正义 %d : %d 邪恶\n", obs.ResistanceScore, obs.MinionScore)
	fmt.Fprintf(&sb, "队长  %s %s\n", CrownIcon, obs.NameOf(obs.LeaderID))
	fmt.Fprintf(&sb, "连续否决  %d/5\n", obs.ConsecutiveRejections)
	fmt.Fprintf(&sb, "本轮需要 %d 名队员，%d 张失败牌即告失败",
		obs.RequiredTeamSize, obs.RequiredFailCount)

	for _, m := range obs.Missions {
		icon := SuccessIcon
		if m.Result == engine.MissionFailure {
			icon = FailIcon
		}
		fmt.Fprintf(&sb, "\n任务 %d %s  失败牌 %d", m.Round, icon, m.FailCount)
		if m.AutoFail {
			sb.WriteString(dimStyle.Render("（连续五次否决判负）"))
		}
	}
	c.println(boardStyle.Render(sb.String()))
}

// ProposeTeam 人类队长通过座位号选择队伍
func (c *Console) ProposeTeam(_ context.Context, obs agent.Observation) (agent.TeamProposal, error) {
	if err := c.handDeviceTo(obs.DisplayName); err != nil {
		return agent.TeamProposal{}, err
	}
	c.RenderBoard(obs)
	c.println(titleStyle.Render(fmt.Sprintf("%s 你是队长，请选择 %d 名队员", CrownIcon, obs.RequiredTeamSize)))
	for i, name := range obs.PlayerNames {
		c.printf("  %d. %s\n", i+1, name)
	}

	for {
		c.println(promptStyle.Render(fmt.Sprintf("输入 %d 个座位号（空格分隔）:", obs.RequiredTeamSize)))
		line, err := c.readLine()
		if err != nil {
			return agent.TeamProposal{}, err
		}
		team, err := parseSeats(line, obs)
		if err != nil {
			c.println(errorStyle.Render(err.Error()))
			continue
		}
		if len(team) != obs.RequiredTeamSize {
			c.println(errorStyle.Render(fmt.Sprintf("需要恰好 %d 名队员", obs.RequiredTeamSize)))
			continue
		}
		return agent.TeamProposal{Team: team}, nil
	}
}

// parseSeats 将 "1 3 4" 形式的座位号解析为玩家 id，自动去重
func parseSeats(line string, obs agent.Observation) ([]string, error) {
	fields := strings.Fields(line)
	seen := make(map[int]bool, len(fields))
	team := make([]string, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(obs.PlayerIDs) {
			return nil, fmt.Errorf("无效座位号: %s", f)
		}
		if seen[n] {
			return nil, fmt.Errorf("座位号重复: %d", n)
		}
		seen[n] = true
		team = append(team, obs.PlayerIDs[n-1])
	}
	return team, nil
}

// VoteOnTeam 人类玩家私密投票
func (c *Console) VoteOnTeam(_ context.Context, obs agent.Observation) (agent.VoteDecision, error) {
	if err := c.handDeviceTo(obs.DisplayName); err != nil {
		return agent.VoteDecision{}, err
	}
	c.RenderBoard(obs)
	names := make([]string, len(obs.CurrentTeam))
	for i, id := range obs.CurrentTeam {
		names[i] = obs.NameOf(id)
	}
	c.println(titleStyle.Render("提议队伍: " + strings.Join(names, ", ")))

	approve, err := c.askYesNo("赞成这支队伍吗？(y/n):")
	if err != nil {
		return agent.VoteDecision{}, err
	}
	c.clearScreen()
	return agent.VoteDecision{Approve: approve}, nil
}

// ExecuteMission 人类队员私密出牌，正义方由引擎强制出成功牌
func (c *Console) ExecuteMission(_ context.Context, obs agent.Observation) (agent.MissionDecision, error) {
	if err := c.handDeviceTo(obs.DisplayName); err != nil {
		return agent.MissionDecision{}, err
	}
	c.RenderBoard(obs)

	if obs.Alignment == role.AlignmentResistance {
		c.println(dimStyle.Render("正义方只能打出成功牌。"))
		if err := c.waitForEnter("按回车打出成功牌…"); err != nil {
			return agent.MissionDecision{}, err
		}
		c.clearScreen()
		return agent.MissionDecision{Success: true}, nil
	}

	success, err := c.askYesNo("打出成功牌吗？(y=成功 / n=失败):")
	if err != nil {
		return agent.MissionDecision{}, err
	}
	c.clearScreen()
	return agent.MissionDecision{Success: success}, nil
}

// GuessMerlin 人类刺客选择刺杀目标
func (c *Console) GuessMerlin(_ context.Context, obs agent.Observation) (agent.AssassinationGuess, error) {
	if err := c.handDeviceTo(obs.DisplayName); err != nil {
		return agent.AssassinationGuess{}, err
	}
	c.RenderBoard(obs)
	c.println(minionStyle.Render(DaggerIcon + " 正义方完成了三次任务，你有最后一次翻盘机会：刺杀梅林"))
	for i, name := range obs.PlayerNames {
		if obs.PlayerIDs[i] == obs.PlayerID {
			continue
		}
		c.printf("  %d. %s\n", i+1, name)
	}

	for {
		c.println(promptStyle.Render("输入目标座位号:"))
		line, err := c.readLine()
		if err != nil {
			return agent.AssassinationGuess{}, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(obs.PlayerIDs) {
			c.println(errorStyle.Render("无效座位号"))
			continue
		}
		target := obs.PlayerIDs[n-1]
		if target == obs.PlayerID {
			c.println(errorStyle.Render("不能刺杀自己"))
			continue
		}
		return agent.AssassinationGuess{TargetID: target}, nil
	}
}

// MakeStatement 人类玩家公开发言，直接回车表示弃权
func (c *Console) MakeStatement(_ context.Context, obs agent.Observation, _ discussion.Phase) (agent.DiscussionResponse, error) {
	if err := c.handDeviceTo(obs.DisplayName); err != nil {
		return agent.DiscussionResponse{}, err
	}
	c.RenderBoard(obs)
	if len(obs.Statements) > 0 {
		c.println(titleStyle.Render(SpeechIcon + " 本局发言:"))
		for _, s := range obs.Statements {
			c.printf("  %s: %s\n", obs.NameOf(s.SpeakerID), s.Message)
		}
	}

	c.println(promptStyle.Render("输入你的发言（发言公开可见，直接回车跳过）:"))
	line, err := c.readLine()
	if err != nil {
		return agent.DiscussionResponse{}, err
	}
	return agent.DiscussionResponse{Message: line}, nil
}

// AnnounceStatement 公布一条发言
func (c *Console) AnnounceStatement(name string, s discussion.Statement) {
	c.printf("%s %s: %s\n", SpeechIcon, name, s.Message)
}

func (c *Console) askYesNo(prompt string) (bool, error) {
	for {
		c.println(promptStyle.Render(prompt))
		line, err := c.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		c.println(errorStyle.Render("请输入 y 或 n"))
	}
}

// AnnounceVote 公布一次组队投票结果
func (c *Console) AnnounceVote(v engine.VoteSummary) {
	verdict := resistanceStyle.Render("通过")
	if !v.Approved {
		verdict = minionStyle.Render("否决")
	}
	c.printf("投票结果 %d:%d，队伍%s\n", v.Approvals, v.Rejections, verdict)
}

// AnnounceMission 公布一次任务结果，不点名出牌者
func (c *Console) AnnounceMission(m engine.MissionSummary) {
	verdict := resistanceStyle.Render("成功 " + SuccessIcon)
	if m.Result == engine.MissionFailure {
		verdict = minionStyle.Render("失败 " + FailIcon)
	}
	if m.AutoFail {
		c.printf("连续五次否决，任务 %d 自动判负 %s\n", m.Round, FailIcon)
		return
	}
	c.printf("任务 %d %s（失败牌 %d 张）\n", m.Round, verdict, m.FailCount)
}

// AnnounceGameOver 公布终局：胜方、刺杀结果与全部身份
func (c *Console) AnnounceGameOver(g *engine.Game) {
	winner := g.Winner()
	banner := resistanceStyle.Render("正义阵营获胜！" + ShieldIcon)
	if winner == role.AlignmentMinion {
		banner = minionStyle.Render("邪恶阵营获胜！" + DaggerIcon)
	}
	c.println(lipgloss.NewStyle().Bold(true).Render("\n========= 游戏结束 ========="))
	c.println(banner)

	if a := g.Assassination(); a != nil {
		assassin, _ := g.PlayerByID(a.AssassinID)
		target, _ := g.PlayerByID(a.TargetID)
		outcome := "刺杀失败"
		if a.Correct {
			outcome = "刺杀成功"
		}
		c.printf("%s %s 刺杀了 %s，%s\n", DaggerIcon, assassin.DisplayName, target.DisplayName, outcome)
	}

	c.println(titleStyle.Render("身份公开:"))
	for _, p := range g.Players() {
		style := resistanceStyle
		if p.Alignment() == role.AlignmentMinion {
			style = minionStyle
		}
		c.printf("  %s: %s\n", p.DisplayName, style.Render(string(p.Role)))
	}
}
