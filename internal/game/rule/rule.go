package rule

// Rounds 每局固定五轮任务
const Rounds = 5

// MaxRejections 连续否决次数达到该值时强制判负本轮任务
const MaxRejections = 5

// teamSizes 每个人数对应的五轮队伍规模（官方表）
var teamSizes = map[int][Rounds]int{
	5:  {2, 3, 2, 3, 3},
	6:  {2, 3, 4, 3, 4},
	7:  {2, 3, 3, 4, 4},
	8:  {3, 4, 4, 5, 5},
	9:  {3, 4, 4, 5, 5},
	10: {3, 4, 4, 5, 5},
}

// Supported 判断人数是否在规则表内
func Supported(playerCount int) bool {
	_, ok := teamSizes[playerCount]
	return ok
}

// TeamSize 返回 (人数, 轮次) 对应的队伍规模，轮次从 1 开始
func TeamSize(playerCount, round int) int {
	sizes, ok := teamSizes[playerCount]
	if !ok || round < 1 || round > Rounds {
		return 0
	}
	return sizes[round-1]
}

// FailThreshold 返回判负所需的失败牌数
// 仅第 4 轮且 7 人及以上需要两张失败牌
func FailThreshold(playerCount, round int) int {
	if round == 4 && playerCount >= 7 {
		return 2
	}
	return 1
}

// Approved 判断投票是否通过：赞成票须严格过半，平票视为否决
func Approved(approvals, playerCount int) bool {
	return approvals*2 > playerCount
}
