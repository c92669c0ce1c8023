package apperrors

// ErrorKind 引擎拒绝动作的类别，调用方据此决定重试或放弃
type ErrorKind int

const (
	KindInvalidPhase ErrorKind = iota + 1
	KindInvalidLeader
	KindInvalidTeamSize
	KindDuplicatePlayer
	KindUnknownPlayer
	KindAlreadyVoted
	KindIncompleteVoteSet
	KindNotOnMission
	KindDuplicateMissionSubmission
	KindAlignmentViolation
	KindInvalidAssassin
	KindUnknownAssassinationTarget
	KindAlreadyResolved
	KindConfigIncompatible
	KindDiscussionInProgress
	KindEmptyStatement
	KindStatementLimit
)

// GameError 游戏错误（所有动作拒绝共享此类型）
type GameError struct {
	Kind    ErrorKind
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Is 支持 errors.Is 按 Kind 匹配预定义错误值
func (e *GameError) Is(target error) bool {
	other, ok := target.(*GameError)
	return ok && other.Kind == e.Kind
}

// 预定义错误
var (
	ErrInvalidPhase        = &GameError{Kind: KindInvalidPhase, Message: "action is not legal in the current phase"}
	ErrInvalidLeader       = &GameError{Kind: KindInvalidLeader, Message: "only the current leader may propose a team"}
	ErrInvalidTeamSize     = &GameError{Kind: KindInvalidTeamSize, Message: "proposed team has the wrong size"}
	ErrDuplicatePlayer     = &GameError{Kind: KindDuplicatePlayer, Message: "proposed team contains a duplicate player"}
	ErrUnknownPlayer       = &GameError{Kind: KindUnknownPlayer, Message: "unknown player id"}
	ErrAlreadyVoted        = &GameError{Kind: KindAlreadyVoted, Message: "player has already voted on this proposal"}
	ErrIncompleteVoteSet   = &GameError{Kind: KindIncompleteVoteSet, Message: "vote set is incomplete"}
	ErrNotOnMission        = &GameError{Kind: KindNotOnMission, Message: "player is not on the current mission team"}
	ErrDuplicateSubmission = &GameError{Kind: KindDuplicateMissionSubmission, Message: "player has already submitted a mission card"}
	ErrAlignmentViolation  = &GameError{Kind: KindAlignmentViolation, Message: "resistance players may not play a fail card"}
	ErrInvalidAssassin     = &GameError{Kind: KindInvalidAssassin, Message: "only the assassin may perform the assassination"}
	ErrUnknownTarget       = &GameError{Kind: KindUnknownAssassinationTarget, Message: "unknown assassination target"}
	ErrAlreadyResolved     = &GameError{Kind: KindAlreadyResolved, Message: "game has already been resolved"}
	ErrConfigIncompatible  = &GameError{Kind: KindConfigIncompatible, Message: "configuration violates role composition rules"}

	ErrDiscussionInProgress = &GameError{Kind: KindDiscussionInProgress, Message: "a discussion is already in progress"}
	ErrEmptyStatement       = &GameError{Kind: KindEmptyStatement, Message: "statement message is empty"}
	ErrStatementLimit       = &GameError{Kind: KindStatementLimit, Message: "player has reached the statement limit for this discussion"}
)

// New 构造带自定义消息的同类错误，errors.Is 仍可与预定义值匹配
func New(kind ErrorKind, message string) *GameError {
	return &GameError{Kind: kind, Message: message}
}
