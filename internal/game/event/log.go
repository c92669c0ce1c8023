package event

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/avalon/internal/game/role"
)

// Log 只追加的事件日志
// 写入由引擎串行化，读取可并发
type Log struct {
	mu     sync.RWMutex
	events []Event
}

// NewLog 创建空日志
func NewLog() *Log {
	return &Log{}
}

// FromEvents 用已有事件序列恢复日志（快照还原路径）
func FromEvents(events []Event) *Log {
	copied := make([]Event, len(events))
	copy(copied, events)
	return &Log{events: copied}
}

// Record 追加一条事件并返回它
// visibility 为空时默认 Public；audience 仅对 Private 有意义
func (l *Log) Record(kind Kind, payload map[string]any, visibility Visibility, audience ...string) Event {
	if visibility == "" {
		visibility = VisibilityPublic
	}
	if payload == nil {
		payload = map[string]any{}
	}
	e := Event{
		Timestamp:  time.Now().UTC(),
		Kind:       kind,
		Payload:    payload,
		Visibility: visibility,
		Audience:   audience,
	}

	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
	return e
}

// Len 返回事件总数
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// All 返回全部事件（含 Private），仅供快照与管理用途
func (l *Log) All() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Filter 通用过滤查询条件
type Filter struct {
	// Tags 观察者持有的受众标签
	Tags []string
	// IncludePublic 是否包含 Public 事件
	IncludePublic bool
	// Kinds 限定事件类别，为空表示不限
	Kinds []Kind
}

// Query 按过滤条件返回事件，顺序与追加顺序一致
// Private 事件只按受众标签放行，不存在绕开受众的查询参数
func (l *Log) Query(f Filter) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, e := range l.events {
		if len(f.Kinds) > 0 && !kindIn(e.Kind, f.Kinds) {
			continue
		}
		if e.Visibility == VisibilityPublic {
			if f.IncludePublic {
				out = append(out, e)
			}
			continue
		}
		if e.VisibleTo(f.Tags...) {
			out = append(out, e)
		}
	}
	return out
}

// Public 返回全部 Public 事件
func (l *Log) Public() []Event {
	return l.Query(Filter{IncludePublic: true})
}

// ForPlayer 返回指定玩家可见的事件（Public + 其受众内的 Private）
func (l *Log) ForPlayer(playerID string, extraTags ...string) []Event {
	tags := append([]string{PlayerTag(playerID)}, extraTags...)
	return l.Query(Filter{Tags: tags, IncludePublic: true})
}

// ForAlignment 返回指定阵营可见的事件
func (l *Log) ForAlignment(a role.Alignment) []Event {
	return l.Query(Filter{Tags: []string{AlignmentTag(a)}, IncludePublic: true})
}

// WriteJSONL 以换行分隔 JSON 导出全部事件
func (l *Log) WriteJSONL(w io.Writer) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	enc := json.NewEncoder(w)
	for _, e := range l.events {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// ToJSONL 返回 JSONL 字符串
func (l *Log) ToJSONL() (string, error) {
	var sb strings.Builder
	if err := l.WriteJSONL(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FromJSONL 从 JSONL 数据重建日志
func FromJSONL(r io.Reader) (*Log, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return FromEvents(events), nil
}

func kindIn(k Kind, kinds []Kind) bool {
	for _, candidate := range kinds {
		if k == candidate {
			return true
		}
	}
	return false
}
