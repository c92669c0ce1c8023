package event

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/avalon/internal/game/role"
)

func newSampleLog() *Log {
	l := NewLog()
	l.Record(KindGameStarted, map[string]any{"player_count": 5}, VisibilityPublic)
	l.Record(KindRoleAssigned, map[string]any{"role": "merlin"}, VisibilityPrivate, PlayerTag("a"))
	l.Record(KindRoleAssigned, map[string]any{"role": "assassin"}, VisibilityPrivate, PlayerTag("d"))
	l.Record(KindMinionsRevealed, map[string]any{"minions": []string{"d", "e"}},
		VisibilityPrivate, AlignmentTag(role.AlignmentMinion))
	l.Record(KindTeamProposed, map[string]any{"team": []string{"a", "b"}}, VisibilityPublic)
	return l
}

func TestRecordAndLen(t *testing.T) {
	t.Parallel()

	l := newSampleLog()
	assert.Equal(t, 5, l.Len())
	assert.Len(t, l.All(), 5)
}

func TestPublicExcludesPrivate(t *testing.T) {
	t.Parallel()

	l := newSampleLog()
	public := l.Public()
	require.Len(t, public, 2)
	for _, e := range public {
		assert.Equal(t, VisibilityPublic, e.Visibility)
	}
}

func TestForPlayerSeesOnlyOwnPrivate(t *testing.T) {
	t.Parallel()

	l := newSampleLog()

	// Player a: two public events plus their own role card.
	forA := l.ForPlayer("a")
	require.Len(t, forA, 3)

	// Player b holds no private audience tags at all.
	forB := l.ForPlayer("b")
	require.Len(t, forB, 2)

	// Player d additionally carries the minion alignment tag.
	forD := l.ForPlayer("d", AlignmentTag(role.AlignmentMinion))
	require.Len(t, forD, 4)
}

func TestQueryNeverLeaksAcrossAudiences(t *testing.T) {
	t.Parallel()

	l := newSampleLog()

	// Whatever tag combination an observer holds, a private event only
	// appears when one of its own audience tags is held.
	observers := [][]string{
		nil,
		{PlayerTag("a")},
		{PlayerTag("b"), PlayerTag("c")},
		{AlignmentTag(role.AlignmentResistance)},
		{AlignmentTag(role.AlignmentMinion)},
		{PlayerTag("d"), AlignmentTag(role.AlignmentMinion)},
	}
	for _, tags := range observers {
		for _, e := range l.Query(Filter{Tags: tags, IncludePublic: true}) {
			if e.Visibility == VisibilityPublic {
				continue
			}
			assert.True(t, e.VisibleTo(tags...),
				"private event %s leaked to tags %v", e.Kind, tags)
		}
	}
}

func TestQueryByKind(t *testing.T) {
	t.Parallel()

	l := newSampleLog()
	events := l.Query(Filter{
		Tags:          []string{PlayerTag("a"), PlayerTag("d")},
		IncludePublic: true,
		Kinds:         []Kind{KindRoleAssigned},
	})
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, KindRoleAssigned, e.Kind)
	}
}

func TestOrderPreserved(t *testing.T) {
	t.Parallel()

	l := newSampleLog()
	all := l.All()
	kinds := make([]Kind, len(all))
	for i, e := range all {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []Kind{KindGameStarted, KindRoleAssigned, KindRoleAssigned,
		KindMinionsRevealed, KindTeamProposed}, kinds)
}

func TestJSONLRoundTrip(t *testing.T) {
	t.Parallel()

	l := newSampleLog()
	data, err := l.ToJSONL()
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(data, "\n"))

	restored, err := FromJSONL(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, l.Len(), restored.Len())

	original := l.All()
	for i, e := range restored.All() {
		assert.Equal(t, original[i].Kind, e.Kind)
		assert.Equal(t, original[i].Visibility, e.Visibility)
		assert.Equal(t, original[i].Audience, e.Audience)
		assert.True(t, original[i].Timestamp.Equal(e.Timestamp))
	}

	// Restored logs answer visibility queries identically.
	assert.Len(t, restored.ForPlayer("a"), 3)
	assert.Len(t, restored.Public(), 2)
}

func TestFromJSONLRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := FromJSONL(strings.NewReader("{not json}\n"))
	assert.Error(t, err)
}

func TestVisibleTo(t *testing.T) {
	t.Parallel()

	e := Event{Visibility: VisibilityPrivate, Audience: []string{PlayerTag("a")}}
	assert.True(t, e.VisibleTo(PlayerTag("a")))
	assert.False(t, e.VisibleTo(PlayerTag("b")))
	assert.False(t, e.VisibleTo())

	public := Event{Visibility: VisibilityPublic}
	assert.True(t, public.VisibleTo())
}
