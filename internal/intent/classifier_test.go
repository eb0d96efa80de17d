// ABOUTME: Tests for the intent classifier and rule loading
// ABOUTME: Covers rule ordering, case folding, and TOML rule files

package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_FirstMatchWins(t *testing.T) {
	c := NewClassifier(DefaultRules())

	// "bye" (stop rule) and "ping" (latency rule) both appear; the stop
	// rule is declared first so it must win.
	in, ok := c.Classify("bye, but first what's the ping")
	require.True(t, ok)
	assert.Equal(t, StopConversation, in)

	// Reversed content, same result: matching is by rule order, not by
	// position in the text.
	in, ok = c.Classify("what's the ping? ok bye")
	require.True(t, ok)
	assert.Equal(t, StopConversation, in)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := NewClassifier(DefaultRules())

	in, ok := c.Classify("MY USERNAME, PLEASE")
	require.True(t, ok)
	assert.Equal(t, AskUsername, in)
}

func TestClassify_NoMatch(t *testing.T) {
	c := NewClassifier(DefaultRules())

	_, ok := c.Classify("the quick brown fox")
	assert.False(t, ok)
}

func TestClassify_SubstringMatch(t *testing.T) {
	c := NewClassifier(DefaultRules())

	// Trigger in the middle of a longer message still matches.
	in, ok := c.Classify("tell me the member count now")
	require.True(t, ok)
	assert.Equal(t, CheckMemberCount, in)
}

func TestClassify_StartBeatsHelp(t *testing.T) {
	c := NewClassifier(DefaultRules())

	// "can you help" is an AskForHelp trigger, but "help" is also a
	// StartConversation trigger and that rule is declared earlier.
	in, ok := c.Classify("can you help me with raycasting")
	require.True(t, ok)
	assert.Equal(t, StartConversation, in)
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(DefaultRules())

	first, ok := c.Classify("ping")
	require.True(t, ok)
	for i := 0; i < 100; i++ {
		in, ok := c.Classify("ping")
		require.True(t, ok)
		assert.Equal(t, first, in)
	}
}

func TestIsStructured(t *testing.T) {
	assert.True(t, CheckLatency.IsStructured())
	assert.True(t, AskAvatar.IsStructured())
	assert.True(t, ThankYou.IsStructured())
	assert.False(t, StartConversation.IsStructured())
	assert.False(t, StopConversation.IsStructured())
	assert.False(t, Intent("bogus").IsStructured())
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `
[[rule]]
intent = "stop_conversation"
triggers = ["Adios", "farewell"]

[[rule]]
intent = "check_latency"
triggers = ["ping"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, StopConversation, rules[0].Intent)
	// Triggers are lowercased on load.
	assert.Equal(t, []string{"adios", "farewell"}, rules[0].Triggers)

	c := NewClassifier(rules)
	in, ok := c.Classify("ADIOS everyone")
	require.True(t, ok)
	assert.Equal(t, StopConversation, in)
}

func TestLoadRules_UnknownIntent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `
[[rule]]
intent = "summon_demon"
triggers = ["xyzzy"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown intent")
}

func TestLoadRules_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestNewClassifier_CopiesRules(t *testing.T) {
	rules := []Rule{{Triggers: []string{"ping"}, Intent: CheckLatency}}
	c := NewClassifier(rules)

	rules[0] = Rule{Triggers: []string{"ping"}, Intent: AskBio}

	in, ok := c.Classify("ping")
	require.True(t, ok)
	assert.Equal(t, CheckLatency, in)
}
