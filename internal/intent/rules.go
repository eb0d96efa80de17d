// ABOUTME: Ordered pattern rules mapping trigger phrases to intents
// ABOUTME: Declaration order is the tie-break; the first matching rule wins

package intent

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Rule maps a set of trigger phrases to a single intent. Triggers are
// matched as case-insensitive substrings of the message text.
type Rule struct {
	Triggers []string
	Intent   Intent
}

// DefaultRules returns the built-in pattern table. Order is significant:
// a message matching several rules resolves to the earliest one, so the
// stop and start rules deliberately come first.
func DefaultRules() []Rule {
	return []Rule{
		{Triggers: []string{"stop", "goodbye", "bye", "that's all", "nevermind", "done", "exit", "quit", "leave"}, Intent: StopConversation},
		{Triggers: []string{"hey", "hi", "hello", "yo", "sup", "help", "assist"}, Intent: StartConversation},
		{Triggers: []string{"how do i", "can you help", "what is", "explain", "show me", "teach me"}, Intent: AskForHelp},
		{Triggers: []string{"thanks", "thank you", "thx", "ty", "appreciated"}, Intent: ThankYou},
		{Triggers: []string{"what is the ping", "check ping", "ping", "latency", "bot ping", "what's the ping"}, Intent: CheckLatency},
		{Triggers: []string{"server info", "serverinfo", "guild info", "about this server", "server details"}, Intent: CheckServerInfo},
		{Triggers: []string{"member count", "how many members", "membercount", "total members"}, Intent: CheckMemberCount},
		{Triggers: []string{"what is my username", "my username", "what's my username", "my name"}, Intent: AskUsername},
		{Triggers: []string{"what is my nickname", "my nickname", "what's my nickname", "my nick"}, Intent: AskNickname},
		{Triggers: []string{"what is my id", "my user id", "what's my id", "my userid"}, Intent: AskUserID},
		{Triggers: []string{"what is my bio", "my bio", "what's my bio", "my about me"}, Intent: AskBio},
		{Triggers: []string{"my avatar", "what's my avatar", "my profile picture", "my pfp"}, Intent: AskAvatar},
	}
}

// ruleFile is the TOML shape for rule override files.
type ruleFile struct {
	Rules []struct {
		Intent   string   `toml:"intent"`
		Triggers []string `toml:"triggers"`
	} `toml:"rule"`
}

// LoadRules reads an ordered rule table from a TOML file. File order is
// preserved as rule priority. Triggers are lowercased on load so matching
// stays case-insensitive regardless of how the file is written.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var rf ruleFile
	if _, err := toml.Decode(string(data), &rf); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	rules := make([]Rule, 0, len(rf.Rules))
	for i, raw := range rf.Rules {
		in, err := Parse(raw.Intent)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if len(raw.Triggers) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no triggers", i, raw.Intent)
		}
		triggers := make([]string, len(raw.Triggers))
		for j, t := range raw.Triggers {
			triggers[j] = strings.ToLower(t)
		}
		rules = append(rules, Rule{Triggers: triggers, Intent: in})
	}
	return rules, nil
}
