// ABOUTME: Intent is the closed set of recognized user requests
// ABOUTME: Split into conversation-control and structured-query families

package intent

import "fmt"

// Intent identifies what a free-text message is asking for.
type Intent string

// Conversation-control intents affect who the bot is talking to.
const (
	StopConversation  Intent = "stop_conversation"
	StartConversation Intent = "start_conversation"
)

// Structured-query intents map to fixed actions with canned or
// field-based replies.
const (
	AskForHelp       Intent = "ask_for_help"
	ThankYou         Intent = "thank_you"
	CheckLatency     Intent = "check_latency"
	CheckServerInfo  Intent = "check_server_info"
	CheckMemberCount Intent = "check_member_count"
	AskUsername      Intent = "ask_username"
	AskNickname      Intent = "ask_nickname"
	AskUserID        Intent = "ask_user_id"
	AskBio           Intent = "ask_bio"
	AskAvatar        Intent = "ask_avatar"
)

// IsStructured reports whether the intent belongs to the structured-query
// family. Structured intents always short-circuit routing, even inside an
// active conversation.
func (i Intent) IsStructured() bool {
	switch i {
	case AskForHelp, ThankYou, CheckLatency, CheckServerInfo, CheckMemberCount,
		AskUsername, AskNickname, AskUserID, AskBio, AskAvatar:
		return true
	}
	return false
}

// Parse converts a string label to an Intent. Used when loading rule files.
func Parse(s string) (Intent, error) {
	switch Intent(s) {
	case StopConversation, StartConversation, AskForHelp, ThankYou,
		CheckLatency, CheckServerInfo, CheckMemberCount,
		AskUsername, AskNickname, AskUserID, AskBio, AskAvatar:
		return Intent(s), nil
	}
	return "", fmt.Errorf("unknown intent %q", s)
}
