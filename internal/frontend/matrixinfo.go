// ABOUTME: Matrix-backed info provider for structured actions
// ABOUTME: Latency, room facts, and member facts via the client-server API

package frontend

import (
	"context"
	"fmt"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/LainPM/Locust/internal/actions"
)

// Info answers the action layer's questions from the Matrix API. Rooms
// stand in for guilds; facts Matrix has no concept of stay zero and the
// action layer omits them.
type Info struct {
	matrix     *mautrix.Client
	homeserver string
}

// Latency times a versions round trip to the homeserver.
func (i *Info) Latency(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if _, err := i.matrix.Versions(ctx); err != nil {
		return 0, fmt.Errorf("versions request: %w", err)
	}
	return time.Since(start), nil
}

// Guild returns facts about a room: its name and joined member count.
func (i *Info) Guild(ctx context.Context, guildID string) (*actions.Guild, error) {
	roomID := id.RoomID(guildID)

	var nameContent event.RoomNameEventContent
	if err := i.matrix.StateEvent(ctx, roomID, event.StateRoomName, "", &nameContent); err != nil {
		return nil, fmt.Errorf("room name lookup: %w", err)
	}
	name := nameContent.Name
	if name == "" {
		name = guildID
	}

	members, err := i.matrix.JoinedMembers(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("joined members lookup: %w", err)
	}

	return &actions.Guild{
		ID:          guildID,
		Name:        name,
		MemberCount: len(members.Joined),
	}, nil
}

// Member returns facts about a user. The global profile supplies the
// username and avatar; the room member state supplies the per-room
// display name, which maps to the nickname.
func (i *Info) Member(ctx context.Context, guildID, userID string) (*actions.Member, error) {
	uid := id.UserID(userID)

	profile, err := i.matrix.GetProfile(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("profile lookup: %w", err)
	}

	username := profile.DisplayName
	if username == "" {
		username = uid.Localpart()
	}

	m := &actions.Member{
		UserID:   userID,
		Username: username,
	}
	if !profile.AvatarURL.IsEmpty() {
		m.AvatarURL = i.downloadURL(profile.AvatarURL)
	}

	if guildID != "" {
		var member event.MemberEventContent
		err := i.matrix.StateEvent(ctx, id.RoomID(guildID), event.StateMember, userID, &member)
		if err == nil && member.Displayname != "" && member.Displayname != username {
			m.Nickname = member.Displayname
		}
	}

	return m, nil
}

// downloadURL converts an mxc URI into an HTTP media download URL.
func (i *Info) downloadURL(uri id.ContentURI) string {
	return fmt.Sprintf("%s/_matrix/media/v3/download/%s/%s", i.homeserver, uri.Homeserver, uri.FileID)
}
