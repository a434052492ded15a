package chat

import "strings"

// GroupSuffix marks group-chat identities. The bot never replies to
// groups.
const GroupSuffix = "@g.us"

// UserSuffix is the suffix of individual chat identities.
const UserSuffix = "@c.us"

// Sender delivers outbound messages to chat identities. The gateway
// client implements it; tests substitute a recorder.
type Sender interface {
	Send(to, text string) error
}

// IsGroup reports whether an identity addresses a multi-party chat.
func IsGroup(identity string) bool {
	return strings.HasSuffix(identity, GroupSuffix)
}
