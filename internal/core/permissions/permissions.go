// Package permissions maps a command's permission requirement onto the
// default member permission bitmask Discord expects in a command descriptor.
package permissions

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type Kind int

const (
	KindUnrestricted Kind = iota
	KindAdministrator
	KindOwner
	KindDisabled
	KindBits
	KindFlags
)

func (k Kind) String() string {
	switch k {
	case KindAdministrator:
		return "administrator"
	case KindOwner:
		return "owner"
	case KindDisabled:
		return "disabled"
	case KindBits:
		return "bits"
	case KindFlags:
		return "flags"
	default:
		return "unrestricted"
	}
}

// Requirement is a closed set of permission requirements. The zero value is
// unrestricted.
type Requirement struct {
	kind  Kind
	bits  int64
	flags []string
}

func Unrestricted() Requirement  { return Requirement{kind: KindUnrestricted} }
func Administrator() Requirement { return Requirement{kind: KindAdministrator} }

// OwnerOnly resolves to 0: nobody holds it by default, a server owner has to
// grant access through the integration settings.
func OwnerOnly() Requirement { return Requirement{kind: KindOwner} }

func Disabled() Requirement { return Requirement{kind: KindDisabled} }

func Bits(bits int64) Requirement { return Requirement{kind: KindBits, bits: bits} }

func Flags(names ...string) Requirement {
	return Requirement{kind: KindFlags, flags: append([]string(nil), names...)}
}

func (r Requirement) Kind() Kind { return r.kind }

func (r Requirement) String() string {
	switch r.kind {
	case KindBits:
		return fmt.Sprintf("bits(%d)", r.bits)
	case KindFlags:
		return "flags(" + strings.Join(r.flags, "|") + ")"
	default:
		return r.kind.String()
	}
}

var flagBits = map[string]int64{
	"ADMINISTRATOR":         int64(discordgo.PermissionAdministrator),
	"ADD_REACTIONS":         int64(discordgo.PermissionAddReactions),
	"ATTACH_FILES":          int64(discordgo.PermissionAttachFiles),
	"BAN_MEMBERS":           int64(discordgo.PermissionBanMembers),
	"CHANGE_NICKNAME":       int64(discordgo.PermissionChangeNickname),
	"CONNECT":               int64(discordgo.PermissionVoiceConnect),
	"CREATE_INSTANT_INVITE": int64(discordgo.PermissionCreateInstantInvite),
	"DEAFEN_MEMBERS":        int64(discordgo.PermissionVoiceDeafenMembers),
	"EMBED_LINKS":           int64(discordgo.PermissionEmbedLinks),
	"KICK_MEMBERS":          int64(discordgo.PermissionKickMembers),
	"MANAGE_CHANNELS":       int64(discordgo.PermissionManageChannels),
	"MANAGE_GUILD":          int64(discordgo.PermissionManageServer),
	"MANAGE_MESSAGES":       int64(discordgo.PermissionManageMessages),
	"MANAGE_NICKNAMES":      int64(discordgo.PermissionManageNicknames),
	"MANAGE_ROLES":          int64(discordgo.PermissionManageRoles),
	"MANAGE_THREADS":        int64(discordgo.PermissionManageThreads),
	"MANAGE_WEBHOOKS":       int64(discordgo.PermissionManageWebhooks),
	"MENTION_EVERYONE":      int64(discordgo.PermissionMentionEveryone),
	"MODERATE_MEMBERS":      int64(discordgo.PermissionModerateMembers),
	"MOVE_MEMBERS":          int64(discordgo.PermissionVoiceMoveMembers),
	"MUTE_MEMBERS":          int64(discordgo.PermissionVoiceMuteMembers),
	"READ_MESSAGE_HISTORY":  int64(discordgo.PermissionReadMessageHistory),
	"SEND_MESSAGES":         int64(discordgo.PermissionSendMessages),
	"SPEAK":                 int64(discordgo.PermissionVoiceSpeak),
	"VIEW_AUDIT_LOG":        int64(discordgo.PermissionViewAuditLogs),
	"VIEW_CHANNEL":          int64(discordgo.PermissionViewChannel),
}

// ParseFlag returns the bit for a Discord permission name such as
// "BAN_MEMBERS". Matching ignores case and accepts spaces or dashes in place
// of underscores.
func ParseFlag(name string) (int64, bool) {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	bit, ok := flagBits[key]
	return bit, ok
}

// Resolve returns the default member permission bitmask for r, or nil when
// the command inherits the platform defaults.
func Resolve(r Requirement) *int64 {
	var bits int64
	switch r.kind {
	case KindAdministrator:
		bits = int64(discordgo.PermissionAdministrator)
	case KindOwner, KindDisabled:
		bits = 0
	case KindBits:
		bits = r.bits
	case KindFlags:
		for _, name := range r.flags {
			if bit, ok := ParseFlag(name); ok {
				bits |= bit
			}
		}
	default:
		return nil
	}
	return &bits
}
