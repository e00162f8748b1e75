package commands

import (
	"context"
	"fmt"

	"bot-dispatch/internal/adapters/discord/formatting"
	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/core/permissions"

	"github.com/bwmarrin/discordgo"
)

func RequireAdmin() CheckFunc {
	return func(ctx context.Context, inv *interaction.Invocation) error {
		if inv.MemberPermissions()&discordgo.PermissionAdministrator == 0 {
			return Reject("admin_required", formatting.MsgAdminRequired)
		}
		return nil
	}
}

// RequirePermissions checks the invoker's channel permissions against the
// named flags. Administrators always pass.
func RequirePermissions(names ...string) CheckFunc {
	var required int64
	for _, name := range names {
		bit, ok := permissions.ParseFlag(name)
		if !ok {
			panic(fmt.Sprintf("commands: unknown permission flag %q", name))
		}
		required |= bit
	}

	return func(ctx context.Context, inv *interaction.Invocation) error {
		perms := inv.MemberPermissions()
		if perms&discordgo.PermissionAdministrator != 0 || perms&required == required {
			return nil
		}
		return Reject("missing_permissions", formatting.MsgMissingPermissions(names))
	}
}

// RequireGuildOwner only lets the owner of the guild through.
func RequireGuildOwner(guilds GuildLookup) CheckFunc {
	return func(ctx context.Context, inv *interaction.Invocation) error {
		if !inv.InGuild() {
			return Reject("owner_required", formatting.MsgOwnerRequired)
		}
		guild, err := guilds.Guild(inv.GuildID())
		if err != nil {
			return fmt.Errorf("lookup guild %s: %w", inv.GuildID(), err)
		}
		if guild.OwnerID != inv.UserID() {
			return Reject("owner_required", formatting.MsgOwnerRequired)
		}
		return nil
	}
}

// AllOf runs checks in order and stops at the first failure.
func AllOf(checks ...CheckFunc) CheckFunc {
	return func(ctx context.Context, inv *interaction.Invocation) error {
		for _, check := range checks {
			if err := check(ctx, inv); err != nil {
				return err
			}
		}
		return nil
	}
}
