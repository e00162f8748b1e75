package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bot-dispatch/internal/adapters/discord/commands"
	"bot-dispatch/internal/adapters/discord/formatting"
	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/adapters/discord/modals"
	"bot-dispatch/internal/adapters/discord/pagination"
	"bot-dispatch/internal/core/permissions"
	"bot-dispatch/internal/logging"

	"github.com/bwmarrin/discordgo"
)

const (
	auditPageSize  = 10
	auditFetchSize = 50
	embedColor     = 0x5865F2
)

type CommandDeps struct {
	Manager      *commands.Manager
	Hub          *pagination.Hub
	Modals       *modals.Registry
	Bans         BanSession
	Audit        AuditReader
	Logger       logging.Logger
	HelpPageSize int
	PageTimeout  time.Duration
}

// BuildCommands returns the bot's command set. /admin audit is only present
// when an audit store is configured.
func BuildCommands(deps CommandDeps) []commands.Executable {
	admin := commands.NewGroup("admin", "Moderation tools",
		commands.WithGroupPermission(permissions.Flags("BAN_MEMBERS")),
		commands.WithGroupGuildOnly(),
	).Add(banCommand(deps), noteCommand(deps))

	if deps.Audit != nil {
		admin.Add(auditCommand(deps))
	}

	return []commands.Executable{
		pingCommand(),
		helpCommand(deps),
		admin,
	}
}

func pingCommand() *commands.Command {
	return commands.New(commands.Definition{
		Name:        "ping",
		Description: "Check that the bot is responding",
		Handler: func(ctx context.Context, inv *interaction.Invocation) error {
			latency := "unknown"
			if created, err := inv.CreatedAt(); err == nil {
				latency = time.Since(created).Round(time.Millisecond).String()
			}
			return inv.Reply(interaction.Text(fmt.Sprintf("Pong! (%s)", latency)))
		},
	})
}

func helpCommand(deps CommandDeps) *commands.Command {
	return commands.New(commands.Definition{
		Name:        "help",
		Description: "List the available commands",
		Cooldown:    5 * time.Second,
		Handler: func(ctx context.Context, inv *interaction.Invocation) error {
			pages := deps.Manager.HelpPages(deps.HelpPageSize)
			if len(pages) == 0 {
				return inv.Reply(interaction.Private(formatting.MsgNothingToShow))
			}

			_, err := pagination.Start(ctx, deps.Hub, inv, pagination.Options[commands.HelpPage]{
				Items:     pages,
				Render:    renderHelpPage,
				Timeout:   deps.PageTimeout,
				Ephemeral: true,
			})
			return err
		},
	})
}

func renderHelpPage(page commands.HelpPage, index, total int) interaction.Reply {
	return interaction.Reply{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       page.Title,
			Description: strings.Join(page.Lines, "\n"),
			Color:       embedColor,
			Footer:      &discordgo.MessageEmbedFooter{Text: formatting.MsgPageFooter(index, total)},
		}},
	}
}

func banCommand(deps CommandDeps) *commands.Command {
	return commands.New(commands.Definition{
		Name:        "ban",
		Description: "Ban a member from this server",
		GuildOnly:   true,
		Cooldown:    10 * time.Second,
		Check:       commands.RequirePermissions("BAN_MEMBERS"),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Member to ban",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Reason shown in the audit log",
				MaxLength:   512,
			},
		},
		Handler: func(ctx context.Context, inv *interaction.Invocation) error {
			target := inv.UserOption("user")
			if target == inv.UserID() {
				return inv.Reply(interaction.Private("You cannot ban yourself."))
			}

			reason := inv.StringOption("reason")
			if err := deps.Bans.GuildBanCreateWithReason(inv.GuildID(), target, reason, 0); err != nil {
				return fmt.Errorf("ban %s in %s: %w", target, inv.GuildID(), err)
			}

			deps.Logger.Info("moderation", "member banned",
				append([]any{"guild_id", inv.GuildID(), "target_id", target, "moderator_id", inv.UserID(), "reason", reason}, logging.Audit...)...)
			return inv.Reply(interaction.Private(fmt.Sprintf("Banned <@%s>.", target)))
		},
	})
}

// noteDialog is registered once; each opened dialog carries its target as
// the instance suffix of the custom id.
const noteDialog = "note-edit"

func noteCommand(deps CommandDeps) *commands.Command {
	deps.Modals.Register(modals.Definition{
		ID:    noteDialog,
		Title: "Moderation note",
		Fields: []modals.Field{{
			ID:        "note",
			Label:     "Note",
			Style:     discordgo.TextInputParagraph,
			Required:  true,
			MaxLength: 1000,
		}},
		OnSubmit: func(ctx context.Context, sub modals.Submission) error {
			if sub.Instance == "" {
				return fmt.Errorf("note dialog %q has no target", sub.ID)
			}
			deps.Logger.Info("moderation", "member note",
				append([]any{"guild_id", sub.Invocation.GuildID(), "target_id", sub.Instance, "moderator_id", sub.Invocation.UserID(), "note", sub.Values["note"]}, logging.Audit...)...)
			return sub.Invocation.Reply(interaction.Private(fmt.Sprintf("Note saved for <@%s>.", sub.Instance)))
		},
	})

	return commands.New(commands.Definition{
		Name:        "note",
		Description: "Write a moderation note about a member",
		GuildOnly:   true,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Member the note is about",
				Required:    true,
			},
		},
		Handler: func(ctx context.Context, inv *interaction.Invocation) error {
			return deps.Modals.Show(ctx, inv, noteDialog, inv.UserOption("user"))
		},
	})
}

func auditCommand(deps CommandDeps) *commands.Command {
	fetch := func(ctx context.Context) ([]string, error) {
		entries, err := deps.Audit.Recent(ctx, auditFetchSize)
		if err != nil {
			return nil, err
		}
		return auditPages(entries, auditPageSize), nil
	}

	return commands.New(commands.Definition{
		Name:        "audit",
		Description: "Browse the most recent audit log entries",
		GuildOnly:   true,
		Check:       commands.RequireAdmin(),
		Handler: func(ctx context.Context, inv *interaction.Invocation) error {
			if err := inv.Defer(true); err != nil {
				return err
			}

			pages, err := fetch(ctx)
			if err != nil {
				return err
			}
			if len(pages) == 0 {
				return inv.EditReply(interaction.Text(formatting.MsgNothingToShow))
			}

			_, err = pagination.Start(ctx, deps.Hub, inv, pagination.Options[string]{
				Items:     pages,
				Timeout:   deps.PageTimeout,
				Ephemeral: true,
				Actions:   []pagination.Action{{ID: "refresh", Label: "Refresh", Style: discordgo.SecondaryButton}},
				Render: func(page string, index, total int) interaction.Reply {
					return interaction.Reply{Embeds: []*discordgo.MessageEmbed{{
						Title:       "Audit log",
						Description: page,
						Color:       embedColor,
						Footer:      &discordgo.MessageEmbedFooter{Text: formatting.MsgPageFooter(index, total)},
					}}}
				},
				OnAction: func(ctx context.Context, ev pagination.ActionEvent[string]) (pagination.ActionResult[string], error) {
					if ev.ID != "refresh" {
						return pagination.ActionResult[string]{}, nil
					}
					pages, err := fetch(ctx)
					if err != nil {
						return pagination.ActionResult[string]{}, err
					}
					return pagination.ActionResult[string]{Handled: true, Items: pages}, nil
				},
			})
			return err
		},
	})
}

// auditPages renders entries one per line and groups the lines into pages.
func auditPages(entries []logging.Entry, perPage int) []string {
	var pages []string
	var lines []string
	for i, e := range entries {
		lines = append(lines, auditLine(e))
		if len(lines) == perPage || i == len(entries)-1 {
			pages = append(pages, strings.Join(lines, "\n"))
			lines = nil
		}
	}
	return pages
}

func auditLine(e logging.Entry) string {
	line := fmt.Sprintf("<t:%d:R> **%s** `%s` %s", e.Time.Unix(), levelLabel(e.Level), e.Scope, e.Message)
	if cmd, ok := e.Attrs["command"]; ok {
		line += fmt.Sprintf(" /%v", cmd)
	}
	if user, ok := e.Attrs["user_id"]; ok {
		line += fmt.Sprintf(" by <@%v>", user)
	}
	return line
}

func levelLabel(l slog.Level) string {
	return strings.ToLower(l.String())
}
