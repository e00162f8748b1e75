package main

import (
	"context"

	"bot-dispatch/internal/logging"

	"github.com/bwmarrin/discordgo"
)

// BanSession defines the Discord session operations needed by /admin ban
type BanSession interface {
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
}

// AuditReader is the read side of the audit store used by /admin audit
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]logging.Entry, error)
}

// auditSink is the lifecycle of the audit store as seen by App
type auditSink interface {
	Run(ctx context.Context)
	Close()
}
