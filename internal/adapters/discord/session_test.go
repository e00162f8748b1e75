package discord

import (
	"testing"

	"bot-dispatch/internal/config"

	"github.com/bwmarrin/discordgo"
)

func TestNewSession(t *testing.T) {
	testCases := []struct {
		name  string
		token string
	}{
		{"standard format", "MTk.test.token"},
		{"short token", "test"},
		{"empty", ""},
		{"with special chars", "test-token_123"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			session, err := NewSession(&config.Config{Token: tc.token})

			// Authentication only happens on Open
			if err != nil {
				t.Fatalf("Unexpected error creating session: %v", err)
			}

			if session.Identify.Intents != Intents {
				t.Errorf("Expected intents %d, got %d", Intents, session.Identify.Intents)
			}

			if session.Token != "Bot "+tc.token {
				t.Errorf("Expected token with Bot prefix, got '%s'", session.Token)
			}

			if session.SyncEvents {
				t.Error("Expected asynchronous event delivery")
			}
		})
	}
}

func TestReadyHandler(t *testing.T) {
	ReadyHandler(nil, &discordgo.Ready{
		User:   &discordgo.User{Username: "bot"},
		Guilds: []*discordgo.Guild{{ID: "1"}, {ID: "2"}},
	})
}
