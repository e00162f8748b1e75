// Package interactiontest provides a recording Discord session and builders
// for interactions, for use in tests.
package interactiontest

import (
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

const discordEpochMillis = 1420070400000

// Snowflake returns an id whose embedded timestamp is t.
func Snowflake(t time.Time) string {
	return strconv.FormatInt((t.UnixMilli()-discordEpochMillis)<<22, 10)
}

type Session struct {
	mu        sync.Mutex
	Responses []*discordgo.InteractionResponse
	Edits     []*discordgo.WebhookEdit
	FollowUps []*discordgo.WebhookParams

	RespondErr  error
	EditErr     error
	FollowUpErr error
}

func (s *Session) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, opts ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RespondErr != nil {
		return s.RespondErr
	}
	s.Responses = append(s.Responses, resp)
	return nil
}

func (s *Session) InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EditErr != nil {
		return nil, s.EditErr
	}
	s.Edits = append(s.Edits, edit)
	return &discordgo.Message{ID: "edited"}, nil
}

func (s *Session) FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FollowUpErr != nil {
		return nil, s.FollowUpErr
	}
	s.FollowUps = append(s.FollowUps, data)
	return &discordgo.Message{ID: "followup"}, nil
}

func (s *Session) ResponseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Responses)
}

func (s *Session) LastResponse() *discordgo.InteractionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Responses) == 0 {
		return nil
	}
	return s.Responses[len(s.Responses)-1]
}

func (s *Session) EditCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Edits)
}

func (s *Session) FollowUpCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.FollowUps)
}

// LastContent returns the content of the most recent response or follow-up.
func (s *Session) LastContent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.FollowUps) > 0 {
		return s.FollowUps[len(s.FollowUps)-1].Content
	}
	if len(s.Responses) > 0 && s.Responses[len(s.Responses)-1].Data != nil {
		return s.Responses[len(s.Responses)-1].Data.Content
	}
	return ""
}

func base(t discordgo.InteractionType, userID, guildID string, data discordgo.InteractionData) *discordgo.InteractionCreate {
	user := &discordgo.User{ID: userID, Username: "user-" + userID}
	i := &discordgo.Interaction{
		ID:      Snowflake(time.Now()),
		AppID:   "app",
		Type:    t,
		Data:    data,
		GuildID: guildID,
		Token:   "token",
	}
	if guildID != "" {
		i.Member = &discordgo.Member{User: user}
	} else {
		i.User = user
	}
	return &discordgo.InteractionCreate{Interaction: i}
}

// Command builds a slash command interaction. An empty guildID produces a
// direct-message interaction.
func Command(name, userID, guildID string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return base(discordgo.InteractionApplicationCommand, userID, guildID, discordgo.ApplicationCommandInteractionData{
		Name:    name,
		Options: options,
	})
}

// Subcommand builds a slash command interaction selecting sub of group.
func Subcommand(group, sub, userID, guildID string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return Command(group, userID, guildID, &discordgo.ApplicationCommandInteractionDataOption{
		Name:    sub,
		Type:    discordgo.ApplicationCommandOptionSubCommand,
		Options: options,
	})
}

func StringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func UserOption(name, userID string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionUser,
		Value: userID,
	}
}

func Component(customID, userID string) *discordgo.InteractionCreate {
	return base(discordgo.InteractionMessageComponent, userID, "guild", discordgo.MessageComponentInteractionData{
		CustomID:      customID,
		ComponentType: discordgo.ButtonComponent,
	})
}

// ModalSubmit builds a modal submission with one text input per value.
func ModalSubmit(customID, userID string, values map[string]string) *discordgo.InteractionCreate {
	var rows []discordgo.MessageComponent
	for id, value := range values {
		rows = append(rows, &discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: id, Value: value},
			},
		})
	}
	return base(discordgo.InteractionModalSubmit, userID, "guild", discordgo.ModalSubmitInteractionData{
		CustomID:   customID,
		Components: rows,
	})
}

// WithPermissions sets the member permissions of a guild interaction.
func WithPermissions(e *discordgo.InteractionCreate, perms int64) *discordgo.InteractionCreate {
	if e.Member != nil {
		e.Member.Permissions = perms
	}
	return e
}
