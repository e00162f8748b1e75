package interaction

import "github.com/bwmarrin/discordgo"

// Reply is the view sent through any reply primitive. Zero fields are left
// out of the request.
type Reply struct {
	Content         string
	Embeds          []*discordgo.MessageEmbed
	Components      []discordgo.MessageComponent
	Ephemeral       bool
	AllowedMentions *discordgo.MessageAllowedMentions
}

func Text(content string) Reply {
	return Reply{Content: content}
}

func Private(content string) Reply {
	return Reply{Content: content, Ephemeral: true}
}

func (r Reply) flags() discordgo.MessageFlags {
	if r.Ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func (r Reply) responseData() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:         r.Content,
		Embeds:          r.Embeds,
		Components:      r.Components,
		AllowedMentions: r.AllowedMentions,
		Flags:           r.flags(),
	}
}

// updateData is used for component updates, which replace the whole message,
// so empty slices are sent rather than omitted.
func (r Reply) updateData() *discordgo.InteractionResponseData {
	data := r.responseData()
	if data.Embeds == nil {
		data.Embeds = []*discordgo.MessageEmbed{}
	}
	if data.Components == nil {
		data.Components = []discordgo.MessageComponent{}
	}
	data.Flags = 0
	return data
}

func (r Reply) webhookParams() *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Content:         r.Content,
		Embeds:          r.Embeds,
		Components:      r.Components,
		AllowedMentions: r.AllowedMentions,
		Flags:           r.flags(),
	}
}

func (r Reply) webhookEdit() *discordgo.WebhookEdit {
	content := r.Content
	embeds := r.Embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	components := r.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return &discordgo.WebhookEdit{
		Content:         &content,
		Embeds:          &embeds,
		Components:      &components,
		AllowedMentions: r.AllowedMentions,
	}
}
