package interaction

import (
	"github.com/bwmarrin/discordgo"
)

// acknowledge runs send as the first response to the interaction. The reply
// window is checked before anything is sent; the responded flag is rolled
// back when Discord rejects the response.
func (inv *Invocation) acknowledge(what string, send func() error) error {
	inv.mu.Lock()
	if inv.responded {
		inv.mu.Unlock()
		return newReplyError(what, inv.Event.ID, ReasonFailed, ErrAlreadyResponded)
	}
	if inv.expired() {
		inv.mu.Unlock()
		return newReplyError(what, inv.Event.ID, ReasonExpired, ErrExpired)
	}
	inv.responded = true
	inv.mu.Unlock()

	if err := send(); err != nil {
		inv.mu.Lock()
		inv.responded = false
		inv.mu.Unlock()
		return newReplyError(what, inv.Event.ID, ReasonFailed, err)
	}
	return nil
}

// expired must be called with inv.mu held. Interactions without a parsable
// snowflake are never considered expired.
func (inv *Invocation) expired() bool {
	created, err := discordgo.SnowflakeTimestamp(inv.Event.ID)
	if err != nil || created.IsZero() {
		return false
	}
	return inv.now().Sub(created) > inv.window
}

// Reply sends the first response with a new message.
func (inv *Invocation) Reply(r Reply) error {
	return inv.acknowledge("reply failed", func() error {
		return inv.Session.InteractionRespond(inv.Event.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: r.responseData(),
		})
	})
}

// Defer acknowledges a command and shows a loading state; answer later with
// EditReply or FollowUp.
func (inv *Invocation) Defer(ephemeral bool) error {
	return inv.acknowledge("defer failed", func() error {
		var data *discordgo.InteractionResponseData
		if ephemeral {
			data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
		}
		return inv.Session.InteractionRespond(inv.Event.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: data,
		})
	})
}

// Update replaces the message a component is attached to.
func (inv *Invocation) Update(r Reply) error {
	return inv.acknowledge("update failed", func() error {
		return inv.Session.InteractionRespond(inv.Event.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: r.updateData(),
		})
	})
}

// DeferUpdate acknowledges a component click without changing the message.
func (inv *Invocation) DeferUpdate() error {
	return inv.acknowledge("deferred update failed", func() error {
		return inv.Session.InteractionRespond(inv.Event.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
	})
}

// ShowModal answers the interaction with a dialog.
func (inv *Invocation) ShowModal(data *discordgo.InteractionResponseData) error {
	return inv.acknowledge("modal failed", func() error {
		return inv.Session.InteractionRespond(inv.Event.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: data,
		})
	})
}

// FollowUp posts an additional message after the interaction was
// acknowledged.
func (inv *Invocation) FollowUp(r Reply) (*discordgo.Message, error) {
	msg, err := inv.Session.FollowupMessageCreate(inv.Event.Interaction, true, r.webhookParams())
	if err != nil {
		return nil, newReplyError("follow-up failed", inv.Event.ID, ReasonFailed, err)
	}
	return msg, nil
}

// EditReply replaces the original response.
func (inv *Invocation) EditReply(r Reply) error {
	if _, err := inv.Session.InteractionResponseEdit(inv.Event.Interaction, r.webhookEdit()); err != nil {
		return newReplyError("edit failed", inv.Event.ID, ReasonFailed, err)
	}
	return nil
}

// ClearComponents removes every component from the original response.
func (inv *Invocation) ClearComponents() error {
	components := []discordgo.MessageComponent{}
	if _, err := inv.Session.InteractionResponseEdit(inv.Event.Interaction, &discordgo.WebhookEdit{Components: &components}); err != nil {
		return newReplyError("clear components failed", inv.Event.ID, ReasonFailed, err)
	}
	return nil
}

// Respond replies when nothing was sent yet and follows up otherwise.
func (inv *Invocation) Respond(r Reply) error {
	if inv.Responded() {
		_, err := inv.FollowUp(r)
		return err
	}
	return inv.Reply(r)
}
