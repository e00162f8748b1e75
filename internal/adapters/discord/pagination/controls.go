package pagination

import "github.com/bwmarrin/discordgo"

const maxButtonsPerRow = 5

// controls builds the button rows appended to every rendered page.
func (s *Session[T]) controls(index, total int) []discordgo.MessageComponent {
	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Previous",
			Style:    discordgo.SecondaryButton,
			CustomID: customID(s.id, ActionPrev),
			Disabled: index == 0,
		},
		discordgo.Button{
			Label:    "Next",
			Style:    discordgo.SecondaryButton,
			CustomID: customID(s.id, ActionNext),
			Disabled: index >= total-1,
		},
	}
	for _, a := range s.opts.Actions {
		style := a.Style
		if style == 0 {
			style = discordgo.PrimaryButton
		}
		buttons = append(buttons, discordgo.Button{
			Label:    a.Label,
			Style:    style,
			CustomID: customID(s.id, a.ID),
		})
	}

	var rows []discordgo.MessageComponent
	for start := 0; start < len(buttons); start += maxButtonsPerRow {
		end := min(start+maxButtonsPerRow, len(buttons))
		rows = append(rows, discordgo.ActionsRow{Components: buttons[start:end]})
	}
	return rows
}
