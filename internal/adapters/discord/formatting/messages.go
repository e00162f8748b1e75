package formatting

import (
	"fmt"
	"strings"
	"time"
)

const (
	MsgGuildOnly        = "This command can only be used in a server."
	MsgGenericFailure   = "Something went wrong while running this command."
	MsgInteractionError = "Something went wrong while handling this interaction."
	MsgAdminRequired    = "You need Administrator permissions to use this command."
	MsgOwnerRequired    = "Only the server owner can use this command."
	MsgNotYourControls  = "These controls belong to someone else. Run the command yourself to browse."
	MsgSessionExpired   = "This menu has expired. Run the command again."
	MsgNothingToShow    = "There is nothing to show."
	MsgGeneralCommands  = "General commands"
)

func MsgCooldown(command string, wait time.Duration) string {
	return fmt.Sprintf("Please wait %s before using /%s again.", FormatWait(wait), command)
}

func MsgMissingPermissions(names []string) string {
	return fmt.Sprintf("You need the following permissions to use this command: %s.", strings.Join(names, ", "))
}

func MsgPageFooter(index, total int) string {
	return fmt.Sprintf("Page %d of %d", index+1, total)
}

// FormatWait renders a wait as seconds with one decimal, rounding up so a
// user is never told to wait 0.0s.
func FormatWait(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	tenths := (d + 100*time.Millisecond - 1) / (100 * time.Millisecond)
	if tenths%10 == 0 {
		return fmt.Sprintf("%ds", tenths/10)
	}
	return fmt.Sprintf("%d.%ds", tenths/10, tenths%10)
}
