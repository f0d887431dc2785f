package home

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/spoopinatural/jagerbot/sys"
)

func (c *alertCommands) handleSnooze(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	owner := event.User().ID.String()
	index := data.Int("index")

	a, err := c.book.Snooze(owner, index-1)
	if a.ID != "" {
		sys.LogAlert(sys.MsgAlertSnoozed, a.ID, a.DueAt.Format(time.RFC3339))
	}
	alertRespondImmediate(event, alertOutcome(snoozedText(a, time.Now().UTC()), err, c.book.Limits(), index))
}

func snoozedText(a sys.Alert, now time.Time) string {
	return fmt.Sprintf(sys.MsgAlertSnoozedOne, a.Label, discordTimestamp(a.DueAt, "t"), formatReminderRelativeTime(now, a.DueAt))
}
