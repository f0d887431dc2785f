package home

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/spoopinatural/jagerbot/sys"
)

func (c *alertCommands) handleSet(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	label := data.String("label")
	when := data.String("when")
	recurring, _ := data.OptString("recurring")

	alertRespondImmediate(event, c.create(event.User().ID.String(), label, when, recurring))
}

func (c *alertCommands) handleQuick(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	label, when, recurring := sys.SplitAlertText(data.String("text"))

	alertRespondImmediate(event, c.create(event.User().ID.String(), label, when, recurring))
}

// create schedules an alert and returns the response text.
func (c *alertCommands) create(owner, label, when, recurring string) string {
	now := time.Now().UTC()
	loc := sys.UserLocation(sys.AppContext, owner)

	a, err := c.book.Create(owner, label, when, recurring, now, loc)
	if a.ID != "" {
		sys.LogAlert(sys.MsgAlertCreated, a.ID, owner, a.DueAt.Format(time.RFC3339))
	}

	return alertOutcome(createdText(a, now), err, c.book.Limits(), 0)
}

func createdText(a sys.Alert, now time.Time) string {
	text := fmt.Sprintf(sys.MsgAlertSetSuccess, a.Label, discordTimestamp(a.DueAt, "F"), formatReminderRelativeTime(now, a.DueAt))
	if a.Recurrence != "" {
		text += fmt.Sprintf(sys.MsgAlertSetRecurring, a.Recurrence)
	}
	return text
}
