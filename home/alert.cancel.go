package home

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/spoopinatural/jagerbot/sys"
)

func (c *alertCommands) handleCancel(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	owner := event.User().ID.String()
	index := data.Int("index")

	a, err := c.book.Cancel(owner, index-1)
	if a.ID != "" {
		sys.LogAlert(sys.MsgAlertCancelled, a.ID, owner)
	}
	alertRespondImmediate(event, alertOutcome(fmt.Sprintf(sys.MsgAlertCancelledOne, a.Label), err, c.book.Limits(), index))
}

func (c *alertCommands) handleClear(event *events.ApplicationCommandInteractionCreate) {
	owner := event.User().ID.String()

	n, err := c.book.CancelAll(owner)
	if n > 0 {
		sys.LogAlert(sys.MsgAlertCancelledAll, owner, n)
	}
	alertRespondImmediate(event, alertOutcome(fmt.Sprintf(sys.MsgAlertCancelledBatch, n), err, c.book.Limits(), 0))
}

// autocompleteIndex offers the owner's pending alerts as 1-based numbers.
func (c *alertCommands) autocompleteIndex(event *events.AutocompleteInteractionCreate, query string) {
	now := time.Now().UTC()
	entries := c.book.List(event.User().ID.String(), now)

	choices := make([]discord.AutocompleteChoice, 0, len(entries))
	for _, e := range entries {
		name := fmt.Sprintf(sys.MsgAlertChoice, e.Index+1, alertTruncate(e.Alert.Label, 60), formatReminderRelativeTime(now, e.Alert.DueAt))
		if query != "" && !strings.Contains(strings.ToLower(name), query) && query != strconv.Itoa(e.Index+1) {
			continue
		}
		choices = append(choices, discord.AutocompleteChoiceInt{
			Name:  name,
			Value: e.Index + 1,
		})
		if len(choices) >= 25 {
			break
		}
	}

	if err := event.AutocompleteResult(choices); err != nil {
		sys.LogAlert(sys.MsgAlertRespondError, err)
	}
}
