package home

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/spoopinatural/jagerbot/sys"
)

// alertListButtonRows is how many entries get their own button row.
// Each row costs four components and a message may carry forty.
const alertListButtonRows = 8

func (c *alertCommands) handleList(event *events.ApplicationCommandInteractionCreate) {
	owner := event.User().ID.String()
	entries := c.book.List(owner, time.Now().UTC())
	if len(entries) == 0 {
		alertRespondImmediate(event, sys.MsgAlertNoActive)
		return
	}

	err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetIsComponentsV2(true).
		AddComponents(c.listContainer("", entries, time.Now().UTC())).
		SetEphemeral(true).
		Build())
	if err != nil {
		sys.LogAlert(sys.MsgAlertRespondError, err)
	}
}

func (c *alertCommands) listContainer(notice string, entries []sys.AlertEntry, now time.Time) discord.ContainerComponent {
	var components []discord.ContainerSubComponent

	header := fmt.Sprintf(sys.MsgAlertListHeader, len(entries))
	if notice != "" {
		header = notice + "\n\n" + header
	}
	components = append(components, discord.NewTextDisplay(header))

	snoozeLabel := fmt.Sprintf(sys.MsgAlertButtonSnooze, shortDuration(c.book.Limits().SnoozeStep))

	var rest []string
	for i, e := range entries {
		item := formatAlertEntry(e, now)
		if i >= alertListButtonRows {
			rest = append(rest, item)
			continue
		}
		components = append(components,
			discord.NewTextDisplay(item),
			discord.NewActionRow(
				discord.NewButton(discord.ButtonStyleDanger, sys.MsgAlertButtonCancel, alertCancelPrefix+e.Alert.ID, "", 0),
				discord.NewButton(discord.ButtonStyleSecondary, snoozeLabel, alertSnoozePrefix+e.Alert.ID, "", 0),
			),
		)
	}
	if len(rest) > 0 {
		components = append(components, discord.NewTextDisplay(strings.Join(rest, "\n")+fmt.Sprintf(sys.MsgAlertListMore, len(rest))))
	}

	return discord.NewContainer(components...)
}

func formatAlertEntry(e sys.AlertEntry, now time.Time) string {
	item := fmt.Sprintf(sys.MsgAlertListItem, e.Index+1, e.Alert.Label, discordTimestamp(e.Alert.DueAt, "F"), formatReminderRelativeTime(now, e.Alert.DueAt))
	if e.Alert.Recurrence != "" {
		item += fmt.Sprintf(sys.MsgAlertListRecurring, e.Alert.Recurrence)
	}
	return item
}

func (c *alertCommands) handleCancelButton(event *events.ComponentInteractionCreate) {
	owner := event.User().ID.String()
	id := strings.TrimPrefix(event.Data.CustomID(), alertCancelPrefix)

	a, err := c.book.CancelID(owner, id)
	if a.ID != "" {
		sys.LogAlert(sys.MsgAlertCancelled, a.ID, owner)
	}
	c.refreshList(event, alertOutcome(fmt.Sprintf(sys.MsgAlertCancelledOne, a.Label), err, c.book.Limits(), 0))
}

func (c *alertCommands) handleSnoozeButton(event *events.ComponentInteractionCreate) {
	owner := event.User().ID.String()
	id := strings.TrimPrefix(event.Data.CustomID(), alertSnoozePrefix)

	a, err := c.book.SnoozeID(owner, id)
	if a.ID != "" {
		sys.LogAlert(sys.MsgAlertSnoozed, a.ID, a.DueAt.Format(time.RFC3339))
	}
	c.refreshList(event, alertOutcome(snoozedText(a, time.Now().UTC()), err, c.book.Limits(), 0))
}

// refreshList redraws the list message in place with a notice on top.
func (c *alertCommands) refreshList(event *events.ComponentInteractionCreate, notice string) {
	now := time.Now().UTC()
	entries := c.book.List(event.User().ID.String(), now)

	var container discord.ContainerComponent
	if len(entries) == 0 {
		container = discord.NewContainer(discord.NewTextDisplay(notice + "\n\n" + sys.MsgAlertNoActive))
	} else {
		container = c.listContainer(notice, entries, now)
	}

	err := event.UpdateMessage(discord.NewMessageUpdateBuilder().
		SetIsComponentsV2(true).
		SetComponents(container).
		Build())
	if err != nil {
		sys.LogAlert(sys.MsgAlertRespondError, err)
	}
}
