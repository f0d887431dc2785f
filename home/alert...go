package home

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/spoopinatural/jagerbot/sys"
)

const (
	alertCancelPrefix = "alert:cancel:"
	alertSnoozePrefix = "alert:snooze:"
)

// alertCommands serves /alert against one book.
type alertCommands struct {
	book *sys.AlertBook
}

func setupAlertCommands(book *sys.AlertBook) {
	c := &alertCommands{book: book}

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "alert",
		Description: "Schedule reminders delivered to your DMs",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
			discord.InteractionContextTypeBotDM,
			discord.InteractionContextTypePrivateChannel,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "set",
				Description: "Set a new alert",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "label",
						Description: "What to remind you about",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "when",
						Description: "When to fire (e.g. '10m', '2h30m', 'tomorrow at 3pm', '2025-06-01 18:00')",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "recurring",
						Description: "Repeat interval (e.g. '30m', '1h', '1d')",
						Required:    false,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "quick",
				Description: "Set an alert from one sentence, e.g. 'Meeting at 15:00 recurring 1h'",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "text",
						Description: "Label, time and optional 'recurring <interval>'",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "list",
				Description: "List your pending alerts",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "cancel",
				Description: "Cancel one alert",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:         "index",
						Description:  "Alert number from /alert list",
						Required:     true,
						Autocomplete: true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "clear",
				Description: "Cancel all of your alerts",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "snooze",
				Description: "Push one alert back",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:         "index",
						Description:  "Alert number from /alert list",
						Required:     true,
						Autocomplete: true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "timezone",
				Description: "Show or set the timezone used to read times like '15:00'",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:         "zone",
						Description:  "Abbreviation such as CET or an IANA name such as Europe/Berlin",
						Required:     false,
						Autocomplete: true,
					},
				},
			},
		},
	}, c.handle)

	sys.RegisterAutocompleteHandler("alert", c.handleAutocomplete)
	sys.RegisterComponentHandler(alertCancelPrefix, c.handleCancelButton)
	sys.RegisterComponentHandler(alertSnoozePrefix, c.handleSnoozeButton)
}

func (c *alertCommands) handle(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	subCmd := data.SubCommandName
	if subCmd == nil {
		return
	}

	switch *subCmd {
	case "set":
		c.handleSet(event, data)
	case "quick":
		c.handleQuick(event, data)
	case "list":
		c.handleList(event)
	case "cancel":
		c.handleCancel(event, data)
	case "clear":
		c.handleClear(event)
	case "snooze":
		c.handleSnooze(event, data)
	case "timezone":
		c.handleTimezone(event, data)
	}
}

func (c *alertCommands) handleAutocomplete(event *events.AutocompleteInteractionCreate) {
	for _, opt := range event.Data.Options {
		if !opt.Focused {
			continue
		}
		query := strings.ToLower(strings.Trim(string(opt.Value), `"`))
		switch opt.Name {
		case "index":
			c.autocompleteIndex(event, query)
		case "zone":
			autocompleteTimezone(event, query)
		}
		return
	}
}

// alertRespondImmediate sends an ephemeral components-v2 text response.
func alertRespondImmediate(event *events.ApplicationCommandInteractionCreate, content string) {
	err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetIsComponentsV2(true).
		AddComponents(
			discord.NewContainer(
				discord.NewTextDisplay(content),
			),
		).
		SetEphemeral(true).
		Build())
	if err != nil {
		sys.LogAlert(sys.MsgAlertRespondError, err)
	}
}

// alertOutcome picks the response for a mutation. A change that was kept
// in memory but not saved still reports success, with a warning.
func alertOutcome(success string, err error, limits sys.AlertLimits, index int) string {
	switch {
	case err == nil:
		return success
	case errors.Is(err, sys.ErrNotPersisted):
		return success + sys.MsgAlertNotSavedWarning
	default:
		return alertErrorText(err, limits, index)
	}
}

func alertErrorText(err error, limits sys.AlertLimits, index int) string {
	switch {
	case errors.Is(err, sys.ErrLabelEmpty):
		return sys.ErrAlertLabelEmpty
	case errors.Is(err, sys.ErrLabelTooLong):
		return fmt.Sprintf(sys.ErrAlertLabelTooLong, limits.MaxLabel)
	case errors.Is(err, sys.ErrTimeUnparseable):
		return sys.ErrAlertTimeUnparseable
	case errors.Is(err, sys.ErrPastTime):
		return sys.ErrAlertPastTime
	case errors.Is(err, sys.ErrRecurrenceInvalid):
		return sys.ErrAlertRecurrenceFormat
	case errors.Is(err, sys.ErrRecurrenceTooShort):
		return fmt.Sprintf(sys.ErrAlertRecurrenceShort, shortDuration(limits.MinRecurrence))
	case errors.Is(err, sys.ErrLimitReached):
		return fmt.Sprintf(sys.ErrAlertLimit, limits.MaxPerOwner)
	case errors.Is(err, sys.ErrIndexOutOfRange):
		return fmt.Sprintf(sys.ErrAlertIndexRange, index)
	case errors.Is(err, sys.ErrAlertNotFound):
		return sys.ErrAlertGone
	case errors.Is(err, sys.ErrNoAlerts):
		return sys.MsgAlertNoActive
	default:
		return sys.ErrAlertInternal
	}
}

// formatReminderRelativeTime renders the gap between two instants as
// "in 5 minutes", "in 2 days" and so on.
func formatReminderRelativeTime(from, to time.Time) string {
	duration := to.Sub(from)

	if duration < time.Minute {
		return "in less than a minute"
	}

	if duration < time.Hour {
		return plural(int(duration.Minutes()), "minute")
	}

	if duration < 24*time.Hour {
		return plural(int(duration.Hours()), "hour")
	}

	days := int(duration.Hours() / 24)
	if days < 7 {
		return plural(days, "day")
	}
	if days < 30 {
		return plural(days/7, "week")
	}
	if days < 365 {
		return plural(days/30, "month")
	}
	return plural(days/365, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "in 1 " + unit
	}
	return fmt.Sprintf("in %d %ss", n, unit)
}

// shortDuration prints 10m instead of 10m0s.
func shortDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}

func discordTimestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

func alertTruncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes-1]) + "…"
}
