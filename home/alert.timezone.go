package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/spoopinatural/jagerbot/sys"
)

func (c *alertCommands) handleTimezone(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	ctx := sys.AppContext
	owner := event.User().ID.String()

	zone, ok := data.OptString("zone")
	if !ok {
		alertRespondImmediate(event, fmt.Sprintf(sys.MsgAlertTimezoneCurrent, sys.UserLocation(ctx, owner).String()))
		return
	}

	_, name, err := sys.ResolveTimezone(zone)
	if err != nil {
		alertRespondImmediate(event, fmt.Sprintf(sys.ErrAlertTimezoneUnknown, zone))
		return
	}

	if err := sys.SetUserTimezone(ctx, owner, name); err != nil {
		sys.LogAlert(sys.MsgAlertTimezoneSaveFail, owner, err)
		alertRespondImmediate(event, sys.ErrAlertTimezoneSave)
		return
	}

	alertRespondImmediate(event, fmt.Sprintf(sys.MsgAlertTimezoneSet, name))
}

func autocompleteTimezone(event *events.AutocompleteInteractionCreate, query string) {
	var choices []discord.AutocompleteChoice
	for _, abbr := range sys.TimezoneSuggestions(query, 25) {
		choices = append(choices, discord.AutocompleteChoiceString{
			Name:  abbr + " (" + sys.TimezoneAlias(abbr) + ")",
			Value: abbr,
		})
	}

	if err := event.AutocompleteResult(choices); err != nil {
		sys.LogAlert(sys.MsgAlertRespondError, err)
	}
}
