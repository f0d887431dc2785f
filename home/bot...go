package home

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
	"github.com/spoopinatural/jagerbot/sys"
)

// Setup registers every slash command, autocomplete and component
// handler. It must run before commands are synced.
func Setup(book *sys.AlertBook, cfg *sys.Config) {
	setupAlertCommands(book)
	setupBotCommands(book, cfg)
}

type botCommands struct {
	book *sys.AlertBook
	cfg  *sys.Config
}

func setupBotCommands(book *sys.AlertBook, cfg *sys.Config) {
	c := &botCommands{book: book, cfg: cfg}
	adminPerm := discord.PermissionAdministrator

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "bot",
		Description:              "Bot management utilities (Owner Only)",
		DefaultMemberPermissions: omit.New(&adminPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
			discord.InteractionContextTypeBotDM,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "stats",
				Description: "Show alert totals, uptime and latency",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "flush",
				Description: "Write all alerts to disk now",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "sync",
				Description: "Re-register slash commands with Discord",
			},
		},
	}, c.handle)
}

func (c *botCommands) handle(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	subCmd := data.SubCommandName
	if subCmd == nil {
		return
	}

	user := event.User()
	if !c.cfg.IsOwner(user.ID.String()) {
		alertRespondImmediate(event, sys.MsgBotOwnerOnly)
		return
	}
	sys.LogInfo(sys.MsgBotAdminCommand, *subCmd, user.Username, user.ID)

	switch *subCmd {
	case "stats":
		c.handleStats(event)
	case "flush":
		c.handleFlush(event)
	case "sync":
		c.handleSync(event)
	}
}

func (c *botCommands) handleStats(event *events.ApplicationCommandInteractionCreate) {
	uptime := time.Since(sys.StartupTime).Truncate(time.Second)
	ping := event.Client().Gateway.Latency().Truncate(time.Millisecond)

	alertRespondImmediate(event, fmt.Sprintf(sys.MsgBotStats, c.book.Count(), c.book.Owners(), uptime, ping))
}

func (c *botCommands) handleFlush(event *events.ApplicationCommandInteractionCreate) {
	if err := c.book.Flush(); err != nil {
		alertRespondImmediate(event, fmt.Sprintf(sys.MsgBotFlushFail, err))
		return
	}
	alertRespondImmediate(event, sys.MsgBotFlushed)
}

func (c *botCommands) handleSync(event *events.ApplicationCommandInteractionCreate) {
	if err := event.DeferCreateMessage(true); err != nil {
		return
	}

	client := event.Client()
	text := ""
	n, err := sys.RegisterCommands(sys.AppContext, client, c.cfg.GuildID, true)
	if err != nil {
		text = fmt.Sprintf(sys.MsgBotSyncFail, err)
	} else {
		text = fmt.Sprintf(sys.MsgBotSynced, n)
	}

	_, err = client.Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(), discord.NewMessageUpdateBuilder().
		SetIsComponentsV2(true).
		SetComponents(discord.NewContainer(discord.NewTextDisplay(text))).
		Build())
	if err != nil {
		sys.LogAlert(sys.MsgAlertRespondError, err)
	}
}
