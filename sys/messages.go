package sys

// --- Message Constants ---

const (
	// --- Infrastructure & Lifecycle ---
	MsgConfigFailedToLoad  = "Failed to load config: %v"
	MsgConfigMissingToken  = "DISCORD_TOKEN is not set in .env file"
	MsgDatabaseInitSuccess = "Database initialized successfully"
	MsgDatabaseTableError  = "Failed to create table: %w"
	MsgDatabasePragmaError = "Failed to set pragma %s: %w"
	MsgDaemonStarting      = "Starting..."
	MsgBotStarting         = "Starting %s..."
	MsgBotReady            = "%s is ready! (ID: %s) (PID: %d) (Took: %dms)"
	MsgBotShutdown         = "Shutting down %s..."
	MsgBotKillingOld       = "Killing running instance... (PID: %d)"
	MsgBotOldTerminated    = "Old instance terminated."
	MsgBotRegisterFail     = "Command registration failed: %v"
	MsgMetricsListening    = "Metrics listening on %s"
	MsgMetricsServeFail    = "Metrics server stopped: %v"
	MsgGenericError        = "%v"

	// --- Command Loader & Registry ---
	MsgLoaderSyncCommands   = "Syncing %s commands..."
	MsgLoaderUpToDate       = "Commands are up to date. (Hash: %s)"
	MsgLoaderDevStarting    = "[DEV] Registering commands to guild: %s"
	MsgLoaderDevRegistered  = "[DEV] Registered: %s"
	MsgLoaderDevFail        = "[DEV] Registration failed: %v"
	MsgLoaderProdStarting   = "[PROD] Registering commands globally..."
	MsgLoaderProdRegistered = "[PROD] Registered: %s"
	MsgLoaderProdFail       = "[PROD] Global registration failed: %w"
	MsgLoaderCleanup        = "[CLEANUP] Removing commands from previous dev guild: %s"
	MsgLoaderPanicRecovered = "Panic recovered in handler: %v\n%s"

	// --- Alert Store ---
	MsgAlertFileLoaded       = "Loaded %d alert(s) for %d owner(s) from %s"
	MsgAlertFileMissing      = "No alert file at %s, starting empty"
	MsgAlertFileLoadFail     = "Failed to load alerts: %v"
	MsgAlertFileQuarantined  = "Moved unreadable alert file to %s"
	MsgAlertFileSaveFail     = "Failed to save alerts: %v"
	MsgAlertFileBadRecord    = "Dropping alert %q for owner %s: %v"
	MsgAlertNaturalTimeInit  = "Failed to initialize naturaltime parser: %v"
	MsgAlertCreated          = "Alert %s created for owner %s (due %s)"
	MsgAlertCancelled        = "Alert %s cancelled by owner %s"
	MsgAlertCancelledAll     = "Owner %s cancelled %d alert(s)"
	MsgAlertSnoozed          = "Alert %s snoozed to %s"
	MsgAlertRespondError     = "Failed to respond to interaction: %v"
	MsgAlertTimezoneSaveFail = "Failed to save timezone for %s: %v"

	// --- Scheduler ---
	MsgSchedulerShutdown      = "Shutting down Alert Scheduler..."
	MsgSchedulerResolveFail   = "Cannot reach owner %s, keeping %d alert(s) for next tick: %v"
	MsgSchedulerDeliverFail   = "Failed to deliver alert %s to %s (attempt %d/%d): %v"
	MsgSchedulerDelivered     = "Delivered alert %s to %s"
	MsgSchedulerGaveUp        = "Giving up on alert %s for %s after %d attempt(s)"
	MsgSchedulerBadRecurrence = "Alert %s has unusable recurrence %q, treating as one-shot"
	MsgSchedulerTickSummary   = "Tick: %d due, %d delivered, %d failed, %d removed, %d rescheduled"
	MsgSchedulerFlushFail     = "Failed to flush alerts on shutdown: %v"
	MsgSchedulerReminderText  = "⏰ Reminder: **%s**"

	// --- Status Rotator ---
	MsgStatusRotatorShutdown = "Shutting down Status Rotator..."
	MsgStatusUpdateFail      = "Update failed: %v"
	MsgStatusRotated         = "Status rotated to: \"%s\" (Next rotate in %v)"

	// --- User-facing alert responses ---
	MsgAlertSetSuccess       = "✅ Alert for **%s** set %s (`%s`)."
	MsgAlertSetRecurring     = "\nRepeats every `%s`."
	MsgAlertNotSavedWarning  = "\n\n⚠️ Your change is active but could not be saved to disk. It may be lost on restart."
	MsgAlertNoActive         = "ℹ️ You have no active alerts. Set one with `/alert set`!"
	MsgAlertListHeader       = "**Your Alerts** (%d pending)\n"
	MsgAlertListItem         = "**%d.** %s\n> Triggers %s (`%s`)"
	MsgAlertListMore         = "\n…and %d more. Use `/alert cancel` or `/alert snooze` with the number."
	MsgAlertListRecurring    = "\n> Repeats every `%s`"
	MsgAlertCancelledOne     = "🛑 Cancelled **%s**."
	MsgAlertCancelledBatch   = "🛑 Cancelled **%d** alert(s)."
	MsgAlertSnoozedOne       = "😴 Snoozed **%s** until %s (`%s`)."
	MsgAlertTimezoneSet      = "🕒 Your timezone is now **%s**."
	MsgAlertTimezoneCurrent  = "🕒 Your timezone is **%s**."
	MsgAlertButtonCancel     = "Cancel"
	MsgAlertButtonSnooze     = "Snooze %s"
	MsgAlertChoice           = "%d. %s (%s)"
	ErrAlertLabelEmpty       = "❌ The alert needs a name."
	ErrAlertLabelTooLong     = "❌ Alert names are limited to %d characters."
	ErrAlertTimeUnparseable  = "❌ Couldn't parse the date/time. Try formats like `10m`, `2h30m`, `tomorrow at 3pm`, `2025-06-01 18:00`."
	ErrAlertPastTime         = "❌ The specified time is in the past."
	ErrAlertRecurrenceFormat = "❌ Invalid recurring time format! Use number + unit, e.g. `30m`, `1h`, `1d`."
	ErrAlertRecurrenceShort  = "❌ Recurring alerts must be at least %s apart."
	ErrAlertLimit            = "❌ You've reached the maximum of %d alerts."
	ErrAlertIndexRange       = "❌ There is no alert #%d. Use `/alert list` to see your alerts."
	ErrAlertGone             = "⚠️ That alert no longer exists."
	ErrAlertTimezoneUnknown  = "❌ Unknown timezone `%s`."
	ErrAlertTimezoneSave     = "❌ Failed to save your timezone. Please try again."
	ErrAlertInternal         = "❌ Something went wrong. Please try again."

	// --- Bot admin ---
	MsgBotOwnerOnly    = "⛔ This command is restricted to the bot owners."
	MsgBotStats        = "**JagerBot Stats**\n> Alerts: `%d` across `%d` owner(s)\n> Uptime: `%s`\n> Gateway ping: `%s`"
	MsgBotFlushed      = "💾 Alerts flushed to disk."
	MsgBotFlushFail    = "❌ Flush failed: %v"
	MsgBotSynced       = "✅ Synced %d command(s)."
	MsgBotSyncFail     = "❌ Error syncing commands: %v"
	MsgBotAdminCommand = "Admin command %s used by %s (%s)"
)
