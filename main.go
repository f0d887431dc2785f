package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spoopinatural/jagerbot/home"
	"github.com/spoopinatural/jagerbot/proc"
	"github.com/spoopinatural/jagerbot/sys"
)

const pidFile = ".bot.pid"

func main() {
	// LogFatal panics so the deferred cleanup below still runs.
	defer func() {
		if r := recover(); r != nil {
			if msg, ok := r.(string); ok {
				fmt.Fprintf(os.Stderr, "\n[FATAL] %s\n", msg)
				os.Exit(1)
			}
			panic(r)
		}
	}()

	silent := flag.Bool("silent", false, "Disable all log output")
	skipReg := flag.Bool("skip-reg", false, "Skip command registration")
	logFile := flag.Bool("log-file", false, "Also write logs to <binary>.log")
	flag.Parse()

	// 1. Configuration
	cfg, err := sys.LoadConfig()
	if err != nil {
		sys.LogFatal(sys.MsgConfigFailedToLoad, err)
	}

	// 2. Logger
	sys.InitLogger(*silent || cfg.Silent, *logFile)

	// 3. Database
	if err := sys.InitDatabase(context.Background(), cfg.DatabasePath); err != nil {
		sys.LogFatal("Failed to initialize database: %v", err)
	}
	defer sys.CloseDatabase()

	botName, _ := sys.GetBotConfig(context.Background(), "bot_name")
	if botName == "" {
		botName = sys.GetProjectName()
	}
	sys.LogInfo(sys.MsgBotStarting, botName)

	// 4. Single instance
	f := acquirePIDLock()
	defer func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		_ = f.Close()
		_ = os.Remove(pidFile)
	}()

	// 5. Run bot (blocks until shutdown signal)
	if err := run(cfg, *silent, *skipReg); err != nil {
		sys.LogFatal(sys.MsgGenericError, err)
	}
}

// acquirePIDLock takes an exclusive lock on the PID file, terminating an
// older instance that still holds it.
func acquirePIDLock() *os.File {
	f, err := os.OpenFile(pidFile, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		sys.LogFatal("Failed to open PID file: %v", err)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			sys.LogFatal("Failed to lock PID file: %v", err)
		}

		var oldPid int
		_, _ = f.Seek(0, 0)
		if _, scanErr := fmt.Fscanf(f, "%d", &oldPid); scanErr != nil || oldPid == os.Getpid() {
			<-ticker.C
			continue
		}

		process, procErr := os.FindProcess(oldPid)
		if procErr != nil {
			<-ticker.C
			continue
		}

		sys.LogInfo(sys.MsgBotKillingOld, oldPid)
		_ = process.Signal(syscall.SIGTERM)

		timeout := time.After(10 * time.Second)
	waitLoop:
		for {
			select {
			case <-ticker.C:
				if err := process.Signal(syscall.Signal(0)); err != nil {
					break waitLoop
				}
			case <-timeout:
				sys.LogWarn("Old process %d is stubborn. Sending SIGKILL...", oldPid)
				_ = process.Signal(syscall.SIGKILL)
				break waitLoop
			}
		}

		sys.LogInfo(sys.MsgBotOldTerminated)
	}

	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	_, _ = fmt.Fprintf(f, "%d", os.Getpid())
	_ = f.Sync()
	return f
}

func run(cfg *sys.Config, silent bool, skipReg bool) error {
	// 1. Global context that responds to shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sys.SetAppContext(ctx)

	// 2. Alerts
	parser, err := sys.NewNaturalTimeParser()
	if err != nil {
		sys.LogWarn(sys.MsgAlertNaturalTimeInit, err)
	}

	book, err := sys.NewAlertBook(sys.NewAlertFile(cfg.AlertsFile), cfg.Limits, parser)
	if err != nil {
		sys.LogError(sys.MsgAlertFileLoadFail, err)
	}
	sys.LogAlert(sys.MsgAlertFileLoaded, book.Count(), book.Owners(), cfg.AlertsFile)

	home.Setup(book, cfg)
	proc.SetupAlertScheduler(book, cfg)
	proc.SetupStatusRotator(book, cfg)

	// 3. Discord client
	client, err := sys.CreateClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create Discord client: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Close(closeCtx)
	}()

	// 4. Command registration
	if !skipReg {
		if _, err := sys.RegisterCommands(ctx, client, cfg.GuildID, false); err != nil {
			sys.LogError(sys.MsgBotRegisterFail, err)
		}
	} else {
		sys.LogInfo("Skipping command registration as requested.")
	}

	// 5. Gateway
	if err := client.OpenGateway(ctx); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	// 6. Metrics
	if cfg.MetricsAddr != "" {
		go sys.ServeMetrics(ctx, cfg.MetricsAddr)
	}

	<-ctx.Done()
	if !silent {
		fmt.Println()
	}

	// Graceful shutdown
	sys.LogInfo("Shutting down all daemons...")
	sys.ShutdownDaemons()

	if err := book.Flush(); err != nil {
		sys.LogError(sys.MsgSchedulerFlushFail, err)
	}

	if botUser, ok := client.Caches.SelfUser(); ok {
		sys.LogInfo(sys.MsgBotShutdown, botUser.Username)
	} else {
		sys.LogInfo(sys.MsgBotShutdown, sys.GetProjectName())
	}

	return nil
}
