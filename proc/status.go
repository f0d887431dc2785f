package proc

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/gateway"
	"github.com/spoopinatural/jagerbot/sys"
)

var StartTime = time.Now().UTC()

func GetRotationInterval() time.Duration {
	return time.Duration(15+rand.Intn(46)) * time.Second
}

// StatusRotator cycles the bot's presence through live alert figures.
type StatusRotator struct {
	book       *sys.AlertBook
	client     *bot.Client
	streamURL  string
	lastStatus string
}

// SetupStatusRotator starts the rotator once the gateway is ready.
func SetupStatusRotator(book *sys.AlertBook, cfg *sys.Config) {
	if !cfg.StatusRotation {
		return
	}

	var once sync.Once
	sys.OnClientReady(func(ctx context.Context, client *bot.Client) {
		once.Do(func() {
			r := &StatusRotator{book: book, client: client, streamURL: cfg.StreamingURL}
			sys.RegisterDaemon(sys.LogStatus, r.Start)
		})
	})
}

func (r *StatusRotator) Start(ctx context.Context) (bool, func(), func()) {
	run := func() {
		for {
			next := GetRotationInterval()
			r.update(ctx, next)
			select {
			case <-time.After(next):
			case <-ctx.Done():
				return
			}
		}
	}
	return true, run, func() { sys.LogStatus(sys.MsgStatusRotatorShutdown) }
}

func (r *StatusRotator) update(ctx context.Context, next time.Duration) {
	now := time.Now()
	choices := []string{
		AlertCountStatus(r.book),
		NextAlertStatus(r.book, now),
		UptimeStatus(now.Sub(StartTime)),
		LatencyStatus(r.client.Gateway.Latency()),
	}

	selected := pickStatus(choices, r.lastStatus, rand.Intn)
	r.lastStatus = selected

	err := r.client.SetPresence(ctx,
		gateway.WithOnlineStatus(discord.OnlineStatusOnline),
		gateway.WithStreamingActivity(selected, r.streamURL),
	)
	if err != nil {
		sys.LogStatus(sys.MsgStatusUpdateFail, err)
		return
	}
	sys.LogDebug(sys.MsgStatusRotated, selected, next)
}

// pickStatus chooses a random non-empty status, avoiding last when any
// other choice exists.
func pickStatus(choices []string, last string, intn func(int) int) string {
	var available, fresh []string
	for _, c := range choices {
		if c == "" {
			continue
		}
		available = append(available, c)
		if c != last {
			fresh = append(fresh, c)
		}
	}
	switch {
	case len(fresh) > 0:
		return fresh[intn(len(fresh))]
	case len(available) > 0:
		return available[0]
	default:
		return UptimeStatus(time.Since(StartTime))
	}
}

// Generators

func AlertCountStatus(book *sys.AlertBook) string {
	n := book.Count()
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("Alerts: %d scheduled", n)
}

func NextAlertStatus(book *sys.AlertBook, now time.Time) string {
	next, ok := book.NextDue()
	if !ok {
		return ""
	}
	wait := next.Sub(now)
	if wait < time.Minute {
		return "Next alert: any moment"
	}
	if wait < time.Hour {
		return fmt.Sprintf("Next alert in %dm", int(wait.Minutes()))
	}
	return fmt.Sprintf("Next alert in %dh %dm", int(wait.Hours()), int(wait.Minutes())%60)
}

func UptimeStatus(uptime time.Duration) string {
	return fmt.Sprintf("Uptime: %dh %dm %ds", int(uptime.Hours()), int(uptime.Minutes())%60, int(uptime.Seconds())%60)
}

func LatencyStatus(ping time.Duration) string {
	if ping == 0 {
		return ""
	}
	return fmt.Sprintf("Ping: %dms", ping.Milliseconds())
}
