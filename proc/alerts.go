package proc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/spoopinatural/jagerbot/sys"
	"golang.org/x/time/rate"
)

// Courier finds where an owner's alerts go and sends them there.
type Courier interface {
	Resolve(ctx context.Context, owner string) (snowflake.ID, error)
	Deliver(ctx context.Context, channelID snowflake.ID, text string) error
}

type discordCourier struct {
	client *bot.Client
}

// NewDiscordCourier delivers alerts as DMs through the bot's REST client.
func NewDiscordCourier(client *bot.Client) Courier {
	return &discordCourier{client: client}
}

func (c *discordCourier) Resolve(ctx context.Context, owner string) (snowflake.ID, error) {
	userID, err := snowflake.Parse(owner)
	if err != nil {
		return 0, fmt.Errorf("owner %q is not a user ID: %w", owner, err)
	}
	dm, err := c.client.Rest.CreateDMChannel(userID, rest.WithCtx(ctx))
	if err != nil {
		return 0, err
	}
	return dm.ID(), nil
}

func (c *discordCourier) Deliver(ctx context.Context, channelID snowflake.ID, text string) error {
	builder := discord.NewMessageCreateBuilder().
		SetIsComponentsV2(true).
		AddComponents(
			discord.NewContainer(
				discord.NewTextDisplay(text),
			),
		)
	_, err := c.client.Rest.CreateMessage(channelID, builder.Build(), rest.WithCtx(ctx))
	return err
}

// TickResult summarizes one scheduler pass.
type TickResult struct {
	Due       int
	Delivered int
	Failed    int
	Skipped   int
	Settled   sys.SettleStats
}

// AlertScheduler fires due alerts on a fixed interval.
type AlertScheduler struct {
	book     *sys.AlertBook
	courier  Courier
	limiter  *rate.Limiter
	attempts int
	interval time.Duration

	done chan struct{}
}

func NewAlertScheduler(book *sys.AlertBook, courier Courier, interval time.Duration, attempts int, sendRate float64) *AlertScheduler {
	burst := int(sendRate)
	if burst < 1 {
		burst = 1
	}
	if attempts < 1 {
		attempts = 1
	}
	return &AlertScheduler{
		book:     book,
		courier:  courier,
		limiter:  rate.NewLimiter(rate.Limit(sendRate), burst),
		attempts: attempts,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// SetupAlertScheduler starts the scheduler once the gateway is ready.
func SetupAlertScheduler(book *sys.AlertBook, cfg *sys.Config) {
	RegisterMetrics()

	var once sync.Once
	sys.OnClientReady(func(ctx context.Context, client *bot.Client) {
		once.Do(func() {
			s := NewAlertScheduler(book, NewDiscordCourier(client), cfg.TickInterval, cfg.DeliveryAttempts, cfg.SendRate)
			sys.RegisterDaemon(sys.LogScheduler, s.Start)
		})
	})
}

// Start is the daemon starter. The loop runs one pass immediately so
// alerts that came due while the bot was offline fire on startup.
func (s *AlertScheduler) Start(ctx context.Context) (bool, func(), func()) {
	run := func() {
		defer close(s.done)

		s.Tick(ctx, time.Now())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Tick(ctx, time.Now())
			case <-ctx.Done():
				return
			}
		}
	}

	shutdown := func() {
		sys.LogScheduler(sys.MsgSchedulerShutdown)
		select {
		case <-s.done:
		case <-time.After(10 * time.Second):
		}
	}

	return true, run, shutdown
}

// Tick delivers every alert due at now. The book lock is held only while
// taking the snapshot and while settling.
func (s *AlertScheduler) Tick(ctx context.Context, now time.Time) TickResult {
	started := time.Now()
	now = now.UTC()

	due := s.book.DueSnapshot(now)
	res := TickResult{Due: len(due)}
	if len(due) == 0 {
		s.observe(started)
		return res
	}

	pendingByOwner := make(map[string]int)
	for _, a := range due {
		pendingByOwner[a.Owner]++
	}

	channels := make(map[string]snowflake.ID)
	skipped := make(map[string]bool)
	outcomes := make([]sys.DeliveryOutcome, 0, len(due))

	for _, a := range due {
		if skipped[a.Owner] {
			continue
		}

		channelID, ok := channels[a.Owner]
		if !ok {
			id, err := s.courier.Resolve(ctx, a.Owner)
			if err != nil {
				sys.LogScheduler(sys.MsgSchedulerResolveFail, a.Owner, pendingByOwner[a.Owner], err)
				skipped[a.Owner] = true
				res.Skipped += pendingByOwner[a.Owner]
				alertOwnerSkips.Inc()
				continue
			}
			channelID = id
			channels[a.Owner] = id
		}

		if err := s.limiter.Wait(ctx); err != nil {
			break
		}

		outcome := sys.DeliveryOutcome{Owner: a.Owner, ID: a.ID, FiredAt: a.DueAt}
		if err := s.courier.Deliver(ctx, channelID, fmt.Sprintf(sys.MsgSchedulerReminderText, a.Label)); err != nil {
			if ctx.Err() != nil {
				// Cut off by shutdown. The alert keeps its attempts.
				break
			}
			sys.LogScheduler(sys.MsgSchedulerDeliverFail, a.ID, a.Owner, a.Failures+1, s.attempts, err)
			alertsDelivered.WithLabelValues("failed").Inc()
			res.Failed++
		} else {
			sys.LogDebug(sys.MsgSchedulerDelivered, a.ID, a.Owner)
			alertsDelivered.WithLabelValues("delivered").Inc()
			outcome.Delivered = true
			res.Delivered++
		}
		outcomes = append(outcomes, outcome)
	}

	// Persist errors are already logged by the book.
	res.Settled, _ = s.book.Settle(outcomes, s.attempts, now)

	sys.LogScheduler(sys.MsgSchedulerTickSummary, res.Due, res.Delivered, res.Failed, res.Settled.Removed, res.Settled.Rescheduled)
	s.observe(started)
	return res
}

func (s *AlertScheduler) observe(started time.Time) {
	alertsActive.Set(float64(s.book.Count()))
	alertTickDuration.Observe(time.Since(started).Seconds())
}
