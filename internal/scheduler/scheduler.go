package scheduler

import (
	"context"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"sync"

	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
	"StockScreener/internal/recorder"
	"StockScreener/internal/screener"

	"github.com/robfig/cron/v3"
)

// Runner executes one screen.
type Runner interface {
	Run(ctx context.Context, screen model.Screen) (*screener.Result, error)
}

// Sender delivers a message to the chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

const defaultHistory = 5

// Scheduler runs the saved screens on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier Sender
	Recorder recorder.Recorder
	Screens  []model.Screen
	Ctx      context.Context

	running sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, tn Sender, rec recorder.Recorder, screens []model.Screen) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Notifier: tn,
		Recorder: rec,
		Screens:  screens,
		Ctx:      ctx,
	}
}

// Register schedules a run of every saved screen. cronExpr has a seconds field.
func (s *Scheduler) Register(cronExpr string) error {
	if _, err := s.Cron.AddFunc(cronExpr, s.RunAllNow); err != nil {
		return fmt.Errorf("register screen task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunAllNow runs every saved screen in order and sends one message per screen.
// It is skipped when another run is still in progress.
func (s *Scheduler) RunAllNow() {
	if !s.running.TryLock() {
		log.Println("[WARN] previous screen run still in progress, skipping")
		return
	}
	defer s.running.Unlock()

	log.Printf("[INFO] running %d saved screens", len(s.Screens))
	for _, screen := range s.Screens {
		if s.Ctx.Err() != nil {
			return
		}
		s.trySend(s.runScreen(s.Ctx, screen))
	}
}

func (s *Scheduler) runScreen(ctx context.Context, screen model.Screen) string {
	res, err := s.Runner.Run(ctx, screen)
	if err != nil {
		log.Printf("[ERROR] screen %s: %v", screen.Name, err)
		return fmt.Sprintf("❌ Screen <b>%s</b> failed: %s", html.EscapeString(screen.Name), html.EscapeString(err.Error()))
	}
	return notifier.FormatScreenSummary(res)
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help()
	}
	switch fields[0] {
	case "/screens":
		return notifier.FormatScreenList(s.Screens)
	case "/run":
		if len(fields) < 2 {
			return "Usage: /run &lt;screen name&gt;"
		}
		screen, ok := s.screen(fields[1])
		if !ok {
			return fmt.Sprintf("Unknown screen %q. Send /screens to list them.", html.EscapeString(fields[1]))
		}
		if !s.running.TryLock() {
			return "A screen run is already in progress, try again shortly."
		}
		defer s.running.Unlock()
		return s.runScreen(ctx, screen)
	case "/history":
		limit := defaultHistory
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				return "Usage: /history [count]"
			}
			limit = n
		}
		runs, err := s.Recorder.History(limit)
		if err != nil {
			log.Printf("[ERROR] load history: %v", err)
			return "Could not load run history."
		}
		return notifier.FormatHistory(runs)
	default:
		return help()
	}
}

func (s *Scheduler) screen(name string) (model.Screen, bool) {
	for _, sc := range s.Screens {
		if sc.Name == name {
			return sc, true
		}
	}
	return model.Screen{}, false
}

func help() string {
	return "Available commands:\n" +
		"• /screens - list saved screens\n" +
		"• /run &lt;name&gt; - run a saved screen now\n" +
		"• /history [count] - show recent runs"
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
