package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"StockScreener/internal/cache"
	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
	"StockScreener/internal/prompt"
	"StockScreener/internal/recorder"
	"StockScreener/internal/report"
	"StockScreener/internal/scheduler"
	"StockScreener/internal/screener"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the YAML config")
	watch := flag.Bool("watch", false, "run saved screens on the cron schedule and answer Telegram commands")
	screenName := flag.String("screen", "", "run the named saved screen instead of asking")
	noOpen := flag.Bool("no-open", false, "write the report without opening it")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	if *noOpen {
		open := false
		cfg.Report.Open = &open
	}

	// Init collector
	fetcher := collector.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Proxy, cfg.Fetch.UserAgent, cfg.Fetch.RequestsPerSecond)
	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		log.Fatalf("[FATAL] init cache: %v", err)
	}
	col := collector.NewCollector(fetcher, fc, cfg.CollectorOptions())

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	runner := screener.NewRunner(col, rec, cfg.StrategyOptions())

	if *watch {
		if err := cfg.ValidateWatch(); err != nil {
			log.Fatalf("[FATAL] config validation: %v", err)
		}
		runWatch(cfg, runner, rec)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := runOnce(ctx, cfg, runner, *screenName); err != nil {
		stop()
		rec.Close()
		log.Fatalf("[FATAL] %v", err)
	}
}

// runOnce screens one index, chosen interactively or from a saved screen,
// and writes the HTML report.
func runOnce(ctx context.Context, cfg *config.Config, runner *screener.Runner, screenName string) error {
	var screen model.Screen
	if screenName != "" {
		s, ok := cfg.Screen(screenName)
		if !ok {
			return fmt.Errorf("unknown screen %q", screenName)
		}
		screen = s
	} else {
		p := prompt.New(os.Stdin, os.Stdout)
		ids := make([]string, 0, len(cfg.Indices))
		for id := range cfg.Indices {
			ids = append(ids, id)
		}

		index, err := p.AskIndex(ids)
		if err != nil {
			return err
		}
		filters, err := p.AskFilters()
		if err != nil {
			return err
		}
		screen = model.Screen{Index: index, Filters: filters}
	}

	fmt.Println("Gathering Fundamentals Data")
	res, err := runner.Run(ctx, screen)
	if err != nil {
		return err
	}
	if n := len(res.Report.Failed); n > 0 {
		fmt.Printf("Skipped %d companies whose pages could not be read\n", n)
	}

	fmt.Println("Generating Screen Report")
	title := fmt.Sprintf("%s screen", screen.Index)
	if screen.Name != "" {
		title = fmt.Sprintf("%s (%s)", screen.Name, screen.Index)
	}
	page, err := report.Render(res.Screened, title)
	if err != nil {
		return err
	}
	if err := report.WriteFile(cfg.Report.Path, page); err != nil {
		return err
	}
	if *cfg.Report.Open {
		if err := report.Open(cfg.Report.Path); err != nil {
			log.Printf("[WARN] %v", err)
		}
	}

	fmt.Println("Finished!")
	return nil
}

// runWatch runs the saved screens on schedule until a shutdown signal arrives.
func runWatch(cfg *config.Config, runner *screener.Runner, rec recorder.Recorder) {
	log.Println("[INFO] StockScreener starting in watch mode...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	sched := scheduler.NewScheduler(ctx, runner, tn, rec, cfg.Screens)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, running saved screens now")
		go sched.RunAllNow()
	}

	log.Printf("[INFO] %d saved screens scheduled at %q. Press Ctrl+C to stop.", len(cfg.Screens), cfg.Schedule.Cron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
}
