package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"qihuang-chef/internal/chef"
	"qihuang-chef/internal/config"
	"qihuang-chef/internal/database"
	"qihuang-chef/internal/llm"
	"qihuang-chef/internal/metrics"
	"qihuang-chef/internal/plan"
	"qihuang-chef/internal/shared"
)

func main() {
	_ = godotenv.Load()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.NewFromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "plan":
		planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
		focusRaw := planCmd.String("focus", string(plan.FocusTasty), "Comma-separated focus tags")
		prefs := planCmd.String("prefs", "", "Free-text dietary preferences")
		location := planCmd.String("location", cfg.DefaultLocation, "Location for seasonal context")
		planCmd.Parse(os.Args[2:])

		focus, err := parseFocusList(*focusRaw)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid focus list")
		}
		runPlan(ctx, cfg, logger, chef.PlanRequest{
			Focus:       focus,
			Location:    *location,
			Preferences: *prefs,
		})
	case "today":
		todayCmd := flag.NewFlagSet("today", flag.ExitOnError)
		focusRaw := todayCmd.String("focus", string(plan.FocusTasty), "Comma-separated focus tags")
		todayCmd.Parse(os.Args[2:])

		focus, err := parseFocusList(*focusRaw)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid focus list")
		}
		runToday(ctx, cfg, logger, focus)
	case "ask":
		if len(os.Args) < 3 {
			fmt.Println("Usage: qihuang-chef ask <question>")
			os.Exit(1)
		}
		runAsk(ctx, cfg, logger, strings.Join(os.Args[2:], " "))
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		db, err := database.NewDB(cfg.DatabasePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize database")
		}
		defer db.Close()

		affected, err := metrics.NewStore(db.SQL).Cleanup(*days)
		if err != nil {
			logger.Fatal().Err(err).Msg("cleanup failed")
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runPlan(ctx context.Context, cfg *config.Config, logger zerolog.Logger, req chef.PlanRequest) {
	svc, recordMeta, cleanup := setup(ctx, cfg, logger)
	defer cleanup()

	var (
		p   *plan.WeeklyPlan
		rec plan.TodayRecommendation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, meta, err := svc.WeeklyPlan(gctx, req)
		recordMeta(meta)
		if err != nil {
			return err
		}
		p = result
		return nil
	})
	g.Go(func() error {
		result, meta := svc.TodayRecommendation(gctx, req.Focus)
		recordMeta(meta)
		rec = result
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("plan generation failed")
	}

	printPlan(p, rec)
}

func runToday(ctx context.Context, cfg *config.Config, logger zerolog.Logger, focus []plan.Focus) {
	svc, recordMeta, cleanup := setup(ctx, cfg, logger)
	defer cleanup()

	rec, meta := svc.TodayRecommendation(ctx, focus)
	recordMeta(meta)
	fmt.Printf("今日推荐：%s\n功效：%s\n%s\n", rec.Name, rec.Benefit, rec.Reason)
}

func runAsk(ctx context.Context, cfg *config.Config, logger zerolog.Logger, question string) {
	svc, recordMeta, cleanup := setup(ctx, cfg, logger)
	defer cleanup()

	answer, meta, err := svc.Ask(ctx, question, "命令行提问，无本周方案上下文")
	recordMeta(meta)
	if err != nil {
		logger.Fatal().Err(err).Msg("ask failed")
	}
	fmt.Println(answer)
}

// setup wires the client, service and metrics store, and returns a cleanup
// that closes them in reverse order.
func setup(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*chef.Service, func(shared.CallMeta), func()) {
	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create llm client")
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}

	store := metrics.NewStore(db.SQL)
	recordMeta := func(meta shared.CallMeta) {
		if err := store.RecordMeta(meta); err != nil {
			logger.Warn().Err(err).Msg("failed to record metrics")
		}
	}
	cleanup := func() {
		db.Close()
		if closer, ok := client.(llm.Closer); ok {
			closer.Close()
		}
	}
	return chef.NewService(client, logger), recordMeta, cleanup
}

func printPlan(p *plan.WeeklyPlan, rec plan.TodayRecommendation) {
	fmt.Printf("== %s ==\n%s\n\n", p.Theme, p.Philosophy)
	fmt.Printf("今日推荐：%s（%s）\n\n", rec.Name, rec.Benefit)

	for _, day := range plan.DisplayMenu(p.Menu) {
		fmt.Printf("[%s] %s\n", day.Day, day.PreparationTip)
		fmt.Printf("  午餐：%s (%s)\n", day.Lunch.Name, day.Lunch.CookTime)
		fmt.Printf("  晚餐：%s (%s)\n", day.Dinner.Name, day.Dinner.CookTime)
		if plan.IsPrepDay(day.Day) {
			for i, op := range day.WeekendPrepOperations {
				fmt.Printf("  备菜%d：%s\n", i+1, op)
			}
		}
	}

	fmt.Println("\n== 采购清单 ==")
	for _, cat := range p.GroceryList {
		fmt.Printf("【%s】\n", cat.Category)
		for _, item := range cat.Items {
			fmt.Printf("  - %s: %s\n", item.Name, item.Amount)
		}
	}
}

func parseFocusList(raw string) ([]plan.Focus, error) {
	var focus []plan.Focus
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, ok := plan.ParseFocus(part)
		if !ok {
			return nil, fmt.Errorf("unknown focus tag %q", part)
		}
		focus = append(focus, f)
	}
	if len(focus) == 0 {
		return nil, fmt.Errorf("at least one focus tag is required")
	}
	return focus, nil
}

func printUsage() {
	fmt.Println("Usage: qihuang-chef <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan               Generate a weekly meal plan")
	fmt.Println("  today              Get today's dish recommendation")
	fmt.Println("  ask                Ask the chef a cooking question")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
