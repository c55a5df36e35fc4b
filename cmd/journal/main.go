package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"tradejournal/config"
	"tradejournal/internal/adapters/logger"
	"tradejournal/internal/adapters/sqlite"
	"tradejournal/internal/domain"
	"tradejournal/internal/journal"
	"tradejournal/internal/render"
)

// version is set at build time via ldflags in the release pipeline.
var version = "dev"

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		runAdd(os.Args[2:])
	case "close":
		runClose(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "report":
		runReport(os.Args[2:])
	case "daily":
		runDaily(os.Args[2:])
	case "curve":
		runCurve(os.Args[2:])
	case "import":
		runImport(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "settings":
		runSettings(os.Args[2:])
	case "version":
		fmt.Printf("tradejournal v%s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `tradejournal - personal trading journal

Usage: journal <command> [options]

Commands:
  add       Log a new open trade
  close     Close an open trade and record its P&L
  list      List journaled trades
  report    Print the performance overview
  daily     Print the daily P&L table
  curve     Print the cumulative P&L series
  import    Import trades from a CSV file
  export    Export trades to a CSV file
  settings  Manage commission plans, strategies, markets and preferences
  version   Print the version

Run 'journal <command> -h' for command options.
`)
}

// setup wires config, logger, repository and the journal service.
func setup() (*journal.Service, *config.Config, func()) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Env: cfg.App.Env})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}

	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.Journal.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}

	svc, err := journal.NewService(cfg, appLogger, repo, repo)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize journal service: %v", err)
	}

	cleanup := func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
		appLogger.Sync()
	}
	return svc, cfg, cleanup
}

func runAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	symbol := fs.String("symbol", "", "Instrument symbol (required)")
	direction := fs.String("direction", "long", "Trade direction: long or short")
	quantity := fs.Float64("qty", 0, "Position size (required)")
	price := fs.Float64("price", 0, "Entry price (required)")
	entryTime := fs.String("time", "", "Entry time, RFC3339 (default: now)")
	strategy := fs.String("strategy", "", "Strategy tag")
	market := fs.String("market", "", "Market code")
	notes := fs.String("notes", "", "Journal notes")
	fs.Parse(args)

	svc, _, cleanup := setup()
	defer cleanup()

	params := journal.LogTradeParams{
		Symbol:     *symbol,
		Direction:  domain.Direction(*direction),
		Quantity:   *quantity,
		EntryPrice: *price,
		Strategy:   *strategy,
		Market:     *market,
		Notes:      *notes,
	}
	if *entryTime != "" {
		t, err := time.Parse(time.RFC3339, *entryTime)
		if err != nil {
			log.Fatalf("Invalid -time value: %v", err)
		}
		params.EntryTime = t
	}

	trade, err := svc.LogTrade(context.Background(), params)
	if err != nil {
		log.Fatalf("Failed to log trade: %v", err)
	}
	fmt.Printf("Logged trade #%d: %s %s %.4g @ %.4f\n",
		trade.ID, trade.Direction, trade.Symbol, trade.Quantity, trade.EntryPrice)
}

func runClose(args []string) {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	id := fs.Int64("id", 0, "Trade ID (required)")
	price := fs.Float64("price", 0, "Exit price (required)")
	exitTime := fs.String("time", "", "Exit time, RFC3339 (default: now)")
	plan := fs.String("plan", "", "Commission plan name")
	commission := fs.Float64("commission", -1, "Explicit commission (overrides -plan)")
	mae := fs.Float64("mae", -1, "Max adverse excursion in currency units")
	mfe := fs.Float64("mfe", -1, "Max favorable excursion in currency units")
	fs.Parse(args)

	svc, cfg, cleanup := setup()
	defer cleanup()

	params := journal.CloseTradeParams{
		ExitPrice:      *price,
		CommissionPlan: *plan,
	}
	if *exitTime != "" {
		t, err := time.Parse(time.RFC3339, *exitTime)
		if err != nil {
			log.Fatalf("Invalid -time value: %v", err)
		}
		params.ExitTime = t
	}
	if *commission >= 0 {
		params.Commission = commission
	}
	if *mae >= 0 {
		params.MaxAdversePrice = mae
	}
	if *mfe >= 0 {
		params.MaxFavorablePrice = mfe
	}

	trade, err := svc.CloseTrade(context.Background(), *id, params)
	if err != nil {
		log.Fatalf("Failed to close trade: %v", err)
	}
	fmt.Printf("Closed trade #%d: net P&L %.2f %s\n", trade.ID, trade.NetPnL, cfg.Journal.BaseCurrency)
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	symbol := fs.String("symbol", "", "Only show trades for this symbol")
	limit := fs.Int("limit", 50, "Maximum trades to show with -symbol")
	fs.Parse(args)

	svc, cfg, cleanup := setup()
	defer cleanup()

	var trades []*domain.Trade
	var err error
	if *symbol != "" {
		trades, err = svc.TradesBySymbol(context.Background(), *symbol, *limit)
	} else {
		trades, err = svc.ListTrades(context.Background())
	}
	if err != nil {
		log.Fatalf("Failed to list trades: %v", err)
	}
	if len(trades) == 0 {
		fmt.Println("No trades journaled yet.")
		return
	}
	for _, t := range trades {
		status := string(t.Status)
		if t.IsClosed() {
			status = fmt.Sprintf("closed, %.2f %s", t.NetPnL, cfg.Journal.BaseCurrency)
		}
		fmt.Printf("#%d  %s %s %.4g @ %.4f  (%s)  %s\n",
			t.ID, t.Direction, t.Symbol, t.Quantity, t.EntryPrice,
			status, t.EntryTime.Format("2006-01-02 15:04"))
	}
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	days := fs.Int("days", 0, "Reporting window in days (default: account preference)")
	fs.Parse(args)

	svc, cfg, cleanup := setup()
	defer cleanup()

	report, err := svc.Report(context.Background(), *days)
	if err != nil {
		log.Fatalf("Failed to build report: %v", err)
	}
	render.Overview(os.Stdout, report, cfg.Journal.BaseCurrency)
}

func runDaily(args []string) {
	fs := flag.NewFlagSet("daily", flag.ExitOnError)
	days := fs.Int("days", 0, "Reporting window in days (default: account preference)")
	fs.Parse(args)

	svc, cfg, cleanup := setup()
	defer cleanup()

	report, err := svc.Report(context.Background(), *days)
	if err != nil {
		log.Fatalf("Failed to build report: %v", err)
	}
	render.DailyTable(os.Stdout, report.Daily, cfg.Journal.BaseCurrency)
}

func runCurve(args []string) {
	fs := flag.NewFlagSet("curve", flag.ExitOnError)
	fs.Parse(args)

	svc, cfg, cleanup := setup()
	defer cleanup()

	report, err := svc.Report(context.Background(), 0)
	if err != nil {
		log.Fatalf("Failed to build report: %v", err)
	}
	render.CurveTable(os.Stdout, report.Curve, cfg.Journal.BaseCurrency)
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "CSV file to import (required)")
	fs.Parse(args)

	if *file == "" {
		log.Fatal("-file is required")
	}

	svc, _, cleanup := setup()
	defer cleanup()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *file, err)
	}
	defer f.Close()

	result, err := svc.ImportCSV(context.Background(), f)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	fmt.Printf("Imported %d trades (%d skipped)\n", result.Imported, result.Skipped)
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	file := fs.String("file", "", "Destination CSV file (default: stdout)")
	fs.Parse(args)

	svc, _, cleanup := setup()
	defer cleanup()

	out := os.Stdout
	if *file != "" {
		f, err := os.Create(*file)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *file, err)
		}
		defer f.Close()
		out = f
	}

	count, err := svc.ExportCSV(context.Background(), out)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	if *file != "" {
		fmt.Printf("Exported %d trades to %s\n", count, *file)
	}
}

func runSettings(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: journal settings <show|set|seed> [options]")
		os.Exit(1)
	}

	switch args[0] {
	case "show":
		runSettingsShow(args[1:])
	case "set":
		runSettingsSet(args[1:])
	case "seed":
		runSettingsSeed(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown settings command: %s\n", args[0])
		os.Exit(1)
	}
}

func runSettingsShow(args []string) {
	fs := flag.NewFlagSet("settings show", flag.ExitOnError)
	fs.Parse(args)

	svc, _, cleanup := setup()
	defer cleanup()
	ctx := context.Background()

	account, err := svc.AccountSettings(ctx)
	if err != nil {
		log.Fatalf("Failed to load account settings: %v", err)
	}
	fmt.Printf("Base currency:   %s\n", account.BaseCurrency)
	fmt.Printf("Starting balance: %.2f\n", account.StartingBalance)
	fmt.Printf("Default window:  %d days\n", account.DefaultWindowDays)

	plans, err := svc.ListCommissionPlans(ctx)
	if err != nil {
		log.Fatalf("Failed to list commission plans: %v", err)
	}
	fmt.Printf("\nCommission plans (%d):\n", len(plans))
	for _, p := range plans {
		fmt.Printf("  %s: %.2f/trade + %.4f/unit\n", p.Name, p.PerTrade, p.PerUnit)
	}

	strategies, err := svc.ListStrategies(ctx)
	if err != nil {
		log.Fatalf("Failed to list strategies: %v", err)
	}
	fmt.Printf("\nStrategies (%d):\n", len(strategies))
	for _, s := range strategies {
		fmt.Printf("  %s  %s\n", s.Name, s.Description)
	}

	markets, err := svc.ListMarkets(ctx)
	if err != nil {
		log.Fatalf("Failed to list markets: %v", err)
	}
	fmt.Printf("\nMarkets (%d):\n", len(markets))
	for _, m := range markets {
		fmt.Printf("  %s  %s (%s)\n", m.Code, m.Name, m.Currency)
	}
}

func runSettingsSet(args []string) {
	fs := flag.NewFlagSet("settings set", flag.ExitOnError)
	currency := fs.String("currency", "", "Base currency")
	balance := fs.Float64("balance", -1, "Starting balance")
	window := fs.Int("window", 0, "Default reporting window in days")
	fs.Parse(args)

	svc, _, cleanup := setup()
	defer cleanup()
	ctx := context.Background()

	account, err := svc.AccountSettings(ctx)
	if err != nil {
		log.Fatalf("Failed to load account settings: %v", err)
	}
	if *currency != "" {
		account.BaseCurrency = *currency
	}
	if *balance >= 0 {
		account.StartingBalance = *balance
	}
	if *window > 0 {
		account.DefaultWindowDays = *window
	}

	if err := svc.SaveAccountSettings(ctx, account); err != nil {
		log.Fatalf("Failed to save account settings: %v", err)
	}
	fmt.Println("Settings saved.")
}

func runSettingsSeed(args []string) {
	fs := flag.NewFlagSet("settings seed", flag.ExitOnError)
	file := fs.String("file", "", "YAML seed file (required)")
	fs.Parse(args)

	if *file == "" {
		log.Fatal("-file is required")
	}

	svc, _, cleanup := setup()
	defer cleanup()

	result, err := svc.SeedSettings(context.Background(), *file)
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	fmt.Printf("Seeded %d entries (%d already existed)\n", result.Created, result.Skipped)
}
