package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adaptive-core/internal/api"
	"adaptive-core/internal/data"
	"adaptive-core/internal/engine"
	"adaptive-core/internal/events"
	"adaptive-core/internal/features"
	"adaptive-core/internal/market"
	"adaptive-core/internal/monitor"
	"adaptive-core/internal/persistence"
	"adaptive-core/internal/virtual"
	"adaptive-core/pkg/cache"
	"adaptive-core/pkg/config"
	"adaptive-core/pkg/db"
	"adaptive-core/pkg/i18n"
	"adaptive-core/pkg/license"
	marketbinance "adaptive-core/pkg/market/binance"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(i18n.Get("ConfigLoadFailed"), err)
	}

	i18n.SetLanguage(i18n.Language(cfg.Language))
	log.Println(i18n.Get("Starting"))
	log.Printf(i18n.Get("ConfigLoaded"), cfg.Port)
	log.Printf(i18n.Get("UsingDBPath"), cfg.DBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buildVersion := os.Getenv("APP_VERSION")
	if buildVersion == "" {
		buildVersion = "v1.0-dev"
	}

	// License check (community edition when unset)
	licenseMgr := license.NewManager(os.Getenv("LICENSE_SECRET"))
	edition, err := licenseMgr.Validate(cfg.LicenseToken)
	if err != nil {
		log.Fatalf(i18n.Get("LicenseInvalid"), err)
	}
	log.Printf(i18n.Get("LicenseValid"), edition)
	machineID, _ := license.MachineID()

	// Core services
	bus := events.NewBus()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf(i18n.Get("DBInitFailed"), err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf(i18n.Get("DBMigrationsFailed"), err)
	}

	// Instrument config: YAML file is the source of truth, mirrored to DB.
	symbols := cfg.Symbols
	instrumentCfgs, err := engine.LoadInstruments(cfg.InstrumentsPath)
	if err != nil {
		log.Printf(i18n.Get("InstrumentsLoadFailed"), err)
	} else {
		log.Printf(i18n.Get("InstrumentsLoaded"), len(instrumentCfgs), cfg.InstrumentsPath)
		if err := engine.SyncInstrumentsToDB(ctx, database, instrumentCfgs); err != nil {
			log.Printf(i18n.Get("InstrumentsSyncFailed"), err)
		}
		if len(instrumentCfgs) > 0 {
			symbols = symbols[:0]
			for _, ic := range instrumentCfgs {
				symbols = append(symbols, ic.Symbol)
			}
		}
	}

	// System metrics for monitoring
	sysMetrics := monitor.NewSystemMetrics()
	log.Println(i18n.Get("SystemMetricsInit"))

	// Alert monitor
	mon := &monitor.Monitor{Bus: bus, Sink: &monitor.LogSink{Fn: func(msg string) { log.Println("🚨 " + msg) }}}
	mon.Start(ctx)

	// Decision journal (batched writes into sqlite)
	var journal *persistence.Journal
	if cfg.JournalEnabled {
		journal = persistence.NewJournal(database.DB, cfg.JournalBatchSize, 500*time.Millisecond)
		defer journal.Close()
	}

	// Shared feature synthesis and brain store
	synth := features.NewSynth(7, 25, 14, 200)
	store := persistence.NewStore(cfg.BrainDir)

	baseParams := engine.DefaultParams()
	baseParams.Alpha = cfg.Alpha
	baseParams.Gamma = cfg.Gamma
	baseParams.Lambda = cfg.Lambda
	baseParams.ReplayCapacity = cfg.ReplayCapacity
	baseParams.BatchSize = cfg.BatchSize
	baseParams.DecisionEvery = cfg.DecisionEvery
	baseParams.ReplayEvery = cfg.ReplayEvery
	baseParams.OverfitEvery = cfg.OverfitEvery
	baseParams.TuneEvery = cfg.TuneEvery
	baseParams.AutosaveInterval = cfg.AutosaveInterval
	baseParams.PersistEnabled = cfg.PersistEnabled
	baseParams.PretrainEnabled = cfg.PretrainEnabled
	baseParams.GateEnabled = cfg.GateEnabled
	baseParams.JournalEnabled = cfg.JournalEnabled
	baseParams.BaseEquity = cfg.BaseEquity
	baseParams.Lot = cfg.Lot
	baseParams.MinTick = cfg.MinTick

	// Historical data for pre-training (live feeds only)
	binanceClient := marketbinance.NewClient(cfg.BinanceTestnet)
	historical := data.NewHistoricalDataService(binanceClient)

	// One core per instrument
	cores := make([]*engine.Core, 0, len(symbols))
	for _, sym := range symbols {
		params := baseParams
		for _, ic := range instrumentCfgs {
			if ic.Symbol == sym {
				params = engine.ParamsForInstrument(baseParams, ic)
				break
			}
		}

		core := engine.NewCore(sym, params, synth, store, journal, bus, sysMetrics)

		var candles []virtual.Candle
		if params.PretrainEnabled && !cfg.UseMockFeed {
			candles, err = historical.GetCandles(ctx, sym, cfg.KlineInterval, cfg.PretrainCandles)
			if err != nil {
				log.Printf(i18n.Get("HistoryFetchFailed"), sym, err)
			}
		}
		core.Bootstrap(candles)
		cores = append(cores, core)
	}

	// Market data (mock first, real later)
	if cfg.UseMockFeed {
		mock := market.MockFeed{
			Bus:     bus,
			Symbols: symbols,
		}
		mock.Start(ctx)
		log.Println(i18n.Get("MockFeedStarted"))
	} else {
		feed := market.Feed{
			Client:   binanceClient,
			Stream:   marketbinance.NewStreamClient(cfg.BinanceTestnet),
			Bus:      bus,
			Symbols:  symbols,
			Interval: cfg.KlineInterval,
		}
		feed.Start(ctx)
		log.Println(i18n.Get("BinanceFeedStarted"))
	}

	coreBySymbol := make(map[string]*engine.Core, len(cores))
	for _, c := range cores {
		coreBySymbol[c.Symbol()] = c
	}

	// Quote cache for API readers
	quotes := cache.NewShardedQuoteCache()

	// Quote ticks -> trade management + decision loop
	quoteSub, unsubQuotes := bus.Subscribe(events.EventQuoteTick, 500)
	defer unsubQuotes()
	go func() {
		for msg := range quoteSub {
			q, ok := msg.(market.Quote)
			if !ok || !q.Valid() {
				continue
			}
			quotes.Set(q.Symbol, q.Bid, q.Ask)
			if core, found := coreBySymbol[q.Symbol]; found {
				core.OnQuote(q.Bid, q.Ask, q.Time)
			}
		}
	}()

	// Bar closes -> feature synthesis (price + volume)
	barSub, unsubBars := bus.Subscribe(events.EventBarClose, 100)
	defer unsubBars()
	go func() {
		for msg := range barSub {
			switch v := msg.(type) {
			case marketbinance.Kline:
				if core, found := coreBySymbol[v.Symbol]; found {
					core.OnBar(v.Close, v.Volume, time.UnixMilli(v.CloseTime))
				}
			case market.Quote:
				if core, found := coreBySymbol[v.Symbol]; found {
					core.OnBar(v.Mid(), 1, v.Time)
				}
			}
		}
	}()

	// Engine service
	engService := engine.NewImpl(engine.Config{
		Cores: cores,
		Meta: engine.SystemStatus{
			Mode: func() string {
				if cfg.UseMockFeed {
					return "MOCK"
				}
				return "LIVE"
			}(),
			Symbols:     symbols,
			UseMockFeed: cfg.UseMockFeed,
			Version:     buildVersion,
			MachineID:   machineID,
		},
	})
	log.Println(i18n.Get("EngineServiceInit"))

	// API
	server := api.NewServer(bus, database, engService, sysMetrics, quotes, cfg.JWTSecret)
	go func() {
		if err := server.Start(":" + cfg.Port); err != nil {
			log.Fatalf(i18n.Get("APIServerError"), err)
		}
	}()
	log.Printf(i18n.Get("ServerListening"), cfg.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println(i18n.Get("ShuttingDown"))

	// Final persistence pass before exit.
	engService.SaveAll(time.Now())
	log.Println(i18n.Get("BrainSaveComplete"))
}
