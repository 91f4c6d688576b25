package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fraud-core/internal/api"
	"fraud-core/internal/events"
	"fraud-core/internal/fraud"
	"fraud-core/internal/monitor"
	"fraud-core/internal/ruleset"
	"fraud-core/pkg/config"
	"fraud-core/pkg/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seedRules := fraud.SeedRules()
	if cfg.RulesPath != "" {
		seedRules, err = ruleset.Load(cfg.RulesPath)
		if err != nil {
			log.Fatalf("load rule file %s: %v", cfg.RulesPath, err)
		}
		log.Printf("Loaded %d rules from %s", len(seedRules), cfg.RulesPath)
	}

	seedAlerts := []fraud.Alert{}
	if cfg.SeedAlerts {
		seedAlerts = fraud.SeedAlerts()
	}

	bus := events.NewBus()
	metrics := monitor.NewMetrics()

	var (
		rules  fraud.RuleStore
		alerts fraud.AlertStore
	)

	if cfg.DBPath != "" {
		database, err := db.New(cfg.DBPath)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer database.Close()
		if err := db.ApplyMigrations(database); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}

		ruleStore := db.NewRuleStore(database)
		alertStore := db.NewAlertStore(database)
		if err := ruleStore.SeedIfEmpty(ctx, seedRules); err != nil {
			log.Fatalf("seed rules: %v", err)
		}
		if err := alertStore.SeedIfEmpty(ctx, seedAlerts); err != nil {
			log.Fatalf("seed alerts: %v", err)
		}
		if open, err := alertStore.CountOpen(ctx); err == nil {
			metrics.SetOpenAlerts(open)
		}
		rules, alerts = ruleStore, alertStore
		log.Printf("Using SQLite store at %s", cfg.DBPath)

		if cfg.RulesWatch {
			log.Printf("RULES_WATCH ignored: hot reload requires the in-memory store")
		}
	} else {
		ruleStore := fraud.NewMemoryRuleStore(seedRules)
		alertStore := fraud.NewMemoryAlertStore(seedAlerts)
		open := 0
		for _, a := range seedAlerts {
			if !a.Resolved() {
				open++
			}
		}
		metrics.SetOpenAlerts(open)
		rules, alerts = ruleStore, alertStore
		log.Printf("Using in-memory store (%d rules, %d alerts)", len(seedRules), len(seedAlerts))

		if cfg.RulesWatch && cfg.RulesPath != "" {
			go func() {
				err := ruleset.Watch(ctx, cfg.RulesPath, func(next []fraud.Rule) error {
					if err := ruleStore.ReplaceAll(ctx, next); err != nil {
						return err
					}
					bus.Publish(events.EventRulesReloaded, len(next))
					return nil
				})
				if err != nil {
					log.Printf("rule watcher stopped: %v", err)
				}
			}()
		}
	}

	engine := fraud.NewEngine(rules, alerts, bus, metrics)

	server := api.NewServer(engine, rules, alerts, bus, metrics, api.Options{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		RequestTimeout: cfg.RequestTimeout,
	})

	go func() {
		log.Printf("Fraud detection service running on port %s", cfg.Port)
		if err := server.Start(":" + cfg.Port); err != nil {
			log.Fatalf("api server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down")
}
