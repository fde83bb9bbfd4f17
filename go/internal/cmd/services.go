package main

import (
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/draft"
	"github.com/mcdev12/matchday/go/internal/games"
	"github.com/mcdev12/matchday/go/internal/gateway"
	"github.com/mcdev12/matchday/go/internal/outbox"
	"github.com/mcdev12/matchday/go/internal/queue"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Games   *games.App
	Queue   *queue.App
	Draft   *draft.App
	Handler *gateway.Handler
	Hub     *gateway.Hub
	Worker  *outbox.Worker
	NATS    *nats.Conn
}

func setupServices(database *sql.DB, cfg Config) (*Services, error) {
	// Store layer → repository layer → app layer → gateway, all sharing
	// one clock so time-gated checks line up across packages.
	clock := clockwork.NewRealClock()

	defaults, err := loadDefaults(cfg.DefaultsPath)
	if err != nil {
		return nil, err
	}

	gamesStore := games.NewStore(database)
	gamesRepo := games.NewRepository(database)
	gamesApp := games.NewApp(gamesRepo, defaults, log.With().Str("component", "games").Logger())

	draftStore := draft.NewStore(gamesStore)
	draftApp := draft.NewApp(draftStore, clock, log.With().Str("component", "draft").Logger())

	// Roster changes under an active draft reset it through this hook.
	queueStore := queue.NewStore(gamesStore, draftApp.ResetTx)
	queueApp := queue.NewApp(queueStore, clock, log.With().Str("component", "queue").Logger())

	hub := gateway.NewHub(gateway.DefaultHubConfig(), log.With().Str("component", "hub").Logger())

	var publisher outbox.Publisher
	var nc *nats.Conn
	if cfg.NatsURL != "" {
		nc, err = nats.Connect(cfg.NatsURL, nats.Name("matchday"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NatsURL, err)
		}
		publisher = outbox.NewNATSPublisher(nc, cfg.SubjectPrefix)
		if _, err := hub.SubscribeBus(nc, cfg.SubjectPrefix); err != nil {
			nc.Close()
			return nil, err
		}
	} else {
		log.Warn().Msg("NATS_URL not set, events will be logged instead of published")
		publisher = outbox.NewLogPublisher(log.With().Str("component", "publisher").Logger())
	}

	worker := outbox.NewWorker(database, publisher, outbox.DefaultConfig(), clock,
		log.With().Str("component", "outbox").Logger())

	handler := gateway.NewHandler(gamesApp, queueApp, draftApp, hub,
		log.With().Str("component", "gateway").Logger())

	return &Services{
		Games:   gamesApp,
		Queue:   queueApp,
		Draft:   draftApp,
		Handler: handler,
		Hub:     hub,
		Worker:  worker,
		NATS:    nc,
	}, nil
}
