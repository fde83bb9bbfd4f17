// Command seed_demo loads a community snapshot into the database so a fresh
// environment has something to join: one community, its members, and an
// upcoming game. The snapshot lives in a JSON file next to the repo's other
// dev fixtures.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/mcdev12/matchday/go/internal/dbconfig"
)

type snapshot struct {
	Community struct {
		Name     string `json:"name"`
		Timezone string `json:"timezone"`
	} `json:"community"`
	Members []struct {
		UserID  string `json:"user_id"`
		IsAdmin bool   `json:"is_admin"`
	} `json:"members"`
	Game struct {
		Capacity         int    `json:"capacity"`
		WaitlistCapacity int    `json:"waitlist_capacity"`
		KickoffInDays    int    `json:"kickoff_in_days"`
		KickoffHour      int    `json:"kickoff_hour"`
		Timezone         string `json:"timezone"`
	} `json:"game"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	path := "db/fixtures/demo.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}

	db, err := sql.Open("postgres", dbconfig.NewConfigFromEnv().DSN())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	communityID := uuid.New()
	if _, err := db.Exec(
		`INSERT INTO communities (id, name, timezone) VALUES ($1, $2, $3)`,
		communityID, snap.Community.Name, snap.Community.Timezone,
	); err != nil {
		return fmt.Errorf("insert community: %w", err)
	}

	for _, m := range snap.Members {
		userID, err := uuid.Parse(m.UserID)
		if err != nil {
			userID = uuid.New()
		}
		if _, err := db.Exec(
			`INSERT INTO community_members (community_id, user_id, is_admin) VALUES ($1, $2, $3)`,
			communityID, userID, m.IsAdmin,
		); err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
	}

	loc, err := time.LoadLocation(snap.Game.Timezone)
	if err != nil {
		loc = time.UTC
	}
	kickoffDay := time.Now().In(loc).AddDate(0, 0, snap.Game.KickoffInDays)
	kickoff := time.Date(kickoffDay.Year(), kickoffDay.Month(), kickoffDay.Day(),
		snap.Game.KickoffHour, 0, 0, 0, loc)

	gameID := uuid.New()
	if _, err := db.Exec(
		`INSERT INTO games (id, community_id, capacity, waitlist_capacity, kickoff, confirmation_enabled)
		 VALUES ($1, $2, $3, $4, $5, TRUE)`,
		gameID, communityID, snap.Game.Capacity, snap.Game.WaitlistCapacity, kickoff,
	); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	fmt.Printf("seeded community %s with %d members, game %s kicking off %s\n",
		communityID, len(snap.Members), gameID, kickoff.Format(time.RFC3339))
	return nil
}
