// Command createadmin adds an administrator account.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"portfolio/internal/config"
	"portfolio/internal/db"
	"portfolio/internal/store"
)

func main() {
	var (
		email    = flag.String("email", "", "login email")
		username = flag.String("username", "", "display name")
		password = flag.String("password", "", "password")
	)
	flag.Parse()

	if strings.TrimSpace(*email) == "" || strings.TrimSpace(*username) == "" || *password == "" {
		flag.Usage()
		log.Fatal("email, username and password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	dbc, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbc.Close()
	if err := db.Migrate(dbc); err != nil {
		log.Fatal(err)
	}

	u, err := store.New(dbc).Users.Create(context.Background(), strings.TrimSpace(*email), strings.TrimSpace(*username), *password)
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("created admin %s (id %d)", u.Username, u.ID)
}
