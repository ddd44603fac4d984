package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/InternBridge/internship-service/internal/config"
	"github.com/InternBridge/internship-service/internal/identity"
	"github.com/InternBridge/internship-service/internal/utils"
)

// listusers pages through the identity provider's accounts, for checking what
// the reconciler would see. It never touches the local directory.
func main() {
	page := flag.Int("page", 1, "page number, starting at 1")
	pageSize := flag.Int("page-size", 50, "accounts per page")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	provider := identity.NewCasdoorProvider(cfg.Casdoor, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	users, total, err := provider.ListUsers(ctx, *page, *pageSize)
	if err != nil {
		log.Fatalf("Failed to list provider users: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUBJECT\tEMAIL\tVERIFIED\tNAME")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", u.SubjectID, u.Email, u.EmailVerified, u.DisplayName)
	}
	w.Flush()

	fmt.Printf("\npage %d, %d of %d accounts\n", *page, len(users), total)
}
