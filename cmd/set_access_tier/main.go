package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/db"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/data/repos"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/entitlement"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/dbctx"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
)

// set_access_tier grants or revokes paid access for one subject. It stands in
// for the billing webhook in local and staging environments.
func main() {
	var userArg, tierArg, source string
	var ttl time.Duration
	var show bool
	flag.StringVar(&userArg, "user", "", "subject user id (uuid)")
	flag.StringVar(&tierArg, "tier", "", "access tier: free | paid")
	flag.StringVar(&source, "source", "cli", "where the grant came from")
	flag.DurationVar(&ttl, "ttl", 0, "expire the grant after this long (0 = never)")
	flag.BoolVar(&show, "show", false, "print the current grant and exit")
	flag.Parse()

	userID, err := uuid.Parse(strings.TrimSpace(userArg))
	if err != nil || userID == uuid.Nil {
		fmt.Println("-user must be a valid uuid")
		os.Exit(2)
	}

	log, err := logger.New(envOr("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	gdb, err := db.Open(log, db.ConfigFromEnv())
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		log.Error("automigrate", "error", err)
		os.Exit(1)
	}
	access := repos.NewUserAccessRepo(gdb, log)
	dbc := dbctx.Context{Ctx: context.Background()}

	if show {
		row, err := access.Get(dbc, userID)
		if err != nil {
			log.Error("load access", "error", err)
			os.Exit(1)
		}
		if row == nil {
			fmt.Printf("%s: %s (no grant)\n", userID, entitlement.TierFree)
			return
		}
		fmt.Printf("%s: %s source=%s expires_at=%v\n", userID, row.Tier, row.Source, row.ExpiresAt)
		return
	}

	tier := strings.ToLower(strings.TrimSpace(tierArg))
	if tier != string(entitlement.TierFree) && tier != string(entitlement.TierPaid) {
		fmt.Println("-tier must be free or paid")
		os.Exit(2)
	}
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().UTC().Add(ttl)
		expiresAt = &t
	}
	if err := access.Upsert(dbc, userID, tier, source, expiresAt); err != nil {
		log.Error("set access tier", "error", err)
		os.Exit(1)
	}
	fmt.Printf("%s: tier set to %s\n", userID, tier)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
