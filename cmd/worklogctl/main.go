// worklogctl administers the worklog reference data from the terminal. It
// drives the same dictionary synchronization store the UI uses: commands
// hydrate from the local cache, talk to the remote API, and leave the cache
// consistent with whatever the server answered.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/worklog-dictionaries/internal/apiclient"
	"github.com/spec-kit/worklog-dictionaries/internal/cache"
	"github.com/spec-kit/worklog-dictionaries/internal/config"
	"github.com/spec-kit/worklog-dictionaries/internal/dictionary"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
	"github.com/spec-kit/worklog-dictionaries/internal/observability"
	"github.com/spec-kit/worklog-dictionaries/internal/session"
)

const usage = `usage: worklogctl <command> [flags]

commands:
  login     -email -password      authenticate and store credentials
  logout                          clear stored credentials
  sync      [-force]              fetch all dictionaries from the server
  list      [catering|accommodation|teams|members]
  catering  add|set|rm            manage catering vendors
  lodging   add|set|rm            manage accommodation vendors
  team      add|rename            manage teams
  member    add|set|rm            manage team members
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(config.LoggerConfig{Level: getEnvDefault("LOG_LEVEL", "warn")})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	store, sess, client, closeCache := buildStack(cfg, logger)
	defer closeCache()

	sess.HydrateFromStorage(ctx)
	store.HydrateFromStorage(ctx)

	if err := run(ctx, os.Args[1], os.Args[2:], store, sess, client); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildStack(cfg *config.Config, logger *zap.Logger) (*dictionary.Store, *session.Store, *apiclient.Client, func()) {
	var (
		cacheStore cache.Store
		closer     = func() {}
	)
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		redisCache := cache.NewRedis(cfg.Redis, logger)
		cacheStore = redisCache
		closer = redisCache.Close
	case config.CacheBackendNone:
		// no durable storage in this context; the store degrades gracefully
	default:
		fileCache, err := cache.NewFile(cfg.Cache.Dir)
		if err != nil {
			logger.Warn("cache directory unavailable, running without persistence", zap.Error(err))
		} else {
			cacheStore = fileCache
		}
	}

	sess := session.New(cacheStore, logger)
	client := apiclient.New(cfg.API, sess, logger)
	store := dictionary.New(client, cacheStore, logger)
	return store, sess, client, closer
}

func run(ctx context.Context, command string, args []string, store *dictionary.Store, sess *session.Store, client *apiclient.Client) error {
	switch command {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		fs.Parse(args)
		if *email == "" || *password == "" {
			return fmt.Errorf("login requires -email and -password")
		}
		return client.Login(ctx, *email, *password)

	case "logout":
		sess.Clear(ctx)
		fmt.Println("logged out")
		return nil

	case "sync":
		fs := flag.NewFlagSet("sync", flag.ExitOnError)
		force := fs.Bool("force", false, "refetch even when the cache is loaded")
		fs.Parse(args)
		if err := store.FetchAll(ctx, *force); err != nil {
			return err
		}
		fmt.Printf("synced: %d catering, %d lodging, %d teams, %d members\n",
			len(store.CateringVendors()), len(store.AccommodationVendors()),
			len(store.Teams()), len(store.TeamMembers()))
		return nil

	case "list":
		return runList(ctx, args, store)

	case "catering":
		return runCatering(ctx, args, store)

	case "lodging":
		return runLodging(ctx, args, store)

	case "team":
		return runTeam(ctx, args, store)

	case "member":
		return runMember(ctx, args, store)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runList(ctx context.Context, args []string, store *dictionary.Store) error {
	if err := store.FetchAll(ctx, false); err != nil {
		return err
	}
	what := "members"
	if len(args) > 0 {
		what = args[0]
	}
	switch what {
	case "catering":
		for _, v := range store.CateringVendors() {
			fmt.Printf("%s\t%s\t%s\n", v.ID, v.TaxID, v.Name)
		}
	case "accommodation", "lodging":
		for _, v := range store.AccommodationVendors() {
			fmt.Printf("%s\t%s\t%s\n", v.ID, v.TaxID, v.Name)
		}
	case "teams":
		for _, t := range store.Teams() {
			fmt.Printf("%s\t%s\t(%d members)\n", t.ID, t.Name, len(t.Members))
		}
	case "members":
		for _, m := range store.TeamMembers() {
			team := "-"
			if m.TeamID != nil {
				team = *m.TeamID
			}
			fmt.Printf("%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Role, team)
		}
	default:
		return fmt.Errorf("unknown list target %q", what)
	}
	return nil
}

func runCatering(ctx context.Context, args []string, store *dictionary.Store) error {
	sub, fs, err := subcommand("catering", args)
	if err != nil {
		return err
	}
	id := fs.String("id", "", "vendor id")
	taxID := fs.String("tax", "", "tax id")
	name := fs.String("name", "", "vendor name")
	fs.Parse(args[1:])

	switch sub {
	case "add":
		created, err := store.CreateCateringVendor(ctx, domain.VendorPayload{TaxID: *taxID, Name: *name})
		if err != nil {
			return err
		}
		fmt.Println("created", created.ID)
		return nil
	case "set":
		updated, err := store.UpdateCateringVendor(ctx, *id, domain.VendorPayload{TaxID: *taxID, Name: *name})
		if err != nil {
			return err
		}
		fmt.Println("updated", updated.ID)
		return nil
	case "rm":
		return store.DeleteCateringVendor(ctx, *id)
	}
	return fmt.Errorf("unknown catering subcommand %q", sub)
}

func runLodging(ctx context.Context, args []string, store *dictionary.Store) error {
	sub, fs, err := subcommand("lodging", args)
	if err != nil {
		return err
	}
	id := fs.String("id", "", "vendor id")
	taxID := fs.String("tax", "", "tax id")
	name := fs.String("name", "", "vendor name")
	fs.Parse(args[1:])

	switch sub {
	case "add":
		created, err := store.CreateAccommodationVendor(ctx, domain.VendorPayload{TaxID: *taxID, Name: *name})
		if err != nil {
			return err
		}
		fmt.Println("created", created.ID)
		return nil
	case "set":
		updated, err := store.UpdateAccommodationVendor(ctx, *id, domain.VendorPayload{TaxID: *taxID, Name: *name})
		if err != nil {
			return err
		}
		fmt.Println("updated", updated.ID)
		return nil
	case "rm":
		return store.DeleteAccommodationVendor(ctx, *id)
	}
	return fmt.Errorf("unknown lodging subcommand %q", sub)
}

func runTeam(ctx context.Context, args []string, store *dictionary.Store) error {
	sub, fs, err := subcommand("team", args)
	if err != nil {
		return err
	}
	id := fs.String("id", "", "team id")
	name := fs.String("name", "", "team name")
	fs.Parse(args[1:])

	switch sub {
	case "add":
		created, err := store.CreateTeam(ctx, *name)
		if err != nil {
			return err
		}
		fmt.Println("created", created.ID)
		return nil
	case "rename":
		updated, err := store.UpdateTeam(ctx, *id, *name)
		if err != nil {
			return err
		}
		fmt.Println("renamed", updated.ID)
		return nil
	}
	return fmt.Errorf("unknown team subcommand %q", sub)
}

func runMember(ctx context.Context, args []string, store *dictionary.Store) error {
	sub, fs, err := subcommand("member", args)
	if err != nil {
		return err
	}
	id := fs.String("id", "", "member id")
	name := fs.String("name", "", "member name")
	role := fs.String("role", string(domain.MemberRoleWorker), "WORKER or SUPERVISOR")
	team := fs.String("team", "", "team id, empty for unassigned")
	fs.Parse(args[1:])

	var teamID *string
	if *team != "" {
		teamID = team
	}
	payload := domain.TeamMemberPayload{Name: *name, Role: domain.MemberRole(*role), TeamID: teamID}

	switch sub {
	case "add":
		created, err := store.CreateTeamMember(ctx, payload)
		if err != nil {
			return err
		}
		fmt.Println("created", created.ID)
		return nil
	case "set":
		updated, err := store.UpdateTeamMember(ctx, *id, payload)
		if err != nil {
			return err
		}
		fmt.Println("updated", updated.ID)
		return nil
	case "rm":
		return store.DeleteTeamMember(ctx, *id)
	}
	return fmt.Errorf("unknown member subcommand %q", sub)
}

func subcommand(parent string, args []string) (string, *flag.FlagSet, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%s requires a subcommand", parent)
	}
	return args[0], flag.NewFlagSet(parent+" "+args[0], flag.ExitOnError), nil
}

func getEnvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
