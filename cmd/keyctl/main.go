package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"imagecraft/internal/apikey"
	"imagecraft/internal/infra"
)

const usage = `usage: keyctl <command> [flags]

commands:
  migrate                          create the api_keys table
  issue -device ID [-name NAME]    mint a key and print it once
  list -device ID [-limit N]       list a device's keys
  disable -prefix PREFIX           disable keys with the given prefix
  rate-limit -prefix PREFIX -n N   set the per-minute allowance
`

// keyStore is the part of apikey.Repository the CLI drives.
type keyStore interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, deviceID, name string) (apikey.Issued, error)
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]apikey.Record, error)
	Disable(ctx context.Context, prefix string) (int64, error)
	SetRateLimit(ctx context.Context, prefix string, perMinute int) (int64, error)
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	pepper := os.Getenv("API_KEY_PEPPER")
	if dbURL == "" || pepper == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL and API_KEY_PEPPER are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "keyctl").Logger()
	limit, _ := strconv.Atoi(os.Getenv("DEFAULT_KEY_RATE_LIMIT"))
	repo := apikey.NewRepository(infra.NewSQLRunner(pool, logger), apikey.NewHasher(pepper), limit)

	code := run(ctx, repo, os.Args[1:], os.Stdout, os.Stderr)
	pool.Close()
	os.Exit(code)
}

func run(ctx context.Context, store keyStore, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	device := fs.String("device", "", "device id")
	name := fs.String("name", "", "key label")
	prefix := fs.String("prefix", "", "key prefix")
	n := fs.Int("n", 0, "requests per minute")
	limit := fs.Int("limit", 20, "maximum rows")
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	switch cmd {
	case "migrate":
		if err := store.Migrate(ctx); err != nil {
			fmt.Fprintf(stderr, "migrate failed: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "api_keys table ready")
	case "issue":
		issued, err := store.Create(ctx, *device, *name)
		if err != nil {
			fmt.Fprintf(stderr, "issue failed: %v\n", err)
			return 1
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"apiKey": issued.APIKey, "prefix": issued.Prefix, "created_at": issued.CreatedAt})
	case "list":
		records, err := store.ListByDevice(ctx, *device, *limit)
		if err != nil {
			fmt.Fprintf(stderr, "list failed: %v\n", err)
			return 1
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PREFIX\tNAME\tENABLED\tLIMIT/MIN\tCREATED")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%s\n", r.Prefix, r.Name, r.Enabled, r.RateLimitPerMinute, r.CreatedAt.UTC().Format(time.RFC3339))
		}
		_ = tw.Flush()
	case "disable":
		affected, err := store.Disable(ctx, *prefix)
		if err != nil {
			fmt.Fprintf(stderr, "disable failed: %v\n", err)
			return 1
		}
		if affected == 0 {
			fmt.Fprintf(stderr, "no key with prefix %q\n", *prefix)
			return 1
		}
		fmt.Fprintf(stdout, "disabled %d key(s)\n", affected)
	case "rate-limit":
		affected, err := store.SetRateLimit(ctx, *prefix, *n)
		if err != nil {
			fmt.Fprintf(stderr, "rate-limit failed: %v\n", err)
			return 1
		}
		if affected == 0 {
			fmt.Fprintf(stderr, "no key with prefix %q\n", *prefix)
			return 1
		}
		fmt.Fprintf(stdout, "updated %d key(s) to %d/min\n", affected, *n)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
	return 0
}
