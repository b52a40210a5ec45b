// Command secretsctl performs operator tasks against the secrets database.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"secrets/internal/adapter/postgres"
	"secrets/internal/app"
	"secrets/internal/config"
	"secrets/internal/logging"

	"golang.org/x/term"
)

const usage = `usage: secretsctl <command> [args]

commands:
  migrate                 apply pending schema migrations
  create-account <email>  create a password account (password read from the terminal or stdin)
  purge-sessions          delete expired sessions
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "secretsctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("STORE=%s has nothing to administer", cfg.Store)
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	// Open applies migrations, so every command starts from the current schema.
	db, err := postgres.Open(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer func() { _ = db.Close() }()

	sessions := app.NewSessionManager(postgres.NewSessionRepo(db), cfg.SessionTTL, cfg.StoreTimeout, log)

	switch cmd {
	case "migrate":
		n, err := db.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("schema up to date (%d accounts)\n", n)
		return nil

	case "create-account":
		if len(args) != 1 {
			return errors.New("create-account takes exactly one email")
		}
		password, err := readPassword(os.Stdin)
		if err != nil {
			return err
		}
		hasher := app.NewPasswordHasher(cfg.BcryptCost, cfg.HashWorkers, cfg.HashTimeout)
		authSvc := app.NewAuthService(db, hasher, sessions, cfg.StoreTimeout, log)
		acct, err := authSvc.CreateAccount(ctx, args[0], password)
		if err != nil {
			return fmt.Errorf("%s (%w)", app.UserMessage(err), err)
		}
		fmt.Printf("created %s\n", acct.Identity)
		return nil

	case "purge-sessions":
		n, err := sessions.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("purged %d expired sessions\n", n)
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// readPassword prompts without echo on a terminal and otherwise reads one
// line from in, so the command also works in scripts.
func readPassword(in *os.File) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
