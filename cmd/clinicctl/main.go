// Command clinicctl runs administrative operations against the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-booking/internal/bootstrap"
	"github.com/spec-kit/clinic-booking/internal/config"
	"github.com/spec-kit/clinic-booking/internal/observability"
	"github.com/spec-kit/clinic-booking/internal/service"
)

const usage = `usage: clinicctl [-timeout 30s] <command> [args]

commands:
  seed            insert the reference treatments and dentists (refused when already present)
  seed -force     insert them even if records exist; duplicates every entry
  attend <id>     mark an appointment as attended
  delete <id>     permanently remove an appointment
`

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline for the command")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	app, err := bootstrap.New(ctx, *cfg, logger, bootstrap.Options{})
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer app.Close()

	if err := run(ctx, app, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "clinicctl: %v\n", err)
		app.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, app *bootstrap.App, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "seed":
		fs := flag.NewFlagSet("seed", flag.ContinueOnError)
		force := fs.Bool("force", false, "seed even when the catalog has records")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		var (
			res service.SeedResult
			err error
		)
		if *force {
			res, err = service.NewSeeder(app.Store.Catalog, app.Dispatcher).Seed(ctx)
		} else {
			res, err = app.Booking.SeedCatalog(ctx)
		}
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d treatments and %d dentists\n", res.Treatments, res.Dentists)
		return nil

	case "attend", "delete":
		if len(rest) != 1 {
			return fmt.Errorf("%s takes exactly one appointment id", cmd)
		}
		id := rest[0]
		var err error
		if cmd == "attend" {
			err = app.Booking.MarkAttended(ctx, id)
		} else {
			err = app.Booking.Delete(ctx, id)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: ok\n", cmd, id)
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}
