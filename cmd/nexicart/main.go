// Command nexicart is the store's admin CLI. It bootstraps the first
// administrator account and loads demo catalog data.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Amit9DeV/NexiCart-sub001/internal/admin"
	"github.com/Amit9DeV/NexiCart-sub001/internal/config"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
)

const dbTimeout = 15 * time.Second

// store is the slice of persistence the CLI needs.
type store struct {
	Users    admin.UserStore
	Products admin.ProductStore
	Close    func(context.Context) error
}

type storeOpener func(ctx context.Context, cfg config.MongoConfig) (*store, error)

type app struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.MongoConfig, error)
	open       storeOpener
}

func main() {
	a := &app{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		loadConfig: config.LoadMongo,
		open:       openMongoStore,
	}
	os.Exit(a.run(os.Args[1:]))
}

// run executes the CLI and returns the process exit code.
func (a *app) run(args []string) int {
	root := &cobra.Command{
		Use:           "nexicart",
		Short:         "NexiCart store administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(a.createAdminCmd(), a.seedCmd())
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// connect loads MONGODB_URI and MONGODB_DATABASE and opens the store.
func (a *app) connect(ctx context.Context) (*store, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	s, err := a.open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openMongoStore(ctx context.Context, cfg config.MongoConfig) (*store, error) {
	db, err := repository.ConnectMongoDB(ctx, cfg.URI, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := repository.RunMigrations(db); err != nil {
		_ = db.Client().Disconnect(ctx)
		return nil, err
	}
	return &store{
		Users:    repository.NewUserRepository(db),
		Products: repository.NewProductRepository(db),
		Close:    db.Client().Disconnect,
	}, nil
}

func closeStore(s *store, w io.Writer) {
	if s.Close == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		fmt.Fprintf(w, "warning: close database: %v\n", err)
	}
}
