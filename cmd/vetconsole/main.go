package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"vet-console/internal/adapters/remote"
	"vet-console/internal/domain/clinic"
	"vet-console/internal/domain/entity"
	"vet-console/internal/domain/screen"
	"vet-console/internal/middleware"
	"vet-console/internal/platform/config"
	"vet-console/internal/platform/logger"
	"vet-console/internal/router"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	if err := newRootCommand().Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "vetconsole",
		Usage: "Vet clinic admin console: server and one-shot screen commands",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Usage: "extra .env file to load"},
			&cli.StringFlag{Name: "api", Usage: "base URL of the clinic REST service (overrides VET_API_BASE_URL)"},
			&cli.DurationFlag{Name: "timeout", Usage: "per-call timeout for the REST service, 0 = none (overrides CONSOLE_HTTP_TIMEOUT)"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			kindsCommand(),
			listCommand(),
			searchCommand(),
			deleteCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the console HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "listen port (overrides PORT)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("port") {
				cfg.Port = c.String("port")
			}
			return runServer(ctx, cfg)
		},
	}
}

func kindsCommand() *cli.Command {
	return &cli.Command{
		Name:  "kinds",
		Usage: "List registered entity kinds and their searches",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: func(_ context.Context, c *cli.Command) error {
			reg, err := clinic.NewRegistry()
			if err != nil {
				return err
			}
			schemas := make([]entity.Schema, 0, len(reg.Kinds()))
			for _, k := range reg.Kinds() {
				s, _ := reg.Get(k)
				schemas = append(schemas, s)
			}
			if c.Bool("json") {
				return printJSON(schemas)
			}
			printKinds(schemas)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "Load a screen and print its rows",
		ArgsUsage: "<kind>",
		Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: func(ctx context.Context, c *cli.Command) error {
			sc, err := openScreen(ctx, c)
			if err != nil {
				return err
			}
			return printScreen(c, sc)
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Load a screen and apply a search",
		ArgsUsage: "<kind> <variant>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "search parameter key=value (repeatable)"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			variant := strings.TrimSpace(c.Args().Get(1))
			if variant == "" {
				return errors.New("usage: vetconsole search <kind> <variant> --param key=value")
			}
			params, err := parseParams(c.StringSlice("param"))
			if err != nil {
				return err
			}

			sc, err := openScreen(ctx, c)
			if err != nil {
				return err
			}
			if err := sc.Search(ctx, variant, params); err != nil {
				printNotifications(sc.Notifications())
				return err
			}
			return printScreen(c, sc)
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a row by id",
		ArgsUsage: "<kind> <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := strings.TrimSpace(c.Args().Get(1))
			if id == "" {
				return errors.New("usage: vetconsole delete <kind> <id>")
			}
			sc, err := openScreen(ctx, c)
			if err != nil {
				return err
			}
			err = sc.Delete(ctx, id)
			printNotifications(sc.Notifications())
			return err
		},
	}
}

func loadConfig(c *cli.Command) (config.Config, error) {
	var files []string
	if f := strings.TrimSpace(c.String("env-file")); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}
	if c.IsSet("api") {
		cfg.APIBaseURL = strings.TrimRight(c.String("api"), "/")
	}
	if c.IsSet("timeout") {
		cfg.HTTPTimeout = c.Duration("timeout")
	}
	return cfg, nil
}

func buildConsole(cfg config.Config, log logger.Logger) (*screen.Console, error) {
	reg, err := clinic.NewRegistry()
	if err != nil {
		return nil, err
	}
	client, err := remote.NewClient(remote.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
	}, reg, log)
	if err != nil {
		return nil, err
	}
	return screen.NewConsole(screen.Options{
		Client:            client,
		Registry:          reg,
		Logger:            log,
		NotificationLimit: cfg.NotificationLimit,
	})
}

// openScreen arma la pantalla del kind pedido y la carga.
func openScreen(ctx context.Context, c *cli.Command) (*screen.Screen, error) {
	kind := strings.TrimSpace(c.Args().First())
	if kind == "" {
		return nil, errors.New("missing <kind>; see `vetconsole kinds`")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	// Los comandos one-shot solo muestran warnings para no ensuciar la salida.
	cfg.Log.Output = os.Stderr
	if cfg.Log.Level < logger.Warn {
		cfg.Log.Level = logger.Warn
	}

	console, err := buildConsole(cfg, logger.New(cfg.Log))
	if err != nil {
		return nil, err
	}
	sc, err := console.Screen(entity.Kind(kind))
	if err != nil {
		return nil, err
	}
	if err := sc.Load(ctx); err != nil {
		printNotifications(sc.Notifications())
		return nil, err
	}
	return sc, nil
}

func runServer(ctx context.Context, cfg config.Config) error {
	log := logger.New(cfg.Log)

	console, err := buildConsole(cfg, log)
	if err != nil {
		return err
	}

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	defer limiter.Close()

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			Console: console,
			Logger:  log,
			Limiter: limiter,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "api": cfg.APIBaseURL})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down", nil)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseParams(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, p := range raw {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}
