package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fieldset/internal/demo"
	"github.com/vango-dev/fieldset/pkg/formdef"
	"github.com/vango-dev/fieldset/pkg/server"
	"github.com/vango-dev/fieldset/pkg/store"
)

func serveCmd() *cobra.Command {
	var (
		addr       string
		defPath    string
		schema     string
		dev        bool
		backend    string
		redisAddr  string
		maxClients int
	)

	cmd := &cobra.Command{
		Use:   "serve [definition.yaml]",
		Short: "Host a form definition over HTTP and WebSocket",
		Long: `Host a form definition as a live web form.

The server renders the form page, manages one form instance per
connected visitor, and pushes errors, values, and focus over a
WebSocket. Without a definition file it serves the built-in demo.

Examples:
  fieldset serve
  fieldset serve signup.yaml
  fieldset serve --addr=:3000 --store=redis
  fieldset serve api.yaml --schema=Signup
  fieldset serve signup.yaml --dev`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				defPath = args[0]
			}
			return runServe(addr, defPath, schema, dev, backend, redisAddr, maxClients)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().StringVarP(&defPath, "definition", "d", "", "Path to the definition file")
	cmd.Flags().StringVar(&schema, "schema", "", "Schema name when the definition is an OpenAPI document")
	cmd.Flags().BoolVar(&dev, "dev", false, "Watch the definition file and reload connected pages")
	cmd.Flags().StringVarP(&backend, "store", "s", "memory", "Submission store backend (memory or redis)")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address (defaults to REDIS_ADDR or localhost:6379)")
	cmd.Flags().IntVar(&maxClients, "max-sessions", 0, "Maximum concurrent sessions (0 = unlimited)")

	return cmd
}

func runServe(addr, defPath, schema string, dev bool, backend, redisAddr string, maxClients int) error {
	def, isDemo, err := loadDefinition(defPath, schema)
	if err != nil {
		return err
	}

	st, err := buildStore(backend, redisAddr)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := server.DefaultConfig()
	cfg.Addr = addr
	cfg.DevMode = dev
	cfg.MaxSessions = maxClients

	srv, err := server.New(def, cfg)
	if err != nil {
		return err
	}
	srv.SetStore(st, backend)

	if dev {
		if isDemo || schema != "" {
			warn("--dev needs a YAML definition file to watch")
		} else {
			srv.SetDefinitionFile(defPath)
		}
	}

	printBanner()
	fmt.Println()
	if isDemo {
		info("serving the built-in demo (pass a definition file to serve your own)")
	}
	info("form:   %s (%d fields)", def.Form, len(def.Fields))
	info("store:  %s", backend)
	info("listen: %s", listenURL(addr))
	fmt.Println()

	return srv.Run()
}

// loadDefinition resolves the definition to run: an OpenAPI document
// when schema is set, the YAML file at path, or the embedded demo when
// path is empty.
func loadDefinition(path, schema string) (def *formdef.Definition, isDemo bool, err error) {
	switch {
	case schema != "":
		if path == "" {
			return nil, false, fmt.Errorf("--schema requires a definition file")
		}
		def, err = formdef.FromOpenAPIFile(context.Background(), path, schema)
	case path != "":
		def, err = formdef.Load(path)
	default:
		def, err = demo.Definition()
		isDemo = true
	}
	return def, isDemo, err
}

// buildStore constructs the submission store for the named backend.
func buildStore(backend, redisAddr string) (store.Store, error) {
	switch backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		if redisAddr != "" {
			return store.NewRedisStore(store.RedisConfig{Addr: redisAddr})
		}
		return store.NewRedisStoreFromEnv()
	default:
		return nil, fmt.Errorf("unknown store backend %q (memory or redis)", backend)
	}
}

// listenURL makes a listen address printable as a URL; a bare ":8080"
// becomes http://localhost:8080.
func listenURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
