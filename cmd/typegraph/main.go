package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/hanpama/typegraph/internal/check"
	"github.com/hanpama/typegraph/internal/config"
	"github.com/hanpama/typegraph/internal/engine"
	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/logging"
	"github.com/hanpama/typegraph/internal/metrics"
	"github.com/hanpama/typegraph/internal/otel"
	"github.com/hanpama/typegraph/internal/sdl"
	"github.com/hanpama/typegraph/internal/strategy"
)

const rootUsage = `typegraph — abstract type resolution engine & tools

USAGE:
  typegraph <command> [flags]

COMMANDS:
  check            Validate SDL schemas against the strategy configuration
  resolve          Resolve a JSON value against an abstract type
  help             Show help for any command
`

const checkUsage = `check FLAGS:
  -schema.dir <dir>        SDL schema root (default: .)
  -config.file <file>      YAML configuration file
  -check.permissive        Downgrade coverage gaps to warnings
  (Prints every diagnostic; exits non-zero when errors are found)
`

const resolveUsage = `resolve FLAGS:
  -schema.dir <dir>        SDL schema root (default: .)
  -type <name>             Abstract type to resolve against (required)
  -value.file <file>       JSON value file (default: stdin)
  -config.file <file>      YAML configuration file
  -otel.endpoint <addr>    OTLP collector endpoint
  -metrics.addr <addr>     Serve Prometheus metrics on this address
  (Without a config file the typename field strategy is used, so the
  value should carry a "__typename" key naming its concrete type)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("typegraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		// print usage on parse error
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "check":
		return cmdCheck(cmdArgs)
	case "resolve":
		return cmdResolve(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "check":
		fmt.Print(checkUsage)
	case "resolve":
		fmt.Print(resolveUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// schemaDir prefers the flag when given and falls back to the config file.
func schemaDir(flagDir string, cfg *config.Config) string {
	if flagDir == "." && cfg.Schema.Dir != "" {
		return cfg.Schema.Dir
	}
	return flagDir
}

func cmdCheck(args []string) error {
	dir := "."
	configFile := ""
	permissive := false

	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&dir, "schema.dir", dir, "SDL schema root")
	fs.StringVar(&configFile, "config.file", configFile, "YAML configuration file")
	fs.BoolVar(&permissive, "check.permissive", permissive, "Downgrade coverage gaps to warnings")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkUsage)
		return err
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	b, err := sdl.LoadDir(context.Background(), schemaDir(dir, cfg))
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}
	reg, err := b.Freeze()
	if err != nil {
		return fmt.Errorf("freeze registry: %w", err)
	}

	mode := check.ModeStrict
	if permissive || cfg.CheckMode == "permissive" {
		mode = check.ModePermissive
	}
	diags := check.Run(reg, strategy.Configure(cfg.StrategyOptions()...), mode)
	for _, d := range diags {
		printDiagnostic(os.Stdout, d)
	}
	fmt.Printf("checked %d abstract types: %d diagnostics\n", len(reg.AbstractTypes()), len(diags))

	if verrs := check.Errors(diags); verrs != nil {
		return fmt.Errorf("check failed with %d error(s)", len(verrs))
	}
	return nil
}

func printDiagnostic(w io.Writer, d *check.Diagnostic) {
	loc := d.AbstractType
	if d.Variant != "" {
		loc += "." + d.Variant
	}
	line := fmt.Sprintf("%-5s %s: %s", d.Severity, loc, d.Message)
	if d.Hint != "" {
		line += " (hint: " + d.Hint + ")"
	}
	fmt.Fprintln(w, line)
}

func cmdResolve(args []string) error {
	dir := "."
	typeName := ""
	valueFile := ""
	configFile := ""
	otelEndpoint := ""
	metricsAddr := ""

	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&dir, "schema.dir", dir, "SDL schema root")
	fs.StringVar(&typeName, "type", typeName, "Abstract type to resolve against")
	fs.StringVar(&valueFile, "value.file", valueFile, "JSON value file")
	fs.StringVar(&configFile, "config.file", configFile, "YAML configuration file")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&metricsAddr, "metrics.addr", metricsAddr, "Prometheus metrics address")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, resolveUsage)
		return err
	}
	if typeName == "" {
		fmt.Fprint(os.Stderr, resolveUsage)
		return fmt.Errorf("-type is required")
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	if configFile == "" {
		// A bare JSON value carries no predicates or hooks, so the
		// discriminant is the only strategy that can classify it.
		enabled := true
		cfg.Strategy.TypenameField = &enabled
	}
	if otelEndpoint != "" {
		cfg.Telemetry.OTELEndpoint = otelEndpoint
	}
	if metricsAddr != "" {
		cfg.Telemetry.MetricsAddr = metricsAddr
	}

	eventbus.Use(eventbus.New())
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	defer logging.Attach(logger)()

	shutdown, err := otel.Setup(cfg.Telemetry.OTELEndpoint, "typegraph")
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if cfg.Telemetry.MetricsAddr != "" {
		defer metrics.Attach(metrics.New())()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.Telemetry.MetricsAddr, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	value, err := readValue(valueFile)
	if err != nil {
		return err
	}

	b, err := sdl.LoadDir(context.Background(), schemaDir(dir, cfg))
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}
	eng, err := engine.Build(b, cfg.EngineOptions()...)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	res, err := eng.Resolve(context.Background(), typeName, value)
	if err != nil {
		return err
	}
	fmt.Println(res.Variant)
	return nil
}

func readValue(path string) (any, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read value: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse value: %w", err)
	}
	return v, nil
}
