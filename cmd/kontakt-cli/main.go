package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-kontakt/pkg/app"
	"github.com/goliatone/go-kontakt/pkg/prefs"
	"github.com/goliatone/go-kontakt/pkg/schema"
	"github.com/goliatone/go-kontakt/pkg/store"
)

const usage = `usage: kontakt-cli [flags] <command> [args]

commands:
  export <template-id> <format> [output]   download an export (stdout if no output file)
  update <kontakt-id> <field> <value>      update one field of one contact
  create <template-file> <daten-file>      create a contact from a JSON value map
  delete <kontakt-id> [...]                delete contacts after confirmation
  import <template-file> <data-file> [...] upload files and finalize an import
  options                                  print the global selection value-lists
  suggestions                              print the attribute suggestion categories
`

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	baseURL := flag.String("base-url", "", "remote store base URL (overrides config)")
	timeout := flag.Duration("timeout", 0, "per-request timeout (overrides config)")
	prefsPath := flag.String("prefs", "", "preference database path (overrides config)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *prefsPath != "" {
		cfg.Prefs = *prefsPath
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
		defer logger.Sync()
	}

	opts := []app.Option{
		app.WithBaseURL(cfg.BaseURL),
		app.WithTimeout(cfg.Timeout),
		app.WithLogger(logger),
	}
	if cfg.Prefs != "" {
		prefStore, err := prefs.Open(cfg.Prefs)
		if err != nil {
			log.Fatalf("Failed to open preferences: %v", err)
		}
		defer prefStore.Close()
		opts = append(opts, app.WithPrefs(prefStore))
	}
	application := app.New(opts...)

	ctx := context.Background()
	if err := run(ctx, application, args[0], args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, application *app.App, command string, args []string) error {
	client, err := application.Client()
	if err != nil {
		return err
	}

	switch command {
	case "export":
		return runExport(ctx, client, args)
	case "update":
		return runUpdate(ctx, client, args)
	case "create":
		return runCreate(ctx, application, args)
	case "delete":
		return runDelete(ctx, application, args)
	case "import":
		return runImport(ctx, application, args)
	case "options":
		return runOptions(ctx, client)
	case "suggestions":
		return runSuggestions(ctx, client)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runExport(ctx context.Context, client *store.Client, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("export needs a template id and a format")
	}
	templateID, err := parseID(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if len(args) > 2 {
		f, err := os.Create(args[2])
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := client.Export(ctx, templateID, args[1], out); err != nil {
		return err
	}
	if len(args) > 2 {
		fmt.Printf("Export written to %s\n", args[2])
	}
	return nil
}

func runUpdate(ctx context.Context, client *store.Client, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("update needs a kontakt id, a field and a value")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := client.UpdateField(ctx, id, args[1], args[2]); err != nil {
		return err
	}
	fmt.Printf("Kontakt %d updated\n", id)
	return nil
}

func runCreate(ctx context.Context, application *app.App, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("create needs a template file and a daten file")
	}
	tpl, err := loadTemplate(args[0])
	if err != nil {
		return err
	}
	values, err := loadValues(args[1])
	if err != nil {
		return err
	}

	view, err := application.ListView()
	if err != nil {
		return err
	}
	view.SetActiveTemplate(tpl)
	entity, err := view.CreateEntity(ctx, values)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (id %d)\n", entity.DisplayName(), entity.ID)
	return nil
}

func runDelete(ctx context.Context, application *app.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("delete needs at least one kontakt id")
	}
	view, err := application.ListView()
	if err != nil {
		return err
	}

	tpl := schema.Template{ID: 1, Name: "Auswahl"}
	for _, raw := range args {
		id, err := parseID(raw)
		if err != nil {
			return err
		}
		tpl.Entities = append(tpl.Entities, schema.Entity{ID: id})
	}
	view.SetActiveTemplate(tpl)
	view.ToggleSelectAll()

	if err := view.BulkDelete(ctx); err != nil {
		return err
	}
	fmt.Printf("%d Kontakte gelöscht\n", len(args))
	return nil
}

func runImport(ctx context.Context, application *app.App, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("import needs a template file and at least one data file")
	}
	tpl, err := loadTemplate(args[0])
	if err != nil {
		return err
	}

	reconciler, err := application.Importer()
	if err != nil {
		return err
	}
	reconciler.Begin(tpl)

	var files []store.UploadFile
	var closers []*os.File
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	for _, path := range args[1:] {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening data file: %w", err)
		}
		closers = append(closers, f)
		files = append(files, store.UploadFile{Name: f.Name(), Reader: f})
	}

	if err := reconciler.Upload(ctx, files...); err != nil {
		return err
	}

	fmt.Printf("Headers: %v\n", reconciler.Headers())
	for property, header := range reconciler.Mappings() {
		fmt.Printf("  %s <- %s\n", property, header)
	}
	if unmapped := reconciler.UnmappedProperties(); len(unmapped) > 0 {
		fmt.Printf("Unmapped: %v\n", unmapped)
	}

	redirect, err := reconciler.Finalize(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Import finished: %s\n", redirect)
	return nil
}

func runOptions(ctx context.Context, client *store.Client) error {
	lists, err := client.SelectionOptions(ctx)
	if err != nil {
		return err
	}
	for _, list := range lists {
		fmt.Printf("%s: %v\n", list.Name, list.Items())
	}
	return nil
}

func runSuggestions(ctx context.Context, client *store.Client) error {
	categories, err := client.AttributeSuggestions(ctx)
	if err != nil {
		return err
	}
	for _, category := range categories {
		fmt.Printf("%s: %v\n", category.Name, category.Attributes)
	}
	return nil
}

func loadTemplate(path string) (schema.Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return schema.Template{}, fmt.Errorf("reading template file: %w", err)
	}
	var tpl schema.Template
	if err := json.Unmarshal(raw, &tpl); err != nil {
		return schema.Template{}, fmt.Errorf("parsing template file: %w", err)
	}
	return tpl, nil
}

func loadValues(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading daten file: %w", err)
	}
	var values map[string]string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parsing daten file: %w", err)
	}
	return values, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
