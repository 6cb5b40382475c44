package cli

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/spf13/cobra"
    "github.com/spf13/pflag"
    "go.uber.org/zap"
    "gopkg.in/yaml.v3"

    "github.com/mark3labs/spec2model/internal/export"
    "github.com/mark3labs/spec2model/internal/relations"
    "github.com/mark3labs/spec2model/internal/resolve"
    genspec "github.com/mark3labs/spec2model/internal/spec"
)

// ExportConfig captures all inputs that influence the export command after
// merging defaults, config file values, and CLI overrides.
type ExportConfig struct {
    Input       string
    Out         string
    Artifact    string
    IncludeTags []string
    ExcludeTags []string
    Summary     bool
    ConfigPath  string
    DryRun      bool
    Force       bool
    Verbose     bool
}

func defaultExportConfig() ExportConfig {
    return ExportConfig{Out: "."}
}

var exportRunner = runExport

func newExportCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:   "export",
        Short: "Write the resolved entity-relationship model as a JSON artifact",
        Long: "Export the entity-relationship model of an OpenAPI/Swagger document as a " +
            "schema-validated JSON artifact. Options can be provided via flags, config files, or defaults.",
        Example: strings.TrimSpace(`  spec2model export --input spec.yaml --out ./model
  spec2model --config config.yaml export --force --dry-run`),
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, err := resolveExportConfig(cmd)
            if err != nil {
                return err
            }
            return exportRunner(cmd.Context(), cfg)
        },
    }

    flags := cmd.Flags()
    flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
    flags.String("out", "", "Output directory for the artifacts; defaults to the current directory")
    flags.String("artifact", "", "Artifact file name; defaults to relationships.json")
    flags.StringSlice("include-tags", nil, "Only include operations with these tags")
    flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
    flags.Bool("summary", false, "Also write summary.md with the relationship report")
    flags.Bool("dry-run", false, "Preview planned outputs without writing files")
    flags.Bool("force", false, "Overwrite existing artifacts when set")

    return cmd
}

func resolveExportConfig(cmd *cobra.Command) (*ExportConfig, error) {
    cfg := defaultExportConfig()

    configPath, err := cmd.Flags().GetString("config")
    if err != nil {
        return nil, err
    }
    configPath = strings.TrimSpace(configPath)
    if configPath != "" {
        cfg.ConfigPath = configPath
        if err := applyExportConfigFromFile(&cfg, configPath); err != nil {
            return nil, err
        }
    }

    if err := applyExportFlagOverrides(cmd.Flags(), &cfg); err != nil {
        return nil, err
    }

    cfg.normalize()
    if err := cfg.validate(); err != nil {
        return nil, err
    }

    return &cfg, nil
}

func applyExportFlagOverrides(flags *pflag.FlagSet, cfg *ExportConfig) error {
    if flags.Changed("input") {
        value, err := flags.GetString("input")
        if err != nil {
            return err
        }
        cfg.Input = strings.TrimSpace(value)
    }
    if flags.Changed("out") {
        value, err := flags.GetString("out")
        if err != nil {
            return err
        }
        cfg.Out = strings.TrimSpace(value)
    }
    if flags.Changed("artifact") {
        value, err := flags.GetString("artifact")
        if err != nil {
            return err
        }
        cfg.Artifact = strings.TrimSpace(value)
    }
    if flags.Changed("include-tags") {
        value, err := flags.GetStringSlice("include-tags")
        if err != nil {
            return err
        }
        cfg.IncludeTags = sanitizeTags(value)
    }
    if flags.Changed("exclude-tags") {
        value, err := flags.GetStringSlice("exclude-tags")
        if err != nil {
            return err
        }
        cfg.ExcludeTags = sanitizeTags(value)
    }
    if flags.Changed("summary") {
        value, err := flags.GetBool("summary")
        if err != nil {
            return err
        }
        cfg.Summary = value
    }
    if flags.Changed("dry-run") {
        value, err := flags.GetBool("dry-run")
        if err != nil {
            return err
        }
        cfg.DryRun = value
    }
    if flags.Changed("force") {
        value, err := flags.GetBool("force")
        if err != nil {
            return err
        }
        cfg.Force = value
    }
    if flags.Changed("verbose") {
        value, err := flags.GetBool("verbose")
        if err != nil {
            return err
        }
        cfg.Verbose = value
    }

    return nil
}

func (c *ExportConfig) normalize() {
    c.Input = strings.TrimSpace(c.Input)
    c.Out = strings.TrimSpace(c.Out)
    c.Artifact = strings.TrimSpace(c.Artifact)
    c.IncludeTags = sanitizeTags(c.IncludeTags)
    c.ExcludeTags = sanitizeTags(c.ExcludeTags)
    if c.Out == "" {
        c.Out = "."
    }
}

func (c *ExportConfig) validate() error {
    if c.Input == "" {
        return newUsageError("export: --input is required (set via flag or config file)")
    }
    overlap := intersect(c.IncludeTags, c.ExcludeTags)
    if len(overlap) > 0 {
        return newUsageError(fmt.Sprintf("export: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
    }
    return nil
}

func runExport(ctx context.Context, cfg *ExportConfig) error {
    logger := newLogger(cfg.Verbose)
    defer func() { _ = logger.Sync() }()

    doc, catalog, err := loadAndCatalog(ctx, logger, cfg.Input, cfg.IncludeTags, cfg.ExcludeTags)
    if err != nil {
        return err
    }

    model, err := relations.BuildExport(doc, catalog, time.Now())
    if err != nil {
        return fmt.Errorf("build export model: %w", err)
    }
    logger.Info("model built",
        zap.Int("entities", model.Metadata.TotalEntities),
        zap.Int("relationships", model.Metadata.TotalRelationships))

    absOut := cfg.Out
    if ap, err := filepath.Abs(cfg.Out); err == nil {
        absOut = ap
    }

    res, err := export.Write(ctx, model, export.Options{
        OutDir:   cfg.Out,
        Artifact: cfg.Artifact,
        Summary:  cfg.Summary,
        Force:    cfg.Force,
        DryRun:   cfg.DryRun,
    })
    if err != nil {
        return wrapOutputError(err, absOut)
    }
    if cfg.DryRun {
        printPlan(absOut, len(res.Planned), func() []string {
            paths := make([]string, 0, len(res.Planned))
            for _, p := range res.Planned {
                paths = append(paths, p.RelPath)
            }
            return paths
        }())
    } else {
        fmt.Fprintf(os.Stdout, "Wrote %s to %s\n", res.Artifact, absOut)
    }
    return nil
}

// loadAndCatalog runs the shared front half of the pipeline: load and
// validate the document, ingest the schema table, build the operation
// catalog with tag filters applied.
func loadAndCatalog(ctx context.Context, logger *zap.Logger, input string, includeTags, excludeTags []string) (*genspec.Document, resolve.Catalog, error) {
    raw, err := genspec.Load(ctx, input)
    if err != nil {
        return nil, nil, mapSpecError(err)
    }
    doc := genspec.Ingest(raw)
    logger.Info("spec loaded",
        zap.String("title", doc.Title),
        zap.String("version", doc.Version),
        zap.Int("schemas", len(doc.Schemas)))

    catalog := resolve.BuildCatalog(doc,
        resolve.WithIncludeTags(includeTags),
        resolve.WithExcludeTags(excludeTags),
    )
    ops := 0
    for _, descriptors := range catalog {
        ops += len(descriptors)
    }
    logger.Info("catalog built", zap.Int("tags", len(catalog)), zap.Int("operations", ops))
    return doc, catalog, nil
}

func printPlan(outDir string, count int, relPaths []string) {
    fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
    for _, p := range relPaths {
        fmt.Fprintf(os.Stdout, "- %s\n", p)
    }
}

func applyExportConfigFromFile(cfg *ExportConfig, path string) error {
    data, err := os.ReadFile(path)
    if err != nil {
        return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
    }

    var raw map[string]any
    if err := yaml.Unmarshal(data, &raw); err != nil {
        return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
    }

    for key, value := range raw {
        switch normalizeKey(key) {
        case "input":
            str, err := valueAsString(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.Input = str
        case "out":
            str, err := valueAsString(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.Out = str
        case "artifact":
            str, err := valueAsString(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.Artifact = str
        case "includetags":
            list, err := valueAsStringSlice(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.IncludeTags = sanitizeTags(list)
        case "excludetags":
            list, err := valueAsStringSlice(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.ExcludeTags = sanitizeTags(list)
        case "summary":
            val, err := valueAsBool(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.Summary = val
        case "dryrun":
            val, err := valueAsBool(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.DryRun = val
        case "force":
            val, err := valueAsBool(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.Force = val
        case "verbose":
            val, err := valueAsBool(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.Verbose = val
        // Tolerated so one config file can serve both commands.
        case "format":
        default:
            return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
        }
    }

    return nil
}
