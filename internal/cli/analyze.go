package cli

import (
    "context"
    "fmt"
    "os"
    "sort"
    "strings"
    "time"

    "github.com/spf13/cobra"
    "github.com/spf13/pflag"
    "gopkg.in/yaml.v3"

    "github.com/mark3labs/spec2model/internal/relations"
    "github.com/mark3labs/spec2model/internal/resolve"
    genspec "github.com/mark3labs/spec2model/internal/spec"
)

// AnalyzeConfig captures all inputs that influence the analyze command after
// merging defaults, config file values, and CLI overrides.
type AnalyzeConfig struct {
    Input       string
    Format      string
    IncludeTags []string
    ExcludeTags []string
    ConfigPath  string
    Verbose     bool
}

func defaultAnalyzeConfig() AnalyzeConfig {
    return AnalyzeConfig{Format: "text"}
}

var analyzeRunner = runAnalyze

func newAnalyzeCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:   "analyze",
        Short: "Print the operation catalog and inferred relationships",
        Long: "Analyze an OpenAPI/Swagger document: catalog its operations per tag, resolve " +
            "body and response types, and report inferred entity relationships.",
        Example: strings.TrimSpace(`  spec2model analyze --input spec.yaml
  spec2model analyze --input https://example.com/openapi.json --format json`),
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, err := resolveAnalyzeConfig(cmd)
            if err != nil {
                return err
            }
            return analyzeRunner(cmd.Context(), cfg)
        },
    }

    flags := cmd.Flags()
    flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
    flags.String("format", "", "Output format (text|json); defaults to text")
    flags.StringSlice("include-tags", nil, "Only include operations with these tags")
    flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")

    return cmd
}

func resolveAnalyzeConfig(cmd *cobra.Command) (*AnalyzeConfig, error) {
    cfg := defaultAnalyzeConfig()

    configPath, err := cmd.Flags().GetString("config")
    if err != nil {
        return nil, err
    }
    configPath = strings.TrimSpace(configPath)
    if configPath != "" {
        cfg.ConfigPath = configPath
        if err := applyAnalyzeConfigFromFile(&cfg, configPath); err != nil {
            return nil, err
        }
    }

    if err := applyAnalyzeFlagOverrides(cmd.Flags(), &cfg); err != nil {
        return nil, err
    }

    cfg.normalize()
    if err := cfg.validate(); err != nil {
        return nil, err
    }

    return &cfg, nil
}

func applyAnalyzeFlagOverrides(flags *pflag.FlagSet, cfg *AnalyzeConfig) error {
    if flags.Changed("input") {
        value, err := flags.GetString("input")
        if err != nil {
            return err
        }
        cfg.Input = strings.TrimSpace(value)
    }
    if flags.Changed("format") {
        value, err := flags.GetString("format")
        if err != nil {
            return err
        }
        cfg.Format = strings.TrimSpace(value)
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
    if flags.Changed("verbose") {
        value, err := flags.GetBool("verbose")
        if err != nil {
            return err
        }
        cfg.Verbose = value
    }

    return nil
}

func (c *AnalyzeConfig) normalize() {
    c.Input = strings.TrimSpace(c.Input)
    c.Format = strings.ToLower(strings.TrimSpace(c.Format))
    c.IncludeTags = sanitizeTags(c.IncludeTags)
    c.ExcludeTags = sanitizeTags(c.ExcludeTags)
}

func (c *AnalyzeConfig) validate() error {
    if c.Input == "" {
        return newUsageError("analyze: --input is required (set via flag or config file)")
    }

    switch c.Format {
    case "", "text", "json":
        if c.Format == "" {
            c.Format = "text"
        }
    default:
        return newUsageError(fmt.Sprintf("analyze: unsupported --format %q (allowed: text, json)", c.Format))
    }

    overlap := intersect(c.IncludeTags, c.ExcludeTags)
    if len(overlap) > 0 {
        return newUsageError(fmt.Sprintf("analyze: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
    }

    return nil
}

func runAnalyze(ctx context.Context, cfg *AnalyzeConfig) error {
    logger := newLogger(cfg.Verbose)
    defer func() { _ = logger.Sync() }()

    doc, catalog, err := loadAndCatalog(ctx, logger, cfg.Input, cfg.IncludeTags, cfg.ExcludeTags)
    if err != nil {
        return err
    }

    if cfg.Format == "json" {
        model, err := relations.BuildExport(doc, catalog, time.Now())
        if err != nil {
            return fmt.Errorf("build export model: %w", err)
        }
        data, err := relations.MarshalExport(model)
        if err != nil {
            return fmt.Errorf("marshal export model: %w", err)
        }
        fmt.Fprintln(os.Stdout, string(data))
        return nil
    }

    rels, _ := relations.Infer(catalog, doc.Schemas)
    fmt.Fprint(os.Stdout, renderAnalysis(doc, catalog, rels))
    return nil
}

// renderAnalysis formats the text report: operations grouped per tag, then
// the relationship records, then the mutual pairs.
func renderAnalysis(doc *genspec.Document, catalog resolve.Catalog, rels []relations.Relationship) string {
    var b strings.Builder

    title := strings.TrimSpace(doc.Title)
    if title == "" {
        title = "API"
    }
    fmt.Fprintf(&b, "%s", title)
    if v := strings.TrimSpace(doc.Version); v != "" {
        fmt.Fprintf(&b, " (version %s)", v)
    }
    b.WriteString("\n\n")

    tags := make([]string, 0, len(catalog))
    for tag := range catalog {
        tags = append(tags, tag)
    }
    sort.Strings(tags)
    for _, tag := range tags {
        fmt.Fprintf(&b, "Tag %s", tag)
        if entity := resolve.EntityName(tag, doc.Schemas); entity != "" {
            fmt.Fprintf(&b, " (entity %s)", entity)
        }
        b.WriteString(":\n")
        for _, op := range catalog[tag] {
            fmt.Fprintf(&b, "  %-30s %s %s", op.Name, strings.ToUpper(op.Method), op.Path)
            if op.BodyType != "" && op.BodyType != resolve.TypeVoid {
                fmt.Fprintf(&b, " body=%s", op.BodyType)
            }
            if op.ResponseType != "" {
                fmt.Fprintf(&b, " -> %s", op.ResponseType)
            }
            if op.Multipart {
                b.WriteString(" [multipart]")
            }
            if op.BinaryResponse {
                b.WriteString(" [binary]")
            }
            b.WriteString("\n")
        }
        b.WriteString("\n")
    }

    fmt.Fprintf(&b, "Relationships (%d):\n", len(rels))
    if len(rels) == 0 {
        b.WriteString("  none detected\n")
        return b.String()
    }
    for _, rel := range rels {
        fmt.Fprintf(&b, "  %s %s %s [%s]", rel.SourceEntity, rel.Type, rel.TargetEntity, rel.Confidence)
        sources := make([]string, 0, len(rel.DetectedBy))
        for _, s := range rel.DetectedBy {
            sources = append(sources, string(s))
        }
        fmt.Fprintf(&b, " via %s\n", strings.Join(sources, ", "))
    }

    if pairs := relations.Mutual(rels); len(pairs) > 0 {
        b.WriteString("\nMutual pairs:\n")
        for _, pair := range pairs {
            fmt.Fprintf(&b, "  %s <-> %s\n", pair[0], pair[1])
        }
    }
    return b.String()
}

func applyAnalyzeConfigFromFile(cfg *AnalyzeConfig, path string) error {
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
        case "format":
            str, err := valueAsString(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.Format = str
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
        case "verbose":
            val, err := valueAsBool(value)
            if err != nil {
                return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
            }
            cfg.Verbose = val
        // Fields that only the export command consumes are tolerated so one
        // config file can serve both commands.
        case "out", "artifact", "summary", "dryrun", "force":
        default:
            return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
        }
    }

    return nil
}
