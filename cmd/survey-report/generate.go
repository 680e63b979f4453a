package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/internal/service"
	"github.com/noah-isme/rgb-survey-api/pkg/export"
)

var surveyExtensions = map[string]bool{".xlsx": true, ".xlsm": true, ".csv": true}

type writtenFile struct {
	Kind models.ArtifactKind
	Name string
	Path string
	Size int
}

type runResult struct {
	Input     string
	Dir       string
	Responses *models.ResponseSet
	Assembly  *service.Assembly
	Files     []writtenFile
	Err       error
}

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every report for one survey export or a glob of exports",
		Example: `  survey-report generate --input survey.xlsx --period "9月(第二回)" --template template.xlsx
  survey-report generate --input "exports/**/*.csv" --out reports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Survey export path or doublestar glob")
	flags.StringP("period", "p", "", "Survey period label (configured default when empty)")
	flags.StringP("out", "o", "reports", "Output directory")
	flags.StringP("template", "t", "", "Staff-meeting template workbook")
	flags.String("pdf-font", "", "TrueType font for the competency PDF (skipped when empty)")
	_ = cmd.MarkFlagRequired("input")
	for _, name := range []string{"input", "period", "out", "template", "pdf-font"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, v *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadSurvey(v)
	if err != nil {
		return err
	}

	period := strings.TrimSpace(v.GetString("period"))
	if period == "" {
		period = cfg.DefaultPeriod
	}
	if !cfg.HasPeriod(period) {
		return fmt.Errorf("unknown survey period %q (configured: %s)", period, strings.Join(cfg.Periods, ", "))
	}

	inputs, err := resolveInputs(v.GetString("input"))
	if err != nil {
		return err
	}

	logr := newLogger(v)
	defer logr.Sync() //nolint:errcheck

	gen := service.NewGenerationService(cfg, nil, nil, service.GenerationConfig{
		TemplatePath: v.GetString("template"),
	}, nil, logr, export.NewCSVExporter(true), export.NewPDFExporter(v.GetString("pdf-font")))

	out := v.GetString("out")
	dirs := outputDirs(out, inputs)
	st := newPrintStyles()
	w := cmd.OutOrStdout()

	failed := 0
	for i, input := range inputs {
		res := generateOne(ctx, gen, cfg, input, period, dirs[i])
		if res.Err != nil {
			failed++
			logr.Sugar().Warnw("survey report failed", "input", input, "error", res.Err)
		}
		printRun(w, st, period, res)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

func generateOne(ctx context.Context, gen *service.GenerationService, cfg *models.SurveyConfig, input, period, dir string) runResult {
	res := runResult{Input: input, Dir: dir}

	f, err := os.Open(input)
	if err != nil {
		res.Err = err
		return res
	}
	res.Responses, err = service.ReadResponses(filepath.Base(input), f, cfg)
	f.Close()
	if err != nil {
		res.Err = err
		return res
	}

	res.Assembly, err = gen.Assemble(ctx, res.Responses, period)
	if err != nil {
		res.Err = err
		return res
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		res.Err = fmt.Errorf("create output dir: %w", err)
		return res
	}
	for _, artifact := range res.Assembly.Artifacts {
		name := service.SanitizeFilename(artifact.Filename)
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, artifact.Data, 0o644); err != nil {
			res.Err = fmt.Errorf("write %s: %w", name, err)
			return res
		}
		res.Files = append(res.Files, writtenFile{Kind: artifact.Kind, Name: name, Path: target, Size: len(artifact.Data)})
	}
	return res
}

// resolveInputs expands a glob into supported survey exports in lexical order. A plain path
// is returned as-is so a missing file surfaces as an open error.
func resolveInputs(pattern string) ([]string, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, fmt.Errorf("--input is required")
	}
	if !strings.ContainsAny(pattern, "*?[{") {
		return []string{pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", pattern, err)
	}
	inputs := matches[:0]
	for _, m := range matches {
		if surveyExtensions[strings.ToLower(filepath.Ext(m))] {
			inputs = append(inputs, m)
		}
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no survey exports match %q", pattern)
	}
	sort.Strings(inputs)
	return inputs, nil
}

// outputDirs gives each input its own subdirectory in batch mode, named after the file.
func outputDirs(out string, inputs []string) []string {
	dirs := make([]string, len(inputs))
	if len(inputs) == 1 {
		dirs[0] = out
		return dirs
	}
	seen := make(map[string]int, len(inputs))
	for i, input := range inputs {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		seen[base]++
		if n := seen[base]; n > 1 {
			base += "-" + strconv.Itoa(n)
		}
		dirs[i] = filepath.Join(out, service.SanitizeFilename(base))
	}
	return dirs
}
