package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mapomagpie/lottr/internal/batcher"
	"github.com/mapomagpie/lottr/internal/cache"
	"github.com/mapomagpie/lottr/internal/config"
	"github.com/mapomagpie/lottr/internal/extractor"
	"github.com/mapomagpie/lottr/internal/formatter"
	"github.com/mapomagpie/lottr/internal/logging"
	"github.com/mapomagpie/lottr/internal/orchestrator"
	"github.com/mapomagpie/lottr/internal/progress"
	"github.com/mapomagpie/lottr/internal/rewriter"
	"github.com/mapomagpie/lottr/internal/store"
	"github.com/mapomagpie/lottr/internal/texture"
	"github.com/mapomagpie/lottr/internal/tokenizer"
	"github.com/mapomagpie/lottr/internal/translator"
)

// poolAdapter lets a *translator.Pool satisfy orchestrator.Pool: Go
// interfaces aren't covariant on return type, so NextClient's concrete
// *translator.Client result needs wrapping as orchestrator.Client.
type poolAdapter struct{ pool *translator.Pool }

func (a poolAdapter) NextClient() orchestrator.Client { return a.pool.NextClient() }

func runJob(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logging.FromContext(cmd.Context())

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	inputPath := cfg.File
	if len(args) == 1 {
		inputPath = args[0]
	}
	if inputPath == "" {
		return fmt.Errorf("lottr: no input file given (pass one, or set 'file' in %s)", configPath)
	}

	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)

	tex, resumed := store.Load(inputPath)
	if !resumed {
		ex, err := extractor.New(cfg.FilterRegexen)
		if err != nil {
			return err
		}
		tex, err = ex.Read(inputPath)
		if err != nil {
			return err
		}
	}
	log.Info("loaded texture", "file", inputPath, "lines", len(tex.Lines), "resumed", resumed)

	if !outputOnly {
		var c *cache.Cache
		if cfg.CachePath != "" {
			c, err = cache.Open(cfg.CachePath)
			if err != nil {
				return err
			}
			defer c.Close()
		}

		pool, err := translator.NewPool(cfg.ChatGPTOpt, c, cfg.LangPair())
		if err != nil {
			return err
		}

		specifyRange := store.LoadSpecifyRange(inputPath)
		counter := tokenizer.NewEstimator()
		queue := batcher.BuildQueue(tex, specifyRange, counter, cfg.BatchizerOpt.MaxTokens)
		log.Info("built batch queue", "batches", len(queue), "resuming_diagnostics", len(specifyRange) > 0)

		immutable := tex.Clone()
		reporter := progress.NewReporter(inputPath)
		reporter.Start()

		maxConcurrent := cfg.ChatGPTOpt.MaxConcurrent
		if maxConcurrent < 1 {
			maxConcurrent = pool.Size()
		}

		err = orchestrator.Run(ctx, immutable, tex, queue, poolAdapter{pool}, maxConcurrent, log, reporter.Report)
		reporter.Stop()
		if err != nil {
			return err
		}
	}

	f, err := buildFormatter(cfg)
	if err != nil {
		return err
	}

	outPath := fmt.Sprintf("%s.translated_%s%s", base, texture.TranslatorChatGPT, ext)
	var diag bytes.Buffer
	result, err := rewriter.Write(tex, texture.TranslatorChatGPT, f, inputPath, outPath, &diag)
	if err != nil {
		return err
	}
	if diag.Len() > 0 {
		log.Warn("shape mismatches during rewrite, see diagnostic sidecar", "detail", diag.String())
	}

	if err := store.SaveDiagnostic(inputPath, result.DiagnosticRanges); err != nil {
		return err
	}
	if err := store.Save(tex); err != nil {
		return err
	}

	log.Info("wrote output", "path", result.OutputPath, "failed_ranges", len(result.DiagnosticRanges))
	return nil
}

// buildFormatter constructs the output-formatter kind selected by
// trans_type, compiling the replace/capture regex pair from
// output_regexen[0]/[1] shared by all three kinds.
func buildFormatter(cfg *config.Config) (formatter.Formatter, error) {
	replaceRe, err := regexp.Compile(cfg.OutputRegexen[0].Regex)
	if err != nil {
		return nil, fmt.Errorf("lottr: output_regexen[0].regex: %w", err)
	}
	captureRe, err := regexp.Compile(cfg.OutputRegexen[1].Regex)
	if err != nil {
		return nil, fmt.Errorf("lottr: output_regexen[1].regex: %w", err)
	}

	switch cfg.TransType {
	case config.TransText:
		return formatter.Text{Replace: replaceRe, Capture: captureRe}, nil
	case config.TransMTool:
		return formatter.Map{Replace: replaceRe, Capture: captureRe, LineWidth: cfg.MToolOpt.LineWidth}, nil
	case config.TransReplace:
		innerCapture, err := regexp.Compile(cfg.CaptureRegex)
		if err != nil {
			return nil, fmt.Errorf("lottr: capture_regex: %w", err)
		}
		return formatter.Template{
			ReplaceExpression: cfg.ReplaceExpression,
			Capture:           innerCapture,
			InnerReplace:      replaceRe,
			InnerCapture:      captureRe,
		}, nil
	default:
		return nil, fmt.Errorf("lottr: unknown trans_type %q", cfg.TransType)
	}
}

