package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"betScope/internal/config"
	"betScope/internal/model"
	"betScope/internal/transform"
)

type recordWriter interface {
	Write(value interface{}) error
}

type normalizeStats struct {
	Total  int
	Stored int
	Failed int
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadNormalize(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	outWriter, err := newJSONLWriter(cfg.Out, false)
	if err != nil {
		return err
	}
	defer outWriter.Close()

	errWriter, err := newJSONLWriter(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("normalize start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
	)

	stats, err := normalizeStream(ctx, inputFile, transform.NewTransformer(logger), outWriter, errWriter)
	if err != nil {
		return err
	}

	logger.Info("normalize complete",
		zap.Int("total", stats.Total),
		zap.Int("stored", stats.Stored),
		zap.Int("failed", stats.Failed),
	)
	return nil
}

// normalizeStream transforms one raw record per line. Lines that are not a
// JSON object go to errs with their 1-based line number.
func normalizeStream(ctx context.Context, r io.Reader, transformer *transform.Transformer, out, errs recordWriter) (normalizeStats, error) {
	var stats normalizeStats

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Total++

		var record model.RawBetRecord
		if err := json.Unmarshal(line, &record); err != nil {
			stats.Failed++
			writeNormalizeError(errs, model.NormalizeError{Line: lineNo, ID: peekID(line), Error: err.Error()})
			continue
		}

		if err := out.Write(transformer.Transform(record)); err != nil {
			return stats, err
		}
		stats.Stored++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	return stats, nil
}

func peekID(line []byte) string {
	var probe struct {
		ID model.FlexString `json:"id"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return ""
	}
	return probe.ID.String()
}

func writeNormalizeError(writer recordWriter, errRecord model.NormalizeError) {
	if writer == nil {
		return
	}
	_ = writer.Write(errRecord)
}
