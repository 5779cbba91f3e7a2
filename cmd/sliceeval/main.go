/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements sliceeval, which analyzes a system output file
// and prints a fine-grained report.
//
// Configuration comes from the environment:
//
//	SYSTEM_OUTPUT     path of the JSON system output (required)
//	TASK_TYPE         processor to use, e.g. text_classification
//	ANALYSIS_CONFIG   optional YAML analysis configuration
//	CONFIDENCE_ALPHA  significance level of confidence intervals
//	SEED              seed of bucket subsampling
//	REPORT_FORMAT     text, markdown, tree or json
//	METRICS_PORT      serve Prometheus metrics on this port while running
//
// Running "sliceeval schema" prints the JSON schema of ANALYSIS_CONFIG files.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainguard.dev/sliceeval/config"
	"chainguard.dev/sliceeval/processor"
	"chainguard.dev/sliceeval/report"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
)

type envConfig struct {
	SystemOutput    string  `env:"SYSTEM_OUTPUT"`
	TaskType        string  `env:"TASK_TYPE"`
	AnalysisConfig  string  `env:"ANALYSIS_CONFIG"`
	ConfidenceAlpha float64 `env:"CONFIDENCE_ALPHA,default=0.05"`
	Seed            int64   `env:"SEED,default=0"`
	ReportFormat    string  `env:"REPORT_FORMAT,default=text"`
	MetricsPort     int     `env:"METRICS_PORT,default=0"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(os.Args) > 1 && os.Args[1] == "schema" {
		if err := printSchema(os.Stdout); err != nil {
			clog.FatalContextf(ctx, "failed to print schema: %v", err)
		}
		return
	}

	var cfg envConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "failed to process config: %v", err)
	}

	if cfg.MetricsPort > 0 {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				clog.ErrorContextf(ctx, "metrics server failed: %v", err)
			}
		}()
		defer srv.Close()
	}

	if err := run(ctx, cfg, os.Stdout); err != nil {
		clog.FatalContextf(ctx, "sliceeval failed: %v", err)
	}
}

func printSchema(w io.Writer) error {
	b, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// systemOutput is the input file: either a bare list of samples or an
// object carrying metadata alongside them.
type systemOutput struct {
	Metadata processor.Metadata `json:"metadata"`
	Samples  []map[string]any   `json:"samples"`
}

func readSystemOutput(path string) (*systemOutput, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out systemOutput
	if err := json.Unmarshal(b, &out.Samples); err == nil {
		return &out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &out, nil
}

func run(ctx context.Context, cfg envConfig, w io.Writer) error {
	log := clog.FromContext(ctx)
	if cfg.SystemOutput == "" {
		return errors.New("SYSTEM_OUTPUT is required")
	}

	sysOut, err := readSystemOutput(cfg.SystemOutput)
	if err != nil {
		return err
	}

	opts := []processor.Option{
		processor.WithConfidenceAlpha(cfg.ConfidenceAlpha),
		processor.WithSeed(cfg.Seed),
	}
	taskType := sysOut.Metadata.TaskType
	if cfg.AnalysisConfig != "" {
		f, err := config.LoadFile(cfg.AnalysisConfig)
		if err != nil {
			return err
		}
		fileOpts, err := f.Options()
		if err != nil {
			return err
		}
		opts = append(opts, fileOpts...)
		if f.TaskType != "" {
			taskType = f.TaskType
		}
	}
	if cfg.TaskType != "" {
		taskType = cfg.TaskType
	}

	p, err := processor.Get(taskType)
	if err != nil {
		return err
	}
	log.With("task", taskType, "samples", len(sysOut.Samples)).Info("Analyzing system output")

	rep, err := processor.Process(ctx, p, sysOut.Metadata, sysOut.Samples, opts...)
	if err != nil {
		return err
	}

	if cfg.ReportFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	gen, err := report.ForFormat(cfg.ReportFormat)
	if err != nil {
		return err
	}
	out, err := gen(rep.Analyses)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
