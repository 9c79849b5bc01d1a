/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
	"github.com/suparena/artifactreplication"
	"github.com/suparena/artifactreplication/config"
	"github.com/suparena/artifactreplication/logging"
	"github.com/suparena/artifactreplication/replication"
	"github.com/suparena/artifactreplication/storagemodels"
)

const (
	modeRegister  = "register"
	modeReplicate = "replicate"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	modeFlag    = flag.String("mode", modeReplicate, "Handler to run: register or replicate")
	configFlag  = flag.String("config", "", "Path to a YAML config file")
	eventFlag   = flag.String("event", "", "Handle the JSON event in this file once instead of starting the Lambda loop")
)

// replicateResponse is the Lambda response for a storage change batch.
type replicateResponse struct {
	BatchID      string   `json:"batchId"`
	Destinations int      `json:"destinations"`
	Copies       int      `json:"copies"`
	Failures     []string `json:"failures,omitempty"`
}

func newReplicateResponse(report *replication.Report) replicateResponse {
	resp := replicateResponse{
		BatchID:      report.BatchID,
		Destinations: report.Destinations,
		Copies:       len(report.Results),
	}
	for _, res := range report.Failed() {
		resp.Failures = append(resp.Failures, res.Err.Error())
	}
	return resp
}

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := artifactreplication.GetVersionInfo()
		fmt.Printf("Artifact replicator version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if err := run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("replicator failed")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Logger = logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, App: "artifact-replication"})

	svc, err := artifactreplication.New(ctx, cfg, artifactreplication.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	defer svc.Close()

	var handler any
	switch *modeFlag {
	case modeRegister:
		handler = func(ctx context.Context, event storagemodels.LifecycleEvent) (storagemodels.LifecycleResult, error) {
			return svc.Register(ctx, event), nil
		}
	case modeReplicate:
		handler = func(ctx context.Context, batch storagemodels.StorageChangeBatch) (replicateResponse, error) {
			report, err := svc.Replicate(ctx, &batch)
			return newReplicateResponse(report), err
		}
	default:
		return fmt.Errorf("unknown mode %q", *modeFlag)
	}

	if *eventFlag == "" {
		lambda.Start(handler)
		return nil
	}
	return invokeOnce(ctx, handler, *eventFlag)
}

// invokeOnce runs handler against the event stored in path and prints the response.
func invokeOnce(ctx context.Context, handler any, path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read event: %w", err)
	}
	out, err := lambda.NewHandler(handler).Invoke(ctx, payload)
	if out != nil {
		fmt.Println(string(out))
	}
	return err
}
