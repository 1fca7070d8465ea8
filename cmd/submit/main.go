package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openproc/requisition-approval/internal/client"
	"github.com/openproc/requisition-approval/internal/config"
	"github.com/openproc/requisition-approval/internal/httpapi"
	"github.com/openproc/requisition-approval/internal/models"
	"github.com/openproc/requisition-approval/pkg/logging"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	inputPath := flag.String("input", "", "path to requisition JSON file")
	watch := flag.Bool("watch", true, "keep polling approval status after submitting")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: submit -input requisition.json [-watch=false]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}
	var req httpapi.SubmitRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		log.Fatalf("Failed to parse input file: %v", err)
	}

	api := client.NewClient(cfg.Client.BaseURL, cfg.Client.HTTPTimeout, logger)
	ctx := context.Background()

	created, err := api.Submit(ctx, req)
	if err != nil {
		log.Fatalf("Failed to submit requisition: %v", err)
	}

	fmt.Printf("Submitted requisition %s (%s)\n", created.ReqNo, created.ID)
	printStatus(created.Status)

	if !*watch {
		return
	}

	sync := client.NewSubmitterSync(api, logger,
		client.WithPollInterval(cfg.Client.PollInterval),
		client.WithOnChange(func(reqNo string, status models.ApprovalStatus) {
			fmt.Printf("[%s] %s status changed\n", time.Now().Format("15:04:05"), reqNo)
			printStatus(status)
		}))

	sync.Track(created.ReqNo)
	if err := sync.Start(ctx); err != nil {
		log.Fatalf("Failed to start status sync: %v", err)
	}

	fmt.Printf("Watching %s every %s, press Ctrl+C to stop\n", created.ReqNo, cfg.Client.PollInterval)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	sync.Stop()
	fmt.Println("Stopped")
}

func printStatus(status models.ApprovalStatus) {
	fmt.Printf("  HOD: %-9s Store: %-9s GM: %s\n", status.HOD, status.Store, status.GM)
}
