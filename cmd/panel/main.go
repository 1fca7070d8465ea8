package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/openproc/requisition-approval/internal/client"
	"github.com/openproc/requisition-approval/internal/config"
	"github.com/openproc/requisition-approval/internal/models"
	"github.com/openproc/requisition-approval/pkg/logging"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	role := flag.String("role", models.RoleHOD, "reviewer role (hod, store, gm)")
	decide := flag.String("decide", "", "requisition id to decide on")
	verdict := flag.String("verdict", "", "verdict to record (Approved or Rejected)")
	flag.Parse()

	if !models.IsValidRole(*role) {
		fmt.Fprintf(os.Stderr, "Unknown role %q, expected hod, store or gm\n", *role)
		os.Exit(1)
	}
	if (*decide == "") != (*verdict == "") {
		fmt.Fprintln(os.Stderr, "Flags -decide and -verdict must be used together")
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

	api := client.NewClient(cfg.Client.BaseURL, cfg.Client.HTTPTimeout, logger)
	panel := client.NewReviewerPanel(api, *role, logger)
	ctx := context.Background()

	if *decide != "" {
		updated, err := panel.Decide(ctx, *decide, *verdict)
		if err != nil {
			log.Fatalf("Failed to record verdict: %v", err)
		}
		fmt.Printf("Recorded %s verdict %s on %s\n", *role, *verdict, updated.ReqNo)
	}

	if err := panel.Load(ctx); err != nil {
		log.Fatalf("Failed to load requisitions: %v", err)
	}

	printPanel(panel.Role(), panel.Requisitions())
}

func printPanel(role string, reqs []*models.Requisition) {
	fmt.Printf("Reviewing as %s: %d requisition(s)\n\n", role, len(reqs))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REQ NO\tID\tDEPARTMENT\tTYPE\tDATE\tHOD\tSTORE\tGM")
	for _, r := range reqs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ReqNo, r.ID, r.Department, r.Type, r.Date,
			r.Status.HOD, r.Status.Store, r.Status.GM)
	}
	w.Flush()
}
