package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/orgsync-backend/internal/hierarchy"
	"github.com/yungbote/orgsync-backend/internal/ingestion"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
	"github.com/yungbote/orgsync-backend/internal/platform/sciforma"
	"github.com/yungbote/orgsync-backend/internal/services"
)

func main() {
	var (
		csvPath        string
		simulation     bool
		printStructure bool
		direction      string
		timeout        time.Duration
	)
	flag.StringVar(&csvPath, "csv", "", "path to the hierarchy export (.csv or .xlsx)")
	flag.BoolVar(&simulation, "simulation", false, "resolve and order without writing to the remote")
	flag.BoolVar(&printStructure, "print-structure", false, "include the resolved structure in the report")
	flag.StringVar(&direction, "direction", string(services.DirectionLeafFirst), "ordering traversal: leaf_first or root_first")
	flag.DurationVar(&timeout, "timeout", 0, "overall run timeout, 0 disables")
	flag.Parse()

	if csvPath == "" {
		fmt.Println("usage: orgsync -csv <file> [-simulation] [-print-structure] [-direction leaf_first|root_first] [-timeout 5m]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dir, err := services.ParseDirection(direction)
	if err != nil {
		fmt.Printf("invalid -direction: %v\n", err)
		os.Exit(2)
	}

	client, err := sciforma.NewFromEnv(log)
	if err != nil {
		fmt.Printf("init sciforma client: %v\n", err)
		os.Exit(1)
	}

	remote := services.NewRemoteOrgService(client)
	resolver := services.NewIdentityResolver(log, remote)
	orderer := services.NewOrderEnforcer(log, remote, dir)
	sync := services.NewSyncService(log, resolver, orderer)

	rows, err := ingestion.ReadRows(csvPath)
	if err != nil {
		fmt.Printf("read %s: %v\n", csvPath, err)
		os.Exit(1)
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := sync.Run(ctx, hierarchy.NewGraph(), rows, services.RunOptions{
		Simulation:     simulation,
		PrintStructure: printStructure,
	})
	if err != nil {
		fmt.Printf("synchronization failed: %v\n", err)
		os.Exit(1)
	}

	report, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Printf("encode report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(report))
}
