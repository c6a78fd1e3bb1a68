package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/richard-senior/footy/internal/logger"
	"github.com/richard-senior/footy/pkg/footy"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: footy <command> [args]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  import <season>                  import one season's results, e.g. 2024/2025")
	fmt.Fprintln(os.Stderr, "  import-managers                  import manager tenures")
	fmt.Fprintln(os.Stderr, "  train [model-date]               train a model, or load the artifact saved on model-date")
	fmt.Fprintln(os.Stderr, "  predict <home> <away> <date> <season>   outcome probabilities for a fixture")
	os.Exit(2)
}

func main() {
	// Configure logging
	logger.SetShowDateTime(true)

	if len(os.Args) < 2 {
		usage()
	}

	config := footy.LoadConfig()
	if err := config.Validate(); err != nil {
		logger.Error("Invalid configuration:", err)
		os.Exit(1)
	}

	store, err := footy.NewStore(config.DbPath, logger.Default())
	if err != nil {
		logger.Error("Failed to open database:", err)
		os.Exit(1)
	}
	defer store.Close()

	switch os.Args[1] {
	case "import":
		if len(os.Args) != 3 {
			usage()
		}
		ds := footy.NewDatasource(store, config, logger.Default())
		if err := ds.ImportResults(os.Args[2]); err != nil {
			logger.Error("Import failed:", err)
			os.Exit(1)
		}

	case "import-managers":
		ds := footy.NewDatasource(store, config, logger.Default())
		if err := ds.ImportManagers(config.ManagersURL); err != nil {
			logger.Error("Manager import failed:", err)
			os.Exit(1)
		}

	case "train":
		trainer, err := footy.NewTrainer(store, config, logger.Default())
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		loadModel := len(os.Args) > 2
		loadModelDate := ""
		if loadModel {
			loadModelDate = os.Args[2]
		}
		if err := trainer.Run(loadModel, loadModelDate); err != nil {
			logger.Error("Training failed:", err)
			os.Exit(1)
		}
		artifact := trainer.Artifact()
		logger.Highlight("Model", artifact.ModelID)
		for name, score := range artifact.Performance {
			logger.Info(name, score)
		}

	case "predict":
		if len(os.Args) != 6 {
			usage()
		}
		homeID, err := strconv.Atoi(os.Args[2])
		if err != nil {
			logger.Error("Bad home team id:", os.Args[2])
			os.Exit(1)
		}
		awayID, err := strconv.Atoi(os.Args[3])
		if err != nil {
			logger.Error("Bad away team id:", os.Args[3])
			os.Exit(1)
		}
		date, season := os.Args[4], os.Args[5]

		trainer, err := footy.NewTrainer(store, config, logger.Default())
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		// Use the most recently saved artifact
		if err := trainer.Run(true, ""); err != nil {
			logger.Error("Could not obtain a model:", err)
			os.Exit(1)
		}

		predictor := footy.NewPredictor(store, config, logger.Default(), trainer)
		probs, err := predictor.Predict(homeID, awayID, date, season)
		if err != nil {
			logger.Error("Prediction failed:", err)
			os.Exit(1)
		}
		fmt.Printf("H %.2f  D %.2f  A %.2f\n", probs["H"], probs["D"], probs["A"])

	default:
		usage()
	}
}
