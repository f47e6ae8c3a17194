package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	coach "coach/src"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Train and tune dense classifiers from experiment files",
	Long: `Coach trains a dense neural classifier described by a YAML experiment
file, watches the run through lifecycle callbacks (accuracy threshold,
early stopping, resource monitor) and can grid-search hyperparameters
with stratified cross validation.`,
	Version: coach.Version,
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a classifier from the experiment file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		clf, store, err := cfg.Build()
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}

		X, y := cfg.MakeData()
		if err := clf.Fit(X, y); err != nil {
			return err
		}

		score, err := clf.Score(X, y)
		if err != nil {
			return err
		}
		fmt.Printf("final train accuracy: %.4f over %d epochs (run %s)\n",
			score, clf.History().Len(), clf.History().RunID())

		if store != nil && store.Err() != nil {
			fmt.Fprintf(os.Stderr, "warning: history persistence: %v\n", store.Err())
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Grid-search the experiment's parameter grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.Search.Grid) == 0 {
			return fmt.Errorf("experiment file has no search.grid")
		}

		gs, err := coach.NewGridSearch(cfg.NewClassifier, coach.GridSearchConfig{
			Grid:  coach.ParamGrid(cfg.Search.Grid),
			Folds: cfg.Search.Folds,
			Seed:  cfg.Train.Seed,
			Refit: cfg.Search.Refit,
			Sink:  os.Stdout,
		})
		if err != nil {
			return err
		}

		X, y := cfg.MakeData()
		result, err := gs.Run(X, y)
		if err != nil {
			return err
		}

		fmt.Printf("best params: %v\n", result.BestParams)
		fmt.Printf("best cv accuracy: %.4f\n", result.BestScore)
		if result.BestEstimator != nil {
			score, err := result.BestEstimator.Score(X, y)
			if err != nil {
				return err
			}
			fmt.Printf("refit train accuracy: %.4f\n", score)
		}
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs persisted in the experiment's history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Callbacks.HistoryDB == "" {
			return fmt.Errorf("experiment file has no callbacks.history_db")
		}

		store, err := coach.NewHistoryStore(cfg.Callbacks.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()

		ids, err := store.Runs()
		if err != nil {
			return err
		}
		for _, id := range ids {
			records, err := store.LoadRun(id)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d epochs\n", id, len(records))
		}
		return nil
	},
}

func loadConfig() (*coach.ExperimentConfig, error) {
	if cfgFile == "" {
		return coach.DefaultExperiment(), nil
	}
	return coach.LoadExperiment(cfgFile)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "experiment file path")
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
