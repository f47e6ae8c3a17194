package coach

import (
	"fmt"
	"io"
	"sort"
)

// ParamGrid maps SetParams paths to candidate values. Callback paths
// (callbacks__<name>__<param>) are valid keys, which is how callback
// parameters take part in a search.
type ParamGrid map[string][]any

// expandGrid produces the cartesian product of the grid, keys sorted so
// candidate order is deterministic.
func expandGrid(grid ParamGrid) []map[string]any {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	candidates := []map[string]any{{}}
	for _, key := range keys {
		var next []map[string]any
		for _, base := range candidates {
			for _, value := range grid[key] {
				candidate := make(map[string]any, len(base)+1)
				for k, v := range base {
					candidate[k] = v
				}
				candidate[key] = value
				next = append(next, candidate)
			}
		}
		candidates = next
	}
	return candidates
}

// CandidateResult holds one grid candidate's cross-validation outcome.
type CandidateResult struct {
	Params     map[string]any
	FoldScores []float64
	MeanScore  float64
}

// GridSearchResult is the outcome of a full search.
type GridSearchResult struct {
	BestParams    map[string]any
	BestScore     float64
	Candidates    []CandidateResult
	BestEstimator *Classifier // non-nil when Refit was requested
}

type GridSearchConfig struct {
	Grid  ParamGrid
	Folds int
	Seed  int64
	Refit bool      // retrain the best candidate on the full data
	Sink  io.Writer // per-candidate progress, nil disables
}

// GridSearch evaluates every parameter combination with stratified
// k-fold cross validation, scoring by accuracy. A fresh estimator is
// built for every fold so candidates never share state.
type GridSearch struct {
	newEstimator func() *Classifier
	cfg          GridSearchConfig
}

func NewGridSearch(newEstimator func() *Classifier, cfg GridSearchConfig) (*GridSearch, error) {
	if newEstimator == nil {
		return nil, errorf("GridSearch requires an estimator factory")
	}
	if len(cfg.Grid) == 0 {
		return nil, errorf("GridSearch requires a non-empty grid")
	}
	if cfg.Folds < 2 {
		return nil, errorf("GridSearch requires Folds >= 2, got %d", cfg.Folds)
	}
	return &GridSearch{newEstimator: newEstimator, cfg: cfg}, nil
}

// Run executes the search over X and y. Ties keep the first candidate
// in expansion order.
func (g *GridSearch) Run(X [][]float64, y []int) (*GridSearchResult, error) {
	folds, err := stratifiedKFold(y, g.cfg.Folds, g.cfg.Seed)
	if err != nil {
		return nil, err
	}

	result := &GridSearchResult{BestScore: -1}

	for _, params := range expandGrid(g.cfg.Grid) {
		scores := make([]float64, 0, len(folds))
		for fi := range folds {
			clf := g.newEstimator()
			if err := clf.SetParams(params); err != nil {
				return nil, err
			}

			var trainIdx []int
			for fj, fold := range folds {
				if fj != fi {
					trainIdx = append(trainIdx, fold...)
				}
			}

			trainX, trainY := pickRows(X, y, trainIdx)
			testX, testY := pickRows(X, y, folds[fi])

			if err := clf.Fit(trainX, trainY); err != nil {
				return nil, err
			}
			score, err := clf.Score(testX, testY)
			if err != nil {
				return nil, err
			}
			scores = append(scores, score)
		}

		mean := 0.0
		for _, s := range scores {
			mean += s
		}
		mean /= float64(len(scores))

		if g.cfg.Sink != nil {
			fmt.Fprintf(g.cfg.Sink, "candidate %v: mean accuracy %.4f\n", params, mean)
		}

		result.Candidates = append(result.Candidates, CandidateResult{
			Params:     params,
			FoldScores: scores,
			MeanScore:  mean,
		})
		if mean > result.BestScore {
			result.BestScore = mean
			result.BestParams = params
		}
	}

	if g.cfg.Refit {
		best := g.newEstimator()
		if err := best.SetParams(result.BestParams); err != nil {
			return nil, err
		}
		if err := best.Fit(X, y); err != nil {
			return nil, err
		}
		result.BestEstimator = best
	}

	return result, nil
}

func pickRows(X [][]float64, y []int, indices []int) ([][]float64, []int) {
	outX := make([][]float64, len(indices))
	outY := make([]int, len(indices))
	for i, idx := range indices {
		outX[i] = X[idx]
		outY[i] = y[idx]
	}
	return outX, outY
}
