// Package coach is a scikit-style training wrapper for small feed-forward
// classifiers in Go.
//
// Coach wraps a dense network behind a Classifier with the familiar
// fit/predict/score surface, a per-epoch History log, and a registry of
// named lifecycle callbacks. Hyperparameters, including parameters of
// registered callbacks, are addressable through double-underscore paths,
// which is what GridSearch iterates over.
//
// Basic usage:
//
//	clf := coach.NewClassifier(coach.ClassifierConfig{
//		InputDim:    20,
//		HiddenUnits: 10,
//		NumClasses:  2,
//		LR:          0.1,
//		MaxEpochs:   20,
//		BatchSize:   32,
//		ValidSplit:  0.2,
//		Stratified:  true,
//		Seed:        42,
//	})
//
//	err := clf.AddCallback("accuracy_threshold", coach.AccuracyThreshold(
//		coach.AccuracyThresholdConfig{MinAccuracy: 0.7},
//	))
//
//	err = clf.Fit(X, y)
//
//	err = clf.SetParams(map[string]any{
//		"lr":                                       0.05,
//		"callbacks__accuracy_threshold__min_accuracy": 0.6,
//	})
package coach

// Version of the coach library
const Version = "0.1.0"
