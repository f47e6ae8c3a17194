package coach

// Metric computes evaluation metrics over predicted probabilities and
// integer labels.
type Metric interface {
	reset()
	update(probs *matrix, labels []int)
	result() float64
	name() string
}

// AccuracyMetric - classification accuracy
type AccuracyMetric struct {
	correct int
	total   int
}

func Accuracy() Metric {
	return &AccuracyMetric{}
}

func (a *AccuracyMetric) reset() {
	a.correct = 0
	a.total = 0
}

func (a *AccuracyMetric) update(probs *matrix, labels []int) {
	for i := 0; i < probs.rows; i++ {
		if argmaxRow(probs.row(i)) == labels[i] {
			a.correct++
		}
		a.total++
	}
}

func (a *AccuracyMetric) result() float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.correct) / float64(a.total)
}

func (a *AccuracyMetric) name() string { return "accuracy" }

// PrecisionMetric - precision for a single positive class
type PrecisionMetric struct {
	PositiveClass  int
	truePositives  int
	falsePositives int
}

type PrecisionConfig struct {
	PositiveClass int
}

func Precision(config PrecisionConfig) Metric {
	return &PrecisionMetric{PositiveClass: config.PositiveClass}
}

func (p *PrecisionMetric) reset() {
	p.truePositives = 0
	p.falsePositives = 0
}

func (p *PrecisionMetric) update(probs *matrix, labels []int) {
	for i := 0; i < probs.rows; i++ {
		if argmaxRow(probs.row(i)) != p.PositiveClass {
			continue
		}
		if labels[i] == p.PositiveClass {
			p.truePositives++
		} else {
			p.falsePositives++
		}
	}
}

func (p *PrecisionMetric) result() float64 {
	denom := p.truePositives + p.falsePositives
	if denom == 0 {
		return 0
	}
	return float64(p.truePositives) / float64(denom)
}

func (p *PrecisionMetric) name() string { return "precision" }

// RecallMetric - recall for a single positive class
type RecallMetric struct {
	PositiveClass  int
	truePositives  int
	falseNegatives int
}

type RecallConfig struct {
	PositiveClass int
}

func Recall(config RecallConfig) Metric {
	return &RecallMetric{PositiveClass: config.PositiveClass}
}

func (r *RecallMetric) reset() {
	r.truePositives = 0
	r.falseNegatives = 0
}

func (r *RecallMetric) update(probs *matrix, labels []int) {
	for i := 0; i < probs.rows; i++ {
		if labels[i] != r.PositiveClass {
			continue
		}
		if argmaxRow(probs.row(i)) == r.PositiveClass {
			r.truePositives++
		} else {
			r.falseNegatives++
		}
	}
}

func (r *RecallMetric) result() float64 {
	denom := r.truePositives + r.falseNegatives
	if denom == 0 {
		return 0
	}
	return float64(r.truePositives) / float64(denom)
}

func (r *RecallMetric) name() string { return "recall" }

// F1ScoreMetric - harmonic mean of precision and recall
type F1ScoreMetric struct {
	precision *PrecisionMetric
	recall    *RecallMetric
}

type F1Config struct {
	PositiveClass int
}

func F1Score(config F1Config) Metric {
	return &F1ScoreMetric{
		precision: &PrecisionMetric{PositiveClass: config.PositiveClass},
		recall:    &RecallMetric{PositiveClass: config.PositiveClass},
	}
}

func (f *F1ScoreMetric) reset() {
	f.precision.reset()
	f.recall.reset()
}

func (f *F1ScoreMetric) update(probs *matrix, labels []int) {
	f.precision.update(probs, labels)
	f.recall.update(probs, labels)
}

func (f *F1ScoreMetric) result() float64 {
	p := f.precision.result()
	r := f.recall.result()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func (f *F1ScoreMetric) name() string { return "f1_score" }
