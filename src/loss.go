package coach

import "math"

// Loss computes loss and gradients against integer class labels.
type Loss interface {
	compute(pred *matrix, labels []int) float64
	gradient(pred *matrix, labels []int, gradOut *matrix)
	name() string
}

// CrossEntropyLoss - negative log likelihood over softmax probabilities
type CrossEntropyLoss struct {
	LabelSmoothing float64
}

type CrossEntropyConfig struct {
	LabelSmoothing float64
}

func CrossEntropy(config CrossEntropyConfig) Loss {
	return &CrossEntropyLoss{LabelSmoothing: config.LabelSmoothing}
}

func (c *CrossEntropyLoss) target(class, j, nClasses int) float64 {
	t := 0.0
	if j == class {
		t = 1.0
	}
	if c.LabelSmoothing > 0 {
		t = t*(1-c.LabelSmoothing) + c.LabelSmoothing/float64(nClasses)
	}
	return t
}

func (c *CrossEntropyLoss) compute(pred *matrix, labels []int) float64 {
	eps := 1e-15
	sum := 0.0
	for i := 0; i < pred.rows; i++ {
		row := pred.row(i)
		for j, p := range row {
			t := c.target(labels[i], j, pred.cols)
			if t == 0 {
				continue
			}
			sum -= t * math.Log(math.Max(p, eps))
		}
	}
	return sum / float64(pred.rows)
}

func (c *CrossEntropyLoss) gradient(pred *matrix, labels []int, gradOut *matrix) {
	// Softmax jacobian folded in: gradient w.r.t. pre-softmax scores is
	// (probs - targets) / N. The softmax activation passes this through.
	scale := 1.0 / float64(pred.rows)
	for i := 0; i < pred.rows; i++ {
		row := pred.row(i)
		gradRow := gradOut.row(i)
		for j, p := range row {
			gradRow[j] = scale * (p - c.target(labels[i], j, pred.cols))
		}
	}
}

func (c *CrossEntropyLoss) name() string { return "cross_entropy" }

// MSELoss - mean squared error against one-hot targets
type MSELoss struct{}

func MSE() Loss { return &MSELoss{} }

func (m *MSELoss) compute(pred *matrix, labels []int) float64 {
	sum := 0.0
	for i := 0; i < pred.rows; i++ {
		row := pred.row(i)
		for j, p := range row {
			t := 0.0
			if j == labels[i] {
				t = 1.0
			}
			diff := p - t
			sum += diff * diff
		}
	}
	return sum / float64(pred.rows*pred.cols)
}

func (m *MSELoss) gradient(pred *matrix, labels []int, gradOut *matrix) {
	scale := 2.0 / float64(pred.rows*pred.cols)
	for i := 0; i < pred.rows; i++ {
		row := pred.row(i)
		gradRow := gradOut.row(i)
		for j, p := range row {
			t := 0.0
			if j == labels[i] {
				t = 1.0
			}
			gradRow[j] = scale * (p - t)
		}
	}
}

func (m *MSELoss) name() string { return "mse" }
