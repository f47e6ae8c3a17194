package coach

import "math"

// Activation represents an activation function
type Activation interface {
	forward(z *matrix, out *matrix)
	backward(z *matrix, gradOut *matrix, gradIn *matrix)
	name() string
}

// ReLUActivation - Rectified Linear Unit
type ReLUActivation struct{}

func ReLU() Activation { return &ReLUActivation{} }

func (r *ReLUActivation) forward(z *matrix, out *matrix) {
	for i, v := range z.data {
		if v > 0 {
			out.data[i] = v
		} else {
			out.data[i] = 0
		}
	}
}

func (r *ReLUActivation) backward(z *matrix, gradOut *matrix, gradIn *matrix) {
	for i, v := range z.data {
		if v > 0 {
			gradIn.data[i] = gradOut.data[i]
		} else {
			gradIn.data[i] = 0
		}
	}
}

func (r *ReLUActivation) name() string { return "relu" }

// TanhActivation
type TanhActivation struct{}

func Tanh() Activation { return &TanhActivation{} }

func (t *TanhActivation) forward(z *matrix, out *matrix) {
	for i, v := range z.data {
		out.data[i] = math.Tanh(v)
	}
}

func (t *TanhActivation) backward(z *matrix, gradOut *matrix, gradIn *matrix) {
	for i, v := range z.data {
		th := math.Tanh(v)
		gradIn.data[i] = gradOut.data[i] * (1 - th*th)
	}
}

func (t *TanhActivation) name() string { return "tanh" }

// SigmoidActivation
type SigmoidActivation struct{}

func Sigmoid() Activation { return &SigmoidActivation{} }

func sigmoid(v float64) float64 {
	// Numerically stable in both tails
	if v >= 0 {
		return 1.0 / (1.0 + math.Exp(-v))
	}
	expV := math.Exp(v)
	return expV / (1.0 + expV)
}

func (s *SigmoidActivation) forward(z *matrix, out *matrix) {
	for i, v := range z.data {
		out.data[i] = sigmoid(v)
	}
}

func (s *SigmoidActivation) backward(z *matrix, gradOut *matrix, gradIn *matrix) {
	for i, v := range z.data {
		sig := sigmoid(v)
		gradIn.data[i] = gradOut.data[i] * sig * (1 - sig)
	}
}

func (s *SigmoidActivation) name() string { return "sigmoid" }

// SoftmaxActivation - row-wise softmax over class scores
type SoftmaxActivation struct{}

func Softmax() Activation { return &SoftmaxActivation{} }

func (s *SoftmaxActivation) forward(z *matrix, out *matrix) {
	for i := 0; i < z.rows; i++ {
		row := z.row(i)
		outRow := out.row(i)
		maxV := row[0]
		for _, v := range row[1:] {
			if v > maxV {
				maxV = v
			}
		}
		sum := 0.0
		for j, v := range row {
			outRow[j] = math.Exp(v - maxV)
			sum += outRow[j]
		}
		for j := range outRow {
			outRow[j] /= sum
		}
	}
}

func (s *SoftmaxActivation) backward(z *matrix, gradOut *matrix, gradIn *matrix) {
	// Cross-entropy already folds the softmax jacobian into its gradient
	// (probs - targets), so the gradient passes through unchanged.
	copy(gradIn.data, gradOut.data)
}

func (s *SoftmaxActivation) name() string { return "softmax" }

// LinearActivation - identity
type LinearActivation struct{}

func Linear() Activation { return &LinearActivation{} }

func (l *LinearActivation) forward(z *matrix, out *matrix) {
	copy(out.data, z.data)
}

func (l *LinearActivation) backward(z *matrix, gradOut *matrix, gradIn *matrix) {
	copy(gradIn.data, gradOut.data)
}

func (l *LinearActivation) name() string { return "linear" }
