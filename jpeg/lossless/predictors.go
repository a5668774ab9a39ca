package lossless

// predictors indexes the selection values of ITU-T T.81 Table H.1 from 1.
// Ra is the sample to the left, Rb the one above and Rc the one above left.
var predictors = [8]func(ra, rb, rc int) int{
	nil,
	func(ra, _, _ int) int { return ra },
	func(_, rb, _ int) int { return rb },
	func(_, _, rc int) int { return rc },
	func(ra, rb, rc int) int { return ra + rb - rc },
	func(ra, rb, rc int) int { return ra + (rb-rc)>>1 },
	func(ra, rb, rc int) int { return rb + (ra-rc)>>1 },
	func(ra, rb, _ int) int { return (ra + rb) >> 1 },
}

var predictorNames = [8]string{
	"auto", "Ra", "Rb", "Rc", "Ra+Rb-Rc", "Ra+(Rb-Rc)>>1", "Rb+(Ra-Rc)>>1", "(Ra+Rb)>>1",
}

// Predictor returns the prediction of selection value sv. Values outside
// 1-7 predict from the left.
func Predictor(sv int, ra, rb, rc int) int {
	if sv < 1 || sv > 7 {
		sv = 1
	}
	return predictors[sv](ra, rb, rc)
}

// PredictorName returns a short label for selection value sv
func PredictorName(sv int) string {
	if sv < 0 || sv > 7 {
		return "unknown"
	}
	return predictorNames[sv]
}

// selectPredictor returns the selection value with the smallest sum of
// absolute residuals over all planes. Ties keep the lower value.
func selectPredictor(samples [][]int, width, height, precision int) int {
	mask := 1<<uint(precision) - 1
	best, bestCost := 1, int64(-1)
	for sv := 1; sv <= 7; sv++ {
		var cost int64
		for _, plane := range samples {
			for row := 0; row < height; row++ {
				for col := 0; col < width; col++ {
					d := plane[row*width+col]&mask - predict(plane, row, col, width, sv, precision, mask)
					if d < 0 {
						d = -d
					}
					cost += int64(d)
				}
			}
		}
		if bestCost < 0 || cost < bestCost {
			best, bestCost = sv, cost
		}
	}
	return best
}
