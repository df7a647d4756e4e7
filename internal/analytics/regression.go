package analytics

// linearRegression fits y = slope*x + intercept by ordinary least squares
// where x is the index 0, 1, 2, ...
func linearRegression(points []float64) (slope, intercept float64) {
	n := float64(len(points))
	if n == 0 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range points {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
