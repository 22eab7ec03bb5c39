package results

import (
	"math"
	"sort"
)

// steadyFloor is the scale floor for the steady-state criterion.
// Near-zero series are judged on absolute change instead of relative.
const steadyFloor = 1e-4

// Analyzer computes insights from a simulate artifact.
type Analyzer struct {
	results *Results
}

// NewAnalyzer creates an analyzer over an artifact.
func NewAnalyzer(r *Results) *Analyzer {
	return &Analyzer{results: r}
}

// ComputeAll runs every analysis over the downsampled trajectory.
// Artifacts without trajectory data get an empty analysis.
func (a *Analyzer) ComputeAll() *Analysis {
	analysis := &Analysis{Statistics: make(map[string]Stat)}
	if a.results.Data == nil {
		return analysis
	}

	for name, series := range a.results.Data.Timeseries.Variables {
		analysis.Statistics[name] = computeStats(series.Downsampled)
	}
	analysis.Crossings = a.findCrossings()
	analysis.SteadyState = a.detectSteadyState(0.01, 10.0)

	return analysis
}

// findCrossings locates sign changes in the difference of every
// variable pair, interpolating the crossing point linearly.
func (a *Analyzer) findCrossings() []Crossing {
	times := a.results.Data.Timeseries.Time.Downsampled
	vars := a.results.Data.Timeseries.Variables

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var crossings []Crossing
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			data1 := vars[names[i]].Downsampled
			data2 := vars[names[j]].Downsampled
			for k := 0; k < len(times)-1; k++ {
				diff1 := data1[k] - data2[k]
				diff2 := data1[k+1] - data2[k+1]
				if diff1*diff2 >= 0 {
					continue
				}
				tCross := times[k] + (times[k+1]-times[k])*(-diff1)/(diff2-diff1)
				vCross := data1[k] + (data1[k+1]-data1[k])*(tCross-times[k])/(times[k+1]-times[k])
				crossings = append(crossings, Crossing{
					Var1:  names[i],
					Var2:  names[j],
					Time:  tCross,
					Value: vCross,
				})
			}
		}
	}
	return crossings
}

// detectSteadyState scans each variable for a window where the
// step-to-step relative change stays below relTol, then reports the
// time the slowest variable settled.
func (a *Analyzer) detectSteadyState(relTol, window float64) *SteadyState {
	times := a.results.Data.Timeseries.Time.Downsampled
	ss := &SteadyState{Tolerance: relTol}
	if len(times) < 2 {
		return ss
	}

	dt := times[1] - times[0]
	windowSize := int(window / dt)
	if windowSize < 2 {
		windowSize = 2
	}
	if windowSize > len(times)/2 {
		windowSize = len(times) / 2
	}

	steadyTime := times[0]
	for _, series := range a.results.Data.Timeseries.Variables {
		data := series.Downsampled
		settled := -1
		for i := windowSize; i < len(data); i++ {
			maxChange := 0.0
			for j := i - windowSize; j < i; j++ {
				scale := math.Max(math.Abs(data[j]), steadyFloor)
				change := math.Abs(data[j+1]-data[j]) / scale
				if change > maxChange {
					maxChange = change
				}
			}
			if maxChange < relTol {
				settled = i
				break
			}
		}
		if settled < 0 {
			return ss
		}
		if times[settled] > steadyTime {
			steadyTime = times[settled]
		}
	}

	ss.Reached = true
	ss.Time = steadyTime
	ss.Values = copyMap(a.results.Data.Summary.FinalState)
	return ss
}

// computeStats summarizes one series. Std is the population deviation.
func computeStats(data []float64) Stat {
	if len(data) == 0 {
		return Stat{}
	}

	min, max := data[0], data[0]
	sum := 0.0
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(len(data))

	sumSq := 0.0
	for _, v := range data {
		diff := v - mean
		sumSq += diff * diff
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return Stat{
		Min:    min,
		Max:    max,
		Mean:   mean,
		Median: median,
		Std:    math.Sqrt(sumSq / float64(len(data))),
	}
}
