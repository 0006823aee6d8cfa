package results

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Window is one accounting period of a water balance.
type Window struct {
	Begin time.Time
	End   time.Time
}

// Mid is the center of the window, used as the label when plotting or
// tabulating balance series.
func (w Window) Mid() time.Time {
	return w.Begin.Add(w.End.Sub(w.Begin) / 2)
}

// Balance window methods.
const (
	MethodWaterYear = "water_year"
	MethodYear      = "year"
	MethodColdWarm  = "cold_warm"
)

// BalanceWindows segments a time range into accounting periods.
// water_year keeps only complete Oct 1 to Sep 30 years inside the range,
// year uses calendar years clamped to the range, and cold_warm
// alternates May-Sep and Oct-Apr seasons.
func BalanceWindows(times []time.Time, method string) ([]Window, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("no timestamps to segment")
	}

	min, max := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}

	var windows []Window
	switch method {
	case MethodWaterYear:
		for y := min.Year(); y < max.Year(); y++ {
			windows = append(windows, Window{
				Begin: time.Date(y, time.October, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(y+1, time.September, 30, 23, 0, 0, 0, time.UTC),
			})
		}
		windows = trim(windows, min, max)

	case MethodYear:
		for y := min.Year(); y <= max.Year(); y++ {
			w := Window{
				Begin: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(y, time.December, 31, 23, 0, 0, 0, time.UTC),
			}
			if w.Begin.Before(min) {
				w.Begin = min
			}
			if w.End.After(max) {
				w.End = max
			}
			if !w.End.After(w.Begin) {
				continue
			}
			windows = append(windows, w)
		}

	case MethodColdWarm:
		for y := min.Year(); y <= max.Year(); y++ {
			windows = append(windows,
				Window{
					Begin: time.Date(y, time.May, 1, 0, 0, 0, 0, time.UTC),
					End:   time.Date(y, time.September, 30, 23, 0, 0, 0, time.UTC),
				},
				Window{
					Begin: time.Date(y, time.October, 1, 0, 0, 0, 0, time.UTC),
					End:   time.Date(y+1, time.April, 30, 23, 0, 0, 0, time.UTC),
				})
		}
		windows = trim(windows, min, max)

	default:
		return nil, fmt.Errorf("unknown balance method %q", method)
	}

	if len(windows) == 0 {
		return nil, fmt.Errorf("time range %s to %s holds no complete %s window",
			min.Format(time.DateOnly), max.Format(time.DateOnly), method)
	}
	return windows, nil
}

// trim drops windows extending past either end of the data range.
func trim(windows []Window, min, max time.Time) []Window {
	for len(windows) > 0 && windows[0].Begin.Before(min) {
		windows = windows[1:]
	}
	for len(windows) > 0 && windows[len(windows)-1].End.After(max) {
		windows = windows[:len(windows)-1]
	}
	return windows
}

// BalanceTerms are the storage changes (D prefix) and net cumulative
// fluxes (N prefix) of one element over one window, all in mm except
// where noted.
type BalanceTerms struct {
	DUnsat     float64 // unsaturated moisture storage
	DSat       float64 // saturated storage, water table depth scaled by porosity
	DCanopySWE float64 // canopy snow water equivalent
	DSWE       float64 // ground snow water equivalent
	DCanopy    float64 // canopy storage
	NP         float64 // precipitation
	NET        float64 // evapotranspiration, snow fluxes removed
	NQsurf     float64 // surface runoff
	NQunsat    float64 // lateral unsaturated exchange, in minus out
	NQsat      float64 // groundwater flux normalized by element area
}

// ElementBalance computes the balance terms of one element frame over a
// window. elementArea is the voronoi polygon area in square meters.
func ElementBalance(f *Frame, w Window, porosity, elementArea float64) (BalanceTerms, error) {
	var terms BalanceTerms
	if elementArea <= 0 {
		return terms, fmt.Errorf("element area must be positive, got %g", elementArea)
	}

	beginIdx, endIdx := -1, -1
	for i, t := range f.Times {
		if beginIdx < 0 && !t.Before(w.Begin) {
			beginIdx = i
		}
		if !t.After(w.End) {
			endIdx = i
		}
	}
	if beginIdx < 0 || endIdx < 0 || endIdx < beginIdx {
		return terms, fmt.Errorf("window %s to %s has no samples",
			w.Begin.Format(time.DateOnly), w.End.Format(time.DateOnly))
	}

	col := func(name string) ([]float64, error) { return f.Column(name) }
	mu, err := col("Mu_mm")
	if err != nil {
		return terms, err
	}
	nwt, err := col("Nwt_mm")
	if err != nil {
		return terms, err
	}
	intSWE, err := col("IntSWEq_cm")
	if err != nil {
		return terms, err
	}
	swe, err := col("SnWE_cm")
	if err != nil {
		return terms, err
	}
	canopy, err := col("CanStorage_mm")
	if err != nil {
		return terms, err
	}
	rain, err := col("Rain_mm/h")
	if err != nil {
		return terms, err
	}
	et, err := col("EvpTtrs_mm/h")
	if err != nil {
		return terms, err
	}
	snSub, err := col("SnSub_cm")
	if err != nil {
		return terms, err
	}
	snEvap, err := col("SnEvap_cm")
	if err != nil {
		return terms, err
	}
	intSub, err := col("IntSub_cm")
	if err != nil {
		return terms, err
	}
	srf, err := col("Srf_Hour_mm")
	if err != nil {
		return terms, err
	}
	qpIn, err := col("QpIn_mm/h")
	if err != nil {
		return terms, err
	}
	qpOut, err := col("QpOut_mm/h")
	if err != nil {
		return terms, err
	}
	gw, err := col("GWflx_m3/h")
	if err != nil {
		return terms, err
	}

	terms.DUnsat = mu[endIdx] - mu[beginIdx]
	// the water table deepening releases storage, hence begin minus end
	terms.DSat = (nwt[beginIdx] - nwt[endIdx]) * porosity
	terms.DCanopySWE = 10 * (intSWE[endIdx] - intSWE[beginIdx])
	terms.DSWE = 10 * (swe[endIdx] - swe[beginIdx])
	terms.DCanopy = canopy[endIdx] - canopy[beginIdx]

	window := func(v []float64) []float64 { return v[beginIdx : endIdx+1] }
	terms.NP = floats.Sum(window(rain))
	terms.NQsurf = floats.Sum(window(srf))
	terms.NQunsat = floats.Sum(window(qpIn)) - floats.Sum(window(qpOut))
	terms.NQsat = floats.Sum(window(gw)) / elementArea * 1000

	for i := beginIdx; i <= endIdx; i++ {
		// snow fluxes carry their own sign in the snow module output
		terms.NET += et[i] - 10*(snSub[i]+snEvap[i]+intSub[i])
	}

	return terms, nil
}

// Balance computes the per-window balance series of an element frame.
func Balance(f *Frame, method string, porosity, elementArea float64) ([]BalanceTerms, []Window, error) {
	windows, err := BalanceWindows(f.Times, method)
	if err != nil {
		return nil, nil, err
	}

	series := make([]BalanceTerms, 0, len(windows))
	for _, w := range windows {
		terms, err := ElementBalance(f, w, porosity, elementArea)
		if err != nil {
			return nil, nil, err
		}
		series = append(series, terms)
	}
	return series, windows, nil
}
