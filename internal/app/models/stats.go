package models

// CountByLabel is one row of a GROUP BY count
type CountByLabel struct {
	Label string
	Count int64
}

// Age bands of the statistics page, in display order
const (
	AgeBandUnder18 = "<18"
	AgeBand18To25  = "18-25"
	AgeBand26To35  = "26-35"
	AgeBandOver35  = ">35"
)

// AgeBands lists the bands in the order they are shown
var AgeBands = []string{AgeBandUnder18, AgeBand18To25, AgeBand26To35, AgeBandOver35}

// AgeBandOf returns the band an age falls into
func AgeBandOf(age int) string {
	switch {
	case age < 18:
		return AgeBandUnder18
	case age <= 25:
		return AgeBand18To25
	case age <= 35:
		return AgeBand26To35
	default:
		return AgeBandOver35
	}
}

// Totals are the headline numbers of the dashboard
type Totals struct {
	Students   int64
	Pets       int64
	AverageAge float64
}
