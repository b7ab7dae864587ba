package lexicon

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

// ErrEmptyHistogram is returned when no usable account-creation year exists.
var ErrEmptyHistogram = errors.New("lexicon: empty account creation histogram")

// AgeBrackets lists the predicted bracket labels in ascending order.
var AgeBrackets = []string{"13-17", "18-24", "25-34", "35-44", "45-54", "55-64", "65+"}

// Bracket priors by account age in years. Older accounts skew to older owners.
// Calibrated by hand against published platform demographics; not derived.
var accountAgePriors = []struct {
	maxAge int
	shares [7]float64
}{
	{2, [7]float64{35, 35, 18, 7, 3, 1.5, 0.5}},
	{5, [7]float64{15, 35, 28, 12, 6, 3, 1}},
	{10, [7]float64{3, 25, 37, 20, 9, 4, 2}},
	{15, [7]float64{0, 10, 38, 28, 14, 7, 3}},
	{math.MaxInt, [7]float64{0, 3, 30, 32, 19, 11, 5}},
}

// PredictAgeBrackets estimates the audience age split (percent per bracket,
// summing to 100) from the commenter account-creation histogram, the male
// share of classified commenters and the channel's views-to-subscriber ratio.
func PredictAgeBrackets(hist model.YearHistogram, malePercentage, viewsToSubRatio float64) (map[string]float64, error) {
	return predictAgeBrackets(time.Now().Year(), hist, malePercentage, viewsToSubRatio)
}

func predictAgeBrackets(refYear int, hist model.YearHistogram, malePercentage, viewsToSubRatio float64) (map[string]float64, error) {
	var acc [7]float64
	var total float64
	for _, yc := range hist {
		year, err := strconv.Atoi(yc.Year)
		if err != nil || yc.Count <= 0 {
			continue
		}
		age := max(refYear-year, 0)
		for _, p := range accountAgePriors {
			if age <= p.maxAge {
				for i, s := range p.shares {
					acc[i] += s * float64(yc.Count)
				}
				break
			}
		}
		total += float64(yc.Count)
	}
	if total == 0 {
		return nil, ErrEmptyHistogram
	}

	// Male-heavy comment sections skew toward 18-34.
	if malePercentage > 50 {
		f := 1 + (malePercentage-50)/250
		acc[1] *= f
		acc[2] *= f
	}
	// Reach beyond the subscriber base skews younger.
	if viewsToSubRatio > 0 {
		f := 1 + math.Min(viewsToSubRatio, 5)/20
		acc[0] *= f
		acc[1] *= f
	}

	return normalize(acc), nil
}

// normalize scales shares to percentages with one decimal, assigning any
// rounding remainder to the largest bracket so the total is exactly 100.
func normalize(acc [7]float64) map[string]float64 {
	var sum float64
	for _, v := range acc {
		sum += v
	}
	out := make(map[string]float64, len(acc))
	var rounded float64
	largest := 0
	for i, v := range acc {
		pct := math.Round(v/sum*1000) / 10
		out[AgeBrackets[i]] = pct
		rounded += pct
		if v > acc[largest] {
			largest = i
		}
	}
	out[AgeBrackets[largest]] = math.Round((out[AgeBrackets[largest]]+100-rounded)*10) / 10
	return out
}
