package service

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/mathieu-neron/channel-insight/internal/lexicon"
	"github.com/mathieu-neron/channel-insight/internal/model"
)

// GenderSplit returns male and female percentages over the profiles whose
// gender is known. Percentages have two decimals and sum to 100.
func GenderSplit(profiles []model.AuthorProfile) (male, female float64, err error) {
	var m, f int
	for _, p := range profiles {
		switch p.Gender {
		case model.GenderMale:
			m++
		case model.GenderFemale:
			f++
		}
	}
	total := m + f
	if total == 0 {
		return 0, 0, ErrNoClassifiedAuthors
	}
	male = math.Round(float64(m)/float64(total)*10000) / 100
	female = math.Round((100-male)*100) / 100
	return male, female, nil
}

// YearHistogramOf tallies profiles by the last four characters of their join
// date, ascending by year.
func YearHistogramOf(profiles []model.AuthorProfile) model.YearHistogram {
	counts := make(map[string]int)
	for _, p := range profiles {
		if utf8.RuneCountInString(p.JoinedDate) < 4 {
			continue
		}
		counts[lexicon.LastRunes(p.JoinedDate, 4)]++
	}

	hist := make(model.YearHistogram, 0, len(counts))
	for year, n := range counts {
		hist = append(hist, model.YearCount{Year: year, Count: n})
	}
	sort.Slice(hist, func(i, j int) bool { return hist[i].Year < hist[j].Year })
	return hist
}

// AggregateDemographics computes the audience estimate from resolved
// profiles. It fails as a unit: any missing input yields a failed Result and
// the report is assembled without demographics.
func AggregateDemographics(profiles []model.AuthorProfile, ratio Result[float64]) Result[model.Demographics] {
	if !ratio.OK() {
		return Fail[model.Demographics](fmt.Errorf("views-to-subscriber ratio: %w", ratio.Err))
	}

	classified := make([]model.AuthorProfile, len(profiles))
	for i, p := range profiles {
		if p.Gender == "" {
			p.Gender = lexicon.GuessGender(p.Name)
		}
		classified[i] = p
	}

	male, female, err := GenderSplit(classified)
	if err != nil {
		return Fail[model.Demographics](err)
	}

	hist := YearHistogramOf(classified)
	brackets, err := lexicon.PredictAgeBrackets(hist, male, ratio.Value)
	if err != nil {
		return Fail[model.Demographics](err)
	}

	return Ok(model.Demographics{
		MalePercentage:       male,
		FemalePercentage:     female,
		AuthorsSampled:       len(classified),
		CreationYearDivision: hist,
		AgeBrackets:          brackets,
	})
}
