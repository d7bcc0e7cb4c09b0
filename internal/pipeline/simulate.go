package pipeline

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AlphaCodeSWE/NearYou/internal/domain/profile"
	"github.com/AlphaCodeSWE/NearYou/internal/domain/shop"
	"github.com/AlphaCodeSWE/NearYou/internal/domain/visit"
)

const (
	visitProbabilityBase = 0.3
	visitProbabilityCap  = 0.9
	discountBonus        = 0.3
	discountBonusCap     = 0.4
	offerAcceptedRate    = 0.7
)

// Visit duration in minutes, per shop category.
var visitDurationRanges = map[string][2]int{
	"ristorante":    {15, 45},
	"bar":           {5, 20},
	"supermercato":  {10, 30},
	"abbigliamento": {15, 40},
	"elettronica":   {20, 60},
	"farmacia":      {3, 10},
	"libreria":      {10, 30},
	"gelateria":     {5, 15},
	"parrucchiere":  {30, 90},
	"palestra":      {45, 120},
}

var defaultDurationRange = [2]int{10, 30}

// Estimated spending in euros, per shop category.
var spendingRanges = map[string][2]float64{
	"ristorante":    {15, 80},
	"bar":           {3, 15},
	"supermercato":  {20, 120},
	"abbigliamento": {25, 200},
	"elettronica":   {50, 500},
	"farmacia":      {8, 40},
	"libreria":      {10, 50},
	"gelateria":     {3, 12},
	"parrucchiere":  {25, 80},
	"palestra":      {30, 100},
}

var defaultSpendingRange = [2]float64{10, 50}

var categoryMultipliers = map[string]float64{
	"ristorante":    1.2,
	"bar":           1.3,
	"gelateria":     1.4,
	"abbigliamento": 1.1,
	"supermercato":  0.9,
	"farmacia":      0.7,
}

var discountRe = regexp.MustCompile(`(\d+)%`)

// visitProbability computes the probability that the user walks into the
// shop after seeing the notification. The result is always in
// [0, visitProbabilityCap]; unknown categories fall back to weight 1.
func visitProbability(p profile.Profile, m shop.Match, text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	probability := visitProbabilityBase

	lower := strings.ToLower(text)
	if strings.Contains(text, "%") || strings.Contains(lower, "sconto") || strings.Contains(lower, "offerta") {
		probability += discountBonus

		if match := discountRe.FindStringSubmatch(text); match != nil {
			discount, _ := strconv.Atoi(match[1])
			bonus := float64(discount) / 100
			if bonus > discountBonusCap {
				bonus = discountBonusCap
			}
			probability += bonus
		}
	}

	category := strings.ToLower(m.Category)
	if mult, ok := categoryMultipliers[category]; ok {
		probability *= mult
	}

	switch {
	case (category == "bar" || category == "gelateria") && p.Age < 35:
		probability *= 1.2
	case category == "farmacia" && p.Age > 50:
		probability *= 1.3
	}

	if probability > visitProbabilityCap {
		probability = visitProbabilityCap
	}
	if probability < 0 {
		probability = 0
	}
	return probability
}

// shouldVisit draws against visitProbability using the injected source,
// so a fixed seed gives a reproducible decision.
func shouldVisit(p profile.Profile, m shop.Match, text string, rng *rand.Rand) bool {
	probability := visitProbability(p, m, text)
	if probability == 0 {
		return false
	}
	return rng.Float64() < probability
}

// synthesizeVisit builds a plausible visit record for the pair. Duration
// and spending come from per-category ranges; spending is nudged up on
// weekends and scaled by a coarse age band; satisfaction is skewed
// toward high scores.
func synthesizeVisit(p profile.Profile, m shop.Match, now time.Time, rng *rand.Rand) visit.Visit {
	category := strings.ToLower(m.Category)

	durRange, ok := visitDurationRanges[category]
	if !ok {
		durRange = defaultDurationRange
	}
	duration := durRange[0] + rng.Intn(durRange[1]-durRange[0]+1)

	spendRange, ok := spendingRanges[category]
	if !ok {
		spendRange = defaultSpendingRange
	}
	spending := spendRange[0] + rng.Float64()*(spendRange[1]-spendRange[0])

	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		spending *= 1.15
	}
	switch {
	case p.Age < 25:
		spending *= 0.85
	case p.Age > 50:
		spending *= 1.1
	}

	start := now.UTC()
	return visit.Visit{
		VisitID:           uuid.NewString(),
		UserID:            p.UserID,
		ShopID:            m.ShopID,
		OfferID:           0,
		StartTime:         start,
		EndTime:           start.Add(time.Duration(duration) * time.Minute),
		DurationMinutes:   duration,
		OfferAccepted:     rng.Float64() < offerAcceptedRate,
		EstimatedSpending: spending,
		Satisfaction:      6 + rng.Intn(5), // 6..10, generally positive
		DayOfWeek:         isoWeekday(start),
		HourOfDay:         start.Hour(),
		UserAge:           p.Age,
		UserProfession:    p.Profession,
		UserInterests:     p.Interests,
		ShopName:          m.Name,
		ShopCategory:      m.Category,
		CreatedAt:         start,
	}
}

// isoWeekday maps Go's Sunday-first weekday to ISO Monday=1..Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
