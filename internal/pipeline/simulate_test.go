package pipeline

import (
	"math/rand"
	"testing"
	"time"

	"github.com/AlphaCodeSWE/NearYou/internal/domain/profile"
	"github.com/AlphaCodeSWE/NearYou/internal/domain/shop"
)

func TestVisitProbabilityBounds(t *testing.T) {
	categories := []string{"bar", "ristorante", "gelateria", "farmacia", "supermercato", "sala giochi", "", "BAR"}
	ages := []int{16, 22, 34, 35, 50, 51, 80}
	texts := []string{
		"Passa a trovarci!",
		"Sconto del 10% per te",
		"Offerta speciale solo oggi",
		"Incredibile sconto 99% su tutto",
		"Sconto 200% impossibile",
		"50% + 50%",
	}

	for _, cat := range categories {
		for _, age := range ages {
			for _, text := range texts {
				p := profile.Profile{UserID: 1, Age: age}
				m := shop.Match{ShopID: 1, Category: cat}
				got := visitProbability(p, m, text)
				if got < 0 || got > visitProbabilityCap {
					t.Errorf("probability(%q, age %d, %q) = %f, want [0, %.1f]",
						cat, age, text, got, visitProbabilityCap)
				}
			}
		}
	}
}

func TestVisitProbabilityBlankText(t *testing.T) {
	p := profile.Profile{Age: 25}
	m := shop.Match{Category: "bar"}

	for _, text := range []string{"", "   ", "\t\n"} {
		if got := visitProbability(p, m, text); got != 0 {
			t.Errorf("probability for blank text %q = %f, want 0", text, got)
		}
		if shouldVisit(p, m, text, rand.New(rand.NewSource(1))) {
			t.Errorf("shouldVisit true for blank text %q", text)
		}
	}
}

func TestVisitProbabilityDiscountRaises(t *testing.T) {
	p := profile.Profile{Age: 40}
	m := shop.Match{Category: "supermercato"}

	plain := visitProbability(p, m, "Vieni a trovarci")
	discount := visitProbability(p, m, "Sconto 20% sulla spesa")
	if discount <= plain {
		t.Errorf("discount probability %f not above plain %f", discount, plain)
	}

	small := visitProbability(p, m, "Sconto 5% sulla spesa")
	big := visitProbability(p, m, "Sconto 35% sulla spesa")
	if big <= small {
		t.Errorf("bigger discount %f not above smaller %f", big, small)
	}
}

func TestVisitProbabilityUnknownCategoryDefaultWeight(t *testing.T) {
	p := profile.Profile{Age: 40}
	base := visitProbability(p, shop.Match{Category: "categoria inventata"}, "Vieni!")
	if base != visitProbabilityBase {
		t.Errorf("unknown category probability = %f, want base %f", base, visitProbabilityBase)
	}
}

func TestShouldVisitDeterministic(t *testing.T) {
	p := profile.Profile{UserID: 3, Age: 28}
	m := shop.Match{ShopID: 9, Category: "bar"}
	text := "Sconto 15% sul secondo caffè"

	for seed := int64(0); seed < 50; seed++ {
		a := shouldVisit(p, m, text, rand.New(rand.NewSource(seed)))
		b := shouldVisit(p, m, text, rand.New(rand.NewSource(seed)))
		if a != b {
			t.Fatalf("seed %d: decisions differ (%v vs %v)", seed, a, b)
		}
	}
}

func TestSynthesizeVisitRanges(t *testing.T) {
	p := profile.Profile{UserID: 5, Age: 30, Profession: "barista", Interests: "vinile"}
	rng := rand.New(rand.NewSource(7))
	now := time.Date(2024, 5, 11, 16, 30, 0, 0, time.UTC) // Saturday

	for i := 0; i < 100; i++ {
		v := synthesizeVisit(p, shop.Match{ShopID: 2, Name: "Libreria Colibrì", Category: "libreria"}, now, rng)

		if v.VisitID == "" {
			t.Fatal("empty visit id")
		}
		if v.DurationMinutes < 10 || v.DurationMinutes > 30 {
			t.Errorf("libreria duration = %d, want 10..30", v.DurationMinutes)
		}
		// Saturday bumps spending 15% above the 10..50 base range.
		if v.EstimatedSpending < 10 || v.EstimatedSpending > 50*1.15 {
			t.Errorf("spending = %f, out of weekend-adjusted range", v.EstimatedSpending)
		}
		if v.Satisfaction < 6 || v.Satisfaction > 10 {
			t.Errorf("satisfaction = %d, want 6..10", v.Satisfaction)
		}
		if v.DayOfWeek != 6 {
			t.Errorf("day_of_week = %d, want 6 for Saturday", v.DayOfWeek)
		}
		if v.HourOfDay != 16 {
			t.Errorf("hour_of_day = %d, want 16", v.HourOfDay)
		}
		if !v.EndTime.Equal(v.StartTime.Add(time.Duration(v.DurationMinutes) * time.Minute)) {
			t.Error("end != start + duration")
		}
	}
}

func TestSynthesizeVisitUnknownCategoryDefaults(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC) // Wednesday

	v := synthesizeVisit(profile.Profile{UserID: 1, Age: 40}, shop.Match{ShopID: 3, Category: "planetario"}, now, rng)
	if v.DurationMinutes < 10 || v.DurationMinutes > 30 {
		t.Errorf("default duration = %d, want 10..30", v.DurationMinutes)
	}
	if v.EstimatedSpending < 10 || v.EstimatedSpending > 50 {
		t.Errorf("default spending = %f, want 10..50 on a weekday", v.EstimatedSpending)
	}
}

func TestIsoWeekday(t *testing.T) {
	cases := []struct {
		day  time.Time
		want int
	}{
		{time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), 1},  // Monday
		{time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), 6}, // Saturday
		{time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), 7}, // Sunday
	}
	for _, tc := range cases {
		if got := isoWeekday(tc.day); got != tc.want {
			t.Errorf("isoWeekday(%s) = %d, want %d", tc.day.Weekday(), got, tc.want)
		}
	}
}
