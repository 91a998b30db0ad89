package lunar

import (
	"math"
	"testing"
	"time"

	"github.com/chrissnell/hilal/pkg/coord"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name              string
		time              time.Time
		expectedPhaseName string
		illuminationRange [2]float64 // min, max
		isWaxing          bool
	}{
		{
			// Known new moon: Jan 21, 2023 20:53 UTC, sampled just after
			name:              "New Moon Jan 2023",
			time:              time.Date(2023, 1, 21, 21, 0, 0, 0, time.UTC),
			expectedPhaseName: "New Moon",
			illuminationRange: [2]float64{0.0, 0.05},
			isWaxing:          true,
		},
		{
			// Known full moon: Feb 5, 2023 18:29 UTC
			name:              "Full Moon Feb 2023",
			time:              time.Date(2023, 2, 5, 18, 29, 0, 0, time.UTC),
			expectedPhaseName: "Full Moon",
			illuminationRange: [2]float64{0.95, 1.0},
			isWaxing:          false,
		},
		{
			// Known first quarter: Jan 28, 2023 15:19 UTC
			name:              "First Quarter Jan 2023",
			time:              time.Date(2023, 1, 28, 15, 19, 0, 0, time.UTC),
			expectedPhaseName: "First Quarter",
			illuminationRange: [2]float64{0.45, 0.55},
			isWaxing:          true,
		},
		{
			// Known third quarter: Feb 13, 2023 16:01 UTC
			name:              "Third Quarter Feb 2023",
			time:              time.Date(2023, 2, 13, 16, 1, 0, 0, time.UTC),
			expectedPhaseName: "Third Quarter",
			illuminationRange: [2]float64{0.45, 0.55},
			isWaxing:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Calculate(tt.time)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}

			if result.PhaseName != tt.expectedPhaseName {
				t.Errorf("PhaseName = %q, expected %q", result.PhaseName, tt.expectedPhaseName)
			}

			if result.Illumination < tt.illuminationRange[0] || result.Illumination > tt.illuminationRange[1] {
				t.Errorf("Illumination = %.3f, expected in range [%.2f, %.2f]",
					result.Illumination, tt.illuminationRange[0], tt.illuminationRange[1])
			}

			if result.IsWaxing != tt.isWaxing {
				t.Errorf("IsWaxing = %v, expected %v", result.IsWaxing, tt.isWaxing)
			}
		})
	}
}

func TestPhaseProgression(t *testing.T) {
	// Test that phase increases monotonically over a lunar cycle
	start := time.Date(2023, 1, 21, 20, 53, 0, 0, time.UTC) // New moon
	prevPhase := -1.0

	for day := 0; day < 29; day++ {
		currentTime := start.Add(time.Duration(day) * 24 * time.Hour)
		result, err := Calculate(currentTime)
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}

		// Phase should generally increase (allowing for wrap-around near 1.0)
		if prevPhase >= 0 && prevPhase < 0.9 {
			if result.Phase < prevPhase-0.01 {
				t.Errorf("Day %d: phase decreased from %.3f to %.3f", day, prevPhase, result.Phase)
			}
		}
		prevPhase = result.Phase
	}
}

func TestIlluminationRange(t *testing.T) {
	// Test illumination stays in valid range [0, 1] for random times
	for year := 2020; year <= 2025; year++ {
		for month := 1; month <= 12; month++ {
			testTime := time.Date(year, time.Month(month), 15, 12, 0, 0, 0, time.UTC)
			result, err := Calculate(testTime)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}

			if result.Illumination < 0 || result.Illumination > 1 {
				t.Errorf("Illumination %.3f out of range [0, 1] for %v", result.Illumination, testTime)
			}

			if result.Phase < 0 || result.Phase >= 1 {
				t.Errorf("Phase %.3f out of range [0, 1) for %v", result.Phase, testTime)
			}

			if result.AgeDays < 0 || result.AgeDays > 29.9 {
				t.Errorf("AgeDays %.3f out of range [0, 29.9] for %v", result.AgeDays, testTime)
			}

			if result.Elongation < 0 || result.Elongation >= 360 {
				t.Errorf("Elongation %.3f out of range [0, 360) for %v", result.Elongation, testTime)
			}
		}
	}
}

func TestPhaseNameCoverage(t *testing.T) {
	// Test that all 8 phase names are produced over a lunar cycle
	// Sample every 3 hours to catch narrow quarter windows (49-51% illumination)
	start := time.Date(2023, 1, 21, 20, 53, 0, 0, time.UTC)
	phaseNames := make(map[string]bool)

	for hour := 0; hour < 30*24; hour += 3 {
		currentTime := start.Add(time.Duration(hour) * time.Hour)
		result, err := Calculate(currentTime)
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}
		phaseNames[result.PhaseName] = true
	}

	expectedPhases := []string{
		"New Moon", "Waxing Crescent", "First Quarter", "Waxing Gibbous",
		"Full Moon", "Waning Gibbous", "Third Quarter", "Waning Crescent",
	}

	for _, phase := range expectedPhases {
		if !phaseNames[phase] {
			t.Errorf("Phase %q not observed over lunar cycle", phase)
		}
	}
}

func TestSynodicMonth(t *testing.T) {
	// Verify synodic month constant matches expected value
	expected := 29.530588853
	if math.Abs(SynodicMonth-expected) > 0.000001 {
		t.Errorf("SynodicMonth = %.9f, expected %.9f", SynodicMonth, expected)
	}
}

func TestCrescent(t *testing.T) {
	t.Run("first quarter northern hemisphere", func(t *testing.T) {
		// Jan 28, 2023 15:19 UTC: first quarter
		// Observer in New York (40.7°N, 74.0°W)
		ts := time.Date(2023, 1, 28, 15, 19, 0, 0, time.UTC)
		result := Crescent(ts, coord.Location{Latitude: 40.7, Longitude: -74.0})

		if math.IsNaN(result.Rotation) {
			t.Fatal("Rotation is NaN")
		}

		// Illumination should be ~0.5 at first quarter
		if result.Illumination < 0.4 || result.Illumination > 0.6 {
			t.Errorf("Illumination = %.3f, expected ~0.5 at first quarter", result.Illumination)
		}

		// Phase angle should be ~90° at quarter
		if result.PhaseAngle < 70 || result.PhaseAngle > 110 {
			t.Errorf("PhaseAngle = %.1f°, expected ~90° at first quarter", result.PhaseAngle)
		}

		// a waxing Moon is lit from the west
		if result.BrightLimbAngle < 180 || result.BrightLimbAngle > 360 {
			t.Errorf("BrightLimbAngle = %.1f°, expected a westward bright limb", result.BrightLimbAngle)
		}

		t.Logf("First quarter NYC: rotation=%.1f° chi=%.1f° theta=%.1f° q=%.1f° theta_local=%.1f° k=%.3f",
			result.Rotation, result.BrightLimbAngle, result.TerminatorAngle,
			result.ParallacticAngle, result.LocalTerminator, result.Illumination)
	})

	t.Run("southern hemisphere differs from northern", func(t *testing.T) {
		ts := time.Date(2023, 1, 28, 20, 0, 0, 0, time.UTC)
		north := Crescent(ts, coord.Location{Latitude: 40.7, Longitude: -74.0}) // NYC
		south := Crescent(ts, coord.Location{Latitude: -33.9, Longitude: 18.4}) // Cape Town

		diff := math.Abs(north.Rotation - south.Rotation)
		if diff < 10 {
			t.Errorf("N/S rotation difference = %.1f°, expected significant difference (>10°)", diff)
		}
		t.Logf("Northern rotation=%.1f°, Southern rotation=%.1f°, diff=%.1f°",
			north.Rotation, south.Rotation, diff)
	})

	t.Run("full moon", func(t *testing.T) {
		// Feb 5, 2023 18:29 UTC: full moon
		ts := time.Date(2023, 2, 5, 18, 29, 0, 0, time.UTC)
		result := Crescent(ts, coord.Location{Latitude: 40.7, Longitude: -74.0})

		if math.IsNaN(result.Rotation) {
			t.Fatal("Rotation is NaN at full moon")
		}
		if result.Illumination < 0.95 {
			t.Errorf("Illumination = %.3f, expected >0.95 at full moon", result.Illumination)
		}
	})

	t.Run("new moon", func(t *testing.T) {
		// Jan 21, 2023 20:53 UTC: new moon
		ts := time.Date(2023, 1, 21, 20, 53, 0, 0, time.UTC)
		result := Crescent(ts, coord.Location{Latitude: 40.7, Longitude: -74.0})

		if math.IsNaN(result.Rotation) {
			t.Fatal("Rotation is NaN at new moon")
		}
		if result.Illumination > 0.05 {
			t.Errorf("Illumination = %.3f, expected <0.05 at new moon", result.Illumination)
		}
	})

	t.Run("angle range check across a year", func(t *testing.T) {
		locations := []coord.Location{
			{Latitude: 40.7, Longitude: -74.0},  // NYC
			{Latitude: -33.9, Longitude: 18.4},  // Cape Town
			{Latitude: 51.5, Longitude: -0.1},   // London
			{Latitude: 35.7, Longitude: 139.7},  // Tokyo
			{Latitude: -23.5, Longitude: -46.6}, // São Paulo
			{Latitude: 64.1, Longitude: -21.9},  // Reykjavik
		}
		for _, loc := range locations {
			for month := 1; month <= 12; month++ {
				ts := time.Date(2023, time.Month(month), 15, 22, 0, 0, 0, time.UTC)
				result := Crescent(ts, loc)
				if math.IsNaN(result.Rotation) || math.IsInf(result.Rotation, 0) {
					t.Errorf("Bad rotation at lat=%.1f lon=%.1f month=%d: %f",
						loc.Latitude, loc.Longitude, month, result.Rotation)
				}
				if result.BrightLimbAngle < 0 || result.BrightLimbAngle >= 360 {
					t.Errorf("BrightLimbAngle %.3f out of range at lat=%.1f month=%d",
						result.BrightLimbAngle, loc.Latitude, month)
				}
			}
		}
	})
}

func TestPhaseAngle(t *testing.T) {
	// Meeus example 48.a: ψ = 110.7929°, R = 149971520 km, Δ = 368410 km
	i := PhaseAngle(110.7929, 149971520, 368410)
	if math.Abs(i-69.0756) > 1e-3 {
		t.Errorf("PhaseAngle = %.4f, expected 69.0756", i)
	}
	if k := Illumination(i); math.Abs(k-0.6786) > 1e-4 {
		t.Errorf("Illumination = %.4f, expected 0.6786", k)
	}
}

func TestBrightLimb(t *testing.T) {
	// Meeus example 48.a: χ = 285.0°
	moon := coord.Equatorial{RA: 134.6885, Dec: 13.7684}
	sun := coord.Equatorial{RA: 20.6579, Dec: 8.6964}
	if chi := BrightLimb(moon, sun); math.Abs(chi-285.0) > 0.1 {
		t.Errorf("BrightLimb = %.2f, expected 285.0", chi)
	}
}

func TestWaxingFlipsAtNewMoon(t *testing.T) {
	result, err := Calculate(time.Date(2023, 1, 21, 21, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	newMoon := result.PreviousNewMoon
	if d := newMoon.Sub(time.Date(2023, 1, 21, 20, 53, 0, 0, time.UTC)); d.Abs() > 2*time.Minute {
		t.Fatalf("PreviousNewMoon = %v, expected within 2m of 20:53 UTC", newMoon)
	}

	before, err := Calculate(newMoon.Add(-2 * time.Minute))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if before.IsWaxing {
		t.Error("Expected waning just before new moon")
	}

	after, err := Calculate(newMoon.Add(2 * time.Minute))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !after.IsWaxing {
		t.Error("Expected waxing just after new moon")
	}
}

func TestWaxingWaning(t *testing.T) {
	// New moon to full moon should be waxing
	newMoon := time.Date(2023, 1, 21, 20, 53, 0, 0, time.UTC)
	result, err := Calculate(newMoon.Add(7 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !result.IsWaxing {
		t.Error("Expected waxing phase 7 days after new moon")
	}

	// Full moon to new moon should be waning
	fullMoon := time.Date(2023, 2, 5, 18, 29, 0, 0, time.UTC)
	result, err = Calculate(fullMoon.Add(7 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.IsWaxing {
		t.Error("Expected waning phase 7 days after full moon")
	}
}

func BenchmarkCalculate(b *testing.B) {
	ts := time.Date(2023, 1, 28, 15, 19, 0, 0, time.UTC)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Calculate(ts)
	}
}

func BenchmarkCrescent(b *testing.B) {
	ts := time.Date(2023, 1, 28, 15, 19, 0, 0, time.UTC)
	loc := coord.Location{Latitude: 40.7, Longitude: -74.0}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Crescent(ts, loc)
	}
}
