package dcf

import (
	"errors"
	"testing"
)

func fourStages() []GrowthStage {
	return []GrowthStage{
		{StartYear: 1, EndYear: 2, GrowthRate: 12, GDPWeight: 0.1, Rationale: "order backlog"},
		{StartYear: 3, EndYear: 5, GrowthRate: 9, GDPWeight: 0.3},
		{StartYear: 6, EndYear: 8, GrowthRate: 6, GDPWeight: 0.6},
		{StartYear: 9, EndYear: 10, GrowthRate: 3, GDPWeight: 0.9, Confidence: "LOW"},
	}
}

func TestResolveStageSchedule(t *testing.T) {
	schedule, err := ResolveStageSchedule(fourStages())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedule) != HorizonYears {
		t.Fatalf("expected %d rates, got %d", HorizonYears, len(schedule))
	}

	want := []float64{12, 12, 9, 9, 9, 6, 6, 6, 3, 3}
	for i, rate := range schedule {
		if rate != want[i] {
			t.Errorf("year %d: expected %.1f, got %.1f", i+1, want[i], rate)
		}
	}
}

func TestResolveStageSchedule_Empty(t *testing.T) {
	_, err := ResolveStageSchedule(nil)

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestResolveStageSchedule_Gap(t *testing.T) {
	stages := fourStages()
	stages[1].StartYear = 4 // leaves year 3 uncovered

	if _, err := ResolveStageSchedule(stages); err == nil {
		t.Fatal("expected error for non-contiguous stages, got nil")
	}
}

func TestResolveStageSchedule_Overlap(t *testing.T) {
	stages := fourStages()
	stages[1].StartYear = 2 // year 2 covered twice

	if _, err := ResolveStageSchedule(stages); err == nil {
		t.Fatal("expected error for overlapping stages, got nil")
	}
}

func TestResolveStageSchedule_ShortCoverage(t *testing.T) {
	stages := fourStages()
	stages[3].EndYear = 9 // year 10 uncovered

	_, err := ResolveStageSchedule(stages)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for short coverage, got %v", err)
	}
}

func TestResolveStageSchedule_BeyondHorizon(t *testing.T) {
	stages := fourStages()
	stages[3].EndYear = 11

	if _, err := ResolveStageSchedule(stages); err == nil {
		t.Fatal("expected error for stage beyond horizon, got nil")
	}
}

func TestResolveStageSchedule_InvertedStage(t *testing.T) {
	stages := fourStages()
	stages[0].StartYear, stages[0].EndYear = 2, 1

	if _, err := ResolveStageSchedule(stages); err == nil {
		t.Fatal("expected error for inverted stage, got nil")
	}
}

func TestResolveConvergenceSchedule_Endpoints(t *testing.T) {
	schedule := ResolveConvergenceSchedule(12, 3)

	if len(schedule) != HorizonYears {
		t.Fatalf("expected %d rates, got %d", HorizonYears, len(schedule))
	}
	// Endpoint equality is exact, not approximate.
	if schedule[0] != 12 {
		t.Errorf("year 1 should equal the initial rate, got %v", schedule[0])
	}
	if schedule[HorizonYears-1] != 3 {
		t.Errorf("year 10 should equal the terminal rate, got %v", schedule[HorizonYears-1])
	}
}

func TestResolveConvergenceSchedule_MonotonicDecline(t *testing.T) {
	schedule := ResolveConvergenceSchedule(12, 3)
	for i := 1; i < len(schedule); i++ {
		if schedule[i] > schedule[i-1] {
			t.Errorf("year %d: %.4f overshoots year %d: %.4f", i+1, schedule[i], i, schedule[i-1])
		}
	}
}

func TestResolveConvergenceSchedule_MonotonicRise(t *testing.T) {
	schedule := ResolveConvergenceSchedule(2, 8)
	for i := 1; i < len(schedule); i++ {
		if schedule[i] < schedule[i-1] {
			t.Errorf("year %d: %.4f dips below year %d: %.4f", i+1, schedule[i], i, schedule[i-1])
		}
	}
}

func TestCheckTerminalLinkage(t *testing.T) {
	stages := fourStages()

	if !CheckTerminalLinkage(stages, 3) {
		t.Error("final stage at 3% should link to 3% terminal growth")
	}
	if CheckTerminalLinkage(stages, 2.5) {
		t.Error("final stage at 3% should not link to 2.5% terminal growth")
	}
	if CheckTerminalLinkage(nil, 3) {
		t.Error("empty stage table should not report linkage")
	}
}
