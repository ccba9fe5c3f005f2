package tasks

import (
	"errors"
	"testing"
)

func TestFiltered(t *testing.T) {
	list := []Task{
		{ID: "1", Completed: false},
		{ID: "2", Completed: true},
		{ID: "3", Completed: false},
	}

	tests := []struct {
		mode Filter
		want []string
	}{
		{FilterAll, []string{"1", "2", "3"}},
		{FilterActive, []string{"1", "3"}},
		{FilterCompleted, []string{"2"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := Filtered(list, tt.mode)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFilteredDoesNotAlias(t *testing.T) {
	list := []Task{{ID: "1", Text: "a"}}
	got := Filtered(list, FilterAll)
	got[0].Text = "changed"
	if list[0].Text != "a" {
		t.Error("Filtered mutated its input")
	}
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name string
		list []Task
		want Stats
	}{
		{"empty", nil, Stats{}},
		{"quarter", []Task{{Completed: true}, {}, {}, {}}, Stats{Total: 4, Completed: 1, Active: 3, Progress: 25}},
		{"third rounds down", []Task{{Completed: true}, {}, {}}, Stats{Total: 3, Completed: 1, Active: 2, Progress: 33}},
		{"two thirds rounds up", []Task{{Completed: true}, {Completed: true}, {}}, Stats{Total: 3, Completed: 2, Active: 1, Progress: 67}},
		{"all done", []Task{{Completed: true}}, Stats{Total: 1, Completed: 1, Active: 0, Progress: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStats(tt.list); got != tt.want {
				t.Errorf("ComputeStats = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{"": FilterAll, "all": FilterAll, "Active": FilterActive, " completed ": FilterCompleted} {
		got, err := ParseFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseFilter(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFilter("done"); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("ParseFilter(done) err = %v", err)
	}
}

func TestParsePriority(t *testing.T) {
	for in, want := range map[string]Priority{"": PriorityMedium, "low": PriorityLow, "HIGH": PriorityHigh} {
		got, err := ParsePriority(in)
		if err != nil || got != want {
			t.Errorf("ParsePriority(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePriority("urgent"); !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("ParsePriority(urgent) err = %v", err)
	}
}
