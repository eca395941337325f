package queue

import (
	"testing"

	"github.com/riverqueue/river"
)

func TestBuildQueueConfig_MultiQueue(t *testing.T) {
	allocations := []QueueAllocation{
		{Name: "scenario_default", MaxWorkers: 5},
		{Name: "scenario_bulk", MaxWorkers: 2},
	}

	result := buildQueueConfig(allocations)

	if len(result) != 2 {
		t.Errorf("expected 2 queues, got %d", len(result))
	}

	tests := []struct {
		name       string
		maxWorkers int
	}{
		{"scenario_default", 5},
		{"scenario_bulk", 2},
	}

	for _, tt := range tests {
		if q, ok := result[tt.name]; !ok {
			t.Errorf("queue %q not found", tt.name)
		} else if q.MaxWorkers != tt.maxWorkers {
			t.Errorf("queue %q: expected MaxWorkers %d, got %d", tt.name, tt.maxWorkers, q.MaxWorkers)
		}
	}
}

func TestBuildQueueConfig_ZeroWorkersFallsBack(t *testing.T) {
	result := buildQueueConfig([]QueueAllocation{
		{Name: "scenario_default", MaxWorkers: 0},
	})

	if q, ok := result["scenario_default"]; !ok {
		t.Error("queue not found")
	} else if q.MaxWorkers != DefaultConcurrency {
		t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, q.MaxWorkers)
	}
}

func TestBuildQueueConfig_EmptyDefaultsToRiverDefault(t *testing.T) {
	result := buildQueueConfig(nil)

	if q, ok := result[river.QueueDefault]; !ok {
		t.Error("expected river default queue")
	} else if q.MaxWorkers != DefaultConcurrency {
		t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, q.MaxWorkers)
	}
}

func TestBuildQueueConfig_EmptyNameDefaultsToRiverDefault(t *testing.T) {
	result := buildQueueConfig([]QueueAllocation{
		{Name: "", MaxWorkers: 3},
	})

	if q, ok := result[river.QueueDefault]; !ok {
		t.Error("expected river default queue")
	} else if q.MaxWorkers != 3 {
		t.Errorf("expected 3 workers, got %d", q.MaxWorkers)
	}
}
