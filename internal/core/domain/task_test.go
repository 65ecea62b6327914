package domain

import (
	"testing"
	"time"
)

func TestGenerateID(t *testing.T) {
	id1 := GenerateID()
	id2 := GenerateID()

	if id1 == "" {
		t.Error("expected non-empty ID")
	}
	if id2 == "" {
		t.Error("expected non-empty ID")
	}
	if id1 == id2 {
		t.Error("expected unique IDs")
	}
}

func TestNewTask(t *testing.T) {
	payload := map[string]string{"key": "value"}

	task := NewTask(TaskTypePublishItem, payload)

	if task.ID == "" {
		t.Error("expected non-empty ID")
	}
	if task.Type != TaskTypePublishItem {
		t.Errorf("expected type %s, got %s", TaskTypePublishItem, task.Type)
	}
	if task.Payload["key"] != "value" {
		t.Error("expected payload to be set")
	}
	if task.Status != TaskStatusPending {
		t.Errorf("expected status %s, got %s", TaskStatusPending, task.Status)
	}
	if task.Attempts != 0 {
		t.Errorf("expected attempts 0, got %d", task.Attempts)
	}
	if task.MaxAttempts != 3 {
		t.Errorf("expected max attempts 3, got %d", task.MaxAttempts)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if task.ScheduledFor.IsZero() {
		t.Error("expected ScheduledFor to be set")
	}
}

func TestNewPublishItemTask(t *testing.T) {
	contentID := "content-456"

	task := NewPublishItemTask(contentID)

	if task.Type != TaskTypePublishItem {
		t.Errorf("expected type %s, got %s", TaskTypePublishItem, task.Type)
	}
	if task.ContentID() != contentID {
		t.Errorf("expected content ID %s, got %s", contentID, task.ContentID())
	}
}

func TestNewPublishDueTask(t *testing.T) {
	task := NewPublishDueTask()

	if task.Type != TaskTypePublishDue {
		t.Errorf("expected type %s, got %s", TaskTypePublishDue, task.Type)
	}
	if task.ContentID() != "" {
		t.Errorf("expected empty content ID, got %s", task.ContentID())
	}
}

func TestTask_ContentID(t *testing.T) {
	tests := []struct {
		name     string
		payload  map[string]string
		expected string
	}{
		{
			name:     "with content_id",
			payload:  map[string]string{"content_id": "content-123"},
			expected: "content-123",
		},
		{
			name:     "without content_id",
			payload:  map[string]string{"other": "value"},
			expected: "",
		},
		{
			name:     "nil payload",
			payload:  nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Payload: tt.payload}
			if got := task.ContentID(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestTask_CanRetry(t *testing.T) {
	tests := []struct {
		name        string
		attempts    int
		maxAttempts int
		expected    bool
	}{
		{"no attempts yet", 0, 3, true},
		{"one attempt", 1, 3, true},
		{"two attempts", 2, 3, true},
		{"max attempts reached", 3, 3, false},
		{"over max attempts", 4, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Attempts: tt.attempts, MaxAttempts: tt.maxAttempts}
			if got := task.CanRetry(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTask_IsReady(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name         string
		status       TaskStatus
		scheduledFor time.Time
		expected     bool
	}{
		{"pending and past scheduled", TaskStatusPending, past, true},
		{"pending and future scheduled", TaskStatusPending, future, false},
		{"processing", TaskStatusProcessing, past, false},
		{"completed", TaskStatusCompleted, past, false},
		{"failed", TaskStatusFailed, past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Status: tt.status, ScheduledFor: tt.scheduledFor}
			if got := task.IsReady(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTask_MarkProcessing(t *testing.T) {
	task := NewTask(TaskTypePublishItem, nil)

	task.MarkProcessing()

	if task.Status != TaskStatusProcessing {
		t.Errorf("expected status %s, got %s", TaskStatusProcessing, task.Status)
	}
	if task.StartedAt == nil {
		t.Error("expected StartedAt to be set")
	}
	if task.Attempts != 1 {
		t.Errorf("expected attempts 1, got %d", task.Attempts)
	}
}

func TestTask_MarkCompleted(t *testing.T) {
	task := NewTask(TaskTypePublishItem, nil)
	task.Error = "some error"

	task.MarkCompleted()

	if task.Status != TaskStatusCompleted {
		t.Errorf("expected status %s, got %s", TaskStatusCompleted, task.Status)
	}
	if task.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
	if task.Error != "" {
		t.Error("expected Error to be cleared")
	}
}

func TestTask_Retry_ExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempts        int
		expectedBackoff time.Duration
	}{
		{0, 1 * time.Second},  // 2^0 = 1
		{1, 2 * time.Second},  // 2^1 = 2
		{2, 4 * time.Second},  // 2^2 = 4
		{3, 8 * time.Second},  // 2^3 = 8
		{10, 5 * time.Minute}, // Capped at 5 minutes
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			task := NewTask(TaskTypePublishItem, nil)
			task.Attempts = tt.attempts
			before := time.Now()

			task.Retry("error")

			expectedMin := before.Add(tt.expectedBackoff)
			expectedMax := before.Add(tt.expectedBackoff + time.Second)

			if task.ScheduledFor.Before(expectedMin) || task.ScheduledFor.After(expectedMax) {
				t.Errorf("attempts=%d: expected ScheduledFor between %v and %v, got %v",
					tt.attempts, expectedMin, expectedMax, task.ScheduledFor)
			}
			if task.Status != TaskStatusPending {
				t.Errorf("expected status %s, got %s", TaskStatusPending, task.Status)
			}
		})
	}
}

func TestScheduledJob_IsDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		enabled  bool
		nextRun  time.Time
		expected bool
	}{
		{"enabled and past", true, past, true},
		{"enabled and future", true, future, false},
		{"disabled and past", false, past, false},
		{"disabled and future", false, future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &ScheduledJob{Enabled: tt.enabled, NextRun: tt.nextRun}
			if got := job.IsDue(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestScheduledJob_UpdateNextRun(t *testing.T) {
	interval := 30 * time.Minute
	job := &ScheduledJob{
		Interval: interval,
	}

	before := time.Now()
	job.UpdateNextRun()
	after := time.Now()

	if job.LastRun == nil {
		t.Error("expected LastRun to be set")
	}
	if job.LastRun.Before(before) || job.LastRun.After(after) {
		t.Error("expected LastRun to be around now")
	}

	expectedNextRun := job.LastRun.Add(interval)
	if job.NextRun != expectedNextRun {
		t.Errorf("expected NextRun %v, got %v", expectedNextRun, job.NextRun)
	}
}

func TestDefaultSchedule(t *testing.T) {
	jobs := DefaultSchedule()

	if len(jobs) == 0 {
		t.Fatal("expected at least one default job")
	}

	found := false
	for _, job := range jobs {
		if job.ID == "publish-due" {
			found = true
			if job.Type != TaskTypePublishDue {
				t.Errorf("expected type %s, got %s", TaskTypePublishDue, job.Type)
			}
			if job.Interval != time.Minute {
				t.Errorf("expected interval 1m, got %v", job.Interval)
			}
			if !job.Enabled {
				t.Error("expected job to be enabled")
			}
		}
	}
	if !found {
		t.Error("expected to find publish-due job")
	}
}
