package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-hospital/internal/domain/entity"
)

func completedAction(dept entity.Department, created time.Time, minutes int) entity.ClinicalAction {
	done := created.Add(time.Duration(minutes) * time.Minute)
	return entity.ClinicalAction{
		TargetDepartment: dept,
		Status:           entity.StatusCompleted,
		Timestamp:        created,
		CompletedAt:      &done,
	}
}

func TestMTTC(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("mean of two completions", func(t *testing.T) {
		actions := []entity.ClinicalAction{
			completedAction(entity.DepartmentPharmacy, now, 10),
			completedAction(entity.DepartmentPharmacy, now, 30),
		}
		report := MTTC(actions, entity.DepartmentPharmacy)
		assert.Equal(t, 20, report.MTTC)
		assert.Equal(t, 2, report.Count)
	})

	t.Run("empty cohort is zero", func(t *testing.T) {
		report := MTTC(nil, entity.DepartmentLab)
		assert.Equal(t, 0, report.MTTC)
		assert.Equal(t, 0, report.Count)
		assert.Equal(t, ClassNormal, report.Classification)
	})

	t.Run("ignores non-completed and other departments", func(t *testing.T) {
		actions := []entity.ClinicalAction{
			completedAction(entity.DepartmentLab, now, 40),
			{TargetDepartment: entity.DepartmentPharmacy, Status: entity.StatusPending, Timestamp: now},
			completedAction(entity.DepartmentPharmacy, now, 12),
		}
		report := MTTC(actions, entity.DepartmentPharmacy)
		assert.Equal(t, 12, report.MTTC)
		assert.Equal(t, 1, report.Count)
	})

	t.Run("missing completion timestamp excluded", func(t *testing.T) {
		actions := []entity.ClinicalAction{
			{TargetDepartment: entity.DepartmentLab, Status: entity.StatusCompleted, Timestamp: now},
		}
		report := MTTC(actions, entity.DepartmentLab)
		assert.Equal(t, 0, report.Count)
	})

	t.Run("clock skew clamps at zero", func(t *testing.T) {
		actions := []entity.ClinicalAction{
			completedAction(entity.DepartmentLab, now, -15),
			completedAction(entity.DepartmentLab, now, 30),
		}
		report := MTTC(actions, entity.DepartmentLab)
		assert.Equal(t, 15, report.MTTC)
		assert.Equal(t, 2, report.Count)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		minutes int
		want    Classification
	}{
		{0, ClassNormal},
		{5, ClassEfficient},
		{19, ClassEfficient},
		{20, ClassNormal},
		{60, ClassNormal},
		{61, ClassAlert},
		{200, ClassAlert},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.minutes), "minutes=%d", tt.minutes)
	}
}

func TestMTTCByDepartment(t *testing.T) {
	reports := MTTCByDepartment(nil)
	require.Len(t, reports, len(entity.Departments()))
	for i, dept := range entity.Departments() {
		assert.Equal(t, dept, reports[i].Department)
	}
}

func TestDepartmentQueue(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	older := entity.ClinicalAction{ID: "older-p1", TargetDepartment: entity.DepartmentLab, Priority: entity.PriorityP1, Status: entity.StatusPending, Timestamp: now.Add(-time.Hour)}
	newer := entity.ClinicalAction{ID: "newer-p1", TargetDepartment: entity.DepartmentLab, Priority: entity.PriorityP1, Status: entity.StatusPending, Timestamp: now}
	routine := entity.ClinicalAction{ID: "routine", TargetDepartment: entity.DepartmentLab, Priority: entity.PriorityP3, Status: entity.StatusPending, Timestamp: now}
	urgent := entity.ClinicalAction{ID: "urgent", TargetDepartment: entity.DepartmentLab, Priority: entity.PriorityP2, Status: entity.StatusInProgress, Timestamp: now}
	elsewhere := entity.ClinicalAction{ID: "elsewhere", TargetDepartment: entity.DepartmentPharmacy, Priority: entity.PriorityP1, Status: entity.StatusPending, Timestamp: now}

	actions := []entity.ClinicalAction{routine, older, urgent, newer, elsewhere}

	t.Run("priority then recency ordering", func(t *testing.T) {
		queue := DepartmentQueue(actions, entity.DepartmentLab)
		require.Len(t, queue, 4)
		assert.Equal(t, "newer-p1", queue[0].ID)
		assert.Equal(t, "older-p1", queue[1].ID)
		assert.Equal(t, "urgent", queue[2].ID)
		assert.Equal(t, "routine", queue[3].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		queue := DepartmentQueue(actions, entity.DepartmentLab, entity.StatusInProgress)
		require.Len(t, queue, 1)
		assert.Equal(t, "urgent", queue[0].ID)
	})
}

func TestActionCounts(t *testing.T) {
	actions := []entity.ClinicalAction{
		{TargetDepartment: entity.DepartmentNursing, Status: entity.StatusPending},
		{TargetDepartment: entity.DepartmentNursing, Status: entity.StatusPending},
		{TargetDepartment: entity.DepartmentNursing, Status: entity.StatusInProgress},
		{TargetDepartment: entity.DepartmentNursing, Status: entity.StatusCompleted},
		{TargetDepartment: entity.DepartmentNursing, Status: entity.StatusRejected},
		{TargetDepartment: entity.DepartmentLab, Status: entity.StatusPending},
	}
	counts := ActionCounts(actions, entity.DepartmentNursing)
	assert.Equal(t, Counts{Pending: 2, InProgress: 1, Completed: 1}, counts)
}

func TestUnseen(t *testing.T) {
	patients := []entity.Patient{
		{ID: "p1", AttendingDoctorID: "d1"},
		{ID: "p2", AttendingDoctorID: "d1"},
		{ID: "p3", AttendingDoctorID: "d2"},
	}

	unseen := Unseen(patients, "d1", []string{"p1"})
	require.Len(t, unseen, 1)
	assert.Equal(t, "p2", unseen[0].ID)

	assert.Empty(t, Unseen(patients, "d1", []string{"p1", "p2"}))
	assert.Len(t, Unseen(patients, "d1", nil), 2)
}

func TestOldestPending(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	actions := []entity.ClinicalAction{
		{TargetDepartment: entity.DepartmentLab, Status: entity.StatusPending, Timestamp: now.Add(-45 * time.Minute)},
		{TargetDepartment: entity.DepartmentLab, Status: entity.StatusPending, Timestamp: now.Add(-10 * time.Minute)},
		{TargetDepartment: entity.DepartmentLab, Status: entity.StatusCompleted, Timestamp: now.Add(-3 * time.Hour)},
	}

	age, ok := OldestPending(actions, entity.DepartmentLab, now)
	require.True(t, ok)
	assert.Equal(t, 45*time.Minute, age)

	_, ok = OldestPending(actions, entity.DepartmentPharmacy, now)
	assert.False(t, ok)
}
