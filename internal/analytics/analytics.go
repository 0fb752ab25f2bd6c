// Package analytics derives read-only views over the domain collections:
// department queues, throughput counters, mean-time-to-completion reports
// and unseen-patient notifications. Every function is a pure derivation over
// a snapshot; nothing here mutates state.
package analytics

import (
	"math"
	"sort"
	"time"

	"nexus-hospital/internal/domain/entity"
)

// Classification buckets a department's MTTC for the bottleneck dashboard.
type Classification string

const (
	ClassAlert     Classification = "alert"
	ClassEfficient Classification = "efficient"
	ClassNormal    Classification = "normal"
)

// Classify applies the dashboard thresholds: over an hour is an alert, under
// twenty minutes (with at least one data point) is efficient. An MTTC of 0
// from an empty cohort classifies as normal, not efficient.
func Classify(mttcMinutes int) Classification {
	switch {
	case mttcMinutes > 60:
		return ClassAlert
	case mttcMinutes > 0 && mttcMinutes < 20:
		return ClassEfficient
	default:
		return ClassNormal
	}
}

// MTTCReport is the mean time to completion for one department's cohort of
// completed actions. Count distinguishes a true zero-minute mean from "no
// qualifying actions".
type MTTCReport struct {
	Department     entity.Department `json:"department"`
	MTTC           int               `json:"mttc"`
	Count          int               `json:"count"`
	Classification Classification    `json:"classification"`
}

// MTTC computes the report for one department. Only actions with status
// Completed and both timestamps present qualify; per-action elapsed time is
// clamped at zero and the mean is rounded to the nearest whole minute.
func MTTC(actions []entity.ClinicalAction, dept entity.Department) MTTCReport {
	var totalMinutes float64
	count := 0

	for _, a := range actions {
		if a.TargetDepartment != dept || a.Status != entity.StatusCompleted {
			continue
		}
		if a.CompletedAt == nil || a.Timestamp.IsZero() {
			continue
		}
		elapsed := a.CompletedAt.Sub(a.Timestamp).Minutes()
		totalMinutes += math.Max(0, elapsed)
		count++
	}

	report := MTTCReport{Department: dept}
	if count > 0 {
		report.MTTC = int(math.Round(totalMinutes / float64(count)))
		report.Count = count
	}
	report.Classification = Classify(report.MTTC)
	return report
}

// MTTCByDepartment computes reports for every department in display order.
func MTTCByDepartment(actions []entity.ClinicalAction) []MTTCReport {
	departments := entity.Departments()
	reports := make([]MTTCReport, 0, len(departments))
	for _, dept := range departments {
		reports = append(reports, MTTC(actions, dept))
	}
	return reports
}

// DepartmentQueue returns the department's actions filtered to the given
// statuses (all statuses when none given), ordered for the active work view:
// priority ascending (P1 first), then newest first within a priority. The
// sort is stable so equal keys keep the store's most-recent-first order.
func DepartmentQueue(actions []entity.ClinicalAction, dept entity.Department, statuses ...entity.ActionStatus) []entity.ClinicalAction {
	var queue []entity.ClinicalAction
	for _, a := range actions {
		if a.TargetDepartment != dept {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, a.Status) {
			continue
		}
		queue = append(queue, a)
	}

	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].Priority.Rank() != queue[j].Priority.Rank() {
			return queue[i].Priority.Rank() < queue[j].Priority.Rank()
		}
		return queue[i].Timestamp.After(queue[j].Timestamp)
	})

	return queue
}

func containsStatus(statuses []entity.ActionStatus, s entity.ActionStatus) bool {
	for _, status := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

// Counts is the per-department workload summary shown on department screens.
type Counts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// ActionCounts tallies the department's actions by status.
func ActionCounts(actions []entity.ClinicalAction, dept entity.Department) Counts {
	var counts Counts
	for _, a := range actions {
		if a.TargetDepartment != dept {
			continue
		}
		switch a.Status {
		case entity.StatusPending:
			counts.Pending++
		case entity.StatusInProgress:
			counts.InProgress++
		case entity.StatusCompleted:
			counts.Completed++
		}
	}
	return counts
}

// Unseen returns the doctor's assigned patients whose IDs are not in the
// acknowledged list, preserving collection order.
func Unseen(patients []entity.Patient, doctorID string, seenIDs []string) []entity.Patient {
	seen := make(map[string]struct{}, len(seenIDs))
	for _, id := range seenIDs {
		seen[id] = struct{}{}
	}

	var unseen []entity.Patient
	for _, p := range patients {
		if p.AttendingDoctorID != doctorID {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		unseen = append(unseen, p)
	}
	return unseen
}

// OldestPending reports the age of the oldest pending action in the
// department at the given instant, and false when the queue is empty.
func OldestPending(actions []entity.ClinicalAction, dept entity.Department, now time.Time) (time.Duration, bool) {
	var oldest time.Time
	found := false
	for _, a := range actions {
		if a.TargetDepartment != dept || a.Status != entity.StatusPending {
			continue
		}
		if !found || a.Timestamp.Before(oldest) {
			oldest = a.Timestamp
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return now.Sub(oldest), true
}
