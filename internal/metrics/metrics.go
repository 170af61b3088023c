// metrics.go
//
// HostelGate: admissions, residency and fee management for a charitable hostel trust
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of hostelgate.
// hostelgate is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// hostelgate is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with hostelgate.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hostelgate"

var (
	// ApplicationsCreated counts new drafts per vertical
	ApplicationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_created_total",
		Help:      "Applications created, by vertical.",
	}, []string{"vertical"})

	// ApplicationTransitions counts application status changes by target status
	ApplicationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "application_transitions_total",
		Help:      "Application status changes, by new status.",
	}, []string{"status"})

	// Allocations counts allocate, transfer and vacate operations
	Allocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocations_total",
		Help:      "Allocation operations, by action.",
	}, []string{"action"})

	// Payments counts settled transactions by result
	Payments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Settled payment transactions, by status.",
	}, []string{"status"})

	// OTPSent counts one-time codes issued by purpose
	OTPSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_sent_total",
		Help:      "One-time codes issued, by purpose.",
	}, []string{"purpose"})

	// Notifications counts notification deliveries by channel and result
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notification deliveries, by channel and result.",
	}, []string{"channel", "result"})

	// JobRuns counts scheduled job runs by job and result
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Scheduled job runs, by job and result.",
	}, []string{"job", "result"})
)

// Result labels a success or failure outcome
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
