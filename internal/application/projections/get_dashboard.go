package projections

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"lawoffice/internal/adapters/monitoring"
	"lawoffice/internal/domain/appointment"
	"lawoffice/internal/domain/dal"
	"lawoffice/internal/domain/inquiry"
	"lawoffice/internal/domain/legalcase"
)

// Dashboard sizes.
const (
	UpcomingLimit = 5
	ActivityLimit = 8
)

// Activity feed kinds.
const (
	FeedClient  = "client"
	FeedCase    = "case"
	FeedInquiry = "inquiry"
)

// DashboardCounts holds the summary statistics. A count whose query
// failed is zero and named in Failed.
type DashboardCounts struct {
	Clients               int
	ActiveCases           int
	BlogPosts             int
	ScheduledAppointments int
	PendingInquiries      int
	Failed                []string
}

// FeedItem is one entry of the recent activity feed.
type FeedItem struct {
	Kind  string
	Title string
	Href  string
	At    time.Time
}

// DashboardClientStore defines the client store interface needed by the dashboard projection.
type DashboardClientStore interface {
	ClientReader
}

// DashboardCaseStore defines the case store interface needed by the dashboard projection.
type DashboardCaseStore interface {
	CaseReader
}

// DashboardAppointmentStore defines the appointment store interface needed by the dashboard projection.
type DashboardAppointmentStore interface {
	Counter
	AppointmentReader
}

// DashboardInquiryStore defines the inquiry store interface needed by the dashboard projection.
type DashboardInquiryStore interface {
	InquiryReader
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	Clients      DashboardClientStore
	Cases        DashboardCaseStore
	Posts        Counter
	Appointments DashboardAppointmentStore
	Inquiries    DashboardInquiryStore
	Now          func() time.Time
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Counts   DashboardCounts
	Upcoming []appointment.WithClient
	Activity []FeedItem
}

// QueryGetDashboard aggregates the admin landing page.
// PRE: every store in deps is non-nil
// POST: the five counts are issued concurrently and all have completed
// before the result is returned; no individual failure fails the call
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) DashboardResult {
	now := deps.Now()
	return DashboardResult{
		Counts:   countAll(ctx, deps),
		Upcoming: upcomingAppointments(ctx, deps.Appointments, now),
		Activity: recentActivity(ctx, deps),
	}
}

func countAll(ctx context.Context, deps GetDashboardDeps) DashboardCounts {
	type countJob struct {
		name  string
		store Counter
		query dal.Query
		dest  *int
	}
	var counts DashboardCounts
	jobs := []countJob{
		{"clients", deps.Clients, dal.Query{}, &counts.Clients},
		{"active_cases", deps.Cases, dal.Query{}.Where(dal.Eq("status", legalcase.StatusActive)), &counts.ActiveCases},
		{"blog_posts", deps.Posts, dal.Query{}, &counts.BlogPosts},
		{"scheduled_appointments", deps.Appointments, dal.Query{}.Where(dal.Eq("status", appointment.StatusScheduled)), &counts.ScheduledAppointments},
		{"pending_inquiries", deps.Inquiries, dal.Query{}.Where(dal.Eq("status", inquiry.StatusPending)), &counts.PendingInquiries},
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
	)
	for _, job := range jobs {
		wg.Add(1)
		go func(job countJob) {
			defer wg.Done()
			n, err := job.store.Count(ctx, job.query)
			if err != nil {
				slog.Error("dashboard_count_failed", "count", job.name, "error", err)
				monitoring.DashboardCountFailures.WithLabelValues(job.name).Inc()
				mu.Lock()
				failed = append(failed, job.name)
				mu.Unlock()
				return
			}
			*job.dest = n
		}(job)
	}
	wg.Wait()

	sort.Strings(failed)
	counts.Failed = failed
	return counts
}

func upcomingAppointments(ctx context.Context, store AppointmentReader, now time.Time) []appointment.WithClient {
	q := dal.Query{OrderBy: "start_time", Limit: UpcomingLimit}.
		Where(dal.Gte("start_time", now), dal.Eq("status", appointment.StatusScheduled))
	items, err := store.List(ctx, q)
	if err != nil {
		slog.Error("dashboard_upcoming_failed", "error", err)
		return nil
	}
	return items
}

// recentActivity merges the newest clients, cases and inquiries by
// creation time.
func recentActivity(ctx context.Context, deps GetDashboardDeps) []FeedItem {
	latest := dal.Query{Limit: ActivityLimit}.Newest("created_at")
	var feed []FeedItem

	if clients, err := deps.Clients.List(ctx, latest); err != nil {
		slog.Error("dashboard_feed_failed", "source", FeedClient, "error", err)
	} else {
		for _, c := range clients {
			feed = append(feed, FeedItem{Kind: FeedClient, Title: c.FullName(), Href: "/admin/clients/" + c.ID, At: c.CreatedAt})
		}
	}
	if cases, err := deps.Cases.List(ctx, latest); err != nil {
		slog.Error("dashboard_feed_failed", "source", FeedCase, "error", err)
	} else {
		for _, c := range cases {
			feed = append(feed, FeedItem{Kind: FeedCase, Title: c.CaseNumber + " " + c.Title, Href: "/admin/cases/" + c.ID, At: c.CreatedAt})
		}
	}
	if inquiries, err := deps.Inquiries.List(ctx, latest); err != nil {
		slog.Error("dashboard_feed_failed", "source", FeedInquiry, "error", err)
	} else {
		for _, i := range inquiries {
			feed = append(feed, FeedItem{Kind: FeedInquiry, Title: i.Name + ": " + i.Subject, Href: "/admin/inquiries", At: i.CreatedAt})
		}
	}

	sort.SliceStable(feed, func(a, b int) bool { return feed[a].At.After(feed[b].At) })
	if len(feed) > ActivityLimit {
		feed = feed[:ActivityLimit]
	}
	return feed
}
