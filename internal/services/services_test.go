package services

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alimgiray/lotdesk/internal/hours"
	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/internal/realtime"
	"github.com/alimgiray/lotdesk/internal/repositories"
	"github.com/alimgiray/lotdesk/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newContentServices(t *testing.T) (*OrgContentService, *ExceptionDateService) {
	db := newTestDB(t)
	content := NewOrgContentService(repositories.NewOrgContentRepository(db))
	exceptions := NewExceptionDateService(repositories.NewExceptionDateRepository(db), content)
	return content, exceptions
}

func TestUserServiceEnsureUser(t *testing.T) {
	service := NewUserService(repositories.NewUserRepository(newTestDB(t)))

	_, err := service.EnsureUser(&models.User{ID: "auth|1"})
	assert.True(t, models.IsValidationError(err))

	user, err := service.EnsureUser(&models.User{ID: "auth|1", OrgID: "org-1", Email: "a@example.com", Name: "Ari"})
	require.NoError(t, err)
	assert.Equal(t, "org-1", user.OrgID)

	user, err = service.EnsureUser(&models.User{ID: "auth|1", OrgID: "org-2", Email: "a@example.com", Name: "Ari"})
	require.NoError(t, err)
	assert.Equal(t, "org-2", user.OrgID)

	stored, err := service.GetUserByID("auth|1")
	require.NoError(t, err)
	assert.Equal(t, "org-2", stored.OrgID)
}

func TestOrgContentServiceScheduleDefaults(t *testing.T) {
	content, _ := newContentServices(t)

	setting, err := content.GetSchedule("org-1")
	require.NoError(t, err)
	assert.False(t, setting.IsConfigured())
	assert.Equal(t, hours.DefaultSchedule(), setting.Effective())
}

func TestOrgContentServiceSaveSchedule(t *testing.T) {
	content, _ := newContentServices(t)

	w := hours.DefaultSchedule()
	w.Set(hours.Sunday, hours.ClosedDay())
	text, err := content.SaveSchedule("org-1", "user-1", w)
	require.NoError(t, err)
	assert.Contains(t, text, "* Sunday: Closed")

	setting, err := content.GetSchedule("org-1")
	require.NoError(t, err)
	assert.True(t, setting.IsConfigured())
	assert.Equal(t, w, setting.Effective())

	stored, err := content.GetContent("org-1")
	require.NoError(t, err)
	require.NotNil(t, stored.UpdatedBy)
	assert.Equal(t, "user-1", *stored.UpdatedBy)

	w.Set(hours.Monday, hours.DayHours{})
	_, err = content.SaveSchedule("org-1", "user-1", w)
	assert.True(t, models.IsValidationError(err))
}

func TestOrgContentServiceSaveScheduleText(t *testing.T) {
	content, _ := newContentServices(t)

	text, err := content.SaveScheduleText("org-1", "user-1", "* monday: closed\n* Funday: 1:00 AM - 2:00 AM")
	require.NoError(t, err)
	assert.Equal(t, "* Monday: Closed", text[:len("* Monday: Closed")])
	assert.Contains(t, text, "* Tuesday: 4:00 AM - 7:00 PM")
	assert.NotContains(t, text, "Funday")

	text, err = content.SaveScheduleText("org-1", "user-1", "   ")
	require.NoError(t, err)
	assert.Empty(t, text)

	setting, err := content.GetSchedule("org-1")
	require.NoError(t, err)
	assert.False(t, setting.IsConfigured())
}

func TestOrgContentServiceUpdateContent(t *testing.T) {
	content, _ := newContentServices(t)

	costs := "* Storage $40/day"
	hoursText := "* Saturday: 9:00 AM - 1:00 PM"
	updated, err := content.UpdateContent("org-1", "user-1", ContentPatch{
		ExtraCosts:              &costs,
		DefaultHoursOfOperation: &hoursText,
	})
	require.NoError(t, err)
	assert.Equal(t, costs, updated.ExtraCosts)
	require.NotNil(t, updated.DefaultHoursOfOperation)
	assert.Contains(t, *updated.DefaultHoursOfOperation, "* Saturday: 9:00 AM - 1:00 PM")

	docs := "* Photo ID"
	updated, err = content.UpdateContent("org-1", "user-2", ContentPatch{DocumentsNeeded: &docs})
	require.NoError(t, err)
	assert.Equal(t, costs, updated.ExtraCosts, "untouched fields survive")
	assert.Equal(t, docs, updated.DocumentsNeeded)
	assert.Equal(t, "user-2", *updated.UpdatedBy)

	schedule := hours.DefaultSchedule()
	_, err = content.UpdateContent("org-1", "user-1", ContentPatch{Schedule: &schedule, DefaultHoursOfOperation: &hoursText})
	assert.True(t, models.IsValidationError(err))
}

func TestOrgContentServiceBullets(t *testing.T) {
	content, _ := newContentServices(t)
	field := models.BulletFieldDocumentsNeeded

	text, err := content.AppendBulletItem("org-1", "user-1", field, "Photo ID")
	require.NoError(t, err)
	assert.Equal(t, "* Photo ID", text)

	text, err = content.AppendBulletItem("org-1", "user-1", field, "Proof of ownership")
	require.NoError(t, err)
	assert.Equal(t, "* Photo ID\n* Proof of ownership", text)

	_, err = content.AppendBulletItem("org-1", "user-1", field, "   ")
	assert.True(t, models.IsValidationError(err))

	text, err = content.DeleteBulletItem("org-1", "user-1", field, 0)
	require.NoError(t, err)
	assert.Equal(t, "* Proof of ownership", text)

	_, err = content.DeleteBulletItem("org-1", "user-1", field, 5)
	assert.ErrorIs(t, err, models.ErrNotFound)

	stored, err := content.GetContent("org-1")
	require.NoError(t, err)
	assert.Equal(t, "* Proof of ownership", stored.DocumentsNeeded)
	assert.Empty(t, stored.ExtraCosts)
}

func TestExceptionDateServiceCRUD(t *testing.T) {
	_, exceptions := newContentServices(t)

	created, err := exceptions.Create("org-1", ExceptionDateInput{Date: "12/25", Hours: "closed"})
	require.NoError(t, err)
	assert.Equal(t, "Closed", created.Hours)
	assert.NotZero(t, created.ID)

	_, err = exceptions.Create("org-1", ExceptionDateInput{Date: "12/25", Hours: "Closed"})
	assert.ErrorIs(t, err, models.ErrConflict)

	day := hours.OpenDay(hours.TimeRange{Start: hours.TimeOfDay{Hour: 8}, End: hours.TimeOfDay{Hour: 12}})
	updated, err := exceptions.Update("org-1", created.ID, ExceptionDateInput{Day: &day})
	require.NoError(t, err)
	assert.Equal(t, "12/25", updated.Date)
	assert.Equal(t, "8:00 AM - 12:00 PM", updated.Hours)

	parsed, ok := exceptions.ParseHours(updated)
	require.True(t, ok)
	assert.Equal(t, day, parsed)

	list, err := exceptions.List("org-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, exceptions.Delete("org-1", created.ID))
	assert.ErrorIs(t, exceptions.Delete("org-1", created.ID), models.ErrNotFound)
	_, err = exceptions.Update("org-1", created.ID, ExceptionDateInput{Hours: "Closed"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExceptionDateServiceValidation(t *testing.T) {
	_, exceptions := newContentServices(t)

	testCases := []struct {
		name   string
		input  ExceptionDateInput
		fields []string
	}{
		{name: "Bad date format", input: ExceptionDateInput{Date: "2024-12-25", Hours: "Closed"}, fields: []string{"date"}},
		{name: "Impossible day", input: ExceptionDateInput{Date: "04/31", Hours: "Closed"}, fields: []string{"date"}},
		{name: "Missing hours", input: ExceptionDateInput{Date: "07/04"}, fields: []string{"hours"}},
		{name: "Unreadable hours", input: ExceptionDateInput{Date: "07/04", Hours: "by appointment"}, fields: []string{"hours"}},
		{name: "Both invalid", input: ExceptionDateInput{Date: "7/4", Hours: "soon"}, fields: []string{"date", "hours"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := exceptions.Create("org-1", tc.input)
			var errs models.ValidationErrors
			require.ErrorAs(t, err, &errs)
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tc.fields, fields)
		})
	}

	_, err := exceptions.Create("org-1", ExceptionDateInput{Date: "02/29", Hours: "Closed"})
	assert.NoError(t, err, "leap day is allowed")
}

func TestExceptionDateServiceHoursOn(t *testing.T) {
	content, exceptions := newContentServices(t)

	w := hours.DefaultSchedule()
	w.Set(hours.Wednesday, hours.OpenDay(hours.TimeRange{Start: hours.TimeOfDay{Hour: 9}, End: hours.TimeOfDay{Hour: 17}}))
	_, err := content.SaveSchedule("org-1", "user-1", w)
	require.NoError(t, err)

	_, err = exceptions.Create("org-1", ExceptionDateInput{Date: "12/25", Hours: "Closed"})
	require.NoError(t, err)

	// 2024-12-25 was a Wednesday
	christmas := time.Date(2024, time.December, 25, 10, 0, 0, 0, time.UTC)
	resolved, err := exceptions.HoursOn("org-1", christmas)
	require.NoError(t, err)
	assert.True(t, resolved.Exception)
	assert.Equal(t, "Wednesday", resolved.Weekday)
	assert.Equal(t, "Closed", resolved.Text)

	regular := time.Date(2024, time.December, 18, 10, 0, 0, 0, time.UTC)
	resolved, err = exceptions.HoursOn("org-1", regular)
	require.NoError(t, err)
	assert.False(t, resolved.Exception)
	assert.Equal(t, "9:00 AM - 5:00 PM", resolved.Text)

	other, err := exceptions.HoursOn("org-2", regular)
	require.NoError(t, err)
	assert.Equal(t, "4:00 AM - 7:00 PM", other.Text)
}

func TestExceptionDateServiceIsOpenAt(t *testing.T) {
	content, exceptions := newContentServices(t)

	_, err := content.SaveScheduleText("org-1", "user-1", "* Monday: 9:00 AM - 5:00 PM")
	require.NoError(t, err)
	_, err = exceptions.Create("org-1", ExceptionDateInput{Date: "12/30", Hours: "1:00 PM - 3:00 PM"})
	require.NoError(t, err)

	testCases := []struct {
		name      string
		at        time.Time
		open      bool
		exception bool
	}{
		{name: "Monday morning", at: time.Date(2024, time.December, 23, 10, 0, 0, 0, time.UTC), open: true},
		{name: "Monday evening", at: time.Date(2024, time.December, 23, 17, 0, 0, 0, time.UTC), open: false},
		{name: "Exception before hours", at: time.Date(2024, time.December, 30, 10, 0, 0, 0, time.UTC), open: false, exception: true},
		{name: "Exception hours", at: time.Date(2024, time.December, 30, 14, 0, 0, 0, time.UTC), open: true, exception: true},
		{name: "Default Tuesday", at: time.Date(2024, time.December, 24, 5, 0, 0, 0, time.UTC), open: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			open, resolution, err := exceptions.IsOpenAt("org-1", tc.at)
			require.NoError(t, err)
			assert.Equal(t, tc.open, open)
			assert.Equal(t, tc.exception, resolution.Exception)
		})
	}
}

func TestTowRequestServiceLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewTowRequestRepository(db)
	bus := realtime.NewBus()
	feed := realtime.NewFeed(repo, 100, 10)
	service := NewTowRequestService(repo, bus, feed, 50)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := bus.Subscribe(ctx, realtime.TableTowRequests)
	require.NoError(t, err)

	_, err = service.Create(ctx, "org-1", TowRequestInput{CallerPhone: "555-0100"})
	assert.True(t, models.IsValidationError(err))

	req, err := service.Create(ctx, "org-1", TowRequestInput{
		PlateNumber:   " abc123 ",
		PickupAddress: "12 Main St",
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", req.PlateNumber)
	assert.Equal(t, models.TowRequestStatusPending, req.Status)

	change := <-changes
	assert.Equal(t, realtime.Change{Table: realtime.TableTowRequests, Type: realtime.ChangeInsert, ID: req.ID, OrgID: "org-1"}, change)

	_, err = service.Get("org-2", req.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = service.UpdateStatus(ctx, "org-1", req.ID, models.TowRequestStatusCompleted)
	assert.True(t, models.IsValidationError(err), "pending cannot jump to completed")

	_, err = service.UpdateStatus(ctx, "org-1", req.ID, "towed")
	assert.True(t, models.IsValidationError(err))

	updated, err := service.UpdateStatus(ctx, "org-1", req.ID, models.TowRequestStatusDispatched)
	require.NoError(t, err)
	assert.Equal(t, models.TowRequestStatusDispatched, updated.Status)

	change = <-changes
	assert.Equal(t, realtime.ChangeUpdate, change.Type)
}

func TestTowRequestServiceListPage(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewTowRequestRepository(db)
	service := NewTowRequestService(repo, realtime.NewBus(), realtime.NewFeed(repo, 100, 10), 50)

	for i := 0; i < 3; i++ {
		_, err := service.Create(context.Background(), "org-1", TowRequestInput{PlateNumber: "P", PickupAddress: "Lot"})
		require.NoError(t, err)
	}

	page, err := service.ListPage("org-1", "", 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	page, err = service.ListPage("org-1", page.NextCursor, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Empty(t, page.NextCursor)

	_, err = service.ListPage("org-1", "not-a-cursor!", 2)
	assert.True(t, models.IsValidationError(err))
}

func TestTowRequestServiceLive(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewTowRequestRepository(db)
	feed := realtime.NewFeed(repo, 100, 10)
	service := NewTowRequestService(repo, realtime.NewBus(), feed, 50)
	ctx := context.Background()

	first, err := service.Create(ctx, "org-1", TowRequestInput{PlateNumber: "ONE", PickupAddress: "Lot"})
	require.NoError(t, err)

	live, err := service.Live("org-1")
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, first.ID, live[0].ID)
	assert.True(t, feed.Seeded("org-1"))

	second, err := service.Create(ctx, "org-1", TowRequestInput{PlateNumber: "TWO", PickupAddress: "Lot"})
	require.NoError(t, err)

	// seeding happens once, later rows arrive through the feed
	require.True(t, feed.Enqueue(realtime.Change{Table: realtime.TableTowRequests, Type: realtime.ChangeInsert, ID: second.ID, OrgID: "org-1"}))
	id, ok := feed.Next(ctx)
	require.True(t, ok)
	require.NoError(t, feed.Process(ctx, id))

	live, err = service.Live("org-1")
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, second.ID, live[0].ID)
}

func TestExportServiceRoundTrip(t *testing.T) {
	content, exceptions := newContentServices(t)
	export := NewExportService(content, exceptions)

	w := hours.DefaultSchedule()
	w.Set(hours.Tuesday, hours.ClosedDay())
	w.Set(hours.Friday, hours.OpenDay(
		hours.TimeRange{Start: hours.TimeOfDay{Hour: 8}, End: hours.TimeOfDay{Hour: 12}},
		hours.TimeRange{Start: hours.TimeOfDay{Hour: 13}, End: hours.TimeOfDay{Hour: 17, Minute: 30}},
	))
	_, err := content.SaveSchedule("org-1", "user-1", w)
	require.NoError(t, err)
	_, err = exceptions.Create("org-1", ExceptionDateInput{Date: "01/01", Hours: "Closed"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.ExportSchedule("org-1", &buf))

	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(weeklyHoursSheet)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"Day", "Status", "Range 1", "Range 2"}, rows[0])
	assert.Equal(t, []string{"Tuesday", "Closed"}, rows[2])
	assert.Equal(t, []string{"Friday", "Open", "8:00 AM - 12:00 PM", "1:00 PM - 5:30 PM"}, rows[5])

	exceptionRows, err := file.GetRows(exceptionsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Date", "Hours"}, {"01/01", "Closed"}}, exceptionRows)

	text, err := export.ImportSchedule("org-2", "user-2", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, hours.Format(w), text)

	_, err = export.ImportSchedule("org-2", "user-2", bytes.NewReader([]byte("not a workbook")))
	assert.True(t, models.IsValidationError(err))
}
