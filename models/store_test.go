package models

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/barrosyan/sistema-pronto/config"
	"github.com/barrosyan/sistema-pronto/utils"
	"github.com/google/go-cmp/cmp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(sqlite.Open("file::memory:"))
	if err != nil {
		t.Fatalf("OpenDatabase error: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB error: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := MigrateTable(db); err != nil {
		t.Fatalf("MigrateTable error: %v", err)
	}
	return db
}

func userCtx(userId string) context.Context {
	return utils.SetUserIdInContext(context.Background(), userId)
}

func strPtr(s string) *string { return &s }

func TestCampaignCRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := userCtx("u1")

	c, err := CreateCampaign(ctx, db, &NewCampaign{Name: " Q1 ", Company: strPtr("Acme"), Objective: strPtr("  ")})
	if err != nil {
		t.Fatalf("CreateCampaign error: %v", err)
	}
	if c.Name != "Q1" || c.Objective != nil || c.Company == nil || *c.Company != "Acme" {
		t.Fatalf("unexpected campaign %+v", c)
	}
	if _, err := CreateCampaign(ctx, db, &NewCampaign{Name: "Q1"}); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	// another owner may reuse the name
	if _, err := CreateCampaign(userCtx("u2"), db, &NewCampaign{Name: "Q1"}); err != nil {
		t.Fatalf("CreateCampaign for u2 error: %v", err)
	}

	updated, err := UpdateCampaign(ctx, db, c.ID, &NewCampaign{Name: "Q1 renamed", Cadence: strPtr("weekly")})
	if err != nil {
		t.Fatalf("UpdateCampaign error: %v", err)
	}
	if updated.Name != "Q1 renamed" {
		t.Fatalf("expected renamed campaign, got %q", updated.Name)
	}
	if _, err := GetCampaign(userCtx("u2"), db, c.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("other owner expected not found, got %v", err)
	}
	list, err := ListCampaigns(ctx, db)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListCampaigns expected 1 campaign, got %d err=%v", len(list), err)
	}
	if _, err := DeleteCampaign(ctx, db, c.ID); err != nil {
		t.Fatalf("DeleteCampaign error: %v", err)
	}
	if _, err := GetCampaign(ctx, db, c.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("deleted campaign expected not found, got %v", err)
	}
}

func TestSaveCampaignDetails_InsertThenUpdate(t *testing.T) {
	db := openTestDB(t)
	ctx := userCtx("u1")

	c, err := SaveCampaignDetails(ctx, db, "Q1", &CampaignDetails{Company: strPtr("Acme"), Cadence: strPtr("daily")})
	if err != nil {
		t.Fatalf("SaveCampaignDetails insert error: %v", err)
	}
	c2, err := SaveCampaignDetails(ctx, db, "Q1", &CampaignDetails{Company: strPtr(""), Cadence: strPtr("weekly")})
	if err != nil {
		t.Fatalf("SaveCampaignDetails update error: %v", err)
	}
	if c2.ID != c.ID {
		t.Fatalf("expected the same campaign to be updated, got ids %d and %d", c.ID, c2.ID)
	}
	stored, err := GetCampaignByName(ctx, db, "u1", "Q1")
	if err != nil || stored == nil {
		t.Fatalf("GetCampaignByName error: %v", err)
	}
	if stored.Company != nil {
		t.Fatalf("empty company must be stored as NULL, got %q", *stored.Company)
	}
	if stored.Cadence == nil || *stored.Cadence != "weekly" {
		t.Fatalf("expected weekly cadence, got %v", stored.Cadence)
	}
}

func TestEvents_OrderedByStartDateNullsLast(t *testing.T) {
	db := openTestDB(t)
	ctx := userCtx("u1")
	inputs := []NewEvent{
		{Name: "undated"},
		{Name: "old", StartDate: strPtr("2024-01-10")},
		{Name: "new", StartDate: strPtr("2024-05-01"), EndDate: strPtr("2024-05-02")},
	}
	for i := range inputs {
		if _, err := CreateEvent(ctx, db, &inputs[i]); err != nil {
			t.Fatalf("CreateEvent(%s) error: %v", inputs[i].Name, err)
		}
	}
	if _, err := CreateEvent(ctx, db, &NewEvent{Name: "bad", StartDate: strPtr("2024-05-02"), EndDate: strPtr("2024-05-01")}); err == nil {
		t.Fatalf("expected error for end before start")
	}
	if _, err := CreateEvent(userCtx("u2"), db, &NewEvent{Name: "foreign"}); err != nil {
		t.Fatalf("CreateEvent for u2 error: %v", err)
	}

	events, err := ListEvents(ctx, db)
	if err != nil {
		t.Fatalf("ListEvents error: %v", err)
	}
	names := []string{}
	for _, e := range events {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"new", "old", "undated"}, names); diff != "" {
		t.Fatalf("event order mismatch (-want +got):\n%s", diff)
	}

	updated, err := UpdateEvent(ctx, db, events[2].ID, &NewEvent{Name: "dated", StartDate: strPtr("2023-12-31")})
	if err != nil {
		t.Fatalf("UpdateEvent error: %v", err)
	}
	if updated.Name != "dated" {
		t.Fatalf("expected renamed event, got %q", updated.Name)
	}
	if _, err := DeleteEvent(userCtx("u2"), db, events[0].ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("other owner must not delete, got %v", err)
	}
}

func TestPrivilegedRole(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := GrantPrivileged(ctx, db, "u1"); err != nil {
		t.Fatalf("GrantPrivileged error: %v", err)
	}
	// a second grant hits the unique index and is treated as granted
	if err := GrantPrivileged(ctx, db, "u1"); err != nil {
		t.Fatalf("second GrantPrivileged expected nil, got %v", err)
	}
	ok, err := IsPrivileged(ctx, db, "u1")
	if err != nil || !ok {
		t.Fatalf("IsPrivileged expected true, got %v err=%v", ok, err)
	}
	if err := RevokePrivileged(ctx, db, "u1"); err != nil {
		t.Fatalf("RevokePrivileged error: %v", err)
	}
	if ok, _ := IsPrivileged(ctx, db, "u1"); ok {
		t.Fatalf("IsPrivileged expected false after revoke")
	}
}

func TestGrantPrivileged_FreshTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := GrantPrivileged(ctx, db, "fresh"); err != nil {
		t.Fatalf("GrantPrivileged error: %v", err)
	}
	var count int64
	if err := db.Model(&UserRole{}).Where("user_id = ?", "fresh").Count(&count).Error; err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 role row, got %d", count)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"coded", &BackendError{Code: CodeUniqueViolation}, true},
		{"other code", &BackendError{Code: "500"}, false},
		{"sqlite text", errors.New("UNIQUE constraint failed: user_roles.user_id"), true},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("IsUniqueViolation(%s) expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestBackendError_UniqueViolationCode(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := db.Create(&UserRole{UserId: "u1", Role: RolePrivileged}).Error; err != nil {
		t.Fatalf("seed error: %v", err)
	}
	err := AsBackendError(db.WithContext(ctx).Create(&UserRole{UserId: "u1", Role: RolePrivileged}).Error)
	var be *BackendError
	if !errors.As(err, &be) || be.Code != CodeUniqueViolation {
		t.Fatalf("expected BackendError with code %s, got %v", CodeUniqueViolation, err)
	}
	if AsBackendError(nil) != nil {
		t.Fatalf("AsBackendError(nil) expected nil")
	}
}

func TestListProfiles_RequiresPrivilege(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if _, err := UpsertProfile(ctx, db, &NewProfile{ID: "u1", Email: strPtr("ana@acme.com"), FullName: strPtr("Ana")}); err != nil {
		t.Fatalf("UpsertProfile error: %v", err)
	}
	if _, err := UpsertProfile(ctx, db, &NewProfile{ID: "u1", FullName: strPtr("Ana Silva")}); err != nil {
		t.Fatalf("UpsertProfile update error: %v", err)
	}
	if _, err := ListProfiles(userCtx("u1"), db); !errors.Is(err, utils.ErrorForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	admin := utils.SetIsAdminInContext(userCtx("u1"), true)
	profiles, err := ListProfiles(admin, db)
	if err != nil || len(profiles) != 1 || *profiles[0].FullName != "Ana Silva" {
		t.Fatalf("unexpected profiles %+v err=%v", profiles, err)
	}
}

func TestImportCampaignData(t *testing.T) {
	db := openTestDB(t)
	ctx := userCtx("u1")

	metrics := ParseCampaignRows(parseCSV(t, "m.csv", "Campaign Name,Event Type,Total Count,2024-01-01\nQ1,Messages Sent,4,4\n"))
	summary, err := ImportCampaignData(ctx, db, metrics, "")
	if err != nil {
		t.Fatalf("ImportCampaignData error: %v", err)
	}
	if summary.Metrics != 1 || len(summary.CreatedCampaigns) != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	leads := ParseCampaignRows(parseCSV(t, "l.csv", "Campanha,LinkedIn,Nome,Empresa,Data Resposta Positiva\nX,u,Ana,Acme,2024-01-02\n"))
	summary, err = ImportCampaignData(ctx, db, leads, "Q1")
	if err != nil {
		t.Fatalf("ImportCampaignData leads error: %v", err)
	}
	if summary.Leads != 1 || len(summary.CreatedCampaigns) != 0 {
		t.Fatalf("targeted import must reuse Q1, got %+v", summary)
	}

	stored, err := ListLeads(ctx, db, &LeadFilter{Campaign: strPtr("Q1")})
	if err != nil || len(stored) != 1 || stored[0].UserId != "u1" {
		t.Fatalf("unexpected stored leads %+v err=%v", stored, err)
	}
	storedMetrics, err := ListCampaignMetrics(ctx, db, strPtr("Q1"))
	if err != nil || len(storedMetrics) != 1 {
		t.Fatalf("unexpected stored metrics %+v err=%v", storedMetrics, err)
	}
	if diff := cmp.Diff(DailyData{"2024-01-01": 4}, storedMetrics[0].DailyData); diff != "" {
		t.Fatalf("daily data round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestViewOwners_PrivilegedSeesSelected(t *testing.T) {
	db := openTestDB(t)
	for _, owner := range []string{"u1", "u2", "u3"} {
		if _, err := CreateCampaign(userCtx(owner), db, &NewCampaign{Name: "C-" + owner}); err != nil {
			t.Fatalf("CreateCampaign(%s) error: %v", owner, err)
		}
	}
	ctx := utils.SetViewOwnerIdsInContext(userCtx("u1"), []string{"u2"})
	list, _ := ListCampaigns(ctx, db)
	if len(list) != 1 {
		t.Fatalf("regular user expected 1 campaign, got %d", len(list))
	}
	ctx = utils.SetIsAdminInContext(ctx, true)
	list, _ = ListCampaigns(ctx, db)
	if len(list) != 2 {
		t.Fatalf("privileged user expected 2 campaigns, got %d", len(list))
	}
}

func TestPaginateLeads(t *testing.T) {
	db := openTestDB(t)
	ctx := userCtx("u1")
	leads := []*Lead{}
	for i := 0; i < 5; i++ {
		leads = append(leads, &Lead{Campaign: "Q1", Name: strings.Repeat("a", i+1), Status: LeadStatusNegative})
	}
	if err := CreateLeads(ctx, db, leads); err != nil {
		t.Fatalf("CreateLeads error: %v", err)
	}

	edges, page, err := PaginateLeads(ctx, db, nil, 2, nil)
	if err != nil {
		t.Fatalf("PaginateLeads error: %v", err)
	}
	if len(edges) != 2 || page.HasNextPage == nil || !*page.HasNextPage {
		t.Fatalf("unexpected first page %d %+v", len(edges), page)
	}
	seen := len(edges)
	after := page.EndCursor
	for {
		edges, page, err = PaginateLeads(ctx, db, nil, 2, &after)
		if err != nil {
			t.Fatalf("PaginateLeads error: %v", err)
		}
		seen += len(edges)
		if !*page.HasNextPage {
			break
		}
		after = page.EndCursor
	}
	if seen != 5 {
		t.Fatalf("expected 5 leads across pages, got %d", seen)
	}

	bad := "not base64!"
	if _, _, err := PaginateLeads(ctx, db, nil, 2, &bad); err == nil {
		t.Fatalf("expected invalid cursor error")
	}
}
