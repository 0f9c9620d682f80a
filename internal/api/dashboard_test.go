package api

import (
	"encoding/json"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecohabit/ecohabit/internal/habit"
)

func expectDashboardQueries(mock sqlmock.Sqlmock, now time.Time, today string, storedStreak int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, description, category, created_at FROM habits WHERE owner_id = $1 ORDER BY created_at")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "category", "created_at"}).
			AddRow("h1", testUserID, "Use reusable bottle", "", "Reduce Plastic", now.Add(-72*time.Hour)).
			AddRow("h2", testUserID, "Bike to work", "", "Sustainable Transport", now.Add(-72*time.Hour)).
			AddRow("h3", testUserID, "Meatless Monday", "", "Eco-Friendly Food", now.Add(-72*time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, habit_id, owner_id, completed_at, completed_on, status FROM completions WHERE owner_id = $1 ORDER BY completed_at")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "habit_id", "owner_id", "completed_at", "completed_on", "status"}).
			AddRow("c1", "h1", testUserID, now, today, "done"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, streak_count, created_at FROM profiles WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "streak_count", "created_at"}).
			AddRow(testUserID, "Eco Warrior", storedStreak, now.Add(-96*time.Hour)))
	if storedStreak != 1 {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET streak_count = $1 WHERE id = $2")).
			WithArgs(1, testUserID).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
}

func TestHandleDashboard(t *testing.T) {
	server, mock, _ := setupTestServer(t)
	now := time.Now()
	today := habit.DayOf(now, time.UTC)

	expectDashboardQueries(mock, now, today, 1)

	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	resp, err := server.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Dashboard struct {
			TodayCompleted int `json:"today_completed"`
			TotalHabits    int `json:"total_habits"`
			CompletionRate int `json:"completion_rate"`
			StreakCount    int `json:"streak_count"`
		} `json:"dashboard"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, 1, result.Dashboard.TodayCompleted)
	assert.Equal(t, 3, result.Dashboard.TotalHabits)
	assert.Equal(t, 33, result.Dashboard.CompletionRate)
	assert.Equal(t, 1, result.Dashboard.StreakCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleCompleteHabit(t *testing.T) {
	server, mock, _ := setupTestServer(t)
	now := time.Now()
	today := habit.DayOf(now, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, description, category, created_at FROM habits WHERE id = $1 AND owner_id = $2")).
		WithArgs(testHabitID, testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "category", "created_at"}).
			AddRow(testHabitID, testUserID, "Use reusable bottle", "", "Reduce Plastic", now.Add(-48*time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, habit_id, owner_id, completed_at, completed_on, status FROM completions WHERE owner_id = $1 AND habit_id = $2 ORDER BY completed_at")).
		WithArgs(testUserID, testHabitID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "habit_id", "owner_id", "completed_at", "completed_on", "status"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO completions (id, habit_id, owner_id, completed_at, completed_on, status) VALUES ($1, $2, $3, $4, $5, $6)")).
		WithArgs(sqlmock.AnyArg(), testHabitID, testUserID, sqlmock.AnyArg(), today, "done").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, description, category, created_at FROM habits WHERE owner_id = $1 ORDER BY created_at")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "category", "created_at"}).
			AddRow(testHabitID, testUserID, "Use reusable bottle", "", "Reduce Plastic", now.Add(-48*time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, habit_id, owner_id, completed_at, completed_on, status FROM completions WHERE owner_id = $1 ORDER BY completed_at")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "habit_id", "owner_id", "completed_at", "completed_on", "status"}).
			AddRow("c1", testHabitID, testUserID, now, today, "done"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, streak_count, created_at FROM profiles WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "streak_count", "created_at"}).
			AddRow(testUserID, "Eco Warrior", 0, now.Add(-96*time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET streak_count = $1 WHERE id = $2")).
		WithArgs(1, testUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest("POST", "/api/habits/"+testHabitID+"/complete", nil)
	resp, err := server.app.Test(req)
	require.NoError(t, err)
	server.engine.Wait()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		AlreadyCompleted bool `json:"already_completed"`
		Completion       struct {
			HabitID     string `json:"habit_id"`
			CompletedOn string `json:"completed_on"`
			Status      string `json:"status"`
		} `json:"completion"`
		Dashboard struct {
			CompletionRate int `json:"completion_rate"`
			StreakCount    int `json:"streak_count"`
		} `json:"dashboard"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.False(t, result.AlreadyCompleted)
	assert.Equal(t, testHabitID, result.Completion.HabitID)
	assert.Equal(t, today, result.Completion.CompletedOn)
	assert.Equal(t, "done", result.Completion.Status)
	assert.Equal(t, 100, result.Dashboard.CompletionRate)
	assert.Equal(t, 1, result.Dashboard.StreakCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleCompleteHabitNotFound(t *testing.T) {
	server, mock, _ := setupTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, description, category, created_at FROM habits WHERE id = $1 AND owner_id = $2")).
		WithArgs(testHabitID, testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "category", "created_at"}))

	req := httptest.NewRequest("POST", "/api/habits/"+testHabitID+"/complete", nil)
	resp, err := server.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "Habit not found", result["error"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleGetProfileUsesStreakCache(t *testing.T) {
	server, mock, miniRedis := setupTestServer(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, streak_count, created_at FROM profiles WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "streak_count", "created_at"}).
			AddRow(testUserID, "Eco Warrior", 2, now.Add(-96*time.Hour)))

	// A fresher recompute is parked in Redis.
	miniRedis.Set("streak:"+testUserID, "4")

	req := httptest.NewRequest("GET", "/api/profile", nil)
	resp, err := server.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Profile struct {
			Name        string `json:"name"`
			StreakCount int    `json:"streak_count"`
		} `json:"profile"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, "Eco Warrior", result.Profile.Name)
	assert.Equal(t, 4, result.Profile.StreakCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleMotivationIsTransient(t *testing.T) {
	server, _, miniRedis := setupTestServer(t)

	miniRedis.Set("motivation:"+testUserID, "Keep it up, planet hero!")

	req := httptest.NewRequest("GET", "/api/motivation", nil)
	resp, err := server.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "Keep it up, planet hero!", result["motivation"])

	// Consumed on first read.
	resp, err = server.app.Test(httptest.NewRequest("GET", "/api/motivation", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
