// Package report renders the admin CSV exports.
package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/hongminglow/levelup-be/internal/models"
)

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("no data available to download")

const contentType = "text/csv; charset=utf-8"

// File is a generated download.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

var fullHeader = []string{"type", "id", "userId", "name", "email", "role", "amount", "status", "createdAt"}

var revenueHeader = []string{"Email", "Date", "Amount", "Status"}

// Full renders every user followed by every payment. Payment rows take the
// name and email of the user they belong to.
func Full(users []models.User, payments []models.Payment, now time.Time) (File, error) {
	if len(users) == 0 && len(payments) == 0 {
		return File{}, ErrEmpty
	}

	byID := make(map[string]models.User, len(users))
	sortedUsers := append([]models.User(nil), users...)
	sort.Slice(sortedUsers, func(i, j int) bool { return sortedUsers[i].ID < sortedUsers[j].ID })
	for _, u := range sortedUsers {
		byID[u.ID] = u
	}

	rows := [][]string{fullHeader}
	for _, u := range sortedUsers {
		rows = append(rows, []string{"User", u.ID, "", u.DisplayName, u.Email, string(u.Role), "", "", timestamp(u.CreatedAt)})
	}
	for _, p := range chronological(payments) {
		name, email := "Unknown", p.UserEmail
		if u, ok := byID[p.UserID]; ok {
			name, email = u.DisplayName, u.Email
		}
		rows = append(rows, []string{"Payment", p.ID, p.UserID, name, email, "", strconv.FormatInt(p.Amount, 10), string(p.Status), timestamp(p.CreatedAt)})
	}

	content, err := encode(rows)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        fmt.Sprintf("admin_report_%d.csv", now.UnixMilli()),
		ContentType: contentType,
		Content:     content,
	}, nil
}

// Revenue renders approved payments created within period. An empty period
// still yields the header row.
func Revenue(payments []models.Payment, period Period, now time.Time, loc *time.Location) (File, error) {
	rows := [][]string{revenueHeader}
	for _, p := range chronological(payments) {
		if p.Status != models.StatusApproved || !period.Contains(p.CreatedAt, now, loc) {
			continue
		}
		rows = append(rows, []string{p.UserEmail, p.CreatedAt.In(loc).Format("2006-01-02"), strconv.FormatInt(p.Amount, 10), string(p.Status)})
	}

	content, err := encode(rows)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        fmt.Sprintf("%s_revenue_report_%s.csv", period, now.UTC().Format("2006-01-02")),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func chronological(payments []models.Payment) []models.Payment {
	out := append([]models.Payment(nil), payments...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func encode(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
