package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"taskvault/internal/models"
	"taskvault/internal/storage"
)

// GetSettings loads the settings record for an email.
func (s *Store) GetSettings(ctx context.Context, email string) (models.Settings, error) {
	var st models.Settings
	err := s.db.QueryRowContext(ctx, `SELECT email, name, theme, notif_push, notif_email, notif_alerts
        FROM settings WHERE email = ?`, email).
		Scan(&st.Email, &st.Name, &st.Theme, &st.Notifs.Push, &st.Notifs.Email, &st.Notifs.Alerts)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Settings{}, fmt.Errorf("settings %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

// UpsertSettings creates the record for an email on first use and merges
// later updates into it. The email column is the primary key, so a second
// call never produces a second row.
func (s *Store) UpsertSettings(ctx context.Context, u models.SettingsUpdate) (models.Settings, error) {
	u, err := storage.PrepareSettings(u)
	if err != nil {
		return models.Settings{}, err
	}

	current, err := s.GetSettings(ctx, u.Email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		current = models.DefaultSettings(u.Email)
	case err != nil:
		return models.Settings{}, err
	}
	u.Apply(&current)

	_, err = s.db.ExecContext(ctx, `INSERT INTO settings(email, name, theme, notif_push, notif_email, notif_alerts)
        VALUES(?, ?, ?, ?, ?, ?)
        ON CONFLICT(email) DO UPDATE SET name = excluded.name, theme = excluded.theme,
            notif_push = excluded.notif_push, notif_email = excluded.notif_email, notif_alerts = excluded.notif_alerts`,
		current.Email, current.Name, current.Theme, current.Notifs.Push, current.Notifs.Email, current.Notifs.Alerts)
	if err != nil {
		return models.Settings{}, fmt.Errorf("upsert settings: %w", err)
	}
	return s.GetSettings(ctx, u.Email)
}

// CreateTicket files a support ticket.
func (s *Store) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	t, err := storage.PrepareTicket(t, s.now())
	if err != nil {
		return models.Ticket{}, err
	}
	t.ID = newID()

	_, err = s.db.ExecContext(ctx, `INSERT INTO tickets(id, name, email, issue, status, created_at) VALUES(?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Email, t.Issue, t.Status, t.CreatedAt)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}
	s.logger.Info("ticket filed", slog.String("id", t.ID), slog.String("email", t.Email))
	return t, nil
}
