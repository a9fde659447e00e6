package store

import "fmt"

// GetSettings reads the singleton settings row, seeded by the migration.
func (s *Store) GetSettings() (*Settings, error) {
	st := &Settings{}
	var daily, evening int
	err := s.db.QueryRow(
		`SELECT daily_summary_time, evening_reminder_time, timezone,
		        daily_summary_enabled, evening_reminder_enabled
		 FROM user_settings WHERE id = 1`,
	).Scan(&st.DailySummaryTime, &st.EveningReminderTime, &st.Timezone, &daily, &evening)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	st.DailySummaryEnabled = daily == 1
	st.EveningReminderEnabled = evening == 1
	return st, nil
}

// SaveSettings updates the singleton row in place. The CHECK (id = 1)
// constraint guarantees a second row can never appear.
func (s *Store) SaveSettings(st Settings) error {
	_, err := s.db.Exec(
		`UPDATE user_settings
		 SET daily_summary_time = ?, evening_reminder_time = ?, timezone = ?,
		     daily_summary_enabled = ?, evening_reminder_enabled = ?
		 WHERE id = 1`,
		st.DailySummaryTime, st.EveningReminderTime, st.Timezone,
		boolInt(st.DailySummaryEnabled), boolInt(st.EveningReminderEnabled),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
