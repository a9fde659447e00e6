package store

import (
	"fmt"
	"time"
)

// Aggregate queries backing the digest computations. All read-only.

// CountTasksCreatedBetween counts tasks created in [from, to], date-inclusive.
func (s *Store) CountTasksCreatedBetween(from, to time.Time) (int, error) {
	return s.countOne(
		`SELECT COUNT(*) FROM tasks WHERE date(created_at) BETWEEN ? AND ?`,
		from.Format(dateOnly), to.Format(dateOnly),
	)
}

// CountTasksCompletedBetween counts tasks whose completion stamp falls in
// [from, to], date-inclusive.
func (s *Store) CountTasksCompletedBetween(from, to time.Time) (int, error) {
	return s.countOne(
		`SELECT COUNT(*) FROM tasks WHERE date(completed_at) BETWEEN ? AND ?`,
		from.Format(dateOnly), to.Format(dateOnly),
	)
}

// CountTasksCompletedOnTimeBetween counts completions in the range that
// happened on or before the task's own deadline.
func (s *Store) CountTasksCompletedOnTimeBetween(from, to time.Time) (int, error) {
	return s.countOne(
		`SELECT COUNT(*) FROM tasks
		 WHERE date(completed_at) BETWEEN ? AND ?
		 AND date(completed_at) <= deadline`,
		from.Format(dateOnly), to.Format(dateOnly),
	)
}

// CountTasksOverdueAsOf counts non-completed tasks with a deadline strictly
// before the given date.
func (s *Store) CountTasksOverdueAsOf(day time.Time) (int, error) {
	return s.countOne(
		`SELECT COUNT(*) FROM tasks WHERE deadline < ? AND status != 'completed'`,
		day.Format(dateOnly),
	)
}

// CountTasksCompletedByDay buckets completions per day over [from, to] and
// returns one count per day, oldest first. Days with no completions are zero.
func (s *Store) CountTasksCompletedByDay(from, to time.Time) ([]int, error) {
	rows, err := s.db.Query(
		`SELECT date(completed_at), COUNT(*) FROM tasks
		 WHERE date(completed_at) BETWEEN ? AND ?
		 GROUP BY date(completed_at)`,
		from.Format(dateOnly), to.Format(dateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("completions by day: %w", err)
	}
	defer rows.Close()

	byDay := map[string]int{}
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		byDay[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var counts []int
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		counts = append(counts, byDay[d.Format(dateOnly)])
	}
	return counts, nil
}

// CountProjectsCompletedBetween counts projects completed in [from, to].
func (s *Store) CountProjectsCompletedBetween(from, to time.Time) (int, error) {
	return s.countOne(
		`SELECT COUNT(*) FROM projects WHERE date(completed_at) BETWEEN ? AND ?`,
		from.Format(dateOnly), to.Format(dateOnly),
	)
}

// CountActiveProjects counts projects currently in the active status.
func (s *Store) CountActiveProjects() (int, error) {
	return s.countOne(`SELECT COUNT(*) FROM projects WHERE status = 'active'`)
}

// PriorityBreakdownBetween counts tasks created in [from, to] per priority.
func (s *Store) PriorityBreakdownBetween(from, to time.Time) (map[Priority]int, error) {
	rows, err := s.db.Query(
		`SELECT priority, COUNT(*) FROM tasks
		 WHERE date(created_at) BETWEEN ? AND ?
		 GROUP BY priority`,
		from.Format(dateOnly), to.Format(dateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("priority breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := map[Priority]int{}
	for rows.Next() {
		var p Priority
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, err
		}
		breakdown[p] = n
	}
	return breakdown, rows.Err()
}

func (s *Store) countOne(query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
