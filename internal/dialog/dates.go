package dialog

import (
	"strconv"
	"strings"
	"time"
)

// midnight truncates a time to its date, UTC.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDeadline turns free-text deadline input into a date. Accepted forms:
// "2006-01-02", "02/01/2006" (day first), "today", "tomorrow", "+N" for N
// days out, and "-" or "none" for no deadline (nil, nil). Anything else is a
// recoverable ValidationError carrying a format hint.
func ParseDeadline(text string, now time.Time) (*time.Time, error) {
	text = strings.TrimSpace(strings.ToLower(text))
	today := midnight(now)

	switch text {
	case "-", "none", "":
		return nil, nil
	case "today":
		return &today, nil
	case "tomorrow":
		d := today.AddDate(0, 0, 1)
		return &d, nil
	}

	if strings.HasPrefix(text, "+") {
		if days, err := strconv.Atoi(text[1:]); err == nil && days >= 0 {
			d := today.AddDate(0, 0, days)
			return &d, nil
		}
	}

	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if d, err := time.Parse(layout, text); err == nil {
			d = midnight(d)
			return &d, nil
		}
	}

	return nil, validationErrorf("unrecognized date %q: use YYYY-MM-DD, DD/MM/YYYY, today, tomorrow, +N, or - for none", text)
}
