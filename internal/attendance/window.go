package attendance

import (
	"fmt"
	"time"
)

// WindowKeyLayout - формат ключа окна (календарная дата)
const WindowKeyLayout = "2006-01-02"

// Window - интервал [Start, End), в котором допускается одна отметка PRESENT
type Window struct {
	Start time.Time
	End   time.Time
	Key   string
}

// Contains сообщает, попадает ли момент времени в окно
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DailyPolicy задает окно как календарный день в указанном часовом поясе
type DailyPolicy struct {
	loc *time.Location
}

func NewDailyPolicy(loc *time.Location) *DailyPolicy {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyPolicy{loc: loc}
}

// Location возвращает часовой пояс политики
func (p *DailyPolicy) Location() *time.Location {
	return p.loc
}

// WindowAt возвращает окно, содержащее момент now
func (p *DailyPolicy) WindowAt(now time.Time) Window {
	local := now.In(p.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.loc)
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, 1),
		Key:   start.Format(WindowKeyLayout),
	}
}

// WindowForKey восстанавливает окно по ключу вида 2006-01-02
func (p *DailyPolicy) WindowForKey(key string) (Window, error) {
	day, err := time.ParseInLocation(WindowKeyLayout, key, p.loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid window key %q: %w", key, err)
	}
	return p.WindowAt(day), nil
}
