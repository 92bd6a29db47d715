// Package delay parses human delay expressions into a millisecond offset from now
//
// Accepted forms:
//
//	nil, 0, "0", ""      immediate
//	1500                 bare number, already milliseconds
//	30m, 2h, 1d          N minutes, hours or days
//	1d 09:00             N days plus hours and minutes, added to now (not a wall-clock time)
//	Mon 10:00            next occurrence of weekday and time in now's location, within (0, 7d]
package delay

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	perr "crosspost/internal/platform/errors"
)

const (
	minuteMs = int64(time.Minute / time.Millisecond)
	hourMs   = int64(time.Hour / time.Millisecond)
	dayMs    = 24 * hourMs
	weekMs   = 7 * dayMs
)

var (
	reUnit    = regexp.MustCompile(`^(\d+)([mhd])$`)
	reDayTime = regexp.MustCompile(`^(\d+)d\s+(\d{1,2}):(\d{2})$`)
	reWeekday = regexp.MustCompile(`^(?i)(mon|tue|wed|thu|fri|sat|sun)\s+(\d{1,2}):(\d{2})$`)
	reDigits  = regexp.MustCompile(`^\d+$`)

	unitMs = map[string]int64{"m": minuteMs, "h": hourMs, "d": dayMs}

	weekdays = map[string]time.Weekday{
		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
		"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
	}
)

// Parser resolves expressions against an injectable clock
type Parser struct {
	now func() time.Time
}

// New returns a Parser using now, or the wall clock when now is nil
func New(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse resolves expr against the parser's clock
func (p *Parser) Parse(expr any) (int64, error) { return Parse(expr, p.now()) }

// Check reports whether expr is a valid delay without caring about the resulting value
func Check(expr any) error {
	_, err := Parse(expr, time.Now())
	return err
}

// Duration converts a millisecond delay into a time.Duration
func Duration(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }

// Parse converts expr into milliseconds from now
func Parse(expr any, now time.Time) (int64, error) {
	switch v := expr.(type) {
	case nil:
		return 0, nil
	case int:
		return number(int64(v), expr)
	case int8:
		return number(int64(v), expr)
	case int16:
		return number(int64(v), expr)
	case int32:
		return number(int64(v), expr)
	case int64:
		return number(v, expr)
	case uint:
		return unsigned(uint64(v), expr)
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return unsigned(v, expr)
	case float32:
		return float(float64(v), expr)
	case float64:
		return float(v, expr)
	case json.Number:
		return parseString(v.String(), now)
	case string:
		return parseString(v, now)
	default:
		return 0, invalid(expr)
	}
}

func parseString(s string, now time.Time) (int64, error) {
	lit := strings.TrimSpace(s)
	if lit == "" || lit == "0" {
		return 0, nil
	}

	if reDigits.MatchString(lit) {
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return 0, invalid(s)
		}
		return n, nil
	}

	if m := reUnit.FindStringSubmatch(lit); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, invalid(s)
		}
		return mul(n, unitMs[m[2]], s)
	}

	if m := reDayTime.FindStringSubmatch(lit); m != nil {
		days, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, invalid(s)
		}
		hh, mm, ok := clock(m[2], m[3])
		if !ok {
			return 0, invalid(s)
		}
		base, err := mul(days, dayMs, s)
		if err != nil {
			return 0, err
		}
		offset := int64(hh)*hourMs + int64(mm)*minuteMs
		if base > math.MaxInt64-offset {
			return 0, invalid(s)
		}
		return base + offset, nil
	}

	if m := reWeekday.FindStringSubmatch(lit); m != nil {
		hh, mm, ok := clock(m[2], m[3])
		if !ok {
			return 0, invalid(s)
		}
		return untilWeekday(now, weekdays[strings.ToLower(m[1])], hh, mm), nil
	}

	return 0, invalid(s)
}

// untilWeekday returns the milliseconds until the next wd at hh:mm in now's location
// a target at or before now rolls forward one week
func untilWeekday(now time.Time, wd time.Weekday, hh, mm int) int64 {
	days := (int(wd) - int(now.Weekday()) + 7) % 7
	y, mo, d := now.Date()
	target := time.Date(y, mo, d+days, hh, mm, 0, 0, now.Location())
	if !target.After(now) {
		target = time.Date(y, mo, d+days+7, hh, mm, 0, 0, now.Location())
	}

	diff := target.Sub(now)
	ms := int64((diff + time.Millisecond - 1) / time.Millisecond)
	// a DST fall-back inside the window can stretch the week by an hour
	return min(max(ms, 1), weekMs)
}

func clock(h, m string) (int, int, bool) {
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hh > 23 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}

func number(n int64, expr any) (int64, error) {
	if n < 0 {
		return 0, invalid(expr)
	}
	return n, nil
}

func unsigned(n uint64, expr any) (int64, error) {
	if n > math.MaxInt64 {
		return 0, invalid(expr)
	}
	return int64(n), nil
}

// float accepts whole, finite, non-negative values, which is how JSON decodes integers
func float(f float64, expr any) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, invalid(expr)
	}
	return int64(f), nil
}

func mul(n, unit int64, expr any) (int64, error) {
	if n > math.MaxInt64/unit {
		return 0, invalid(expr)
	}
	return n * unit, nil
}

func invalid(expr any) error {
	lit := fmt.Sprint(expr)
	if s, ok := expr.(string); ok {
		lit = s
	}
	return perr.WithField(perr.Newf(perr.ErrorCodeInvalidDelay, "invalid delay format: %q", lit), "delay")
}
