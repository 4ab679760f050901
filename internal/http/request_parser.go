package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

// maxBodyBytes caps request bodies; records are small.
const maxBodyBytes = 1 << 20

// ErrMalformedBody is returned when a request body is not a JSON object.
var ErrMalformedBody = errors.New("malformed JSON body")

// decodeJSON decodes the request body into dst. An empty body decodes as an
// empty object so a create reports the missing fields and an update is a
// no-op patch.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after object", ErrMalformedBody)
	}
	return nil
}

// ParsePeriod reads month and year from query parameters. Missing values
// default to now's month and year; values that are present but malformed or
// out of range are a validation error.
func ParsePeriod(query url.Values, now time.Time) (core.Period, error) {
	period := core.CurrentPeriod(now)

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, records.Invalid(fmt.Errorf("month %q: %w", v, core.ErrInvalidMonth))
		}
		period.Month = m
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, records.Invalid(fmt.Errorf("year %q: %w", v, core.ErrInvalidYear))
		}
		period.Year = y
	}

	if err := period.Validate(); err != nil {
		return core.Period{}, records.Invalid(err)
	}
	return period, nil
}
