package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

func TestParsePeriod(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   url.Values
		want    core.Period
		wantErr error
	}{
		{
			name:  "both values provided",
			query: url.Values{"year": {"2023"}, "month": {"12"}},
			want:  core.Period{Month: 12, Year: 2023},
		},
		{
			name:  "empty query uses current month",
			query: url.Values{},
			want:  core.Period{Month: 6, Year: 2024},
		},
		{
			name:  "only month",
			query: url.Values{"month": {" 3 "}},
			want:  core.Period{Month: 3, Year: 2024},
		},
		{
			name:    "month out of range",
			query:   url.Values{"month": {"13"}},
			wantErr: core.ErrInvalidMonth,
		},
		{
			name:    "non numeric month",
			query:   url.Values{"month": {"june"}},
			wantErr: core.ErrInvalidMonth,
		},
		{
			name:    "non numeric year",
			query:   url.Values{"year": {"last"}},
			wantErr: core.ErrInvalidYear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriod(tt.query, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if !records.IsValidation(err) {
					t.Fatalf("err = %T, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "object", body: `{"description":"Lunch"}`},
		{name: "empty body", body: ``},
		{name: "malformed", body: `{"description":`, wantErr: true},
		{name: "trailing data", body: `{} {}`, wantErr: true},
		{name: "wrong type", body: `{"description": 5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f core.TransactionFields
			req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(tt.body))
			err := decodeJSON(httptest.NewRecorder(), req, &f)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedBody) {
					t.Fatalf("err = %v, want ErrMalformedBody", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
