package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero falls back to default", limit: 0, want: DefaultLimit},
		{name: "negative falls back to default", limit: -5, want: DefaultLimit},
		{name: "in range is kept", limit: 40, want: 40},
		{name: "over max is capped", limit: 500, want: MaxLimit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLimit(tc.limit); got != tc.want {
				t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.limit, got, tc.want)
			}
		})
	}
}

func TestLimitWithBuffer(t *testing.T) {
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d, want 11", got)
	}
	if got := LimitWithBuffer(0); got != DefaultLimit+1 {
		t.Fatalf("LimitWithBuffer(0) = %d, want %d", got, DefaultLimit+1)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{
		CreatedAt: time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC),
		ID:        uuid.New(),
	}

	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("ParseCursor returned error: %v", err)
	}
	if out == nil {
		t.Fatal("expected cursor, got nil")
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", out.CreatedAt, in.CreatedAt)
	}
	if out.ID != in.ID {
		t.Fatalf("id = %s, want %s", out.ID, in.ID)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	cursor, err := ParseCursor("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor != nil {
		t.Fatalf("expected nil cursor for blank input, got %+v", cursor)
	}
}

func TestParseCursorInvalid(t *testing.T) {
	cases := []struct {
		name  string
		value string
	}{
		{name: "not base64", value: "!!!"},
		{name: "missing separator", value: "bm8tc2VwYXJhdG9y"},
		{name: "bad timestamp", value: encodeRaw("not-a-time|" + uuid.NewString())},
		{name: "bad uuid", value: encodeRaw(time.Now().UTC().Format(time.RFC3339Nano) + "|nope")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCursor(tc.value); err == nil {
				t.Fatalf("expected error for %q", tc.value)
			}
		})
	}
}

func encodeRaw(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}
