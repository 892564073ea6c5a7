package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(component string) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, nil),
	})
	return logger, buf
}

func TestMiddlewareInjectsLogger(t *testing.T) {
	logger, buf := newBufferLogger(ComponentHTTP)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("handled")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	Middleware(logger)(inner).ServeHTTP(rec, req)

	out := buf.String()
	if !strings.Contains(out, "handled") {
		t.Errorf("expected handler log in output, got %q", out)
	}
	if !strings.Contains(out, FieldComponent+"="+ComponentHTTP) {
		t.Errorf("expected component field in output, got %q", out)
	}
}

func TestRequestIDMiddlewareTagsLogs(t *testing.T) {
	logger, buf := newBufferLogger(ComponentHTTP)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("handled")
	})
	chain := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string {
		return "req_fixed"
	})(inner))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/theme", nil)
	chain.ServeHTTP(rec, req)

	if out := buf.String(); !strings.Contains(out, FieldRequestID+"=req_fixed") {
		t.Errorf("expected request id field in output, got %q", out)
	}
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("FromContext() = nil, want fallback logger")
	}
	if logger.Component() != "unknown" {
		t.Errorf("Component() = %q, want unknown", logger.Component())
	}
}

func TestStructuredLoggerHTTPEndLevels(t *testing.T) {
	tests := []struct {
		statusCode int
		wantLevel  string
	}{
		{200, "level=INFO"},
		{404, "level=WARN"},
		{500, "level=ERROR"},
	}

	for _, tt := range tests {
		logger, buf := newBufferLogger(ComponentHTTP)
		sl := NewStructuredLogger(logger)

		req := httptest.NewRequest(http.MethodGet, "/reports", nil)
		sl.LogHTTPEnd(context.Background(), req, tt.statusCode, 12, "192.0.2.1")

		out := buf.String()
		if !strings.Contains(out, tt.wantLevel) {
			t.Errorf("status %d: expected %s in output, got %q", tt.statusCode, tt.wantLevel, out)
		}
		if !strings.Contains(out, FieldPath+"=/reports") {
			t.Errorf("status %d: expected path field in output, got %q", tt.statusCode, out)
		}
		if !strings.Contains(out, FieldClientIP+"=192.0.2.1") {
			t.Errorf("status %d: expected client ip field in output, got %q", tt.statusCode, out)
		}
	}
}

func TestStructuredLoggerReminderQueued(t *testing.T) {
	logger, buf := newBufferLogger(ComponentReport)
	sl := NewStructuredLogger(logger)

	sl.LogReminderQueued(context.Background(), "m1", "Andi Pratama", 40000)

	out := buf.String()
	for _, want := range []string{
		FieldMemberID + "=m1",
		FieldDebt + "=40000",
		FieldOperation + "=" + OpRemind,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}

func TestLogFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithMember("m1", "Andi").
		WithOperation(OpExport).
		WithError(nil)

	if _, ok := fields[FieldError]; ok {
		t.Error("WithError(nil) must not add an error field")
	}

	slice := fields.ToSlice()
	if len(slice) != 2*len(fields) {
		t.Errorf("ToSlice() length = %d, want %d", len(slice), 2*len(fields))
	}

	got := map[string]any{}
	for i := 0; i < len(slice); i += 2 {
		got[slice[i].(string)] = slice[i+1]
	}
	if got[FieldMemberID] != "m1" || got[FieldMemberName] != "Andi" {
		t.Errorf("member fields = %v, want m1/Andi", got)
	}
	if got[FieldOperation] != OpExport {
		t.Errorf("operation field = %v, want %v", got[FieldOperation], OpExport)
	}
}
