package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantJSON    bool
		key         string
		want        string
		wantErr     bool
	}{
		{
			name:        "json string",
			body:        `{"content":"  buy milk  ","owner":"artem"}`,
			contentType: "application/json",
			wantJSON:    true,
			key:         "content",
			want:        "buy milk",
		},
		{
			name:     "json number without content type",
			body:     `{"number": 3}`,
			wantJSON: true,
			key:      "number",
			want:     "3",
		},
		{
			name:        "form encoded",
			body:        "owner=nikita&content=hello+world",
			contentType: "application/x-www-form-urlencoded",
			key:         "content",
			want:        "hello world",
		},
		{
			name:     "missing key",
			body:     `{"content":"x"}`,
			wantJSON: true,
			key:      "owner",
			want:     "",
		},
		{
			name: "empty body",
			body: "",
			key:  "content",
			want: "",
		},
		{
			name:        "malformed json",
			body:        `{"content":`,
			contentType: "application/json",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			p := NewRequestBodyParser(req)
			err := p.Parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if p.Parse() == nil {
					t.Error("second Parse() should return the same error")
				}
				return
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_GetText(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"line one\nline two\u0007"}`))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := p.GetText("content"); got != "line one\nline two" {
		t.Errorf("GetText() = %q", got)
	}
	if got := p.Get("content"); got != "line oneline two" {
		t.Errorf("Get() = %q", got)
	}
}

func TestRequestBodyParser_GetInt64(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":42,"bad":"x","frac":1.5}`))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got, ok := p.GetInt64("id"); !ok || got != 42 {
		t.Errorf("GetInt64(id) = %d, %v", got, ok)
	}
	for _, key := range []string{"bad", "frac", "missing"} {
		if _, ok := p.GetInt64(key); ok {
			t.Errorf("GetInt64(%s) should fail", key)
		}
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	body := `{"content":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	rec := httptest.NewRecorder()
	if _, ok := parseBody(rec, req); ok {
		t.Fatal("parseBody() should reject oversized bodies")
	}
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  plain  ":   "plain",
		"tab\there":   "tabhere",
		"bell\x07":    "bell",
		"del\x7fete":  "delete",
		"ünïcode ok":  "ünïcode ok",
		"multi\nline": "multiline",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
