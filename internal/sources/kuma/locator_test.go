package kuma

import (
	"errors"
	"strings"
	"testing"

	"statusmirror/internal/domain"
)

func TestLocatePreloadFromElement(t *testing.T) {
	html := `<html><head></head><body>
		<div id="app"></div>
		<script id="preload-data" type="application/json">
			{"config": {"slug": "main"}}
		</script>
	</body></html>`

	raw, err := LocatePreload("https://status.example.com/status/main", html)
	if err != nil {
		t.Fatalf("LocatePreload() error = %v", err)
	}
	if raw != `{"config": {"slug": "main"}}` {
		t.Errorf("LocatePreload() = %q", raw)
	}
}

func TestLocatePreloadFromWindowGlobal(t *testing.T) {
	html := `<html><body>
		<script>var other = 1;</script>
		<script>window.preloadData = {"config":{"theme":"dark"}};</script>
	</body></html>`

	raw, err := LocatePreload("endpoint", html)
	if err != nil {
		t.Fatalf("LocatePreload() error = %v", err)
	}
	if raw != `{"config":{"theme":"dark"}}` {
		t.Errorf("LocatePreload() = %q", raw)
	}
}

func TestLocatePreloadElementWinsOverGlobal(t *testing.T) {
	html := `<html><body>
		<script>window.preloadData = {"from":"global"};</script>
		<script id="preload-data">{"from":"element"}</script>
	</body></html>`

	raw, err := LocatePreload("endpoint", html)
	if err != nil {
		t.Fatalf("LocatePreload() error = %v", err)
	}
	if raw != `{"from":"element"}` {
		t.Errorf("LocatePreload() = %q, want element strategy to win", raw)
	}
}

func TestLocatePreloadBracesInsideStrings(t *testing.T) {
	html := `<html><body><script>
		window.preloadData = {config: {title: 'brace } in \'string\''}, note: "also }"};
		somethingElse();
	</script></body></html>`

	raw, err := LocatePreload("endpoint", html)
	if err != nil {
		t.Fatalf("LocatePreload() error = %v", err)
	}
	want := `{config: {title: 'brace } in \'string\''}, note: "also }"}`
	if raw != want {
		t.Errorf("LocatePreload() = %q, want %q", raw, want)
	}
}

func TestLocatePreloadNotFound(t *testing.T) {
	html := `<html><head><title>Maintenance</title></head><body>
		<script id="telemetry">track();</script>
		<p>We will be back shortly.</p>
	</body></html>`

	_, err := LocatePreload("https://status.example.com/status/main", html)
	if err == nil {
		t.Fatal("LocatePreload() expected error, got nil")
	}

	var notFound *domain.PayloadNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("LocatePreload() error type = %T, want *domain.PayloadNotFoundError", err)
	}
	if notFound.Endpoint != "https://status.example.com/status/main" {
		t.Errorf("Endpoint = %q", notFound.Endpoint)
	}
	if notFound.Snippet == "" || !strings.Contains(notFound.Snippet, "<html>") {
		t.Errorf("Snippet should hold the document head, got %q", notFound.Snippet)
	}
	if len(notFound.ScriptIDs) != 1 || notFound.ScriptIDs[0] != "telemetry" {
		t.Errorf("ScriptIDs = %v, want [telemetry]", notFound.ScriptIDs)
	}
}

func TestLocatePreloadSnippetIsBounded(t *testing.T) {
	html := "<html>" + strings.Repeat("x", 5000)

	_, err := LocatePreload("endpoint", html)
	var notFound *domain.PayloadNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *domain.PayloadNotFoundError, got %v", err)
	}
	if len(notFound.Snippet) > snippetLimit {
		t.Errorf("Snippet length = %d, want <= %d", len(notFound.Snippet), snippetLimit)
	}
}

func TestExtractObjectLiteral(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "simple",
			input: ` = {a: 1};`,
			want:  `{a: 1}`,
			ok:    true,
		},
		{
			name:  "nested objects",
			input: ` = {a: {b: {c: 1}}}; trailing`,
			want:  `{a: {b: {c: 1}}}`,
			ok:    true,
		},
		{
			name:  "unbalanced",
			input: ` = {a: {b: 1};`,
			ok:    false,
		},
		{
			name:  "no brace at all",
			input: ` = fetchLater();`,
			ok:    false,
		},
		{
			name:  "template literal with brace",
			input: " = {tpl: `a } b`, n: 2};",
			want:  "{tpl: `a } b`, n: 2}",
			ok:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractObjectLiteral(tt.input)
			if ok != tt.ok {
				t.Fatalf("extractObjectLiteral() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("extractObjectLiteral() = %q, want %q", got, tt.want)
			}
		})
	}
}
