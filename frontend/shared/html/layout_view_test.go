package html

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"fleetcheck/frontend/shared/nav"
)

func TestPageEscapesAndSetsLanguage(t *testing.T) {
	body := Fragment(func(b *Builder) {
		b.Fmt(`<p>%s</p>`, "<script>alert(1)</script>")
		b.Flash("saved", "")
	})
	data := nav.TopNavData{
		DisplayName: "Ion",
		Role:        "workshop",
		Language:    "bg",
		LogoutLabel: "Изход",
		Links:       []nav.Link{{Href: "/tasker/repairs", Label: "Ремонти", Active: true}},
	}

	var buf bytes.Buffer
	if err := Page("Repairs", data, body).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `<html lang="bg">`) {
		t.Fatalf("missing lang attribute: %s", out)
	}
	if strings.Contains(out, "<script>alert(1)") {
		t.Fatalf("body text was not escaped")
	}
	if !strings.Contains(out, `href="/tasker/repairs" class="active"`) {
		t.Fatalf("missing active link: %s", out)
	}
	if !strings.Contains(out, "flash-ok") || !strings.Contains(out, CSRFCookieName) {
		t.Fatalf("missing flash or csrf script")
	}
}
