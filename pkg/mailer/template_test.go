package mailer

import (
	"strings"
	"testing"
)

func TestRenderConfirmation(t *testing.T) {
	body, err := RenderConfirmation(ConfirmationData{
		Username:   "alice",
		AppName:    "contactdesk",
		ConfirmURL: "http://localhost:8080/api/auth/confirmed_email/tok123",
		PixelURL:   "http://localhost:8080/api/auth/opened/alice",
	})
	if err != nil {
		t.Fatalf("RenderConfirmation returned error: %v", err)
	}

	// The title filter capitalizes the username
	if !strings.Contains(body, "Hello Alice") {
		t.Errorf("Expected capitalized greeting, got:\n%s", body)
	}
	if !strings.Contains(body, "contactdesk") {
		t.Errorf("Expected app name in body, got:\n%s", body)
	}
	if !strings.Contains(body, `href="http://localhost:8080/api/auth/confirmed_email/tok123"`) {
		t.Errorf("Expected confirmation link in body, got:\n%s", body)
	}
	if !strings.Contains(body, `src="http://localhost:8080/api/auth/opened/alice"`) {
		t.Errorf("Expected tracking pixel in body, got:\n%s", body)
	}
}

func TestRenderConfirmation_EscapesHTML(t *testing.T) {
	body, err := RenderConfirmation(ConfirmationData{
		Username:   "<script>alert(1)</script>",
		AppName:    "contactdesk",
		ConfirmURL: "http://localhost:8080/api/auth/confirmed_email/tok",
	})
	if err != nil {
		t.Fatalf("RenderConfirmation returned error: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Error("Expected username to be HTML-escaped")
	}
}

func TestConfirmURL(t *testing.T) {
	got := ConfirmURL("http://localhost:8080", "tok123")
	want := "http://localhost:8080/api/auth/confirmed_email/tok123"
	if got != want {
		t.Errorf("ConfirmURL mismatch: got %s, want %s", got, want)
	}
}

func TestPixelURL(t *testing.T) {
	got := PixelURL("http://localhost:8080", "alice")
	want := "http://localhost:8080/api/auth/opened/alice"
	if got != want {
		t.Errorf("PixelURL mismatch: got %s, want %s", got, want)
	}
}
