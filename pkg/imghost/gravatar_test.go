package imghost

import (
	"strings"
	"testing"
)

func TestGravatarURL(t *testing.T) {
	url := GravatarURL("user@example.com", 250)

	// md5("user@example.com")
	if !strings.Contains(url, "b58996c504c5638798eb6b511e6f49af") {
		t.Errorf("Expected email hash in URL, got %s", url)
	}
	if !strings.Contains(url, "s=250") {
		t.Errorf("Expected size parameter in URL, got %s", url)
	}
	if !strings.Contains(url, "d=identicon") {
		t.Errorf("Expected identicon default in URL, got %s", url)
	}
}

func TestGravatarURL_NormalizesEmail(t *testing.T) {
	plain := GravatarURL("user@example.com", 80)
	messy := GravatarURL("  User@Example.COM  ", 80)

	if plain != messy {
		t.Errorf("Expected normalized emails to hash identically:\n%s\n%s", plain, messy)
	}
}
