package telegram

import (
	"fmt"
	"strings"
	"time"
)

// AccountEvent is an account lifecycle change worth telling the admins about.
type AccountEvent struct {
	Type   string // registered, status_changed, deleted
	Name   string
	Email  string
	Detail string
	At     time.Time
}

// FormatAccountEvent renders an AccountEvent as a Markdown message.
func FormatAccountEvent(ev AccountEvent) string {
	var icon, title string
	switch ev.Type {
	case "registered":
		icon, title = "🆕", "New account registered"
	case "status_changed":
		icon, title = "⚠️", "Account status changed"
	case "deleted":
		icon, title = "🗑", "Account deleted"
	default:
		icon, title = "ℹ️", "Account event"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s *%s*\n", icon, title))
	sb.WriteString(fmt.Sprintf("👤 *Name:* %s\n", escapeMarkdown(ev.Name)))
	sb.WriteString(fmt.Sprintf("📧 *Email:* %s\n", escapeMarkdown(ev.Email)))
	if ev.Detail != "" {
		sb.WriteString(fmt.Sprintf("📝 *Detail:* %s\n", escapeMarkdown(ev.Detail)))
	}
	if !ev.At.IsZero() {
		sb.WriteString(fmt.Sprintf("🕒 %s", ev.At.UTC().Format("2006-01-02 15:04 MST")))
	}
	return sb.String()
}

// escapeMarkdown escapes the characters legacy Telegram Markdown treats as markup.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return r.Replace(s)
}
