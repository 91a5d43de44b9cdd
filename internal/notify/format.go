package notify

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

const notSpecified = "Not specified"

// Compose renders the subject and plain-text body for a submission. Declared
// fields come first in form order, then extra fields sorted by key.
func Compose(sub domain.Submission) Message {
	form, ok := domain.FormByKind(sub.Form)
	title := form.Title
	if !ok {
		title = string(sub.Form)
	}

	var b strings.Builder
	for _, f := range form.Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, valueOr(sub.Field(f.Key)))
	}
	if extra := form.Extra(sub.Fields); len(extra) > 0 {
		b.WriteString("\n")
		for _, k := range extra {
			fmt.Fprintf(&b, "%s: %s\n", k, valueOr(sub.Fields[k]))
		}
	}
	if sub.Status != "" {
		fmt.Fprintf(&b, "\nStatus: %s\n", sub.Status)
	}
	fmt.Fprintf(&b, "\nRecord ID: %s\n", sub.ID)
	fmt.Fprintf(&b, "Submitted At: %s\n", sub.CreatedAt.UTC().Format(time.RFC3339))

	return Message{
		Subject: fmt.Sprintf("New %s submission: %s", title, valueOr(sub.Field("name"))),
		Body:    b.String(),
		ReplyTo: replyAddress(sub.Field("email")),
	}
}

// replyAddress returns the bare address when v parses as one, else "".
func replyAddress(v string) string {
	addr, err := mail.ParseAddress(strings.TrimSpace(v))
	if err != nil {
		return ""
	}
	return addr.Address
}

func valueOr(v string) string {
	if strings.TrimSpace(v) == "" {
		return notSpecified
	}
	return v
}
