package channel

import (
	"time"

	"github.com/dmitrymomot/notifykit/pkg/audience"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// AppInfo identifies the sending application inside rendered content.
type AppInfo struct {
	Name string
	URL  string
}

// BuildContext merges request variables with the standard per-recipient
// bindings every template can rely on: user.*, app.*, and date.now. The
// standard set wins over request variables on key collisions.
func BuildContext(vars template.Value, rcpt audience.Recipient, app AppInfo, now time.Time) template.Value {
	return vars.
		With("user", template.Map(map[string]template.Value{
			"id":     template.String(rcpt.ID),
			"name":   template.String(rcpt.Name),
			"email":  template.String(rcpt.Email),
			"phone":  template.String(rcpt.Phone),
			"locale": template.String(rcpt.Locale),
		})).
		With("app", template.Map(map[string]template.Value{
			"name": template.String(app.Name),
			"url":  template.String(app.URL),
		})).
		With("date", template.Map(map[string]template.Value{
			"now": template.String(now.UTC().Format(time.RFC3339)),
		}))
}
