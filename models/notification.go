package models

// Notification template keys understood by the external email-dispatch
// service. The dispatcher sends the key plus the account id; rendering
// happens on the other side.
const (
	TemplateWelcome       = "welcome"
	TemplateResetPassword = "reset-password"
)

// Notification is one outbound email-dispatch request.
type Notification struct {
	Template  string `json:"template"`
	AccountID int64  `json:"account_id"`
}
