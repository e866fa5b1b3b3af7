package domain

// ConfirmFunc asks the user to approve a destructive action, returning
// true to proceed. Injected so nothing below the CLI blocks on a prompt
// it cannot answer in tests.
type ConfirmFunc func(prompt string) bool

// Notifier surfaces one-line outcome summaries to the user.
type Notifier interface {
	Info(message string)
	Warn(message string)
}
