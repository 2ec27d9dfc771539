package cart

// Severity classifies a user-facing notification.
type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Notifier receives user-facing outcomes. The controller invokes it at most
// once per operation.
type Notifier interface {
	Notify(severity Severity, message string)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(severity Severity, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(severity Severity, message string) { f(severity, message) }
