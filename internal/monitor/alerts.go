package monitor

// AlertSink interface for pluggable alert delivery.
type AlertSink interface {
	Send(message string) error
}

// LogSink delivers alerts through a plain callback. Useful when no
// external notification channel is configured.
type LogSink struct {
	Fn func(string)
}

func (s *LogSink) Send(message string) error {
	if s.Fn != nil {
		s.Fn(message)
	}
	return nil
}
