package manager

import "github.com/rs/zerolog"

// LogPublisher writes every lifecycle event as one structured log line.
type LogPublisher struct {
	log   zerolog.Logger
	level zerolog.Level
}

// NewLogPublisher returns a publisher logging at level under component=events.
func NewLogPublisher(log zerolog.Logger, level zerolog.Level) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "events").Logger(), level: level}
}

func (p *LogPublisher) Publish(e Event) {
	ev := p.log.WithLevel(p.level).Str("event", e.Name)
	if e.ModelID != "" {
		ev = ev.Str("model_id", e.ModelID)
	}
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	ev.Msg("lifecycle event")
}
