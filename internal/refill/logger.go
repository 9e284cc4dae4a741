package refill

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/nodeforge/rpc-gateway/internal/observability"
)

// cronLogger adapts the observability facade to cron.Logger, the same
// adapter shape as the teacher's pkg/cron_worker/scheduler.go.
type cronLogger struct {
	obs observability.Observability
}

func newCronLogger(obs observability.Observability) cron.Logger {
	return &cronLogger{obs: obs}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.obs.Logger().Info(context.Background(), msg, convertKeysAndValues(keysAndValues...)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := append(convertKeysAndValues(keysAndValues...), observability.Error(err))
	l.obs.Logger().Error(context.Background(), msg, fields...)
}

func convertKeysAndValues(keysAndValues ...interface{}) []observability.Field {
	fields := make([]observability.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, observability.String(key, fmt.Sprintf("%v", keysAndValues[i+1])))
	}
	return fields
}
