package trigger

import "go.uber.org/zap"

// zapLogger adapts a zap.SugaredLogger to the Logger interface. Callers that
// want production logging build one with NewZapLogger and pass it to
// NewEngine; NewEngine does not create one on its own.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger builds a Logger backed by a production zap configuration.
func NewZapLogger() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: l.Sugar()}, nil
}

// NewZapLoggerFrom adapts an already-constructed *zap.Logger.
func NewZapLoggerFrom(l *zap.Logger) Logger {
	return &zapLogger{s: l.Sugar()}
}

func (z *zapLogger) Info(msg string, args ...any)  { z.s.Infow(msg, args...) }
func (z *zapLogger) Error(msg string, args ...any) { z.s.Errorw(msg, args...) }
func (z *zapLogger) Warn(msg string, args ...any)  { z.s.Warnw(msg, args...) }
func (z *zapLogger) Debug(msg string, args ...any) { z.s.Debugw(msg, args...) }
