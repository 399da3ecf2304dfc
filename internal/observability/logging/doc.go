// Package logging provides structured logging on top of log/slog.
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//	logging.WithRequestID(ctx, logger).Info("live search", slog.String("keyword", kw))
package logging
