// Package logger builds *slog.Logger instances with functional options and
// transparent injection of request-scoped values stored in context.Context.
//
// New picks a text or JSON handler, applies static attributes and wraps the
// result in LogHandlerDecorator, which runs every registered ContextExtractor
// before a record is written. Attribute constructors in attr.go keep key names
// consistent across the billing, profile and HTTP layers.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.AppEnv, "nextweekend"),
//		logger.WithContextExtractors(logger.RequestIDExtractor(requestid.FromContext)),
//	)
//	log.InfoContext(ctx, "subscription reconciled",
//		logger.CustomerID(customerID),
//		logger.ProfileID(profileID),
//	)
//
// Secrets (provider API keys, webhook signing secrets, service-role keys) must
// never be passed to any attribute helper.
package logger
