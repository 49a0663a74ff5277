// Package logging holds the slog conventions used across macbridge: attribute
// key names, small attribute helpers and a Logger interface for packages that
// take a logger as a dependency.
//
//	logger := logging.WithOperation(slog.Default(), "slots.find")
//	logger.Info("searched free slots",
//	    logging.Source("apple"),
//	    logging.Status(logging.StatusSuccess))
//
// Errors are attached with Err, which is nil-safe:
//
//	logger.Warn("calendar read failed", logging.Err(err))
package logging
