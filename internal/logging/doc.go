// Package logging provides structured logging for hostelctl.
//
// This package wraps a zap logger with convenience functions for the common
// logging patterns of the CLI: API request/response tracing, enrollment
// workflow transitions and paginated page loads.
//
// # Silent by Default
//
// hostelctl is a command-line tool whose stdout is often piped into other
// programs, so nothing is logged unless a level is requested through the
// --log-level flag or the HOSTELCTL_LOG_LEVEL environment variable. Log output
// always goes to stderr.
//
// # Structured Logging
//
//	logging.Info("Student created",
//	    zap.String("student_id", s.ID),
//	    zap.String("bed_id", s.BedID),
//	)
//
// # Domain Helpers
//
//	logging.LogAPIRequest("GET", "/api/floors", requestID, 1)
//	logging.LogAPIResponse("GET", "/api/floors", requestID, 200, elapsed)
//	logging.LogWorkflowTransition("select-floor", "select-room", "SelectFloor")
//	logging.LogPageLoaded("businesses", 10, 10, true)
//
// # Configuration
//
//	if err := logging.Initialize(levelFlag); err != nil {
//	    return err
//	}
//	defer logging.Sync()
package logging
