// Package ui provides terminal output components for the hostelctl CLI.
//
// Components follow a "print and exit" pattern and are built on Lipgloss
// (and the Bubbles progress bar). The interactive wizard lives in
// internal/wizard/tui and shares this package's palette.
//
//   - Header: command banner showing the operation and its parameters
//   - Progress: progress bar with a step list
//   - Result: success, failure and warning boxes
//   - Table: column layout for floors, rooms, beds, businesses and
//     payment methods
//
// A StepRunner strings these together for multi-step commands:
//
//	runner := ui.NewStepRunner(ui.RunnerConfig{
//	    Title:     "Enroll student",
//	    Command:   "hostelctl student create",
//	    StepNames: []string{"Load floors", "Load rooms", "Load beds", "Create student"},
//	})
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Field, error) {
//	    onStep(1, "", ui.StepRunning, "")
//	    // ...
//	    return []ui.Field{ui.F("Student", id)}, nil
//	})
//
// Logging is controlled separately through HOSTELCTL_LOG_LEVEL; when unset,
// zap is silent so these components own the terminal.
package ui
