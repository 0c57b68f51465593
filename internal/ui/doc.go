// Package ui renders styled output for the one-shot loanform commands.
//
// The interactive form lives in package tui. The components here follow a
// "print once and exit" pattern for commands such as predict and validate
// when their output is a terminal:
//
//   - Header: command banner showing the operation and its parameters
//   - Result: success, failure or invalid-input box
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader(ui.NewHeader("Loan Prediction", "loanform predict",
//	    ui.Param{Key: "Endpoint", Value: endpoint}))
//	p.PrintResult(ui.NewSuccessResult("Prediction received", display))
package ui
