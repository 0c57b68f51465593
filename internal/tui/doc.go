// Package tui implements the interactive terminal loan form using Bubbletea.
//
// The form shows the seven applicant inputs, a submit button and a results
// panel. It follows the Elm architecture: Model holds the current form.State
// and every user action is turned into a form event.
//
// # Input Mapping
//
//   - typing in a field sends form.Change
//   - tab, shift+tab and the arrow keys move focus; leaving a field sends
//     form.Blur so the field is validated
//   - enter sends form.Submit from anywhere in the form
//
// # Async Operations
//
// A submit that passes validation returns a tea.Cmd (PredictCmd) that calls
// the prediction service off the UI loop and delivers the outcome as a
// message, which becomes a form.Settled event. While it runs, the submit
// button is disabled and a spinner is shown.
//
// # Layout
//
// Every frame is wrapped by RenderApplicationContainer, which draws the
// header, the bordered content area and the key help footer.
//
// # Usage
//
//	if err := tui.Run(ctx, predict.NewClient(endpoint, timeout)); err != nil {
//	    return err
//	}
package tui
