// Package ui provides the terminal console for the bus-booking admin API.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model is the single tea.Model; every
// resource the console manages is a screen, a binding from a typed
// state.Collection to rows, detail lines and form schemas. The Model only
// holds screens, so adding a resource means adding a binding in bindings.go.
//
// # Package Structure
//
//   - app.go: Model, Update loop, key handling and Run
//   - views.go: header, tabs, list, detail, activity log and command bar
//   - screen.go: the screen interface and the generic binding
//   - bindings.go: one binding per resource
//   - form.go, confirm.go, login.go: dialogs
//   - commands.go: tea.Cmd builders and messages for collection operations
//   - pager.go: page control rendering
//   - theme.go, keys.go, layout.go, render.go: styling and layout helpers
//
// # Event Flow
//
//  1. Run builds the Model from the store and starts the program.
//  2. Keys start collection operations as commands; each runs with its own
//     deadline off the update loop and reports an opDoneMsg.
//  3. Rows are read back from the collection snapshot on the next update.
//     A list superseded by a newer one is dropped without a message.
//  4. A 401 from any operation signs the operator out and shows the sign-in
//     box.
//
// # Right-to-left locales
//
// Pashto and Dari reverse the tab order, the table columns, the page
// control and the detail layout. Data is not reordered within a cell.
package ui
