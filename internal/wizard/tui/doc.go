// Package tui implements the interactive screens of hostelctl.
//
// Built on Bubble Tea, every screen is a Model-Update-View triple. Remote
// calls never run inside Update: they are returned as tea.Cmd values and
// their outcome comes back as a message.
//
// # Screens
//
//   - DiscoveryModel: browses mDNS for hostel API servers, or takes a URL
//     typed by hand
//   - EnrollmentModel: floor list, room list, bed list, student details form
//     and result, driven by an enrollment.Workflow
//   - BrowserModel: a business list driven by a pager.Loader that fetches
//     the next page at the end of the list
//
// AppModel chains the discovery screen into the enrollment screens.
//
// # Key Bindings
//
//   - Lists: ↑/↓ navigate, enter select, esc back, ctrl+r start over, q quit
//   - Details form: tab/shift+tab move between fields, ←/→ choose the
//     payment method, ctrl+s submit, esc back
//   - Browser: m load more, r refresh
//
// Results that arrive after the user has moved on (esc, ctrl+r or refresh)
// are dropped by the workflow and the loader; the screens ignore them.
package tui
