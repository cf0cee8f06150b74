// Package enrollment implements the guided floor, room, bed and details
// workflow used to enroll a student into a bed.
//
// # Steps
//
//	StepSelectFloor -> StepSelectRoom -> StepSelectBed -> StepEnterDetails
//
// A step only advances when its operation succeeds. SelectFloor and
// SelectRoom fetch the candidates of the next step first; SelectBed is local.
// GoBack moves one step back without discarding selections, so walking
// forward again needs no re-selection. Reset returns to the constructed state.
//
// Every id passed to a Select method must belong to the currently loaded
// candidates, otherwise ErrInvalidSelection is returned and nothing changes.
//
// # Errors
//
// Remote failures are both returned and recorded in State().Error so a UI
// can render them; the step stays where it was and the same operation can
// be retried.
//
// # Stale Results
//
// Each operation takes a sequence number. A remote call that completes after
// GoBack, Reset or a newer operation has started is dropped with ErrSuperseded.
// CreateStudent still returns the student the server created alongside it.
package enrollment
