// Package tasks implements the dual-pane sync engine behind the station
// programming screen.
//
// # Core Model
//
// The [Engine] owns two views over backend state: the full media catalog and
// the assignment list of the currently selected station. The two panes
// partition the catalog. An item assigned to the selected station appears in
// the station pane and nowhere else; everything else appears in the library
// pane.
//
// # Operations
//
//  1. [Engine.LoadLibrary] / [Engine.LoadStation] : fetch pane contents.
//     Station loads carry a generation counter so a slow response for a
//     station the operator already navigated away from is discarded.
//
//  2. [Engine.MoveToStation] : assign a library item to the station.
//     The move is applied locally first, then persisted. A persistence
//     failure reloads both panes so no unconfirmed state survives.
//
//  3. [Engine.Reorder] : splice an assignment to a new index and reindex
//     the whole list densely from zero before persisting the full order.
//
//  4. [Engine.RemoveAssignment] / [Engine.DeleteItem] : the former detaches
//     an item from the station, the latter deletes the catalog item itself
//     and drops any assignment wrapping it.
//
// # Notices
//
// Mutations emit [Notice] values over a non-blocking channel. The UI renders
// them as a toast line; a full channel drops the notice rather than stalling
// the operation.
package tasks
