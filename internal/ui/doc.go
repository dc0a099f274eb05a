// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for station programming:
//  1. [StationSelectView] : Pick the broadcast station to program
//  2. [DualPaneView] : Library catalog beside the station playlist; pick-up
//     and drop keys move items between panes and reorder the playlist
//  3. [EditorView] : Waveform overlay for setting intro, vocal and aux markers
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Engine notices flow through a channel to a toast line, and a periodic tick drives
// the playback session's aux point auto-pause.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, enter, esc, q) with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
