// Package player implements local audio preview for the station screens.
//
// # Cue Points
//
// Every playable asset carries up to three markers measured in seconds: the
// intro point where airplay starts, the vocal point where the vocals come in
// and the aux point where a segue may begin. Markers are independently
// optional. A [Session] enforces playback mutual exclusion across rows: at
// most one transport plays at a time, and starting a new one resets the
// previous transport back to its own intro point.
//
// # Waveform Editor
//
// The [Editor] decodes an asset into peak data for the marker editing screen.
// WAV files are parsed natively; everything else goes through a configurable
// external decoder binary. Peaks are downsampled to a fixed per-second
// resolution and can be compressed for the local cache with
// [CompressPeaks] and [DecompressPeaks].
//
// # Transports
//
// A [Transport] abstracts a positioned play/pause surface. The default
// [ExecTransport] shells out to a player binary (ffplay unless configured
// otherwise), which keeps the module free of cgo audio stacks.
package player
