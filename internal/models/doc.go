// Package models defines domain entities and persistence interfaces for the airdeck RadioCMS console.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs mirroring the RadioCMS wire format
//   - [MediaItem] : a catalog audio asset (song, advert, podcast, news, voice track, ID)
//   - [Assignment] : a MediaItem's membership in a station's ordered list
//   - [Station] : a broadcast station selectable in the dual-pane screen
//   - [CuePoints] : intro/vocal/aux offsets controlling crossfade-safe playback
//
// 2. Persistent Entities: rows in the local sqlite cache
//   - [CachedMedia] : last-seen snapshot of a catalog item for offline listings
//
// Markers use pointer-typed seconds so an unset marker is distinguishable from a
// genuine 0.0 offset; the wire format omits unset markers entirely.
// Persistent entities implement the Model interface; Repository[T] defines the
// CRUD surface the cache repositories provide.
package models
