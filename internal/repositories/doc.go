// package repositories provides the local sqlite cache behind offline
// listings.
//
// [MediaRepository] snapshots catalog rows fetched from the backend so the
// CLI can render listings when the API is unreachable. [WaveformRepository]
// caches compressed peak data so the editor does not re-decode an asset it
// has already seen. Both are caches, not sources of truth; the backend wins
// on every successful fetch.
package repositories
