// Package internal contains the implementation packages for linkpage.
//
// # Package Organization
//
//   - links: link entries, normalization and the social icon table
//   - profile: profile parsing, shallow merge over defaults, the cached
//     store and its file watcher, and the linter
//   - theme: colour palettes and page backgrounds
//   - renderer: page and social card templates
//   - cache: byte-bounded LRU render cache
//   - invalidate: the revalidate endpoint and reload notifiers
//   - server: HTTP routes, middleware and the live reload hub
//   - config: server settings from flags, environment and file
//   - watcher: debounced fsnotify wrapper
//   - errors, logging, validation, version: shared infrastructure
//
// # Request Flow
//
// A request reads the profile from the store once, renders it and, for the
// home page and the social card, stores the bytes in the render cache. When
// the profile file changes the store reloads it and its reload listener
// drops the cached pages through the notifier.
package internal
