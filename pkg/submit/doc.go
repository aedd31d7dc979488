// Package submit turns public project submissions into moderation queue
// entries.
//
// A [Draft] is what a visitor fills in. [Validate] normalizes it and decides
// whether its category is one of the known categories or a custom one that
// needs a display name and color. A valid draft becomes an [Entry] with a
// "sub-" prefixed id and is appended to a [Queue]:
//
//   - [MemoryQueue] keeps entries in process (development and tests)
//   - [SQLiteQueue] stores entries in a local SQLite file
//   - [MongoQueue] inserts entries into a MongoDB collection
//   - [SheetsQueue] appends rows to the "pending" tab of the moderation sheet
//
// [Service.Submit] never returns a Go error. Every call yields exactly one
// [Result], one log line and one observability event, so the HTTP handler and
// the CLI can forward the result verbatim.
//
// [Client] is the caller side: it posts a draft to a running server.
package submit
