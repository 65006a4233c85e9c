// Package engine bundles the parts of a tempo map editing session.
//
// A Context owns one timeline together with its notifier, selection and
// undo history, and reads user preferences through timeline.Preferences.
// There is no global state: every editing session gets its own Context.
//
// # Quick Start
//
//	ctx := engine.New(timeline.DefaultPreferences())
//	tl := ctx.Timeline()
//	tl.AddAnchoredPoint(0, 0)
//	tl.AddAnchoredPoint(2, 4)
//	ctx.Undo() // removes the second point
//
// Open loads a project file instead:
//
//	ctx, err := engine.Open("song.tmap", store, engine.WithLogger(log))
//
// # Concurrency
//
// A Context is not safe for concurrent use. Preferences are the exception:
// config.Store may be updated from a file watcher while the Context runs.
package engine
