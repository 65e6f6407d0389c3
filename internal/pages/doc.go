// Package pages loads the data behind the learner classroom pages.
//
// Each Show* operation runs one pipeline against a *Store: it prepares the
// page (name, title, initial shape, loading), fetches from the sources in
// dependency order, dispatches the reshaped results and clears loading.
// Any failure is handed once to the ErrorReporter and ends the pipeline.
//
// A Store hands every pipeline a generation token; once a newer pipeline
// starts on the same store, dispatches from the older one are dropped.
package pages
