// Package report records conversion outcomes: a CSV journal written as the
// run progresses and a text session report written at the end. Both
// implement doc2pdf.Recorder.
package report
