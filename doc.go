// Package doc2pdf converts heterogeneous documents to PDF by trying an
// ordered chain of conversion backends until one succeeds.
//
// # Quick Start
//
//	eng, err := doc2pdf.New(doc2pdf.WithMethod(doc2pdf.MethodAuto))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	stats, err := eng.ConvertDir(ctx, "/data/inbox", "")
//	if err != nil && !errors.Is(err, doc2pdf.ErrInterrupted) {
//	    log.Fatal(err)
//	}
//	fmt.Println(stats.Succeeded, "converted")
//
// # Backend Chain
//
// Backends are tried in fidelity order: native Office automation, then a
// headless LibreOffice, then minimal pure-Go renderers. Image, browser,
// text, markup, message, archive and pass-through backends are always
// appended whatever the method.
//
// A backend failure falls through to the next backend. A password
// protected document stops the chain immediately and is reported as
// StatusSkippedPassword.
//
// # Containers
//
// Archives and mail messages expand into a directory. Their members are
// converted inline; nested containers of the same type are picked up by
// later directory passes, guarded by a visited set so a run always
// terminates.
//
// # Cancellation
//
// The context is polled between files and between passes. A backend call
// that has started always runs to completion under its own timeout.
package doc2pdf
