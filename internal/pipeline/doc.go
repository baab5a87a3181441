// Package pipeline prepares HTML for the headless browser.
//
// It covers the steps that run before printing:
//   - Markdown to HTML via Goldmark (GFM, footnotes, highlighting)
//   - stylesheet injection
//   - rewriting relative image and link paths to file:// URLs
//   - cleaning mail HTML and flattening it to text when no browser exists
//   - rendering message headers and body through the message template
package pipeline
