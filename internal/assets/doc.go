// Package assets embeds the stylesheets and HTML templates used when
// documents are printed through the headless browser.
//
// Styles live under styles/{name}.css and templates under
// templates/{name}.html. Names are validated so they can never address a
// file outside those directories.
package assets
