// Package templates holds the default badge templates.
package templates

import "embed"

// FS contains overview.svg, overview-dark.svg, languages.svg and languages-dark.svg.
//
//go:embed *.svg
var FS embed.FS
