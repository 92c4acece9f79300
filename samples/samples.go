// Package samples embeds the example documents served by the HTTP API.
package samples

import "embed"

//go:embed *.xml *.wadl
var FS embed.FS
