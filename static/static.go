// Package static embeds the assets served under /static/.
package static

import "embed"

//go:embed styles.css
var FS embed.FS
