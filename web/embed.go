// Package web embeds the static board client for single-binary distribution.
package web

import "embed"

// Assets contains the board client. Serve it through fs.Sub(Assets, "build").
//
//go:embed all:build
var Assets embed.FS
