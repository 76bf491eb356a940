//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

// Package web embeds the browser client served at the root path.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// Handler serves the embedded client.
func Handler() http.Handler {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// The static directory is embedded at compile time.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
