//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

package legaltools

import (
	"context"
	"fmt"
	"strings"

	"moot/internal/marker"
)

type provideLinkInput struct {
	Title       string `json:"title" jsonschema:"description=Short title for the linked resource"`
	URL         string `json:"url" jsonschema:"description=The URL to share"`
	Description string `json:"description,omitempty" jsonschema:"description=One-line description of what the link contains"`
}

type provideLinkOutput struct {
	Message string `json:"message"`
}

func provideLinkFn(env Env) func(context.Context, provideLinkInput) (provideLinkOutput, error) {
	return func(ctx context.Context, in provideLinkInput) (provideLinkOutput, error) {
		if strings.TrimSpace(in.URL) == "" {
			return provideLinkOutput{Message: "No URL provided; nothing was shared."}, nil
		}
		title := in.Title
		if title == "" {
			title = in.URL
		}
		return provideLinkOutput{
			Message: fmt.Sprintf("Shared link %q. %s",
				title, marker.EmbedLink(title, in.URL, in.Description)),
		}, nil
	}
}
