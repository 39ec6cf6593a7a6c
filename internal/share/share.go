// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package share hands resolved locations to the desktop: the clipboard and the map viewer.
package share

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
)

// ErrClipboardUnsupported is returned when no clipboard utility is available.
var ErrClipboardUnsupported = errors.New("no clipboard utility available")

// Clipboard receives plain text.
type Clipboard interface {
	WriteText(text string) error
}

// Viewer opens a URL.
type Viewer interface {
	Open(url string) error
}

// SystemClipboard writes to the clipboard of the desktop session.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}

// Browser opens URLs in the default web browser. The output of the launched command goes to
// stderr, stdout is reserved for the module output.
type Browser struct{}

func (Browser) Open(url string) error {
	browser.Stdout = os.Stderr
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}
