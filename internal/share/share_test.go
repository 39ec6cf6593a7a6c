// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package share

import (
	"errors"
	"testing"

	"github.com/atotto/clipboard"

	"github.com/pirayeshfar/location-finder/internal/testhelper"
)

func TestSystemClipboard_WriteText(t *testing.T) {
	t.Run("unsupported clipboard is reported", func(t *testing.T) {
		if !clipboard.Unsupported {
			t.Skip("clipboard utility available")
		}
		err := SystemClipboard{}.WriteText("x")
		if !errors.Is(err, ErrClipboardUnsupported) {
			t.Errorf("expected error to be %s, got %s", ErrClipboardUnsupported, err)
		}
	})
	t.Run("text round trips through the clipboard", func(t *testing.T) {
		testhelper.PerformIntegrationTests(t)
		if clipboard.Unsupported {
			t.Skip("no clipboard utility available")
		}
		want := "Address: تهران\nPostal code: 1234567890"
		if err := (SystemClipboard{}).WriteText(want); err != nil {
			t.Fatalf("failed to write clipboard: %s", err)
		}
		got, err := clipboard.ReadAll()
		if err != nil {
			t.Fatalf("failed to read clipboard: %s", err)
		}
		if got != want {
			t.Errorf("expected clipboard to contain %q, got %q", want, got)
		}
	})
}
