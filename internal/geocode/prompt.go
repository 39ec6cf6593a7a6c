// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"fmt"
	"strings"

	"github.com/pirayeshfar/location-finder/internal/locate"
)

const promptTemplate = `مختصات جغرافیایی یک نقطه: عرض جغرافیایی %s و طول جغرافیایی %s.
با استفاده از نقشه و جستجوی وب، دقیق‌ترین آدرس پستی این نقطه را پیدا کن.
پاسخ را فقط با خطوط زیر و دقیقا به همین ترتیب بنویس. هر خط به شکل «برچسب: مقدار» باشد و اگر مقداری را نمی‌دانی آن را خالی بگذار:
%s`

// BuildPrompt returns the reverse geocoding prompt for the given coordinates.
func BuildPrompt(coords locate.Coordinates) string {
	var fields strings.Builder
	for i, text := range PromptLabels() {
		if i > 0 {
			fields.WriteString("\n")
		}
		fields.WriteString(text)
		fields.WriteString(":")
	}
	return fmt.Sprintf(promptTemplate, locate.FormatDegrees(coords.Lat), locate.FormatDegrees(coords.Lon),
		fields.String())
}
