package format

import (
	"strings"

	"github.com/gosimple/slug"
)

// Filename builds a download name such as "invoice-inv-20240301-0001.pdf".
func Filename(invoiceNumber, ext string) string {
	name := slug.Make(strings.TrimSpace(invoiceNumber))
	if name == "" {
		name = "draft"
	}
	return "invoice-" + name + "." + strings.TrimPrefix(ext, ".")
}
